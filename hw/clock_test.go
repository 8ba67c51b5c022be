package hw

import "testing"

// countTicker sums the units it's been advanced by, and can run a hook on
// each call.
type countTicker struct {
	total  int
	onTick func()
}

func (ct *countTicker) Cycle(n int) {
	ct.total += n
	if ct.onTick != nil {
		ct.onTick()
	}
}

func TestClockFanOut(t *testing.T) {
	tests := []struct {
		name   string
		run    func(c *Clock, timer *countTicker)
		cycles int64
		video  int
		sound  int
		timer  int
	}{
		{
			name: "normal speed",
			run: func(c *Clock, _ *countTicker) {
				c.Increment(3)
			},
			cycles: 3, video: 12, sound: 3, timer: 3,
		},
		{
			name: "double speed",
			run: func(c *Clock, _ *countTicker) {
				c.SetDoubleSpeed(true)
				for range 3 {
					c.Increment(1)
				}
			},
			cycles: 3, video: 6, sound: 1, timer: 3,
		},
		{
			name: "pause from a tick",
			run: func(c *Clock, timer *countTicker) {
				paused := false
				timer.onTick = func() {
					if !paused {
						paused = true
						c.PauseCPU(5)
					}
				}
				c.Increment(1)
			},
			cycles: 6, video: 24, sound: 6, timer: 6,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var video, sound, timer countTicker
			c := &Clock{Video: &video, Sound: &sound, Timer: &timer}
			c.Reset()

			tt.run(c, &timer)

			if got := c.Cycles(); got != tt.cycles {
				t.Errorf("cycles = %d, want %d", got, tt.cycles)
			}
			if video.total != tt.video {
				t.Errorf("video advanced by %d dots, want %d", video.total, tt.video)
			}
			if sound.total != tt.sound {
				t.Errorf("sound advanced by %d, want %d", sound.total, tt.sound)
			}
			if timer.total != tt.timer {
				t.Errorf("timer advanced by %d, want %d", timer.total, tt.timer)
			}
		})
	}
}
