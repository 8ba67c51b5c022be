package hw

import (
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// A Peripheral maps its registers on the bus.
type Peripheral interface {
	Install(bus *hwio.Table)
	Reset()
}

// A Ticker is advanced by the clock. The unit of n depends on the ticker: dots
// for the video unit, M-cycles for the others.
type Ticker interface {
	Cycle(n int)
}

// Clock counts CPU M-cycles and fans them out to the tickers, scaled by the
// current speed mode.
type Clock struct {
	Video  Ticker // 4 dots per M-cycle, 2 in double speed
	Timer  Ticker
	Serial Ticker
	DMA    Ticker
	Sound  Ticker // runs at normal speed even in double speed

	cycles      int64
	doubleSpeed bool
	soundRem    int
	pause       int
}

func (c *Clock) Reset() {
	c.cycles = 0
	c.doubleSpeed = false
	c.soundRem = 0
	c.pause = 0
}

// Increment advances all tickers by n M-cycles, then runs the cycles during
// which the CPU was paused (HDMA, speed switch).
func (c *Clock) Increment(n int) {
	c.advance(n)
	for c.pause > 0 {
		p := c.pause
		c.pause = 0
		c.advance(p)
	}
}

func (c *Clock) advance(n int) {
	c.cycles += int64(n)

	if c.Timer != nil {
		c.Timer.Cycle(n)
	}
	if c.Serial != nil {
		c.Serial.Cycle(n)
	}
	if c.DMA != nil {
		c.DMA.Cycle(n)
	}

	dots, snd := 4*n, n
	if c.doubleSpeed {
		dots = 2 * n
		c.soundRem += n
		snd = c.soundRem / 2
		c.soundRem %= 2
	}
	if c.Video != nil {
		c.Video.Cycle(dots)
	}
	if c.Sound != nil && snd > 0 {
		c.Sound.Cycle(snd)
	}
}

// PauseCPU stalls the CPU for n M-cycles while the rest of the machine keeps
// running.
func (c *Clock) PauseCPU(n int) {
	c.pause += n
}

func (c *Clock) SetDoubleSpeed(on bool) { c.doubleSpeed = on }
func (c *Clock) DoubleSpeed() bool      { return c.doubleSpeed }

// Cycles returns the number of M-cycles elapsed since reset.
func (c *Clock) Cycles() int64 { return c.cycles }

func (c *Clock) Save(s *snapshot.State) {
	s.Write64(uint64(c.cycles))
	s.WriteBool(c.doubleSpeed)
	s.Write8(uint8(c.soundRem))
	s.Write32(uint32(c.pause))
}

func (c *Clock) Load(s *snapshot.State) {
	c.cycles = int64(s.Read64())
	c.doubleSpeed = s.ReadBool()
	c.soundRem = int(s.Read8())
	c.pause = int(s.Read32())
}
