package hw

import (
	"gbcore/emu/log"
)

// System carries the trap flag. Once trapped, the machine doesn't advance
// until the trap is cleared.
type System struct {
	trapped bool
	msg     string
}

// Trap stops the machine, the first message is kept.
func (s *System) Trap(msg string) {
	if s.trapped {
		return
	}
	s.trapped = true
	s.msg = msg
	log.ModEmu.ErrorZ("trap").String("msg", msg).End()
}

func (s *System) IsTrap() bool        { return s.trapped }
func (s *System) TrapMessage() string { return s.msg }

func (s *System) ClearTrap() {
	s.trapped = false
	s.msg = ""
}

func (s *System) Log(format string, args ...any)     { log.ModEmu.Debugf(format, args...) }
func (s *System) Info(format string, args ...any)    { log.ModEmu.Infof(format, args...) }
func (s *System) Warning(format string, args ...any) { log.ModEmu.Warnf(format, args...) }
func (s *System) Error(format string, args ...any)   { log.ModEmu.Errorf(format, args...) }
