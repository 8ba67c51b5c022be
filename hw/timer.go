package hw

import (
	"gbcore/emu/log"
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// System counter bit whose falling edge increments TIMA, per TAC clock
// select. The counter counts T-cycles.
var timerBits = [4]uint16{1 << 9, 1 << 3, 1 << 5, 1 << 7}

// Timer implements DIV, TIMA, TMA and TAC on top of the 16-bit system
// counter, DIV being its upper byte.
type Timer struct {
	DIV  hwio.Reg8
	TIMA hwio.Reg8
	TMA  hwio.Reg8
	TAC  hwio.Reg8

	irq     *Interrupts
	counter uint16

	// TIMA overflowed during the last cycle, it's reloaded on the next one.
	overflow bool
	// TIMA has been reloaded during the current cycle.
	reloading bool
}

func NewTimer(irq *Interrupts) *Timer {
	return &Timer{irq: irq}
}

func (t *Timer) Install(bus *hwio.Table) {
	t.DIV = hwio.Reg8{Name: "DIV", ReadCb: t.readDIV, PeekCb: t.readDIV, WriteCb: t.writeDIV}
	t.TIMA = hwio.Reg8{Name: "TIMA", WriteCb: t.writeTIMA}
	t.TMA = hwio.Reg8{Name: "TMA", WriteCb: t.writeTMA}
	t.TAC = hwio.Reg8{Name: "TAC", Unused: 0xF8, WriteCb: t.writeTAC}

	bus.MapReg8(0xFF04, &t.DIV)
	bus.MapReg8(0xFF05, &t.TIMA)
	bus.MapReg8(0xFF06, &t.TMA)
	bus.MapReg8(0xFF07, &t.TAC)
}

func (t *Timer) Reset() {
	t.counter = 0xABCC
	t.TIMA.Value = 0
	t.TMA.Value = 0
	t.TAC.Value = 0
	t.overflow = false
	t.reloading = false
}

// Counter returns the internal system counter.
func (t *Timer) Counter() uint16 { return t.counter }

// signal is the input of the falling edge detector.
func (t *Timer) signal() bool {
	return t.TAC.Value&0x04 != 0 && t.counter&timerBits[t.TAC.Value&3] != 0
}

func (t *Timer) incTIMA() {
	t.TIMA.Value++
	if t.TIMA.Value == 0 {
		t.overflow = true
	}
}

// Cycle advances the timer by n M-cycles.
func (t *Timer) Cycle(n int) {
	for range n {
		t.reloading = false
		if t.overflow {
			t.overflow = false
			t.TIMA.Value = t.TMA.Value
			t.reloading = true
			t.irq.Raise(IntTimer)
		}

		old := t.signal()
		t.counter += 4
		if old && !t.signal() {
			t.incTIMA()
		}
	}
}

// ResetDiv clears the system counter, as a write to DIV or STOP do.
func (t *Timer) ResetDiv() {
	old := t.signal()
	t.counter = 0
	if old {
		t.incTIMA()
	}
}

func (t *Timer) readDIV(uint8) uint8 { return uint8(t.counter >> 8) }

func (t *Timer) writeDIV(old, val uint8) {
	t.ResetDiv()
}

func (t *Timer) writeTIMA(old, val uint8) {
	switch {
	case t.reloading:
		// Writes during the reload cycle are ignored.
		t.TIMA.Value = old
	case t.overflow:
		// Writing during the overflow cycle cancels the reload.
		t.overflow = false
		log.ModTimer.DebugZ("reload cancelled").Hex8("tima", val).End()
	}
}

func (t *Timer) writeTMA(old, val uint8) {
	if t.reloading {
		t.TIMA.Value = val
	}
}

func (t *Timer) writeTAC(old, val uint8) {
	// The edge detector sees the multiplexer output change.
	oldSignal := old&0x04 != 0 && t.counter&timerBits[old&3] != 0
	if oldSignal && !t.signal() {
		t.incTIMA()
	}
}

func (t *Timer) Save(s *snapshot.State) {
	s.Write16(t.counter)
	s.Write8(t.TIMA.Value)
	s.Write8(t.TMA.Value)
	s.Write8(t.TAC.Value)
	s.WriteBool(t.overflow)
	s.WriteBool(t.reloading)
}

func (t *Timer) Load(s *snapshot.State) {
	t.counter = s.Read16()
	t.TIMA.Value = s.Read8()
	t.TMA.Value = s.Read8()
	t.TAC.Value = s.Read8()
	t.overflow = s.ReadBool()
	t.reloading = s.ReadBool()
}
