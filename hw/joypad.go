package hw

import (
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// Button is a joypad button, as a bit of the internal button state.
type Button uint8

const (
	ButtonRight Button = 1 << iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

// Joypad is the P1 register. The game selects the d-pad (bit 4 low) and/or
// the buttons (bit 5 low) and reads the selected lines, 0 meaning pressed.
type Joypad struct {
	P1 hwio.Reg8

	irq     *Interrupts
	pressed Button
}

func NewJoypad(irq *Interrupts) *Joypad {
	return &Joypad{irq: irq}
}

func (j *Joypad) Install(bus *hwio.Table) {
	j.P1 = hwio.Reg8{
		Name:    "P1",
		RoMask:  0xCF,
		Unused:  0xC0,
		ReadCb:  j.readP1,
		PeekCb:  j.readP1,
		WriteCb: j.writeP1,
	}
	bus.MapReg8(0xFF00, &j.P1)
}

func (j *Joypad) Reset() {
	j.P1.Value = 0x30
	j.pressed = 0
}

// lines returns the low nibble of P1 for the current selection.
func (j *Joypad) lines() uint8 {
	var low uint8
	if j.P1.Value&0x10 == 0 {
		low |= uint8(j.pressed) & 0x0F
	}
	if j.P1.Value&0x20 == 0 {
		low |= uint8(j.pressed) >> 4
	}
	return ^low & 0x0F
}

func (j *Joypad) readP1(val uint8) uint8 {
	return val&0x30 | j.lines()
}

func (j *Joypad) update(f func()) {
	before := j.lines()
	f()
	// Any selected line going low requests an interrupt.
	if before&^j.lines() != 0 {
		j.irq.Raise(IntJoypad)
	}
}

func (j *Joypad) writeP1(old, val uint8) {
	newsel := j.P1.Value
	j.P1.Value = old
	j.update(func() { j.P1.Value = newsel })
}

func (j *Joypad) Press(b Button) {
	j.update(func() { j.pressed |= b })
}

func (j *Joypad) Release(b Button) {
	j.pressed &^= b
}

func (j *Joypad) Save(s *snapshot.State) {
	s.Write8(j.P1.Value)
	s.Write8(uint8(j.pressed))
}

func (j *Joypad) Load(s *snapshot.State) {
	j.P1.Value = s.Read8()
	j.pressed = Button(s.Read8())
}
