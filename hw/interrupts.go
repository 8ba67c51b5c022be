package hw

import (
	"math/bits"

	"gbcore/emu/log"
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// Interrupt is an interrupt source, as its bit in IE/IF.
type Interrupt uint8

const (
	IntVBlank Interrupt = 1 << iota
	IntLCDStat
	IntTimer
	IntSerial
	IntJoypad

	intMask = 0x1F
)

var intNames = [...]string{"vblank", "stat", "timer", "serial", "joypad"}

func (irq Interrupt) String() string {
	if irq == 0 || irq&intMask != irq || bits.OnesCount8(uint8(irq)) != 1 {
		return "none"
	}
	return intNames[bits.TrailingZeros8(uint8(irq))]
}

// Interrupts holds the interrupt enable (IE) and request (IF) registers.
type Interrupts struct {
	IF hwio.Reg8
	IE hwio.Reg8
}

func (ic *Interrupts) Install(bus *hwio.Table) {
	ic.IF = hwio.Reg8{Name: "IF", Unused: 0xE0}
	ic.IE = hwio.Reg8{Name: "IE"}
	ic.Reset()
	bus.MapReg8(0xFF0F, &ic.IF)
	bus.MapReg8(0xFFFF, &ic.IE)
}

func (ic *Interrupts) Reset() {
	ic.IE.Value = 0x00
	ic.IF.Value = 0xE1
}

// Raise requests irq.
func (ic *Interrupts) Raise(irq Interrupt) {
	ic.IF.Value |= uint8(irq)
	log.ModIRQ.DebugZ("raise").Stringer("irq", irq).End()
}

// Clear acknowledges irq.
func (ic *Interrupts) Clear(irq Interrupt) {
	ic.IF.Value &^= uint8(irq)
}

// Pending reports whether an enabled interrupt is requested, regardless of
// IME.
func (ic *Interrupts) Pending() bool {
	return ic.IF.Value&ic.IE.Value&intMask != 0
}

// Next returns the highest priority interrupt both requested and enabled, or
// 0 if there's none. VBlank has the highest priority, joypad the lowest.
func (ic *Interrupts) Next() Interrupt {
	pending := ic.IF.Value & ic.IE.Value & intMask
	if pending == 0 {
		return 0
	}
	return Interrupt(pending & -pending)
}

// Vector returns the address of the handler of irq.
func (ic *Interrupts) Vector(irq Interrupt) uint16 {
	return 0x40 + 8*uint16(bits.TrailingZeros8(uint8(irq)))
}

func (ic *Interrupts) Save(s *snapshot.State) {
	s.Write8(ic.IF.Value)
	s.Write8(ic.IE.Value)
}

func (ic *Interrupts) Load(s *snapshot.State) {
	ic.IF.Value = s.Read8()
	ic.IE.Value = s.Read8()
}
