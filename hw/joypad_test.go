package hw

import (
	"testing"

	"gbcore/hw/hwio"
)

func TestJoypad(t *testing.T) {
	irq := &Interrupts{}
	j := NewJoypad(irq)
	bus := hwio.NewTable("cpu", nil)
	j.Install(bus)
	j.Reset()

	p1 := func(want uint8) {
		t.Helper()
		if got := bus.Read8(0xFF00); got != want {
			t.Errorf("P1 = %02X, want %02X", got, want)
		}
	}
	wantIRQ := func(want bool) {
		t.Helper()
		if got := irq.IF.Value&uint8(IntJoypad) != 0; got != want {
			t.Errorf("joypad interrupt = %t, want %t", got, want)
		}
		irq.Clear(IntJoypad)
	}

	p1(0xFF)

	bus.Write8(0xFF00, 0x20) // d-pad
	p1(0xEF)

	j.Press(ButtonRight)
	p1(0xEE)
	wantIRQ(true)

	// Not selected.
	j.Press(ButtonA)
	p1(0xEE)
	wantIRQ(false)

	// Right and A share the same line.
	bus.Write8(0xFF00, 0x10) // buttons
	p1(0xDE)
	wantIRQ(false)

	j.Release(ButtonA)
	p1(0xDF)
	wantIRQ(false)

	bus.Write8(0xFF00, 0x00) // both
	p1(0xCE)
	wantIRQ(true)

	// Only bits 4 and 5 are writable.
	bus.Write8(0xFF00, 0xFF)
	p1(0xFF)
}
