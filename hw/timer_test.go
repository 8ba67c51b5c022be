package hw

import (
	"testing"

	"gbcore/hw/hwio"
)

func newTestTimer(t *testing.T) (*Timer, *Interrupts, *hwio.Table) {
	t.Helper()

	irq := &Interrupts{}
	tm := NewTimer(irq)
	bus := hwio.NewTable("cpu", nil)
	tm.Install(bus)
	tm.Reset()
	return tm, irq, bus
}

func TestTimerDIV(t *testing.T) {
	tm, _, bus := newTestTimer(t)

	if got := bus.Read8(0xFF04); got != 0xAB {
		t.Errorf("DIV after reset = %02X, want AB", got)
	}

	bus.Write8(0xFF04, 0x42)
	if got := bus.Read8(0xFF04); got != 0x00 {
		t.Errorf("DIV after write = %02X, want 00", got)
	}

	tm.Cycle(64)
	if got := bus.Read8(0xFF04); got != 0x01 {
		t.Errorf("DIV after 64 cycles = %02X, want 01", got)
	}
	if got := bus.Read8(0xFF07); got != 0xF8 {
		t.Errorf("TAC = %02X, want F8", got)
	}
}

func TestTimerTIMA(t *testing.T) {
	tm, irq, bus := newTestTimer(t)

	bus.Write8(0xFF04, 0)
	bus.Write8(0xFF07, 0x05) // enabled, 16 T-cycles per increment
	bus.Write8(0xFF06, 0x42)
	bus.Write8(0xFF05, 0xFF)

	tm.Cycle(3)
	if got := bus.Read8(0xFF05); got != 0xFF {
		t.Fatalf("TIMA = %02X, want FF", got)
	}

	// Overflow: TIMA reads 0 during one cycle before the reload.
	tm.Cycle(1)
	if got := bus.Read8(0xFF05); got != 0x00 {
		t.Errorf("TIMA on overflow = %02X, want 00", got)
	}
	if irq.IF.Value&uint8(IntTimer) != 0 {
		t.Errorf("timer interrupt raised before reload")
	}

	tm.Cycle(1)
	if got := bus.Read8(0xFF05); got != 0x42 {
		t.Errorf("TIMA after reload = %02X, want 42", got)
	}
	if irq.IF.Value&uint8(IntTimer) == 0 {
		t.Errorf("timer interrupt not raised")
	}

	tm.Cycle(3 + 4*10)
	if got := bus.Read8(0xFF05); got != 0x4D {
		t.Errorf("TIMA = %02X, want 4D", got)
	}
}

func TestTimerOverflowCancelled(t *testing.T) {
	tm, irq, bus := newTestTimer(t)

	bus.Write8(0xFF04, 0)
	bus.Write8(0xFF07, 0x05)
	bus.Write8(0xFF06, 0x42)
	bus.Write8(0xFF05, 0xFF)
	tm.Cycle(4)

	bus.Write8(0xFF05, 0x10)
	tm.Cycle(1)
	if got := bus.Read8(0xFF05); got != 0x10 {
		t.Errorf("TIMA = %02X, want 10", got)
	}
	if irq.IF.Value&uint8(IntTimer) != 0 {
		t.Errorf("cancelled overflow should not raise an interrupt")
	}
}

func TestTimerReloadIgnoresTIMAWrite(t *testing.T) {
	tm, _, bus := newTestTimer(t)

	bus.Write8(0xFF04, 0)
	bus.Write8(0xFF07, 0x05)
	bus.Write8(0xFF06, 0x42)
	bus.Write8(0xFF05, 0xFF)
	tm.Cycle(5)

	// Written during the reload cycle: TIMA keeps TMA, a TMA write goes
	// through to TIMA.
	bus.Write8(0xFF05, 0x99)
	if got := bus.Read8(0xFF05); got != 0x42 {
		t.Errorf("TIMA = %02X, want 42", got)
	}
	bus.Write8(0xFF06, 0x24)
	if got := bus.Read8(0xFF05); got != 0x24 {
		t.Errorf("TIMA = %02X, want 24", got)
	}
}

func TestTimerDIVWriteGlitch(t *testing.T) {
	tm, _, bus := newTestTimer(t)

	bus.Write8(0xFF04, 0)
	bus.Write8(0xFF07, 0x05)
	tm.Cycle(2) // counter bit 3 is now set

	bus.Write8(0xFF04, 0)
	if got := bus.Read8(0xFF05); got != 0x01 {
		t.Errorf("TIMA = %02X, want 01", got)
	}

	// Same with TAC disabling the timer.
	tm.Cycle(2)
	bus.Write8(0xFF07, 0x01)
	if got := bus.Read8(0xFF05); got != 0x02 {
		t.Errorf("TIMA = %02X, want 02", got)
	}
}
