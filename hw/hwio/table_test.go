package hwio

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type trapRecorder struct{ msgs []string }

func (tr *trapRecorder) Trap(msg string) { tr.msgs = append(tr.msgs, msg) }

type access struct {
	Write bool
	Addr  uint16
	Val   uint8
}

type recorder struct{ log []access }

func (r *recorder) ObserveRead(addr uint16, val uint8) {
	r.log = append(r.log, access{Addr: addr, Val: val})
}

func (r *recorder) ObserveWrite(addr uint16, val uint8) {
	r.log = append(r.log, access{Write: true, Addr: addr, Val: val})
}

type testTable struct {
	t    testing.TB
	Bus  *Table
	trap trapRecorder

	WRAM [0x2000]uint8
	HRAM [0x80]uint8
	Reg  Reg8
	Dev  Device

	devWrites []uint16
}

func newTestTable(tb testing.TB) *testTable {
	tbl := &testTable{t: tb}
	tbl.Bus = NewTable("cpu", &tbl.trap)

	tbl.Bus.MapMemorySlice(0xC000, 0xDFFF, tbl.WRAM[:], false)
	tbl.Bus.MapMemorySlice(0xE000, 0xFDFF, tbl.WRAM[:], false) // echo
	tbl.Bus.MapMem(0xFF80, &Mem{Name: "hram", Data: tbl.HRAM[:], VSize: 0x7F})

	tbl.Reg = Reg8{Name: "IF", Value: 0x01, Unused: 0xE0, RoMask: 0x01}
	tbl.Bus.MapReg8(0xFF0F, &tbl.Reg)

	tbl.Dev = Device{
		Name:    "dev",
		Size:    0x10,
		ReadCb:  func(addr uint16) uint8 { return uint8(addr) ^ 0xFF },
		WriteCb: func(addr uint16, val uint8) { tbl.devWrites = append(tbl.devWrites, addr) },
	}
	tbl.Bus.MapDevice(0xFF10, &tbl.Dev)
	tbl.Bus.Map(0xFFFF, &Reg8{Name: "IE"})
	return tbl
}

func (tbl *testTable) wantRead8(addr uint16, want uint8) {
	tbl.t.Helper()

	if got := tbl.Bus.Read8(addr); got != want {
		tbl.t.Errorf("Read8(%04X) = %02X, want %02X", addr, got, want)
	}
}

func TestTableMapping(t *testing.T) {
	tbl := newTestTable(t)

	tbl.Bus.Write8(0xC010, 0x12)
	tbl.wantRead8(0xC010, 0x12)
	tbl.wantRead8(0xE010, 0x12)

	tbl.Bus.Write8(0xFF80, 0x34)
	tbl.wantRead8(0xFF80, 0x34)
	tbl.Bus.Write8(0xFFFE, 0x56)
	tbl.wantRead8(0xFFFE, 0x56)

	// bit 0 is read-only, bits 5-7 read as 1.
	tbl.Bus.Write8(0xFF0F, 0x1E)
	tbl.wantRead8(0xFF0F, 0xFF)
	tbl.Bus.Write8(0xFF0F, 0x00)
	tbl.wantRead8(0xFF0F, 0xE1)

	tbl.wantRead8(0xFF13, 0xEC)
	tbl.Bus.Write8(0xFF1F, 0)
	if diff := cmp.Diff([]uint16{0xFF1F}, tbl.devWrites); diff != "" {
		t.Errorf("device writes mismatch (-want +got):\n%s", diff)
	}

	if len(tbl.trap.msgs) != 0 {
		t.Fatalf("unexpected traps: %v", tbl.trap.msgs)
	}
}

func TestTableUnmapped(t *testing.T) {
	tbl := newTestTable(t)

	tbl.wantRead8(0x0100, 0x00)
	tbl.Bus.Write8(0xFEA0, 0x12)
	tbl.Bus.Unmap(0xC000, 0xC0FF)
	tbl.wantRead8(0xC000, 0x00)

	want := []string{
		"unmapped read at $0100 on bus cpu",
		"unmapped write at $FEA0 on bus cpu",
		"unmapped read at $C000 on bus cpu",
	}
	if diff := cmp.Diff(want, tbl.trap.msgs); diff != "" {
		t.Errorf("traps mismatch (-want +got):\n%s", diff)
	}
	if tbl.Bus.Mapped(0xC0FF) || !tbl.Bus.Mapped(0xC100) {
		t.Errorf("Unmap did not remove exactly [C000, C0FF]")
	}
}

func TestTableLock(t *testing.T) {
	tbl := newTestTable(t)
	tbl.Bus.Write8(0xC000, 0x42)
	tbl.Bus.Write8(0xFF80, 0x24)

	tbl.Bus.Lock()
	tbl.wantRead8(0xC000, 0xFF)
	tbl.Bus.Write8(0xC000, 0x99)
	tbl.wantRead8(0xFF10, 0xFF)
	tbl.Bus.Write8(0xFF10, 0x99)
	tbl.wantRead8(0xFF80, 0x24)
	tbl.Bus.Write8(0xFFFF, 0x1F)
	tbl.wantRead8(0xFFFF, 0x1F)

	// locked accesses never reach unmapped handling.
	tbl.wantRead8(0x0000, 0xFF)

	if got := tbl.Bus.Peek8(0xC000); got != 0x42 {
		t.Errorf("Peek8 should ignore the lock, got %02X", got)
	}

	tbl.Bus.Unlock()
	tbl.wantRead8(0xC000, 0x42)
	if len(tbl.devWrites) != 0 {
		t.Errorf("device written while the bus was locked")
	}
	if len(tbl.trap.msgs) != 0 {
		t.Errorf("unexpected traps: %v", tbl.trap.msgs)
	}
}

func TestTable16BitAccessesAreObservable(t *testing.T) {
	tbl := newTestTable(t)
	var rec recorder
	tbl.Bus.AddObserver(&rec)

	tbl.Bus.Write16(0xC0FF, 0xBEEF)
	if got := tbl.Bus.Read16(0xC0FF); got != 0xBEEF {
		t.Errorf("Read16 = %04X, want BEEF", got)
	}

	want := []access{
		{Write: true, Addr: 0xC0FF, Val: 0xEF},
		{Write: true, Addr: 0xC100, Val: 0xBE},
		{Addr: 0xC0FF, Val: 0xEF},
		{Addr: 0xC100, Val: 0xBE},
	}
	if diff := cmp.Diff(want, rec.log); diff != "" {
		t.Errorf("observed accesses mismatch (-want +got):\n%s", diff)
	}

	tbl.Bus.RemoveObserver(&rec)
	tbl.Bus.Read8(0xC000)
	if len(rec.log) != len(want) {
		t.Errorf("observer still called after removal")
	}
}

func TestReg8(t *testing.T) {
	var written [2]uint8
	r := Reg8{
		Value:   0x11,
		RoMask:  0xF0,
		WriteCb: func(old, val uint8) { written = [2]uint8{old, val} },
	}

	r.Write8(0, 0x77)
	if r.Value != 0x17 {
		t.Errorf("writemask not respected: %x", r.Value)
	}
	if written != [2]uint8{0x11, 0x17} {
		t.Errorf("write callback got %x", written)
	}

	ro := Reg8{Value: 0x42, Flags: ReadOnlyFlag}
	ro.Write8(0, 0)
	if ro.Read8(0) != 0x42 {
		t.Errorf("readonly register was written")
	}

	wo := Reg8{Value: 0x42, Flags: WriteOnlyFlag}
	if wo.Read8(0) != 0xFF {
		t.Errorf("writeonly register read = %02x, want ff", wo.Read8(0))
	}
}
