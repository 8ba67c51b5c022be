package hwio

import (
	"fmt"

	"gbcore/emu/log"
)

// BankIO8 is implemented by everything that can be mapped on a Table. The same
// device is usually mapped on a whole range, so the address is always passed.
type BankIO8 interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)
}

// A Peeker can be read without side effects (debugging/tracing/DMA).
type Peeker interface {
	Peek8(addr uint16) uint8
}

// A Trapper is notified of fatal bus conditions.
type Trapper interface {
	Trap(msg string)
}

// An Observer is notified, synchronously, of every byte accessed through
// Read8 and Write8.
type Observer interface {
	ObserveRead(addr uint16, val uint8)
	ObserveWrite(addr uint16, val uint8)
}

// HRAM and IE remain accessible while the bus is locked.
const lockFreeStart = 0xFF80

// Table is the 64K address space. Every address is bound to at most one
// device; accessing an unbound address traps.
type Table struct {
	Name string

	table8    [0x10000]BankIO8
	trap      Trapper
	locked    bool
	observers []Observer
}

func NewTable(name string, trap Trapper) *Table {
	t := &Table{Name: name, trap: trap}
	t.Reset()
	return t
}

// Reset removes all mappings, observers, and unlocks the bus.
func (t *Table) Reset() {
	clear(t.table8[:])
	t.observers = nil
	t.locked = false
}

// Map binds io to a single address.
func (t *Table) Map(addr uint16, io BankIO8) {
	t.table8[addr] = io
}

// MapRange binds io to all addresses in [begin, end].
func (t *Table) MapRange(begin, end uint16, io BankIO8) {
	if end < begin {
		panic(fmt.Sprintf("invalid range [%04x, %04x]", begin, end))
	}
	for addr := uint32(begin); addr <= uint32(end); addr++ {
		t.table8[addr] = io
	}
}

func (t *Table) MapReg8(addr uint16, reg *Reg8) {
	t.Map(addr, reg)
}

func (t *Table) MapDevice(addr uint16, dev *Device) {
	t.MapRange(addr, addr+uint16(dev.Size-1), dev)
}

func (t *Table) MapMem(addr uint16, mem *Mem) {
	log.ModHwIo.DebugZ("mapping mem").
		Hex16("addr", addr).
		Hex16("size", uint16(mem.VSize)).
		String("area", mem.Name).
		String("bus", t.Name).
		End()

	t.MapRange(addr, addr+uint16(mem.VSize-1), mem.BankIO8())
}

// MapMemorySlice maps buf on [addr, end], buf length must be a power of 2.
func (t *Table) MapMemorySlice(addr, end uint16, buf []uint8, readonly bool) {
	var flags MemFlags
	if readonly {
		flags |= MemFlag8ReadOnly
	}
	t.MapMem(addr, &Mem{
		Data:  buf,
		Flags: flags,
		VSize: int(end) - int(addr) + 1,
	})
}

func (t *Table) Unmap(begin, end uint16) {
	for addr := uint32(begin); addr <= uint32(end); addr++ {
		t.table8[addr] = nil
	}
}

// Mapped reports whether addr is bound to a device.
func (t *Table) Mapped(addr uint16) bool {
	return t.table8[addr] != nil
}

func (t *Table) Lock()        { t.locked = true }
func (t *Table) Unlock()      { t.locked = false }
func (t *Table) Locked() bool { return t.locked }

func (t *Table) AddObserver(o Observer) {
	t.observers = append(t.observers, o)
}

func (t *Table) RemoveObserver(o Observer) {
	for i := range t.observers {
		if t.observers[i] == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Read8 forwards the read to the device mapped at addr. While the bus is
// locked, reads outside HRAM/IE return 0xFF without reaching the device.
func (t *Table) Read8(addr uint16) uint8 {
	var val uint8
	switch {
	case t.locked && addr < lockFreeStart:
		val = 0xFF
	case t.table8[addr] == nil:
		t.unmapped("read", addr)
	default:
		val = t.table8[addr].Read8(addr)
	}

	if len(t.observers) != 0 {
		for _, o := range t.observers {
			o.ObserveRead(addr, val)
		}
	}
	return val
}

// Write8 forwards the write to the device mapped at addr. While the bus is
// locked, writes outside HRAM/IE are discarded.
func (t *Table) Write8(addr uint16, val uint8) {
	switch {
	case t.locked && addr < lockFreeStart:
	case t.table8[addr] == nil:
		t.unmapped("write", addr)
	default:
		t.table8[addr].Write8(addr, val)
	}

	if len(t.observers) != 0 {
		for _, o := range t.observers {
			o.ObserveWrite(addr, val)
		}
	}
}

// Peek8 reads addr ignoring the lock, observers and unmapped traps. Devices
// that implement Peeker are peeked, others are read.
func (t *Table) Peek8(addr uint16) uint8 {
	switch io := t.table8[addr].(type) {
	case nil:
		return 0
	case Peeker:
		return io.Peek8(addr)
	default:
		return io.Read8(addr)
	}
}

// Read16 performs two little-endian byte reads.
func (t *Table) Read16(addr uint16) uint16 {
	lo := t.Read8(addr)
	hi := t.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// Write16 performs two little-endian byte writes, low byte first.
func (t *Table) Write16(addr uint16, val uint16) {
	t.Write8(addr, uint8(val))
	t.Write8(addr+1, uint8(val>>8))
}

func (t *Table) unmapped(op string, addr uint16) {
	msg := fmt.Sprintf("unmapped %s at $%04X on bus %s", op, addr, t.Name)
	log.ModHwIo.ErrorZ("unmapped access").
		String("op", op).
		String("bus", t.Name).
		Hex16("addr", addr).
		End()
	if t.trap != nil {
		t.trap.Trap(msg)
	}
}
