package hwio

import (
	"gbcore/emu/log"
)

// mem is the BankIO8 adaptor for linear memory. The mapping address must be
// aligned on the buffer size, since only the low bits of the address are used.
type mem struct {
	name string
	buf  []uint8
	mask uint16
	wcb  func(uint16, uint8)
	ro   MemFlags
}

func newMem(name string, buf []byte, wcb func(uint16, uint8), roflag MemFlags) *mem {
	if len(buf) == 0 || len(buf)&(len(buf)-1) != 0 {
		panic("memory buffer size is not pow2")
	}
	return &mem{
		name: name,
		buf:  buf,
		mask: uint16(len(buf) - 1),
		wcb:  wcb,
		ro:   roflag,
	}
}

func (m *mem) Read8(addr uint16) uint8 {
	return m.buf[addr&m.mask]
}

func (m *mem) Peek8(addr uint16) uint8 {
	return m.buf[addr&m.mask]
}

func (m *mem) Write8(addr uint16, val uint8) {
	if m.wcb != nil {
		m.wcb(addr, val)
		return
	}

	switch m.ro {
	case MemFlagReadWrite:
		m.buf[addr&m.mask] = val
	case MemFlag8ReadOnly:
		log.ModHwIo.ErrorZ("Write8 to readonly memory").
			String("area", m.name).
			Hex8("val", val).
			Hex16("addr", addr).
			End()
	case MemFlagNoROLog:
	}
}

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlag8ReadOnly MemFlags = (1 << iota) // read-only accesses
	MemFlagNoROLog                          // ignore writes silently
)

// Mem is a linear memory area that can be mapped into a Table.
type Mem struct {
	Name    string              // name of the memory area (for debugging)
	Data    []byte              // actual memory buffer, pow2 sized
	VSize   int                 // mapped size (can be smaller or bigger than Data)
	Flags   MemFlags            // flags determining how the memory can be accessed
	WriteCb func(uint16, uint8) // optional write callback (if set, the callback is called instead of writing)
}

func (m *Mem) BankIO8() BankIO8 {
	return newMem(m.Name, m.Data, m.WriteCb, m.Flags)
}
