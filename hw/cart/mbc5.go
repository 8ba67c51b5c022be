package cart

import (
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// mbc5 supports up to 8MB of ROM and 128KB of RAM. Unlike MBC1/3, rom bank 0
// can be mapped in the switchable area.
type mbc5 struct {
	base

	ramEnabled bool
	romBank    uint16 // 9 bits
	ramBank    uint8  // 4 bits
}

func (m *mbc5) Install(bus *hwio.Table) {
	m.install(bus, m.readROM, m.writeCtrl, m.readRAM, m.writeRAM)
}

func (m *mbc5) Reset(savedRAM []byte) {
	m.ramEnabled = false
	m.romBank = 1
	m.ramBank = 0
	m.restoreRAM(savedRAM)
}

func (m *mbc5) readROM(addr uint16) uint8 {
	if addr < 0x4000 {
		return m.romByte(0, addr)
	}
	return m.romByte(int(m.romBank), addr)
}

func (m *mbc5) writeCtrl(addr uint16, val uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = val == 0x0A
	case addr < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(val)
	case addr < 0x4000:
		m.romBank = m.romBank&0xFF | uint16(val&1)<<8
	case addr < 0x6000:
		m.ramBank = val & 0x0F
	}
}

func (m *mbc5) readRAM(addr uint16) uint8 {
	if !m.ramEnabled {
		return 0xFF
	}
	if off := m.ramOffset(int(m.ramBank), addr); off >= 0 {
		return m.ram[off]
	}
	return 0xFF
}

func (m *mbc5) writeRAM(addr uint16, val uint8) {
	if !m.ramEnabled {
		return
	}
	if off := m.ramOffset(int(m.ramBank), addr); off >= 0 {
		m.ram[off] = val
	}
}

func (m *mbc5) Save(s *snapshot.State) {
	s.WriteBool(m.ramEnabled)
	s.Write16(m.romBank)
	s.Write8(m.ramBank)
	s.WriteBytes(m.ram)
}

func (m *mbc5) Load(s *snapshot.State) {
	m.ramEnabled = s.ReadBool()
	m.romBank = s.Read16()
	m.ramBank = s.Read8()
	s.ReadBytes(m.ram)
}
