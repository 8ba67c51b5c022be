package cart

import (
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// mbc1 supports up to 2MB of ROM and 32KB of RAM.
type mbc1 struct {
	base

	ramEnabled bool
	bank1      uint8 // 5 bits, 0 reads as 1
	bank2      uint8 // 2 bits, upper rom bits or ram bank
	mode       uint8
}

func (m *mbc1) Install(bus *hwio.Table) {
	m.install(bus, m.readROM, m.writeCtrl, m.readRAM, m.writeRAM)
}

func (m *mbc1) Reset(savedRAM []byte) {
	m.ramEnabled = false
	m.bank1 = 1
	m.bank2 = 0
	m.mode = 0
	m.restoreRAM(savedRAM)
}

func (m *mbc1) readROM(addr uint16) uint8 {
	if addr < 0x4000 {
		bank := 0
		if m.mode == 1 {
			bank = int(m.bank2) << 5
		}
		return m.romByte(bank, addr)
	}
	return m.romByte(int(m.bank2)<<5|int(m.bank1), addr)
}

func (m *mbc1) writeCtrl(addr uint16, val uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = val&0x0F == 0x0A
	case addr < 0x4000:
		m.bank1 = max(val&0x1F, 1)
	case addr < 0x6000:
		m.bank2 = val & 0x03
	default:
		m.mode = val & 0x01
	}
}

func (m *mbc1) ramBank() int {
	if m.mode == 1 {
		return int(m.bank2)
	}
	return 0
}

func (m *mbc1) readRAM(addr uint16) uint8 {
	if !m.ramEnabled {
		return 0xFF
	}
	if off := m.ramOffset(m.ramBank(), addr); off >= 0 {
		return m.ram[off]
	}
	return 0xFF
}

func (m *mbc1) writeRAM(addr uint16, val uint8) {
	if !m.ramEnabled {
		return
	}
	if off := m.ramOffset(m.ramBank(), addr); off >= 0 {
		m.ram[off] = val
	}
}

func (m *mbc1) Save(s *snapshot.State) {
	s.WriteBool(m.ramEnabled)
	s.Write8(m.bank1)
	s.Write8(m.bank2)
	s.Write8(m.mode)
	s.WriteBytes(m.ram)
}

func (m *mbc1) Load(s *snapshot.State) {
	m.ramEnabled = s.ReadBool()
	m.bank1 = s.Read8()
	m.bank2 = s.Read8()
	m.mode = s.Read8()
	s.ReadBytes(m.ram)
}
