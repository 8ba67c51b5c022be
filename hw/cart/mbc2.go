package cart

import (
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// MBC2 has 512 half-bytes of built-in RAM, whatever the header says.
const mbc2RAMSize = 512

// mbc2 supports up to 256KB of ROM. Address bit 8 selects, on writes to
// 0000-3FFF, between RAM enable (clear) and ROM bank (set).
type mbc2 struct {
	base

	ramEnabled bool
	romBank    uint8 // 4 bits, 0 reads as 1
}

func (m *mbc2) Install(bus *hwio.Table) {
	m.install(bus, m.readROM, m.writeCtrl, m.readRAM, m.writeRAM)
}

func (m *mbc2) Reset(savedRAM []byte) {
	m.ramEnabled = false
	m.romBank = 1
	m.restoreRAM(savedRAM)
}

func (m *mbc2) readROM(addr uint16) uint8 {
	if addr < 0x4000 {
		return m.romByte(0, addr)
	}
	return m.romByte(int(m.romBank), addr)
}

func (m *mbc2) writeCtrl(addr uint16, val uint8) {
	if addr >= 0x4000 {
		return
	}
	if addr&0x0100 != 0 {
		m.romBank = max(val&0x0F, 1)
		return
	}
	m.ramEnabled = val&0x0F == 0x0A
}

// The RAM is mirrored over A000-BFFF, the upper nibble reads as 1s.
func (m *mbc2) readRAM(addr uint16) uint8 {
	if !m.ramEnabled {
		return 0xFF
	}
	return m.ram[addr&(mbc2RAMSize-1)] | 0xF0
}

func (m *mbc2) writeRAM(addr uint16, val uint8) {
	if !m.ramEnabled {
		return
	}
	m.ram[addr&(mbc2RAMSize-1)] = val & 0x0F
}

func (m *mbc2) Save(s *snapshot.State) {
	s.WriteBool(m.ramEnabled)
	s.Write8(m.romBank)
	s.WriteBytes(m.ram)
}

func (m *mbc2) Load(s *snapshot.State) {
	m.ramEnabled = s.ReadBool()
	m.romBank = s.Read8()
	s.ReadBytes(m.ram)
}
