package cart

import (
	"gbcore/emu/log"
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// mbc3 supports up to 2MB of ROM and 32KB of RAM. The real time clock is not
// emulated: its registers read 0xFF and ignore writes.
type mbc3 struct {
	base

	ramEnabled bool
	romBank    uint8 // 7 bits, 0 reads as 1
	ramBank    uint8 // 0-3, or 0x08-0x0C for rtc registers
}

func (m *mbc3) Install(bus *hwio.Table) {
	m.install(bus, m.readROM, m.writeCtrl, m.readRAM, m.writeRAM)
}

func (m *mbc3) Reset(savedRAM []byte) {
	m.ramEnabled = false
	m.romBank = 1
	m.ramBank = 0
	m.restoreRAM(savedRAM)
}

func (m *mbc3) readROM(addr uint16) uint8 {
	if addr < 0x4000 {
		return m.romByte(0, addr)
	}
	return m.romByte(int(m.romBank), addr)
}

func (m *mbc3) writeCtrl(addr uint16, val uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = val&0x0F == 0x0A
	case addr < 0x4000:
		m.romBank = max(val&0x7F, 1)
	case addr < 0x6000:
		m.ramBank = val & 0x0F
		if m.ramBank >= 0x08 {
			log.ModCart.DebugZ("mbc3 rtc register selected").
				Hex8("reg", m.ramBank).
				End()
		}
	default:
		// rtc latch
	}
}

func (m *mbc3) readRAM(addr uint16) uint8 {
	if !m.ramEnabled || m.ramBank > 3 {
		return 0xFF
	}
	if off := m.ramOffset(int(m.ramBank), addr); off >= 0 {
		return m.ram[off]
	}
	return 0xFF
}

func (m *mbc3) writeRAM(addr uint16, val uint8) {
	if !m.ramEnabled || m.ramBank > 3 {
		return
	}
	if off := m.ramOffset(int(m.ramBank), addr); off >= 0 {
		m.ram[off] = val
	}
}

func (m *mbc3) Save(s *snapshot.State) {
	s.WriteBool(m.ramEnabled)
	s.Write8(m.romBank)
	s.Write8(m.ramBank)
	s.WriteBytes(m.ram)
}

func (m *mbc3) Load(s *snapshot.State) {
	m.ramEnabled = s.ReadBool()
	m.romBank = s.Read8()
	m.ramBank = s.Read8()
	s.ReadBytes(m.ram)
}
