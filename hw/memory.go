package hw

import (
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// Memory holds the work RAM (switchable banks on CGB), its echo, HRAM and the
// few registers that are not owned by a peripheral.
type Memory struct {
	WRAM [8][0x1000]byte
	HRAM [0x80]byte

	SVBK hwio.Reg8
	BOOT hwio.Reg8

	cgb bool

	wram     hwio.Device
	unusable hwio.Device
}

func NewMemory(cgb bool) *Memory {
	return &Memory{cgb: cgb}
}

func (m *Memory) Install(bus *hwio.Table) {
	// Unused I/O registers read 0xFF, peripherals override their own range.
	bus.MapRange(0xFF00, 0xFF7F, hwio.OpenBus)

	m.wram = hwio.Device{
		Name:    "wram",
		Size:    0x2000,
		ReadCb:  m.readWRAM,
		WriteCb: m.writeWRAM,
	}
	bus.MapDevice(0xC000, &m.wram)
	bus.MapRange(0xE000, 0xFDFF, &m.wram) // echo

	m.unusable = hwio.Device{
		Name:   "unusable",
		Size:   0x60,
		ReadCb: func(uint16) uint8 { return 0x00 },
	}
	bus.MapDevice(0xFEA0, &m.unusable)

	bus.MapMem(0xFF80, &hwio.Mem{Name: "hram", Data: m.HRAM[:], VSize: 0x7F})

	m.BOOT = hwio.Reg8{Name: "BOOT", RoMask: 0xFF, Unused: 0xFE}
	bus.MapReg8(0xFF50, &m.BOOT)

	if m.cgb {
		m.SVBK = hwio.Reg8{Name: "SVBK", RoMask: 0xF8, Unused: 0xF8}
		bus.MapReg8(0xFF70, &m.SVBK)
	}
}

func (m *Memory) Reset() {
	for i := range m.WRAM {
		clear(m.WRAM[i][:])
	}
	clear(m.HRAM[:])
	m.SVBK.Value = 0
	// The boot rom is already unmapped.
	m.BOOT.Value = 0x01
}

func (m *Memory) bank(addr uint16) int {
	if addr&0x1000 == 0 {
		return 0
	}
	if !m.cgb {
		return 1
	}
	return max(int(m.SVBK.Value&0x07), 1)
}

func (m *Memory) readWRAM(addr uint16) uint8 {
	return m.WRAM[m.bank(addr)][addr&0x0FFF]
}

func (m *Memory) writeWRAM(addr uint16, val uint8) {
	m.WRAM[m.bank(addr)][addr&0x0FFF] = val
}

func (m *Memory) Save(s *snapshot.State) {
	for i := range m.WRAM {
		s.WriteBytes(m.WRAM[i][:])
	}
	s.WriteBytes(m.HRAM[:])
	s.Write8(m.SVBK.Value)
	s.Write8(m.BOOT.Value)
}

func (m *Memory) Load(s *snapshot.State) {
	for i := range m.WRAM {
		s.ReadBytes(m.WRAM[i][:])
	}
	s.ReadBytes(m.HRAM[:])
	m.SVBK.Value = s.Read8()
	m.BOOT.Value = s.Read8()
}
