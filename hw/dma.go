package hw

import (
	"gbcore/emu/log"
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// OAMDMA copies 160 bytes from page XX00 to OAM, one byte per M-cycle, after
// a setup cycle. The CPU bus is locked (only HRAM and IE are reachable)
// while the copy runs.
type OAMDMA struct {
	DMA hwio.Reg8

	bus *hwio.Table
	oam []byte

	setup   bool
	running bool
	src     uint16
	idx     int
}

const oamDMALen = 0xA0

func NewOAMDMA(bus *hwio.Table, oam []byte) *OAMDMA {
	return &OAMDMA{bus: bus, oam: oam}
}

func (dma *OAMDMA) Install(bus *hwio.Table) {
	dma.DMA = hwio.Reg8{Name: "DMA", WriteCb: dma.writeDMA}
	bus.MapReg8(0xFF46, &dma.DMA)
}

func (dma *OAMDMA) Reset() {
	dma.DMA.Value = 0xFF
	dma.setup = false
	dma.running = false
	dma.idx = 0
	dma.bus.Unlock()
}

// Running reports whether a transfer is in progress.
func (dma *OAMDMA) Running() bool { return dma.setup || dma.running }

func (dma *OAMDMA) writeDMA(_, val uint8) {
	log.ModDMA.DebugZ("start OAM DMA transfer").Hex8("page", val).End()

	dma.src = uint16(val) << 8
	if dma.src >= 0xE000 {
		// Above WRAM, the source wraps to its echo.
		dma.src -= 0x2000
	}
	dma.idx = 0
	dma.setup = true
}

func (dma *OAMDMA) Cycle(n int) {
	for range n {
		switch {
		case dma.setup:
			dma.setup = false
			dma.running = true
			dma.bus.Lock()
		case dma.running:
			dma.oam[dma.idx] = dma.bus.Peek8(dma.src + uint16(dma.idx))
			dma.idx++
			if dma.idx == oamDMALen {
				dma.running = false
				dma.bus.Unlock()
				log.ModDMA.DebugZ("OAM DMA transfer done").End()
			}
		default:
			return
		}
	}
}

func (dma *OAMDMA) Save(s *snapshot.State) {
	s.Write8(dma.DMA.Value)
	s.WriteBool(dma.setup)
	s.WriteBool(dma.running)
	s.Write16(dma.src)
	s.Write8(uint8(dma.idx))
}

func (dma *OAMDMA) Load(s *snapshot.State) {
	dma.DMA.Value = s.Read8()
	dma.setup = s.ReadBool()
	dma.running = s.ReadBool()
	dma.src = s.Read16()
	dma.idx = int(s.Read8())
	if dma.running {
		dma.bus.Lock()
	} else {
		dma.bus.Unlock()
	}
}
