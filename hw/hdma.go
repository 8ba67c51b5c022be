package hw

import (
	"gbcore/emu/log"
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// HDMA is the CGB VRAM DMA. A general purpose transfer copies everything at
// once, an HBlank transfer copies 16 bytes at the start of each HBlank. In
// both cases the CPU is stalled while bytes are copied.
type HDMA struct {
	HDMA1 hwio.Reg8
	HDMA2 hwio.Reg8
	HDMA3 hwio.Reg8
	HDMA4 hwio.Reg8
	HDMA5 hwio.Reg8

	bus   *hwio.Table
	video *Video
	clock *Clock

	src    uint16
	dst    uint16
	blocks int // 16-byte blocks left
	hblank bool
}

func NewHDMA(bus *hwio.Table, video *Video, clock *Clock) *HDMA {
	h := &HDMA{bus: bus, video: video, clock: clock}
	video.HBlank = h.onHBlank
	return h
}

func (h *HDMA) Install(bus *hwio.Table) {
	h.HDMA1 = hwio.Reg8{Name: "HDMA1", Flags: hwio.WriteOnlyFlag}
	h.HDMA2 = hwio.Reg8{Name: "HDMA2", Flags: hwio.WriteOnlyFlag}
	h.HDMA3 = hwio.Reg8{Name: "HDMA3", Flags: hwio.WriteOnlyFlag}
	h.HDMA4 = hwio.Reg8{Name: "HDMA4", Flags: hwio.WriteOnlyFlag}
	h.HDMA5 = hwio.Reg8{Name: "HDMA5", ReadCb: h.readHDMA5, PeekCb: h.readHDMA5, WriteCb: h.writeHDMA5}

	bus.MapReg8(0xFF51, &h.HDMA1)
	bus.MapReg8(0xFF52, &h.HDMA2)
	bus.MapReg8(0xFF53, &h.HDMA3)
	bus.MapReg8(0xFF54, &h.HDMA4)
	bus.MapReg8(0xFF55, &h.HDMA5)
}

func (h *HDMA) Reset() {
	h.HDMA1.Value = 0xFF
	h.HDMA2.Value = 0xFF
	h.HDMA3.Value = 0xFF
	h.HDMA4.Value = 0xFF
	h.HDMA5.Value = 0xFF
	h.blocks = 0
	h.hblank = false
}

// Active reports whether an HBlank transfer is in progress.
func (h *HDMA) Active() bool { return h.hblank && h.blocks > 0 }

func (h *HDMA) readHDMA5(uint8) uint8 {
	if h.blocks == 0 {
		return 0xFF
	}
	val := uint8(h.blocks-1) & 0x7F
	if !h.hblank {
		// Cancelled HBlank transfer.
		val |= 0x80
	}
	return val
}

func (h *HDMA) writeHDMA5(_, val uint8) {
	if h.Active() && val&0x80 == 0 {
		log.ModDMA.DebugZ("HDMA cancelled").Int("blocks", h.blocks).End()
		h.hblank = false
		return
	}

	h.src = (uint16(h.HDMA1.Value)<<8 | uint16(h.HDMA2.Value)) & 0xFFF0
	h.dst = 0x8000 | (uint16(h.HDMA3.Value)<<8|uint16(h.HDMA4.Value))&0x1FF0
	h.blocks = int(val&0x7F) + 1
	h.hblank = val&0x80 != 0

	log.ModDMA.DebugZ("start HDMA").
		Hex16("src", h.src).
		Hex16("dst", h.dst).
		Int("blocks", h.blocks).
		Bool("hblank", h.hblank).
		End()

	if h.hblank {
		// Starting during HBlank copies the first block immediately.
		if !h.video.enabled() || h.video.Mode() == ModeHBlank {
			h.copyBlock()
		}
		return
	}
	for h.blocks > 0 {
		h.copyBlock()
	}
}

func (h *HDMA) onHBlank() {
	if h.Active() {
		h.copyBlock()
	}
}

func (h *HDMA) copyBlock() {
	for i := range uint16(16) {
		h.video.WriteVRAMDirect(h.dst+i, h.bus.Peek8(h.src+i))
	}
	h.src += 16
	h.dst = 0x8000 | (h.dst+16)&0x1FFF
	h.blocks--
	if h.dst == 0x8000 {
		// Destination wrapped past the end of VRAM.
		h.blocks = 0
	}
	if h.blocks == 0 {
		h.hblank = false
	}

	stall := 8
	if h.clock.DoubleSpeed() {
		stall = 16
	}
	h.clock.PauseCPU(stall)
}

func (h *HDMA) Save(s *snapshot.State) {
	s.Write8(h.HDMA1.Value)
	s.Write8(h.HDMA2.Value)
	s.Write8(h.HDMA3.Value)
	s.Write8(h.HDMA4.Value)
	s.Write16(h.src)
	s.Write16(h.dst)
	s.Write8(uint8(h.blocks))
	s.WriteBool(h.hblank)
}

func (h *HDMA) Load(s *snapshot.State) {
	h.HDMA1.Value = s.Read8()
	h.HDMA2.Value = s.Read8()
	h.HDMA3.Value = s.Read8()
	h.HDMA4.Value = s.Read8()
	h.src = s.Read16()
	h.dst = s.Read16()
	h.blocks = int(s.Read8())
	h.hblank = s.ReadBool()
}
