package hw

import (
	"bytes"
	"testing"

	"gbcore/hw/hwio"
)

func TestOAMDMA(t *testing.T) {
	var sys System
	bus := hwio.NewTable("cpu", &sys)
	wram := make([]byte, 0x2000)
	hram := make([]byte, 0x80)
	bus.MapMemorySlice(0xC000, 0xDFFF, wram, false)
	bus.MapMemorySlice(0xFF80, 0xFFFE, hram, false)

	var oam [0xA0]byte
	dma := NewOAMDMA(bus, oam[:])
	dma.Install(bus)
	dma.Reset()

	for i := range oamDMALen {
		wram[0x100+i] = uint8(i + 1)
	}

	bus.Write8(0xFF46, 0xC1)
	if !dma.Running() || bus.Locked() {
		t.Fatalf("DMA should be in its setup cycle")
	}

	dma.Cycle(1)
	if !bus.Locked() {
		t.Fatalf("bus should be locked during the transfer")
	}
	if got := bus.Read8(0xC000); got != 0xFF {
		t.Errorf("WRAM read during DMA = %02X, want FF", got)
	}
	bus.Write8(0xFF80, 0x42)
	if got := bus.Read8(0xFF80); got != 0x42 {
		t.Errorf("HRAM read during DMA = %02X, want 42", got)
	}

	dma.Cycle(oamDMALen - 1)
	if !dma.Running() {
		t.Fatalf("DMA ended too early")
	}
	dma.Cycle(1)
	if dma.Running() || bus.Locked() {
		t.Fatalf("DMA should be done")
	}
	if !bytes.Equal(oam[:], wram[0x100:0x100+oamDMALen]) {
		t.Errorf("OAM = % X\nwant % X", oam[:], wram[0x100:0x100+oamDMALen])
	}
}

func TestOAMDMAEchoSource(t *testing.T) {
	bus := hwio.NewTable("cpu", nil)
	wram := make([]byte, 0x2000)
	bus.MapMemorySlice(0xC000, 0xDFFF, wram, false)

	var oam [0xA0]byte
	dma := NewOAMDMA(bus, oam[:])
	dma.Install(bus)
	dma.Reset()

	wram[0x1100] = 0x99
	bus.Write8(0xFF46, 0xF1)
	dma.Cycle(1 + oamDMALen)
	if oam[0] != 0x99 {
		t.Errorf("OAM[0] = %02X, want 99 (copied from $D100)", oam[0])
	}
}
