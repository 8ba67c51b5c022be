// Package cart implements Game Boy cartridges: header decoding, the ROM-only
// board and the MBC1, MBC2, MBC3 (without RTC) and MBC5 memory bank controllers.
package cart

import (
	"fmt"

	"gbcore/emu/log"
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// A Cartridge maps its ROM on 0x0000-0x7FFF and its RAM on 0xA000-0xBFFF.
// Writes to the ROM area drive the bank controller.
type Cartridge interface {
	Install(bus *hwio.Table)
	// Reset resets the bank controller, and restores savedRAM if not nil.
	Reset(savedRAM []byte)
	Type() Type
	Size() int
	RAM() []byte
	Header() *Header

	Save(s *snapshot.State)
	Load(s *snapshot.State)
}

// New creates the cartridge corresponding to the header of rom.
func New(rom []byte) (Cartridge, error) {
	hdr, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	if len(rom) != hdr.ROMSize {
		return nil, fmt.Errorf("%w: header says %d bytes, got %d", ErrSizeMismatch, hdr.ROMSize, len(rom))
	}

	if sum := headerChecksum(rom); sum != hdr.HeaderChecksum {
		log.ModCart.WarnZ("header checksum mismatch").
			Hex8("computed", sum).
			Hex8("header", hdr.HeaderChecksum).
			End()
	}
	if sum := globalChecksum(rom); sum != hdr.GlobalChecksum {
		log.ModCart.WarnZ("global checksum mismatch").
			Hex16("computed", sum).
			Hex16("header", hdr.GlobalChecksum).
			End()
	}

	b := base{
		rom: rom,
		ram: make([]byte, hdr.RAMSize),
		hdr: hdr,
	}

	var c Cartridge
	switch hdr.Type {
	case ROMOnly:
		c = &romOnly{base: b}
	case MBC1, MBC1RAM, MBC1RAMBattery:
		c = &mbc1{base: b}
	case MBC2, MBC2Battery:
		b.ram = make([]byte, mbc2RAMSize)
		c = &mbc2{base: b}
	case MBC3TimerBattery, MBC3TimerRAMBattery, MBC3, MBC3RAM, MBC3RAMBattery:
		c = &mbc3{base: b}
	case MBC5, MBC5RAM, MBC5RAMBattery, MBC5Rumble, MBC5RumbleRAM, MBC5RumbleRAMBat:
		c = &mbc5{base: b}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, hdr.Type)
	}

	log.ModCart.InfoZ("loaded cartridge").
		String("title", hdr.Title).
		Stringer("type", hdr.Type).
		Int("rom", hdr.ROMSize).
		Int("ram", hdr.RAMSize).
		End()

	c.Reset(nil)
	return c, nil
}

// base holds what all boards share.
type base struct {
	rom []byte
	ram []byte
	hdr *Header

	romDev hwio.Device
	ramDev hwio.Device
}

func (b *base) Type() Type      { return b.hdr.Type }
func (b *base) Size() int       { return len(b.rom) }
func (b *base) RAM() []byte     { return b.ram }
func (b *base) Header() *Header { return b.hdr }

func (b *base) install(bus *hwio.Table, rd func(uint16) uint8, ctrl func(uint16, uint8), ramRd func(uint16) uint8, ramWr func(uint16, uint8)) {
	b.romDev = hwio.Device{Name: "rom", Size: 0x8000, ReadCb: rd, WriteCb: ctrl}
	b.ramDev = hwio.Device{Name: "extram", Size: 0x2000, ReadCb: ramRd, WriteCb: ramWr}
	bus.MapDevice(0x0000, &b.romDev)
	bus.MapDevice(0xA000, &b.ramDev)
}

func (b *base) restoreRAM(saved []byte) {
	clear(b.ram)
	if saved == nil {
		return
	}
	if len(saved) != len(b.ram) {
		log.ModCart.WarnZ("saved ram size mismatch").
			Int("want", len(b.ram)).
			Int("got", len(saved)).
			End()
	}
	copy(b.ram, saved)
}

// romByte reads from the 16KB rom bank, wrapping the bank number on the
// actual rom size.
func (b *base) romByte(bank int, addr uint16) uint8 {
	nbanks := len(b.rom) / 0x4000
	bank %= nbanks
	return b.rom[bank*0x4000+int(addr&0x3FFF)]
}

// ramOffset returns the offset in ram of addr in the given 8KB ram bank, or
// -1 if there's no ram there.
func (b *base) ramOffset(bank int, addr uint16) int {
	if len(b.ram) == 0 {
		return -1
	}
	off := bank*0x2000 + int(addr&0x1FFF)
	return off % len(b.ram)
}
