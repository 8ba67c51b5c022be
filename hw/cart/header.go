package cart

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRomTooSmall     = errors.New("rom too small to contain a header")
	ErrSizeMismatch    = errors.New("rom size mismatch")
	ErrUnsupportedType = errors.New("unsupported cartridge type")
)

const headerEnd = 0x0150

// Type is the cartridge type byte at 0x0147.
type Type uint8

const (
	ROMOnly             Type = 0x00
	MBC1                Type = 0x01
	MBC1RAM             Type = 0x02
	MBC1RAMBattery      Type = 0x03
	MBC2                Type = 0x05
	MBC2Battery         Type = 0x06
	MBC3TimerBattery    Type = 0x0F
	MBC3TimerRAMBattery Type = 0x10
	MBC3                Type = 0x11
	MBC3RAM             Type = 0x12
	MBC3RAMBattery      Type = 0x13
	MBC5                Type = 0x19
	MBC5RAM             Type = 0x1A
	MBC5RAMBattery      Type = 0x1B
	MBC5Rumble          Type = 0x1C
	MBC5RumbleRAM       Type = 0x1D
	MBC5RumbleRAMBat    Type = 0x1E
)

var typeNames = map[Type]string{
	ROMOnly:             "ROM ONLY",
	MBC1:                "MBC1",
	MBC1RAM:             "MBC1+RAM",
	MBC1RAMBattery:      "MBC1+RAM+BATTERY",
	MBC2:                "MBC2",
	MBC2Battery:         "MBC2+BATTERY",
	MBC3TimerBattery:    "MBC3+TIMER+BATTERY",
	MBC3TimerRAMBattery: "MBC3+TIMER+RAM+BATTERY",
	MBC3:                "MBC3",
	MBC3RAM:             "MBC3+RAM",
	MBC3RAMBattery:      "MBC3+RAM+BATTERY",
	MBC5:                "MBC5",
	MBC5RAM:             "MBC5+RAM",
	MBC5RAMBattery:      "MBC5+RAM+BATTERY",
	MBC5Rumble:          "MBC5+RUMBLE",
	MBC5RumbleRAM:       "MBC5+RUMBLE+RAM",
	MBC5RumbleRAMBat:    "MBC5+RUMBLE+RAM+BATTERY",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("unknown(0x%02X)", uint8(t))
}

// Battery reports whether the cartridge RAM is battery-backed.
func (t Type) Battery() bool {
	switch t {
	case MBC1RAMBattery, MBC2Battery, MBC3TimerBattery, MBC3TimerRAMBattery, MBC3RAMBattery,
		MBC5RAMBattery, MBC5RumbleRAMBat:
		return true
	}
	return false
}

// Header holds the decoded cartridge header (0x0100-0x014F).
type Header struct {
	Title          string
	CGBFlag        uint8
	NewLicensee    string
	SGBFlag        uint8
	Type           Type
	ROMSize        int // in bytes
	RAMSize        int // in bytes
	Destination    uint8
	OldLicensee    uint8
	Version        uint8
	HeaderChecksum uint8
	GlobalChecksum uint16
}

// CGB reports whether the game supports CGB functions.
func (h *Header) CGB() bool { return h.CGBFlag&0x80 != 0 }

// CGBOnly reports whether the game only runs on a CGB.
func (h *Header) CGBOnly() bool { return h.CGBFlag == 0xC0 }

func (h *Header) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "title:    %s\n", h.Title)
	fmt.Fprintf(&sb, "type:     %s\n", h.Type)
	fmt.Fprintf(&sb, "rom size: %dKB\n", h.ROMSize/1024)
	fmt.Fprintf(&sb, "ram size: %dKB\n", h.RAMSize/1024)
	fmt.Fprintf(&sb, "cgb:      %02X\n", h.CGBFlag)
	fmt.Fprintf(&sb, "sgb:      %02X\n", h.SGBFlag)
	fmt.Fprintf(&sb, "version:  %d\n", h.Version)
	fmt.Fprintf(&sb, "checksum: %02X (global %04X)", h.HeaderChecksum, h.GlobalChecksum)
	return sb.String()
}

// ParseHeader decodes the cartridge header of rom.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd {
		return nil, fmt.Errorf("%w: %d bytes", ErrRomTooSmall, len(rom))
	}

	h := &Header{
		CGBFlag:        rom[0x0143],
		NewLicensee:    string(rom[0x0144:0x0146]),
		SGBFlag:        rom[0x0146],
		Type:           Type(rom[0x0147]),
		Destination:    rom[0x014A],
		OldLicensee:    rom[0x014B],
		Version:        rom[0x014C],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
	}

	// The title shrinks to 15 bytes (or 11) when the CGB flag is used.
	title := rom[0x0134:0x0144]
	if h.CGBFlag&0x80 != 0 {
		title = title[:15]
	}
	h.Title = strings.TrimRight(string(title), "\x00 ")

	code := rom[0x0148]
	if code > 0x08 {
		return nil, fmt.Errorf("%w: invalid rom size code 0x%02X", ErrSizeMismatch, code)
	}
	h.ROMSize = 32 * 1024 << code

	switch rom[0x0149] {
	case 0x00, 0x01:
		h.RAMSize = 0
	case 0x02:
		h.RAMSize = 8 * 1024
	case 0x03:
		h.RAMSize = 32 * 1024
	case 0x04:
		h.RAMSize = 128 * 1024
	case 0x05:
		h.RAMSize = 64 * 1024
	default:
		return nil, fmt.Errorf("invalid ram size code 0x%02X", rom[0x0149])
	}
	return h, nil
}

// headerChecksum computes the checksum of bytes 0x0134-0x014C.
func headerChecksum(rom []byte) uint8 {
	var sum uint8
	for _, b := range rom[0x0134:0x014D] {
		sum = sum - b - 1
	}
	return sum
}

// globalChecksum sums all bytes but the global checksum itself.
func globalChecksum(rom []byte) uint16 {
	var sum uint16
	for i, b := range rom {
		if i == 0x014E || i == 0x014F {
			continue
		}
		sum += uint16(b)
	}
	return sum
}
