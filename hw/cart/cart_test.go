package cart

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"gbcore/hw/hwio"
)

// buildROM returns a rom with a valid header, where the first byte of each
// 16KB bank is the bank number.
func buildROM(tb testing.TB, typ Type, romCode, ramCode uint8) []byte {
	tb.Helper()

	rom := make([]byte, 32*1024<<romCode)
	for bank := 0; bank < len(rom)/0x4000; bank++ {
		rom[bank*0x4000] = uint8(bank)
	}
	copy(rom[0x0134:], "GBCORE TEST")
	rom[0x0147] = uint8(typ)
	rom[0x0148] = romCode
	rom[0x0149] = ramCode
	rom[0x014D] = headerChecksum(rom)
	sum := globalChecksum(rom)
	rom[0x014E] = uint8(sum >> 8)
	rom[0x014F] = uint8(sum)
	return rom
}

func TestParseHeader(t *testing.T) {
	rom := buildROM(t, MBC1RAMBattery, 0x02, 0x03)
	rom[0x0143] = 0x80

	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatal(err)
	}

	want := &Header{
		Title:          "GBCORE TEST",
		CGBFlag:        0x80,
		NewLicensee:    "\x00\x00",
		Type:           MBC1RAMBattery,
		ROMSize:        128 * 1024,
		RAMSize:        32 * 1024,
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: uint16(rom[0x014E])<<8 | uint16(rom[0x014F]),
	}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if !h.CGB() || h.CGBOnly() {
		t.Errorf("CGB() = %t, CGBOnly() = %t", h.CGB(), h.CGBOnly())
	}
	if !h.Type.Battery() {
		t.Errorf("%s should be battery-backed", h.Type)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		rom  []byte
		want error
	}{
		{
			name: "empty",
			rom:  nil,
			want: ErrRomTooSmall,
		},
		{
			name: "truncated header",
			rom:  make([]byte, 0x0140),
			want: ErrRomTooSmall,
		},
		{
			name: "size mismatch",
			rom:  buildROM(t, ROMOnly, 0x00, 0x00)[:0x4000],
			want: ErrSizeMismatch,
		},
		{
			name: "mbc6",
			rom:  buildROM(t, Type(0x20), 0x00, 0x00),
			want: ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rom)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBadChecksumIsNotAnError(t *testing.T) {
	rom := buildROM(t, ROMOnly, 0x00, 0x00)
	rom[0x014D]++

	if _, err := New(rom); err != nil {
		t.Fatalf("New() error = %v", err)
	}
}

type cartBus struct {
	t   *testing.T
	bus *hwio.Table
}

func newCartBus(t *testing.T, c Cartridge) cartBus {
	bus := hwio.NewTable("cart", nil)
	c.Install(bus)
	return cartBus{t: t, bus: bus}
}

func (cb cartBus) wantBank(addr uint16, want uint8) {
	cb.t.Helper()
	if got := cb.bus.Read8(addr); got != want {
		cb.t.Errorf("bank at %04X = %d, want %d", addr, got, want)
	}
}

func TestMBC1Banking(t *testing.T) {
	c, err := New(buildROM(t, MBC1RAM, 0x06, 0x03)) // 2MB, 32KB ram
	if err != nil {
		t.Fatal(err)
	}
	cb := newCartBus(t, c)

	cb.wantBank(0x0000, 0)
	cb.wantBank(0x4000, 1)

	cb.bus.Write8(0x2000, 0x00) // bank 0 selects 1
	cb.wantBank(0x4000, 1)
	cb.bus.Write8(0x2000, 0x12)
	cb.wantBank(0x4000, 0x12)
	cb.bus.Write8(0x4000, 0x02)
	cb.wantBank(0x4000, 0x52)

	// mode 1 maps bank2 on the lower area too.
	cb.wantBank(0x0000, 0)
	cb.bus.Write8(0x6000, 0x01)
	cb.wantBank(0x0000, 0x40)

	// ram is disabled until 0x0A is written.
	cb.bus.Write8(0xA000, 0x42)
	if got := cb.bus.Read8(0xA000); got != 0xFF {
		t.Errorf("disabled ram read = %02X, want FF", got)
	}
	cb.bus.Write8(0x0000, 0x0A)
	cb.bus.Write8(0xA000, 0x42)
	if got := c.RAM()[2*0x2000]; got != 0x42 {
		t.Errorf("ram bank 2 = %02X, want 42", got)
	}
}

func TestMBC2Banking(t *testing.T) {
	c, err := New(buildROM(t, MBC2Battery, 0x03, 0x00)) // 256KB
	if err != nil {
		t.Fatal(err)
	}
	if len(c.RAM()) != 512 {
		t.Fatalf("ram size = %d, want 512", len(c.RAM()))
	}
	cb := newCartBus(t, c)

	cb.wantBank(0x4000, 1)
	cb.bus.Write8(0x2100, 0x0B)
	cb.wantBank(0x4000, 0x0B)
	cb.bus.Write8(0x0100, 0x00)
	cb.wantBank(0x4000, 1)
	cb.bus.Write8(0x2100, 0xF3) // upper bits ignored
	cb.wantBank(0x4000, 3)

	// Bit 8 clear: ram enable, the rom bank is left alone.
	if got := cb.bus.Read8(0xA000); got != 0xFF {
		t.Errorf("disabled ram read = %02X, want FF", got)
	}
	cb.bus.Write8(0x2000, 0x0A)
	cb.wantBank(0x4000, 3)

	cb.bus.Write8(0xA005, 0x5C)
	if got := c.RAM()[5]; got != 0x0C {
		t.Errorf("ram[5] = %02X, want 0C", got)
	}
	if got := cb.bus.Read8(0xA005); got != 0xFC {
		t.Errorf("ram read = %02X, want FC", got)
	}
	// 512 bytes mirrored over A000-BFFF.
	if got := cb.bus.Read8(0xBE05); got != 0xFC {
		t.Errorf("mirrored ram read = %02X, want FC", got)
	}

	cb.bus.Write8(0x0000, 0x00)
	if got := cb.bus.Read8(0xA005); got != 0xFF {
		t.Errorf("ram read after disable = %02X, want FF", got)
	}

	// Battery ram goes through RAM/Reset.
	saved := slices.Clone(c.RAM())
	c.Reset(saved)
	cb.bus.Write8(0x0000, 0x0A)
	if got := cb.bus.Read8(0xA005); got != 0xFC {
		t.Errorf("restored ram read = %02X, want FC", got)
	}
	if !c.Type().Battery() {
		t.Errorf("%s should be battery-backed", c.Type())
	}
}

func TestMBC3Banking(t *testing.T) {
	c, err := New(buildROM(t, MBC3RAMBattery, 0x06, 0x03))
	if err != nil {
		t.Fatal(err)
	}
	cb := newCartBus(t, c)

	cb.bus.Write8(0x2000, 0x45)
	cb.wantBank(0x4000, 0x45)
	cb.bus.Write8(0x2000, 0x00)
	cb.wantBank(0x4000, 1)

	cb.bus.Write8(0x0000, 0x0A)
	cb.bus.Write8(0x4000, 0x03)
	cb.bus.Write8(0xBFFF, 0x99)
	if got := c.RAM()[0x7FFF]; got != 0x99 {
		t.Errorf("ram bank 3 last byte = %02X, want 99", got)
	}

	// rtc registers are not emulated.
	cb.bus.Write8(0x4000, 0x08)
	if got := cb.bus.Read8(0xA000); got != 0xFF {
		t.Errorf("rtc register read = %02X, want FF", got)
	}
}

func TestMBC5Banking(t *testing.T) {
	c, err := New(buildROM(t, MBC5RAM, 0x08, 0x04)) // 8MB, 128KB ram
	if err != nil {
		t.Fatal(err)
	}
	cb := newCartBus(t, c)

	cb.bus.Write8(0x2000, 0x00)
	cb.wantBank(0x4000, 0)
	cb.bus.Write8(0x2000, 0x34)
	cb.bus.Write8(0x3000, 0x01)
	cb.wantBank(0x4000, 0x34) // bank 0x134, low byte only

	cb.bus.Write8(0x0000, 0x0A)
	cb.bus.Write8(0x4000, 0x0F)
	cb.bus.Write8(0xA001, 0x77)
	if got := c.RAM()[15*0x2000+1]; got != 0x77 {
		t.Errorf("ram bank 15 = %02X, want 77", got)
	}
}

func TestResetRestoresRAM(t *testing.T) {
	c, err := New(buildROM(t, MBC1RAMBattery, 0x01, 0x02))
	if err != nil {
		t.Fatal(err)
	}

	saved := make([]byte, 8*1024)
	saved[0x123] = 0xAB
	c.Reset(saved)

	if diff := cmp.Diff(saved, c.RAM()); diff != "" {
		t.Errorf("ram mismatch (-want +got):\n%s", diff)
	}
}

func TestReadROMFromZip(t *testing.T) {
	rom := buildROM(t, ROMOnly, 0x00, 0x00)

	path := filepath.Join(t.TempDir(), "game.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	readme, _ := zw.Create("README.txt")
	readme.Write([]byte("hello"))
	w, _ := zw.Create("game.gb")
	w.Write(rom)
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got, err := ReadROM(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rom, got); diff != "" {
		t.Errorf("rom mismatch (-want +got):\n%s", diff)
	}
}

func TestSavePath(t *testing.T) {
	if got := SavePath("/roms/tetris.gb"); got != "/roms/tetris.sav" {
		t.Errorf("SavePath() = %q", got)
	}
}
