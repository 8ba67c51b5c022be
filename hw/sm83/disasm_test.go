package sm83

import "testing"

func TestDisasm(t *testing.T) {
	tests := []struct {
		code []byte
		pc   uint16
		want string
	}{
		{code: []byte{0x00}, want: "0100  00        NOP"},
		{code: []byte{0x31, 0xFE, 0xFF}, want: "0100  31 FE FF  LD SP,$FFFE"},
		{code: []byte{0xC3, 0x50, 0x01}, want: "0100  C3 50 01  JP $0150"},
		{code: []byte{0x28, 0x16}, want: "0100  28 16     JR Z,$0118"},
		{code: []byte{0x18, 0xFE}, want: "0100  18 FE     JR $0100"},
		{code: []byte{0x22}, want: "0100  22        LD (HL+),A"},
		{code: []byte{0x3A}, want: "0100  3A        LD A,(HL-)"},
		{code: []byte{0xE0, 0x40}, want: "0100  E0 40     LD (rLCDC),A"},
		{code: []byte{0xF0, 0x80}, want: "0100  F0 80     LD A,($FF80)"},
		{code: []byte{0xE2}, want: "0100  E2        LD ($FF00+C),A"},
		{code: []byte{0xEA, 0xFF, 0xFF}, want: "0100  EA FF FF  LD (rIE),A"},
		{code: []byte{0x08, 0x00, 0xC0}, want: "0100  08 00 C0  LD ($C000),SP"},
		{code: []byte{0xF8, 0xFB}, want: "0100  F8 FB     LD HL,SP-5"},
		{code: []byte{0xE8, 0x02}, want: "0100  E8 02     ADD SP,+2"},
		{code: []byte{0xBE}, want: "0100  BE        CP A,(HL)"},
		{code: []byte{0xD8}, want: "0100  D8        RET C"},
		{code: []byte{0xEF}, want: "0100  EF        RST $28"},
		{code: []byte{0xCB, 0x7C}, want: "0100  CB 7C     BIT 7,H"},
		{code: []byte{0xCB, 0x36}, want: "0100  CB 36     SWAP (HL)"},
		{code: []byte{0xD3}, want: "0100  D3        DB $D3"},
		{code: []byte{0x10, 0x00}, want: "0100  10 00     STOP $00"},
	}

	for _, tt := range tests {
		bus := make(mem, 0x10000)
		copy(bus[0x100:], tt.code)

		got := Disasm(bus, 0x100).String()
		if got != tt.want {
			t.Errorf("Disasm(% X)\ngot:  %q\nwant: %q", tt.code, got, tt.want)
		}
	}
}

func BenchmarkDisasmOpBytes(b *testing.B) {
	const want = `C000  C3 50 01  JP $0150            `

	op := DisasmOp{
		Opcode: "JP",
		Oper:   "$0150",
		Buf:    []byte{0xC3, 0x50, 0x01},
		PC:     0xC000,
	}

	var opbytes []byte
	for range b.N {
		opbytes = op.Bytes()
	}

	if string(opbytes) != want {
		b.Fatalf("\ngot:  \"%s\"\nwant: \"%s\"\n", string(opbytes), want)
	}
}
