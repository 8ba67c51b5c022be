package sm83

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTableInvariants(t *testing.T) {
	for code, in := range Table {
		if int(in.Opcode) != code {
			t.Errorf("Table[%03X].Opcode = %03X", code, in.Opcode)
		}
		if in.Cycles == 0 {
			t.Errorf("%03X (%s): zero cycles", code, in.Op)
		}
		if in.Arg1.Mode.IsMemory() && in.Arg2.Mode.IsMemory() {
			t.Errorf("%03X (%s): two memory operands", code, in.Op)
		}

		want := 1 + in.Arg1.Mode.Width() + in.Arg2.Mode.Width()
		if code >= 0x100 {
			want = 2
		}
		if in.Len != want {
			t.Errorf("%03X (%s): len %d, want %d", code, in.Op, in.Len, want)
		}
	}
}

// STOP's padding byte is an operand, ignored on execution.
func TestStopOperand(t *testing.T) {
	in := Table[0x10]
	if in.Op != OpStop || in.Len != 2 || in.Arg1.Mode != ModeImm8 || in.Arg2.Mode != ModeNone {
		t.Errorf("STOP descriptor = %+v, want a 2-byte STOP with an Imm8 operand", in)
	}
}

func TestInvalidOpcodes(t *testing.T) {
	var got []uint16
	for code, in := range Table {
		if in.Op == OpInvalid {
			got = append(got, uint16(code))
		}
	}

	want := []uint16{0xCB, 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("invalid opcodes mismatch (-want +got):\n%s", diff)
	}
}

func TestInstructionCycles(t *testing.T) {
	tests := []struct {
		code   uint16
		cycles uint8
		taken  uint8
	}{
		{code: 0x00, cycles: 1},
		{code: 0x01, cycles: 3},
		{code: 0x08, cycles: 5},
		{code: 0x18, cycles: 3},
		{code: 0x20, cycles: 2, taken: 3},
		{code: 0x34, cycles: 3},
		{code: 0x36, cycles: 3},
		{code: 0x46, cycles: 2},
		{code: 0x86, cycles: 2},
		{code: 0xC0, cycles: 2, taken: 5},
		{code: 0xC1, cycles: 3},
		{code: 0xC2, cycles: 3, taken: 4},
		{code: 0xC3, cycles: 4},
		{code: 0xC4, cycles: 3, taken: 6},
		{code: 0xC5, cycles: 4},
		{code: 0xC9, cycles: 4},
		{code: 0xCD, cycles: 6},
		{code: 0xE8, cycles: 4},
		{code: 0xE9, cycles: 1},
		{code: 0xF8, cycles: 3},
		{code: 0xFA, cycles: 4},
		{code: 0xFF, cycles: 4},
		{code: 0x100, cycles: 2},
		{code: 0x106, cycles: 4},
		{code: 0x146, cycles: 3},
		{code: 0x186, cycles: 4},
		{code: 0x1FE, cycles: 4},
	}

	for _, tt := range tests {
		in := &Table[tt.code]
		if in.Cycles != tt.cycles {
			t.Errorf("%03X (%s): cycles = %d, want %d", tt.code, in.Op, in.Cycles, tt.cycles)
		}
		if tt.taken != 0 {
			if got := in.Cycles + in.BranchCycles(); got != tt.taken {
				t.Errorf("%03X (%s): taken cycles = %d, want %d", tt.code, in.Op, got, tt.taken)
			}
		} else if in.BranchCycles() != 0 {
			t.Errorf("%03X (%s): unconditional instruction has branch cycles", tt.code, in.Op)
		}
	}
}

func TestDefPanics(t *testing.T) {
	tests := []struct {
		name string
		f    func()
	}{
		{
			name: "duplicate",
			f:    func() { def(0x00, 1, 1, OpNop, CondAlways, none, none) },
		},
		{
			name: "length",
			f:    func() { def(0xD3, 1, 1, OpLd, CondAlways, reg(A), d8) },
		},
		{
			name: "two memory operands",
			f:    func() { def(0xDB, 1, 2, OpLd, CondAlways, ind(HL), ind(BC)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := Table
			defer func() { Table = saved }()
			defer func() {
				if recover() == nil {
					t.Errorf("def did not panic")
				}
			}()
			tt.f()
		})
	}
}

type mem []byte

func (m mem) Read8(addr uint16) uint8 { return m[addr] }
func (m mem) Peek8(addr uint16) uint8 { return m[addr] }

type countingBus struct {
	mem
	reads int
}

func (b *countingBus) Read8(addr uint16) uint8 {
	b.reads++
	return b.mem[addr]
}

func TestDecode(t *testing.T) {
	bus := &countingBus{mem: make(mem, 0x10000)}
	copy(bus.mem[0x100:], []byte{0x3E, 0x42, 0xCB, 0x7C})

	in := Decode(bus, 0x100)
	if in.Op != OpLd || in.Arg1 != reg(A) || in.Arg2 != d8 {
		t.Errorf("Decode(3E) = %+v", in)
	}
	if bus.reads != 1 {
		t.Errorf("unprefixed decode: %d reads, want 1", bus.reads)
	}

	bus.reads = 0
	in = Decode(bus, 0x102)
	if in.Opcode != 0x17C || in.Op != OpBit || in.Arg1 != bit(7) || in.Arg2 != reg(H) {
		t.Errorf("Decode(CB 7C) = %+v", in)
	}
	if bus.reads != 2 {
		t.Errorf("prefixed decode: %d reads, want 2", bus.reads)
	}
}
