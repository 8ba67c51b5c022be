package sm83

import "fmt"

// Table holds the descriptors of all opcodes, indexed by opcode for
// unprefixed instructions and by 0x100+opcode for CB-prefixed ones.
var Table [512]Instruction

var (
	none = Operand{}
	d8   = Operand{Mode: ModeImm8}
	d16  = Operand{Mode: ModeImm16}
	s8   = Operand{Mode: ModeImm8Sign}
	a8   = Operand{Mode: ModeImm8IO}
	a16  = Operand{Mode: ModeImm16Ind8}
	a16w = Operand{Mode: ModeImm16Ind16}
	ioC  = Operand{Mode: ModeReg8IO, Param: uint8(C)}
)

func reg(r Reg8) Operand   { return Operand{Mode: ModeReg8, Param: uint8(r)} }
func pair(r Reg16) Operand { return Operand{Mode: ModeReg16, Param: uint8(r)} }
func ind(r Reg16) Operand  { return Operand{Mode: ModeReg16Ind8, Param: uint8(r)} }
func bit(n int) Operand    { return Operand{Mode: ModeBit, Param: uint8(n)} }
func rst(v int) Operand    { return Operand{Mode: ModeImplicit, Param: uint8(v)} }

// r8 follows the register encoding of the opcode bits: B C D E H L (HL) A.
var r8 = [8]Operand{reg(B), reg(C), reg(D), reg(E), reg(H), reg(L), ind(HL), reg(A)}

// Pair encoding of the opcode bits, with AF in place of SP for PUSH/POP.
var (
	rr   = [4]Reg16{BC, DE, HL, SP}
	rrAF = [4]Reg16{BC, DE, HL, AF}
)

var conds = [4]Cond{CondNZ, CondZ, CondNC, CondC}

// def assigns the descriptor of an opcode. Assigning an opcode twice or
// giving a length not matching the operand widths are table bugs and panic.
func def(code uint16, length, cycles uint8, op Op, cond Cond, arg1, arg2 Operand) {
	if Table[code].Op != OpInvalid {
		panic(fmt.Sprintf("opcode %03X defined twice (%s and %s)", code, Table[code].Op, op))
	}
	want := 1 + arg1.Mode.Width() + arg2.Mode.Width()
	if code >= 0x100 {
		want++
	}
	if length != want {
		panic(fmt.Sprintf("opcode %03X (%s): length %d, operands need %d", code, op, length, want))
	}
	if arg1.Mode.IsMemory() && arg2.Mode.IsMemory() {
		panic(fmt.Sprintf("opcode %03X (%s): two memory operands", code, op))
	}
	Table[code] = Instruction{
		Opcode: code,
		Op:     op,
		Arg1:   arg1,
		Arg2:   arg2,
		Cycles: cycles,
		Len:    length,
		Cond:   cond,
	}
}

func init() {
	for i := range Table {
		Table[i] = Instruction{Opcode: uint16(i), Op: OpInvalid, Len: 1, Cycles: 1}
	}
	for i := 0x100; i < 0x200; i++ {
		Table[i].Len = 2
	}
	defineBase()
	defineCB()
}

func defineBase() {
	const always = CondAlways

	def(0x00, 1, 1, OpNop, always, none, none)
	def(0x10, 2, 1, OpStop, always, d8, none) // the operand is ignored
	def(0x76, 1, 1, OpHalt, always, none, none)
	def(0xF3, 1, 1, OpDi, always, none, none)
	def(0xFB, 1, 1, OpEi, always, none, none)

	def(0x07, 1, 1, OpRlca, always, none, none)
	def(0x0F, 1, 1, OpRrca, always, none, none)
	def(0x17, 1, 1, OpRla, always, none, none)
	def(0x1F, 1, 1, OpRra, always, none, none)
	def(0x27, 1, 1, OpDaa, always, none, none)
	def(0x2F, 1, 1, OpCpl, always, none, none)
	def(0x37, 1, 1, OpScf, always, none, none)
	def(0x3F, 1, 1, OpCcf, always, none, none)

	// 16-bit loads and arithmetic, one row per pair.
	for i, r := range rr {
		row := uint16(i) << 4
		def(0x01|row, 3, 3, OpLd, always, pair(r), d16)
		def(0x03|row, 1, 2, OpInc16, always, pair(r), none)
		def(0x09|row, 1, 2, OpAdd16, always, pair(HL), pair(r))
		def(0x0B|row, 1, 2, OpDec16, always, pair(r), none)
		def(0xC1|row, 1, 3, OpPop, always, pair(rrAF[i]), none)
		def(0xC5|row, 1, 4, OpPush, always, pair(rrAF[i]), none)
	}

	def(0x02, 1, 2, OpLd, always, ind(BC), reg(A))
	def(0x12, 1, 2, OpLd, always, ind(DE), reg(A))
	def(0x22, 1, 2, OpLdInc, always, ind(HL), reg(A))
	def(0x32, 1, 2, OpLdDec, always, ind(HL), reg(A))
	def(0x0A, 1, 2, OpLd, always, reg(A), ind(BC))
	def(0x1A, 1, 2, OpLd, always, reg(A), ind(DE))
	def(0x2A, 1, 2, OpLdInc, always, reg(A), ind(HL))
	def(0x3A, 1, 2, OpLdDec, always, reg(A), ind(HL))

	def(0x08, 3, 5, OpLd, always, a16w, pair(SP))
	def(0xE0, 2, 3, OpLd, always, a8, reg(A))
	def(0xF0, 2, 3, OpLd, always, reg(A), a8)
	def(0xE2, 1, 2, OpLd, always, ioC, reg(A))
	def(0xF2, 1, 2, OpLd, always, reg(A), ioC)
	def(0xEA, 3, 4, OpLd, always, a16, reg(A))
	def(0xFA, 3, 4, OpLd, always, reg(A), a16)
	def(0xF8, 2, 3, OpLdHLSP, always, pair(HL), s8)
	def(0xF9, 1, 2, OpLd, always, pair(SP), pair(HL))
	def(0xE8, 2, 4, OpAddSP, always, pair(SP), s8)

	// 8-bit INC/DEC/LD r,d8, one column per register.
	for i, r := range r8 {
		col := uint16(i) << 3
		var mem uint8
		if r.Mode.IsMemory() {
			mem = 1
		}
		def(0x04|col, 1, 1+2*mem, OpInc, always, r, none)
		def(0x05|col, 1, 1+2*mem, OpDec, always, r, none)
		def(0x06|col, 2, 2+mem, OpLd, always, r, d8)
	}

	// LD r,r' block, 0x76 being HALT.
	for dst := range 8 {
		for src := range 8 {
			code := uint16(0x40 | dst<<3 | src)
			if code == 0x76 {
				continue
			}
			var cycles uint8 = 1
			if r8[dst].Mode.IsMemory() || r8[src].Mode.IsMemory() {
				cycles = 2
			}
			def(code, 1, cycles, OpLd, always, r8[dst], r8[src])
		}
	}

	// ALU block and its immediate forms.
	alu := [8]Op{OpAdd, OpAdc, OpSub, OpSbc, OpAnd, OpXor, OpOr, OpCp}
	for i, op := range alu {
		for src := range 8 {
			var cycles uint8 = 1
			if r8[src].Mode.IsMemory() {
				cycles = 2
			}
			def(uint16(0x80|i<<3|src), 1, cycles, op, always, reg(A), r8[src])
		}
		def(uint16(0xC6|i<<3), 2, 2, op, always, reg(A), d8)
	}

	// Control flow.
	def(0x18, 2, 3, OpJr, always, s8, none)
	def(0xC3, 3, 4, OpJp, always, d16, none)
	def(0xE9, 1, 1, OpJpHL, always, pair(HL), none)
	def(0xCD, 3, 6, OpCall, always, d16, none)
	def(0xC9, 1, 4, OpRet, always, none, none)
	def(0xD9, 1, 4, OpReti, always, none, none)
	for i, cc := range conds {
		row := uint16(i) << 3
		def(0x20|row, 2, 2, OpJr, cc, s8, none)
		def(0xC0|row, 1, 2, OpRet, cc, none, none)
		def(0xC2|row, 3, 3, OpJp, cc, d16, none)
		def(0xC4|row, 3, 3, OpCall, cc, d16, none)
	}
	for i := range 8 {
		def(uint16(0xC7|i<<3), 1, 4, OpRst, always, rst(i<<3), none)
	}
}

func defineCB() {
	rot := [8]Op{OpRlc, OpRrc, OpRl, OpRr, OpSla, OpSra, OpSwap, OpSrl}
	for i, op := range rot {
		for src := range 8 {
			var cycles uint8 = 2
			if r8[src].Mode.IsMemory() {
				cycles = 4
			}
			def(uint16(0x100|i<<3|src), 2, cycles, op, CondAlways, r8[src], none)
		}
	}

	for b := range 8 {
		for src := range 8 {
			var bitc, rmw uint8 = 2, 2
			if r8[src].Mode.IsMemory() {
				bitc, rmw = 3, 4
			}
			def(uint16(0x140|b<<3|src), 2, bitc, OpBit, CondAlways, bit(b), r8[src])
			def(uint16(0x180|b<<3|src), 2, rmw, OpRes, CondAlways, bit(b), r8[src])
			def(uint16(0x1C0|b<<3|src), 2, rmw, OpSet, CondAlways, bit(b), r8[src])
		}
	}
}
