// Package sm83 describes the instruction set of the Sharp SM83, the CPU core
// of the Game Boy: the 512 opcode descriptors, the decoder and the
// disassembler.
package sm83

//go:generate go tool stringer -type=Op -trimprefix=Op -output=op_string.go
//go:generate go tool stringer -type=Mode -trimprefix=Mode -output=mode_string.go
//go:generate go tool stringer -type=Cond -trimprefix=Cond -output=cond_string.go

// Op is the operation an instruction performs, independently of its
// operands.
type Op uint8

const (
	OpInvalid Op = iota
	OpNop
	OpLd
	OpLdInc // LD with HL post-increment
	OpLdDec // LD with HL post-decrement
	OpLdHLSP
	OpPush
	OpPop
	OpAdd
	OpAdc
	OpSub
	OpSbc
	OpAnd
	OpXor
	OpOr
	OpCp
	OpInc
	OpDec
	OpAdd16
	OpAddSP
	OpInc16
	OpDec16
	OpDaa
	OpCpl
	OpCcf
	OpScf
	OpRlca
	OpRrca
	OpRla
	OpRra
	OpJr
	OpJp
	OpJpHL
	OpCall
	OpRet
	OpReti
	OpRst
	OpHalt
	OpStop
	OpDi
	OpEi
	OpRlc
	OpRrc
	OpRl
	OpRr
	OpSla
	OpSra
	OpSwap
	OpSrl
	OpBit
	OpRes
	OpSet
)

// Mode is the addressing mode of an operand.
type Mode uint8

const (
	ModeNone     Mode = iota
	ModeImplicit      // value carried by Param (RST vector)
	ModeBit           // bit number carried by Param
	ModeImm8
	ModeImm8IO // ($FF00+n)
	ModeReg8
	ModeReg8IO // ($FF00+C)
	ModeImm16
	ModeImm16Ind8  // byte at (nn)
	ModeImm16Ind16 // word at (nn)
	ModeReg16
	ModeReg16Ind8 // byte at (rr)
	ModeImm8Sign
)

// Width returns the number of instruction bytes the operand occupies.
func (m Mode) Width() uint8 {
	switch m {
	case ModeImm8, ModeImm8IO, ModeImm8Sign:
		return 1
	case ModeImm16, ModeImm16Ind8, ModeImm16Ind16:
		return 2
	}
	return 0
}

// IsMemory reports whether the operand designates a bus location.
func (m Mode) IsMemory() bool {
	switch m {
	case ModeImm8IO, ModeReg8IO, ModeImm16Ind8, ModeImm16Ind16, ModeReg16Ind8:
		return true
	}
	return false
}

// Cond is the condition of a conditional branch.
type Cond uint8

const (
	CondAlways Cond = iota
	CondZ
	CondNZ
	CondC
	CondNC
)

// Reg8 indexes the 8-bit register file. Pairs are stored low byte first so
// that register i of pair p is at 2*p and 2*p+1.
type Reg8 uint8

const (
	F Reg8 = iota
	A
	C
	B
	E
	D
	L
	H
)

var reg8Names = [...]string{"F", "A", "C", "B", "E", "D", "L", "H"}

func (r Reg8) String() string { return reg8Names[r&7] }

// Reg16 indexes register pairs, SP comes last.
type Reg16 uint8

const (
	AF Reg16 = iota
	BC
	DE
	HL
	SP
)

var reg16Names = [...]string{"AF", "BC", "DE", "HL", "SP"}

func (r Reg16) String() string {
	if int(r) < len(reg16Names) {
		return reg16Names[r]
	}
	return "??"
}

// Operand is an operand slot of an instruction descriptor. Param holds a
// register index, a bit number or an RST vector depending on Mode.
type Operand struct {
	Param uint8
	Mode  Mode
}

// Instruction describes one of the 512 opcodes. Opcodes 0x100-0x1FF are the
// CB-prefixed ones. Cycles are M-cycles; for conditional branches it's the
// count when the branch is not taken.
type Instruction struct {
	Opcode uint16
	Op     Op
	Arg1   Operand
	Arg2   Operand
	Cycles uint8
	Len    uint8
	Cond   Cond
}

// Prefixed reports whether the instruction is CB-prefixed.
func (in *Instruction) Prefixed() bool { return in.Opcode >= 0x100 }

// BranchCycles returns the cycles added when a conditional branch is taken.
func (in *Instruction) BranchCycles() uint8 {
	if in.Cond == CondAlways {
		return 0
	}
	switch in.Op {
	case OpJr, OpJp:
		return 1
	case OpCall, OpRet:
		return 3
	}
	return 0
}

// Bus is what the decoder needs to fetch opcodes.
type Bus interface {
	Read8(addr uint16) uint8
}

// Decode reads the opcode at addr and returns its descriptor. The 0xCB prefix
// costs a second read at addr+1. Operands are not fetched.
func Decode(bus Bus, addr uint16) *Instruction {
	code := bus.Read8(addr)
	if code != 0xCB {
		return &Table[code]
	}
	return &Table[0x100|uint16(bus.Read8(addr+1))]
}
