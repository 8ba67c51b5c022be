package sm83

import (
	"fmt"
	"strings"
)

// DisasmOp is a disassembled instruction.
type DisasmOp struct {
	Opcode string // mnemonic
	Oper   string // operands, comma-separated
	Buf    []byte // instruction bytes
	PC     uint16
}

func (d DisasmOp) String() string {
	return strings.TrimRight(string(d.Bytes()), " ")
}

// Bytes returns the fixed-width text representation of a DisasmOp, this is
// the optimized version used by the execution tracer.
func (d DisasmOp) Bytes() []byte {
	const totalLen = 36
	buf := make([]byte, totalLen)

	hexEncode(buf[0:], byte(d.PC>>8))
	hexEncode(buf[2:], byte(d.PC))
	buf[4] = ' '
	buf[5] = ' '

	off := 6
	for i := range d.Buf {
		hexEncode(buf[off:], d.Buf[i])
		buf[off+2] = ' '
		off += 3
	}

	for ; off < 16; off++ {
		buf[off] = ' '
	}

	off += copy(buf[off:], d.Opcode)
	if d.Oper != "" {
		buf[off] = ' '
		off++
	}

	buf = append(buf[:off], d.Oper...)
	off += len(d.Oper)
	if len(buf) > totalLen {
		buf = append(buf, ' ')
	} else {
		buf = buf[:totalLen]
		for i := off; i < totalLen; i++ {
			buf[i] = ' '
		}
	}

	return buf
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

// Peeker reads memory without side effects.
type Peeker interface {
	Peek8(addr uint16) uint8
}

var mnemonics = [...]string{
	OpInvalid: "DB",
	OpNop:     "NOP",
	OpLd:      "LD",
	OpLdInc:   "LD",
	OpLdDec:   "LD",
	OpLdHLSP:  "LD",
	OpPush:    "PUSH",
	OpPop:     "POP",
	OpAdd:     "ADD",
	OpAdc:     "ADC",
	OpSub:     "SUB",
	OpSbc:     "SBC",
	OpAnd:     "AND",
	OpXor:     "XOR",
	OpOr:      "OR",
	OpCp:      "CP",
	OpInc:     "INC",
	OpDec:     "DEC",
	OpAdd16:   "ADD",
	OpAddSP:   "ADD",
	OpInc16:   "INC",
	OpDec16:   "DEC",
	OpDaa:     "DAA",
	OpCpl:     "CPL",
	OpCcf:     "CCF",
	OpScf:     "SCF",
	OpRlca:    "RLCA",
	OpRrca:    "RRCA",
	OpRla:     "RLA",
	OpRra:     "RRA",
	OpJr:      "JR",
	OpJp:      "JP",
	OpJpHL:    "JP",
	OpCall:    "CALL",
	OpRet:     "RET",
	OpReti:    "RETI",
	OpRst:     "RST",
	OpHalt:    "HALT",
	OpStop:    "STOP",
	OpDi:      "DI",
	OpEi:      "EI",
	OpRlc:     "RLC",
	OpRrc:     "RRC",
	OpRl:      "RL",
	OpRr:      "RR",
	OpSla:     "SLA",
	OpSra:     "SRA",
	OpSwap:    "SWAP",
	OpSrl:     "SRL",
	OpBit:     "BIT",
	OpRes:     "RES",
	OpSet:     "SET",
}

// Mnemonic returns the assembler mnemonic of op.
func (op Op) Mnemonic() string {
	if int(op) < len(mnemonics) {
		return mnemonics[op]
	}
	return "??"
}

// Disasm disassembles the instruction at addr. Memory is only peeked so it
// can be called at any time without disturbing the machine.
func Disasm(bus Peeker, addr uint16) DisasmOp {
	code := uint16(bus.Peek8(addr))
	if code == 0xCB {
		code = 0x100 | uint16(bus.Peek8(addr+1))
	}
	in := &Table[code]

	d := DisasmOp{
		PC:     addr,
		Opcode: in.Op.Mnemonic(),
		Buf:    make([]byte, in.Len),
	}
	for i := range d.Buf {
		d.Buf[i] = bus.Peek8(addr + uint16(i))
	}

	if in.Op == OpInvalid {
		d.Oper = fmt.Sprintf("$%02X", d.Buf[0])
		return d
	}

	// Immediate operands follow the opcode.
	imm := d.Buf[1:]
	if in.Prefixed() {
		imm = nil
	}

	var opers []string
	if in.Cond != CondAlways {
		opers = append(opers, in.Cond.String())
	}
	for _, arg := range [2]Operand{in.Arg1, in.Arg2} {
		if arg.Mode == ModeNone {
			continue
		}
		opers = append(opers, formatOperand(in, arg, addr, imm))
	}
	d.Oper = strings.Join(opers, ",")
	return d
}

func formatOperand(in *Instruction, arg Operand, pc uint16, imm []byte) string {
	switch arg.Mode {
	case ModeImplicit:
		return fmt.Sprintf("$%02X", arg.Param)
	case ModeBit:
		return fmt.Sprintf("%d", arg.Param)
	case ModeReg8:
		return Reg8(arg.Param).String()
	case ModeReg8IO:
		return "($FF00+C)"
	case ModeReg16:
		return Reg16(arg.Param).String()
	case ModeReg16Ind8:
		switch in.Op {
		case OpLdInc:
			return "(HL+)"
		case OpLdDec:
			return "(HL-)"
		}
		return "(" + Reg16(arg.Param).String() + ")"
	case ModeImm8:
		return fmt.Sprintf("$%02X", imm[0])
	case ModeImm8IO:
		return "(" + formatAddr(0xFF00|uint16(imm[0])) + ")"
	case ModeImm16:
		return fmt.Sprintf("$%04X", uint16(imm[1])<<8|uint16(imm[0]))
	case ModeImm16Ind8, ModeImm16Ind16:
		return "(" + formatAddr(uint16(imm[1])<<8|uint16(imm[0])) + ")"
	case ModeImm8Sign:
		off := int8(imm[0])
		switch in.Op {
		case OpJr:
			return fmt.Sprintf("$%04X", pc+uint16(in.Len)+uint16(off))
		case OpLdHLSP:
			return fmt.Sprintf("SP%+d", off)
		}
		return fmt.Sprintf("%+d", off)
	}
	panic(fmt.Sprintf("unexpected addressing mode %s", arg.Mode))
}

var addressLabels = map[uint16]string{
	0xFF00: "rP1",
	0xFF01: "rSB",
	0xFF02: "rSC",
	0xFF04: "rDIV",
	0xFF05: "rTIMA",
	0xFF06: "rTMA",
	0xFF07: "rTAC",
	0xFF0F: "rIF",
	0xFF10: "rNR10",
	0xFF11: "rNR11",
	0xFF12: "rNR12",
	0xFF13: "rNR13",
	0xFF14: "rNR14",
	0xFF16: "rNR21",
	0xFF17: "rNR22",
	0xFF18: "rNR23",
	0xFF19: "rNR24",
	0xFF1A: "rNR30",
	0xFF1B: "rNR31",
	0xFF1C: "rNR32",
	0xFF1D: "rNR33",
	0xFF1E: "rNR34",
	0xFF20: "rNR41",
	0xFF21: "rNR42",
	0xFF22: "rNR43",
	0xFF23: "rNR44",
	0xFF24: "rNR50",
	0xFF25: "rNR51",
	0xFF26: "rNR52",
	0xFF40: "rLCDC",
	0xFF41: "rSTAT",
	0xFF42: "rSCY",
	0xFF43: "rSCX",
	0xFF44: "rLY",
	0xFF45: "rLYC",
	0xFF46: "rDMA",
	0xFF47: "rBGP",
	0xFF48: "rOBP0",
	0xFF49: "rOBP1",
	0xFF4A: "rWY",
	0xFF4B: "rWX",
	0xFF4D: "rKEY1",
	0xFF4F: "rVBK",
	0xFF50: "rBANK",
	0xFF51: "rHDMA1",
	0xFF52: "rHDMA2",
	0xFF53: "rHDMA3",
	0xFF54: "rHDMA4",
	0xFF55: "rHDMA5",
	0xFF68: "rBCPS",
	0xFF69: "rBCPD",
	0xFF6A: "rOCPS",
	0xFF6B: "rOCPD",
	0xFF70: "rSVBK",
	0xFFFF: "rIE",
}

func formatAddr(addr uint16) string {
	if label, ok := addressLabels[addr]; ok {
		return label
	}
	return fmt.Sprintf("$%04X", addr)
}
