package hw

import (
	"fmt"

	"gbcore/hw/sm83"
)

// exec executes the decoded instruction. Handlers charge Cycles-1 before
// their operand accesses and the last cycle after them.
func (c *CPU) exec(in *sm83.Instruction) {
	cycles := int(in.Cycles)
	next := c.PC + uint16(in.Len)

	switch in.Op {
	case sm83.OpInvalid:
		c.invalid(in)

	case sm83.OpNop:
		c.tick(cycles - 1)
		c.PC = next
		c.tick(1)

	case sm83.OpLd:
		c.tick(cycles - 1)
		c.setArg(in.Arg1, c.getArg(in.Arg2))
		c.PC = next
		c.tick(1)

	case sm83.OpLdInc, sm83.OpLdDec:
		c.tick(cycles - 1)
		c.setArg(in.Arg1, c.getArg(in.Arg2))
		hl := c.Reg16(sm83.HL)
		if in.Op == sm83.OpLdInc {
			hl++
		} else {
			hl--
		}
		c.SetReg16(sm83.HL, hl)
		c.PC = next
		c.tick(1)

	case sm83.OpLdHLSP:
		c.tick(cycles - 1)
		c.SetReg16(sm83.HL, c.addSPSigned(uint8(c.getArg(in.Arg2))))
		c.PC = next
		c.tick(1)

	case sm83.OpPush:
		c.tick(cycles - 1)
		c.push16(c.getArg(in.Arg1))
		c.PC = next
		c.tick(1)

	case sm83.OpPop:
		c.tick(cycles - 1)
		c.setArg(in.Arg1, c.pop16())
		c.PC = next
		c.tick(1)

	case sm83.OpAdd, sm83.OpAdc, sm83.OpSub, sm83.OpSbc,
		sm83.OpAnd, sm83.OpXor, sm83.OpOr, sm83.OpCp:
		c.tick(cycles - 1)
		c.alu(in.Op, uint8(c.getArg(in.Arg2)))
		c.PC = next
		c.tick(1)

	case sm83.OpInc:
		c.tick(cycles - 1)
		c.setArg(in.Arg1, uint16(c.inc8(uint8(c.getArg(in.Arg1)))))
		c.PC = next
		c.tick(1)

	case sm83.OpDec:
		c.tick(cycles - 1)
		c.setArg(in.Arg1, uint16(c.dec8(uint8(c.getArg(in.Arg1)))))
		c.PC = next
		c.tick(1)

	case sm83.OpAdd16:
		c.tick(cycles - 1)
		c.addHL(c.getArg(in.Arg2))
		c.PC = next
		c.tick(1)

	case sm83.OpAddSP:
		c.tick(cycles - 1)
		c.SP = c.addSPSigned(uint8(c.getArg(in.Arg2)))
		c.PC = next
		c.tick(1)

	case sm83.OpInc16:
		c.tick(cycles - 1)
		c.setArg(in.Arg1, c.getArg(in.Arg1)+1)
		c.PC = next
		c.tick(1)

	case sm83.OpDec16:
		c.tick(cycles - 1)
		c.setArg(in.Arg1, c.getArg(in.Arg1)-1)
		c.PC = next
		c.tick(1)

	case sm83.OpDaa:
		c.tick(cycles - 1)
		c.daa()
		c.PC = next
		c.tick(1)

	case sm83.OpCpl:
		c.tick(cycles - 1)
		c.regs[sm83.A] = ^c.regs[sm83.A]
		c.setFlags(flagN|flagH, flagN|flagH)
		c.PC = next
		c.tick(1)

	case sm83.OpScf:
		c.tick(cycles - 1)
		c.setFlags(flagN|flagH|flagC, flagC)
		c.PC = next
		c.tick(1)

	case sm83.OpCcf:
		c.tick(cycles - 1)
		c.setFlags(flagN|flagH|flagC, ^c.regs[sm83.F]&flagC)
		c.PC = next
		c.tick(1)

	case sm83.OpRlca, sm83.OpRrca, sm83.OpRla, sm83.OpRra:
		c.tick(cycles - 1)
		c.regs[sm83.A] = c.rotateA(in.Op, c.regs[sm83.A])
		c.PC = next
		c.tick(1)

	case sm83.OpRlc, sm83.OpRrc, sm83.OpRl, sm83.OpRr,
		sm83.OpSla, sm83.OpSra, sm83.OpSwap, sm83.OpSrl:
		c.tick(cycles - 1)
		c.setArg(in.Arg1, uint16(c.shift(in.Op, uint8(c.getArg(in.Arg1)))))
		c.PC = next
		c.tick(1)

	case sm83.OpBit:
		c.tick(cycles - 1)
		c.bit(uint8(c.getArg(in.Arg1)), uint8(c.getArg(in.Arg2)))
		c.PC = next
		c.tick(1)

	case sm83.OpRes:
		c.tick(cycles - 1)
		mask := uint8(1) << c.getArg(in.Arg1)
		c.setArg(in.Arg2, uint16(uint8(c.getArg(in.Arg2))&^mask))
		c.PC = next
		c.tick(1)

	case sm83.OpSet:
		c.tick(cycles - 1)
		mask := uint8(1) << c.getArg(in.Arg1)
		c.setArg(in.Arg2, uint16(uint8(c.getArg(in.Arg2))|mask))
		c.PC = next
		c.tick(1)

	case sm83.OpJr:
		taken := c.cond(in.Cond)
		if taken {
			cycles += int(in.BranchCycles())
		}
		c.tick(cycles - 1)
		off := int8(c.getArg(in.Arg1))
		c.PC = next
		if taken {
			c.PC += uint16(off)
		}
		c.tick(1)

	case sm83.OpJp:
		taken := c.cond(in.Cond)
		if taken {
			cycles += int(in.BranchCycles())
		}
		c.tick(cycles - 1)
		target := c.getArg(in.Arg1)
		c.PC = next
		if taken {
			c.PC = target
		}
		c.tick(1)

	case sm83.OpJpHL:
		c.tick(cycles - 1)
		c.PC = c.Reg16(sm83.HL)
		c.tick(1)

	case sm83.OpCall:
		taken := c.cond(in.Cond)
		if taken {
			cycles += int(in.BranchCycles())
		}
		c.tick(cycles - 1)
		target := c.getArg(in.Arg1)
		c.PC = next
		if taken {
			c.push16(next)
			c.PC = target
		}
		c.tick(1)

	case sm83.OpRet:
		taken := c.cond(in.Cond)
		if taken {
			cycles += int(in.BranchCycles())
		}
		c.tick(cycles - 1)
		c.PC = next
		if taken {
			c.PC = c.pop16()
		}
		c.tick(1)

	case sm83.OpReti:
		c.tick(cycles - 1)
		c.PC = c.pop16()
		c.ime = true
		c.tick(1)

	case sm83.OpRst:
		c.tick(cycles - 1)
		c.push16(next)
		c.PC = c.getArg(in.Arg1)
		c.tick(1)

	case sm83.OpDi:
		c.tick(cycles - 1)
		c.ime = false
		c.pendingEI = false
		c.PC = next
		c.tick(1)

	case sm83.OpEi:
		c.tick(cycles - 1)
		c.PC = next
		c.tick(1)
		// IME is set after the next instruction's first cycle.
		if !c.ime {
			c.pendingEI = true
		}

	case sm83.OpHalt:
		c.tick(cycles - 1)
		c.PC = next
		c.halted = true
		if !c.ime && !c.pendingEI && c.irq.Pending() {
			// HALT bug: the next opcode is fetched twice on hardware.
			c.tick(1)
		}
		c.tick(1)

	case sm83.OpStop:
		c.tick(cycles - 1)
		c.PC = next
		c.stop()
		c.tick(1)

	default:
		panic(fmt.Sprintf("unhandled op %s (opcode %03X)", in.Op, in.Opcode))
	}
}

func (c *CPU) stop() {
	if c.key1 != nil && c.key1.Armed() {
		c.key1.Switch(c.clock)
		c.clock.PauseCPU(2050)
		return
	}
	if c.timer != nil {
		c.timer.ResetDiv()
	}
	c.halted = true
}

func (c *CPU) cond(cc sm83.Cond) bool {
	f := c.regs[sm83.F]
	switch cc {
	case sm83.CondZ:
		return f&flagZ != 0
	case sm83.CondNZ:
		return f&flagZ == 0
	case sm83.CondC:
		return f&flagC != 0
	case sm83.CondNC:
		return f&flagC == 0
	}
	return true
}

// getArg returns the value of an operand. Immediates follow the opcode at PC.
func (c *CPU) getArg(arg sm83.Operand) uint16 {
	switch arg.Mode {
	case sm83.ModeImplicit, sm83.ModeBit:
		return uint16(arg.Param)
	case sm83.ModeReg8:
		return uint16(c.regs[arg.Param])
	case sm83.ModeReg16:
		return c.Reg16(sm83.Reg16(arg.Param))
	case sm83.ModeImm8, sm83.ModeImm8Sign:
		return uint16(c.bus.Read8(c.PC + 1))
	case sm83.ModeImm16:
		return c.bus.Read16(c.PC + 1)
	case sm83.ModeImm8IO:
		return uint16(c.bus.Read8(0xFF00 | uint16(c.bus.Read8(c.PC+1))))
	case sm83.ModeReg8IO:
		return uint16(c.bus.Read8(0xFF00 | uint16(c.regs[arg.Param])))
	case sm83.ModeImm16Ind8:
		return uint16(c.bus.Read8(c.bus.Read16(c.PC + 1)))
	case sm83.ModeImm16Ind16:
		return c.bus.Read16(c.bus.Read16(c.PC + 1))
	case sm83.ModeReg16Ind8:
		return uint16(c.bus.Read8(c.Reg16(sm83.Reg16(arg.Param))))
	}
	panic(fmt.Sprintf("getArg: unexpected addressing mode %s", arg.Mode))
}

// setArg writes val to the location designated by an operand.
func (c *CPU) setArg(arg sm83.Operand, val uint16) {
	switch arg.Mode {
	case sm83.ModeReg8:
		c.regs[arg.Param] = uint8(val)
	case sm83.ModeReg16:
		c.SetReg16(sm83.Reg16(arg.Param), val)
	case sm83.ModeImm8IO:
		c.bus.Write8(0xFF00|uint16(c.bus.Read8(c.PC+1)), uint8(val))
	case sm83.ModeReg8IO:
		c.bus.Write8(0xFF00|uint16(c.regs[arg.Param]), uint8(val))
	case sm83.ModeImm16Ind8:
		c.bus.Write8(c.bus.Read16(c.PC+1), uint8(val))
	case sm83.ModeImm16Ind16:
		c.bus.Write16(c.bus.Read16(c.PC+1), val)
	case sm83.ModeReg16Ind8:
		c.bus.Write8(c.Reg16(sm83.Reg16(arg.Param)), uint8(val))
	default:
		panic(fmt.Sprintf("setArg: unexpected addressing mode %s", arg.Mode))
	}
}
