package hw

import "gbcore/hw/sm83"

// setFlags replaces the flags selected by mask with those of val, others are
// preserved.
func (c *CPU) setFlags(mask, val uint8) {
	c.regs[sm83.F] = c.regs[sm83.F]&^mask | val&mask
}

func flagIf(cond bool, f uint8) uint8 {
	if cond {
		return f
	}
	return 0
}

func (c *CPU) carry() uint8 {
	return (c.regs[sm83.F] >> 4) & 1
}

// alu performs an 8-bit arithmetic or logic operation between A and v.
func (c *CPU) alu(op sm83.Op, v uint8) {
	a := c.regs[sm83.A]
	switch op {
	case sm83.OpAdd:
		c.regs[sm83.A] = c.add8(a, v, 0)
	case sm83.OpAdc:
		c.regs[sm83.A] = c.add8(a, v, c.carry())
	case sm83.OpSub:
		c.regs[sm83.A] = c.sub8(a, v, 0)
	case sm83.OpSbc:
		c.regs[sm83.A] = c.sub8(a, v, c.carry())
	case sm83.OpCp:
		c.sub8(a, v, 0)
	case sm83.OpAnd:
		a &= v
		c.regs[sm83.A] = a
		c.regs[sm83.F] = flagIf(a == 0, flagZ) | flagH
	case sm83.OpXor:
		a ^= v
		c.regs[sm83.A] = a
		c.regs[sm83.F] = flagIf(a == 0, flagZ)
	case sm83.OpOr:
		a |= v
		c.regs[sm83.A] = a
		c.regs[sm83.F] = flagIf(a == 0, flagZ)
	}
}

func (c *CPU) add8(a, b, cy uint8) uint8 {
	r := uint16(a) + uint16(b) + uint16(cy)
	c.regs[sm83.F] = flagIf(uint8(r) == 0, flagZ) |
		flagIf((a&0xF)+(b&0xF)+cy > 0xF, flagH) |
		flagIf(r > 0xFF, flagC)
	return uint8(r)
}

func (c *CPU) sub8(a, b, cy uint8) uint8 {
	r := int(a) - int(b) - int(cy)
	c.regs[sm83.F] = flagIf(uint8(r) == 0, flagZ) |
		flagN |
		flagIf(int(a&0xF)-int(b&0xF)-int(cy) < 0, flagH) |
		flagIf(r < 0, flagC)
	return uint8(r)
}

func (c *CPU) inc8(v uint8) uint8 {
	r := v + 1
	c.setFlags(flagZ|flagN|flagH, flagIf(r == 0, flagZ)|flagIf(v&0xF == 0xF, flagH))
	return r
}

func (c *CPU) dec8(v uint8) uint8 {
	r := v - 1
	c.setFlags(flagZ|flagN|flagH, flagIf(r == 0, flagZ)|flagN|flagIf(v&0xF == 0, flagH))
	return r
}

// addHL adds v to HL, Z is preserved.
func (c *CPU) addHL(v uint16) {
	hl := c.Reg16(sm83.HL)
	r := uint32(hl) + uint32(v)
	c.setFlags(flagN|flagH|flagC,
		flagIf((hl&0xFFF)+(v&0xFFF) > 0xFFF, flagH)|flagIf(r > 0xFFFF, flagC))
	c.SetReg16(sm83.HL, uint16(r))
}

// addSPSigned returns SP plus a signed offset. H and C come from the
// unsigned addition of the offset to the low byte of SP, Z and N are reset.
func (c *CPU) addSPSigned(off uint8) uint16 {
	sp := c.SP
	r := sp + uint16(int8(off))
	c.regs[sm83.F] = flagIf((sp&0xF)+uint16(off&0xF) > 0xF, flagH) |
		flagIf((sp&0xFF)+uint16(off) > 0xFF, flagC)
	return r
}

func (c *CPU) daa() {
	a := c.regs[sm83.A]
	f := c.regs[sm83.F]
	carry := f&flagC != 0

	var adj uint8
	if f&flagN == 0 {
		if f&flagH != 0 || a&0xF > 9 {
			adj |= 0x06
		}
		if carry || a > 0x99 {
			adj |= 0x60
			carry = true
		}
		a += adj
	} else {
		if f&flagH != 0 {
			adj |= 0x06
		}
		if carry {
			adj |= 0x60
		}
		a -= adj
	}

	c.regs[sm83.A] = a
	c.setFlags(flagZ|flagH|flagC, flagIf(a == 0, flagZ)|flagIf(carry, flagC))
}

// rotateA implements RLCA, RRCA, RLA and RRA, which always reset Z.
func (c *CPU) rotateA(op sm83.Op, v uint8) uint8 {
	var r, out uint8
	switch op {
	case sm83.OpRlca:
		out = v >> 7
		r = v<<1 | out
	case sm83.OpRrca:
		out = v & 1
		r = v>>1 | out<<7
	case sm83.OpRla:
		out = v >> 7
		r = v<<1 | c.carry()
	case sm83.OpRra:
		out = v & 1
		r = v>>1 | c.carry()<<7
	}
	c.regs[sm83.F] = flagIf(out != 0, flagC)
	return r
}

// shift implements the CB-prefixed rotations and shifts, Z reflects the
// result.
func (c *CPU) shift(op sm83.Op, v uint8) uint8 {
	var r, out uint8
	switch op {
	case sm83.OpRlc:
		out = v >> 7
		r = v<<1 | out
	case sm83.OpRrc:
		out = v & 1
		r = v>>1 | out<<7
	case sm83.OpRl:
		out = v >> 7
		r = v<<1 | c.carry()
	case sm83.OpRr:
		out = v & 1
		r = v>>1 | c.carry()<<7
	case sm83.OpSla:
		out = v >> 7
		r = v << 1
	case sm83.OpSra:
		out = v & 1
		r = v>>1 | v&0x80
	case sm83.OpSrl:
		out = v & 1
		r = v >> 1
	case sm83.OpSwap:
		r = v<<4 | v>>4
	}
	c.regs[sm83.F] = flagIf(r == 0, flagZ) | flagIf(out != 0, flagC)
	return r
}

func (c *CPU) bit(n, v uint8) {
	c.setFlags(flagZ|flagN|flagH, flagIf(v&(1<<n) == 0, flagZ)|flagH)
}
