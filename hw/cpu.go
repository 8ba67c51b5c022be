package hw

import (
	"fmt"
	"io"

	"gbcore/emu/log"
	"gbcore/hw/hwio"
	"gbcore/hw/sm83"
	"gbcore/hw/snapshot"
)

// Flags, in F.
const (
	flagZ uint8 = 1 << 7
	flagN uint8 = 1 << 6
	flagH uint8 = 1 << 5
	flagC uint8 = 1 << 4
)

// CPU is the SM83 core. It has 2 states, running and halted; every cycle it
// spends is charged to the Clock.
type CPU struct {
	bus   *hwio.Table
	clock *Clock
	irq   *Interrupts
	sys   *System

	// STOP collaborators, nil on machines without them.
	key1  *Key1
	timer *Timer

	// F A C B E D L H, each pair is stored low byte first.
	regs [8]uint8
	SP   uint16
	PC   uint16

	ime       bool
	pendingEI bool
	halted    bool

	// Non-nil when execution tracing is enabled.
	tracer *tracer
	dbg    Debugger
}

// NewCPU creates a CPU connected to the given bus, clock and interrupt
// controller. Unmapped accesses and invalid opcodes trap through sys.
func NewCPU(bus *hwio.Table, clock *Clock, irq *Interrupts, sys *System) *CPU {
	return &CPU{
		bus:   bus,
		clock: clock,
		irq:   irq,
		sys:   sys,
		dbg:   nopDebugger{},
	}
}

// Reset puts the CPU in the state the boot rom leaves it in.
func (c *CPU) Reset(model Model) {
	switch model {
	case ModelCGB:
		c.SetReg16(sm83.AF, 0x1180)
		c.SetReg16(sm83.BC, 0x0000)
		c.SetReg16(sm83.DE, 0xFF56)
		c.SetReg16(sm83.HL, 0x000D)
	default:
		c.SetReg16(sm83.AF, 0x01B0)
		c.SetReg16(sm83.BC, 0x0013)
		c.SetReg16(sm83.DE, 0x00D8)
		c.SetReg16(sm83.HL, 0x014D)
	}
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.ime = false
	c.pendingEI = false
	c.halted = false
	c.dbg.Reset()
}

func (c *CPU) Reg8(r sm83.Reg8) uint8         { return c.regs[r] }
func (c *CPU) SetReg8(r sm83.Reg8, val uint8) { c.regs[r] = val }

func (c *CPU) Reg16(r sm83.Reg16) uint16 {
	if r == sm83.SP {
		return c.SP
	}
	return uint16(c.regs[2*r+1])<<8 | uint16(c.regs[2*r])
}

// SetReg16 sets a register pair, the low nibble of F always reads 0.
func (c *CPU) SetReg16(r sm83.Reg16, val uint16) {
	if r == sm83.SP {
		c.SP = val
		return
	}
	lo := uint8(val)
	if r == sm83.AF {
		lo &= 0xF0
	}
	c.regs[2*r] = lo
	c.regs[2*r+1] = uint8(val >> 8)
}

func (c *CPU) IME() bool    { return c.ime }
func (c *CPU) Halted() bool { return c.halted }

// Step executes a single instruction, services an interrupt or spends one
// cycle halted.
func (c *CPU) Step() {
	if c.sys.IsTrap() {
		return
	}

	if c.irq.Pending() {
		c.halted = false
	}
	if c.ime {
		if irq := c.irq.Next(); irq != 0 {
			c.interrupt(irq)
			return
		}
	}
	if c.halted {
		c.tick(1)
		return
	}

	c.traceOp()
	c.exec(sm83.Decode(c.bus, c.PC))
}

// Run executes instructions until at least ncycles M-cycles have elapsed, or
// the machine traps.
func (c *CPU) Run(ncycles int64) {
	until := c.clock.Cycles() + ncycles
	for c.clock.Cycles() < until && !c.sys.IsTrap() {
		c.Step()
	}
}

func (c *CPU) interrupt(irq Interrupt) {
	prevpc := c.PC
	c.irq.Clear(irq)
	c.ime = false

	c.tick(4)
	c.push16(c.PC)
	c.PC = c.irq.Vector(irq)
	c.tick(1)

	log.ModIRQ.DebugZ("service").
		Stringer("irq", irq).
		Hex16("from", prevpc).
		End()
	c.dbg.Interrupt(prevpc, c.PC, irq)
}

// tick charges n M-cycles. A pending EI takes effect after the first one.
func (c *CPU) tick(n int) {
	if n == 0 {
		return
	}
	if c.pendingEI {
		c.clock.Increment(1)
		c.pendingEI = false
		c.ime = true
		n--
		if n == 0 {
			return
		}
	}
	c.clock.Increment(n)
}

/* stack operations */

func (c *CPU) push16(val uint16) {
	c.SP -= 2
	c.bus.Write16(c.SP, val)
}

func (c *CPU) pop16() uint16 {
	val := c.bus.Read16(c.SP)
	c.SP += 2
	return val
}

func (c *CPU) invalid(in *sm83.Instruction) {
	c.sys.Trap(fmt.Sprintf("invalid opcode $%02X at $%04X", uint8(in.Opcode), c.PC))
}

/* tracing / debugging */

func (c *CPU) traceOp() {
	if c.tracer != nil {
		c.tracer.write(c.state())
	}
	c.dbg.Trace(c.PC)
}

func (c *CPU) state() cpuState {
	st := cpuState{
		regs:   c.regs,
		SP:     c.SP,
		PC:     c.PC,
		IME:    c.ime,
		Cycles: c.clock.Cycles(),
	}
	return st
}

// SetTraceOutput enables the execution tracer, writing to w with the given
// format. A nil w disables it.
func (c *CPU) SetTraceOutput(w io.Writer, format TraceFormat) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = newTracer(c.bus, w, format)
}

func (c *CPU) SetDebugger(dbg Debugger) {
	if dbg == nil {
		dbg = nopDebugger{}
	}
	c.dbg = dbg
}

// Disasm disassembles the instruction at pc, without side effects.
func (c *CPU) Disasm(pc uint16) sm83.DisasmOp {
	return sm83.Disasm(c.bus, pc)
}

// AddLogContext adds the program counter to log lines.
func (c *CPU) AddLogContext(z *log.EntryZ) {
	z.Hex16("pc", c.PC)
}

func (c *CPU) Save(s *snapshot.State) {
	s.WriteBytes(c.regs[:])
	s.Write16(c.SP)
	s.Write16(c.PC)
	s.WriteBool(c.ime)
	s.WriteBool(c.pendingEI)
	s.WriteBool(c.halted)
}

func (c *CPU) Load(s *snapshot.State) {
	s.ReadBytes(c.regs[:])
	c.SP = s.Read16()
	c.PC = s.Read16()
	c.ime = s.ReadBool()
	c.pendingEI = s.ReadBool()
	c.halted = s.ReadBool()
}

type nopDebugger struct{}

func (nopDebugger) Reset()                                        {}
func (nopDebugger) Trace(pc uint16)                               {}
func (nopDebugger) Interrupt(prevpc, curpc uint16, irq Interrupt) {}
func (nopDebugger) Break(msg string)                              {}
func (nopDebugger) FrameEnd()                                     {}
