// Package debugger implements a non-interactive debugger following the call
// stack of the CPU, and recording the reasons it has been asked to break.
package debugger

import (
	"fmt"
	"io"

	"gbcore/emu/log"
	"gbcore/hw"
	"gbcore/hw/sm83"
)

// A Debugger follows CALL, RST and RET instructions, as well as interrupt
// dispatches, to maintain the call stack of the running program.
type Debugger struct {
	bus    sm83.Peeker
	cstack callStack

	pc     uint16            // address of the last traced instruction
	last   *sm83.Instruction // last traced instruction
	frames uint64
	breaks []string
}

var _ hw.Debugger = (*Debugger)(nil)

// New returns a debugger decoding instructions from bus.
func New(bus sm83.Peeker) *Debugger {
	return &Debugger{bus: bus}
}

func (d *Debugger) Reset() {
	d.cstack.reset()
	d.last = nil
	d.frames = 0
	d.breaks = nil
}

// follow updates the call stack given the address reached after the last
// traced instruction has been executed.
func (d *Debugger) follow(pc uint16) {
	in := d.last
	if in == nil {
		return
	}
	d.last = nil

	next := d.pc + uint16(in.Len)
	if pc == next {
		return
	}
	switch in.Op {
	case sm83.OpCall, sm83.OpRst:
		d.cstack.push(stackFrame{src: d.pc, target: pc, ret: next})
	case sm83.OpRet, sm83.OpReti:
		d.cstack.pop()
	}
}

func (d *Debugger) Trace(pc uint16) {
	d.follow(pc)

	code := uint16(d.bus.Peek8(pc))
	if code == 0xCB {
		code = 0x100 | uint16(d.bus.Peek8(pc+1))
	}
	d.pc = pc
	d.last = &sm83.Table[code]
}

func (d *Debugger) Interrupt(prevpc, curpc uint16, irq hw.Interrupt) {
	d.follow(prevpc)
	d.cstack.push(stackFrame{
		src:    prevpc,
		target: curpc,
		ret:    prevpc,
		flag:   sffIRQ,
		irq:    irq.String(),
	})
}

func (d *Debugger) Break(msg string) {
	d.breaks = append(d.breaks, msg)
	log.ModDbg.InfoZ("break").
		String("reason", msg).
		Int("depth", d.cstack.len()).
		End()
}

func (d *Debugger) FrameEnd() { d.frames++ }

// Frames returns the number of frames seen since the last reset.
func (d *Debugger) Frames() uint64 { return d.frames }

// Breaks returns the messages of all breaks since the last reset.
func (d *Debugger) Breaks() []string { return d.breaks }

// Depth returns the number of routines (or interrupt handlers) in the call
// stack.
func (d *Debugger) Depth() int { return d.cstack.len() }

// CallStack returns the call stack frames, innermost first, pc being the
// current program counter.
func (d *Debugger) CallStack(pc uint16) []Frame {
	return d.cstack.build(pc)
}

// WriteCallStack writes a human readable call stack to w.
func (d *Debugger) WriteCallStack(w io.Writer, pc uint16) error {
	for i, f := range d.CallStack(pc) {
		if _, err := fmt.Fprintf(w, "#%-2d %-22s %s\n", i, f.Entry, f.Location); err != nil {
			return err
		}
	}
	return nil
}
