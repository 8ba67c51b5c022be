package hw

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/jx"

	"gbcore/hw/sm83"
)

// TraceFormat selects the layout of the execution trace.
type TraceFormat uint8

const (
	// TraceText prints the disassembly followed by the registers.
	TraceText TraceFormat = iota
	// TraceDoctor prints the register dump compared by gameboy-doctor.
	TraceDoctor
	// TraceJSON prints one JSON object per instruction.
	TraceJSON
)

var traceFormatNames = [...]string{"text", "doctor", "json"}

func (f TraceFormat) String() string {
	if int(f) < len(traceFormatNames) {
		return traceFormatNames[f]
	}
	return fmt.Sprintf("TraceFormat(%d)", f)
}

func ParseTraceFormat(s string) (TraceFormat, error) {
	for i, name := range traceFormatNames {
		if strings.EqualFold(s, name) {
			return TraceFormat(i), nil
		}
	}
	return TraceText, fmt.Errorf("unknown trace format %q", s)
}

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	regs   [8]uint8
	SP     uint16
	PC     uint16
	IME    bool
	Cycles int64
}

type tracer struct {
	bus    sm83.Peeker
	w      io.Writer
	format TraceFormat
	enc    jx.Encoder
}

func newTracer(bus sm83.Peeker, w io.Writer, format TraceFormat) *tracer {
	return &tracer{bus: bus, w: w, format: format}
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

func appendReg(buf []byte, name string, v uint8) []byte {
	buf = append(buf, name...)
	buf = append(buf, ':', 0, 0, ' ')
	hexEncode(buf[len(buf)-3:], v)
	return buf
}

func appendReg16(buf []byte, name string, v uint16) []byte {
	buf = append(buf, name...)
	buf = append(buf, ':', 0, 0, 0, 0)
	hexEncode(buf[len(buf)-4:], byte(v>>8))
	hexEncode(buf[len(buf)-2:], byte(v))
	return buf
}

var traceRegs = [...]struct {
	name string
	reg  sm83.Reg8
}{
	{"A", sm83.A}, {"F", sm83.F}, {"B", sm83.B}, {"C", sm83.C},
	{"D", sm83.D}, {"E", sm83.E}, {"H", sm83.H}, {"L", sm83.L},
}

// write the execution trace for current instruction.
func (t *tracer) write(state cpuState) {
	switch t.format {
	case TraceDoctor:
		t.writeDoctor(state)
	case TraceJSON:
		t.writeJSON(state)
	default:
		t.writeText(state)
	}
}

func (t *tracer) writeText(state cpuState) {
	buf := make([]byte, 0, 96)
	buf = append(buf, sm83.Disasm(t.bus, state.PC).Bytes()...)
	for _, r := range traceRegs {
		buf = appendReg(buf, r.name, state.regs[r.reg])
	}
	buf = appendReg16(buf, "SP", state.SP)
	buf = fmt.Appendf(buf, " CYC:%d\n", state.Cycles)
	t.w.Write(buf)
}

func (t *tracer) writeDoctor(state cpuState) {
	buf := make([]byte, 0, 96)
	for _, r := range traceRegs {
		buf = appendReg(buf, r.name, state.regs[r.reg])
	}
	buf = appendReg16(buf, "SP", state.SP)
	buf = append(buf, ' ')
	buf = appendReg16(buf, "PC", state.PC)
	buf = append(buf, " PCMEM:"...)
	for i := range uint16(4) {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, 0, 0)
		hexEncode(buf[len(buf)-2:], t.bus.Peek8(state.PC+i))
	}
	buf = append(buf, '\n')
	t.w.Write(buf)
}

func (t *tracer) writeJSON(state cpuState) {
	dis := sm83.Disasm(t.bus, state.PC)

	e := &t.enc
	e.Reset()
	e.ObjStart()
	e.FieldStart("pc")
	e.UInt16(state.PC)
	e.FieldStart("op")
	e.Str(strings.TrimSpace(dis.Opcode + " " + dis.Oper))
	for _, r := range traceRegs {
		e.FieldStart(strings.ToLower(r.name))
		e.UInt8(state.regs[r.reg])
	}
	e.FieldStart("sp")
	e.UInt16(state.SP)
	e.FieldStart("ime")
	e.Bool(state.IME)
	e.FieldStart("cycles")
	e.Int64(state.Cycles)
	e.ObjEnd()

	t.w.Write(append(e.Bytes(), '\n'))
}
