package hw

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"gbcore/hw/hwio"
	"gbcore/hw/sm83"
)

/* cpu specific testing helpers */

// testCPU is a CPU on a flat 64K memory, with only the interrupt controller
// mapped over it.
type testCPU struct {
	*CPU
	mem []byte
}

// loadCPUWith creates a CPU in its post-boot state (PC=$0100) and loads it
// with a memory dump.
func loadCPUWith(tb testing.TB, dump string) *testCPU {
	tb.Helper()

	tc := &testCPU{mem: make([]byte, 0x10000)}
	sys := &System{}
	bus := hwio.NewTable("cpu", sys)
	bus.MapMemorySlice(0x0000, 0xFFFF, tc.mem, false)

	irq := &Interrupts{}
	irq.Install(bus)
	irq.IF.Value = 0

	tc.CPU = NewCPU(bus, &Clock{}, irq, sys)
	tc.CPU.Reset(ModelDMG)

	for _, line := range loadDump(tb, dump) {
		copy(tc.mem[line.off:], line.bytes[:line.len])
	}
	return tc
}

func wantMem8(t *testing.T, cpu *testCPU, addr uint16, want uint8) {
	t.Helper()

	if got := cpu.bus.Peek8(addr); got != want {
		t.Errorf("$%04X = %02X want %02X", addr, got, want)
	}
}

func wantMem(t *testing.T, cpu *testCPU, dl dumpline) {
	t.Helper()

	mem := make([]byte, dl.len)
	for i := range mem {
		mem[i] = cpu.bus.Peek8(dl.off + uint16(i))
	}

	if want := dl.bytes[:dl.len]; !bytes.Equal(mem, want) {
		t.Errorf("mem mismatch at 0x%04x.\ngot:  % X\nwant: % X", dl.off, mem, want)
	}
}

// wantFlags checks F against a "znhc" pattern, uppercase meaning set.
func wantFlags(t *testing.T, cpu *testCPU, flags string) {
	t.Helper()

	if got := flagString(cpu.Reg8(sm83.F)); got != flags {
		t.Errorf("got flags %s (F=$%02X), want %s", got, cpu.Reg8(sm83.F), flags)
	}
}

func flagString(f uint8) string {
	const set, clear = "ZNHC", "znhc"
	var b [4]byte
	for i := range b {
		if f&(0x80>>i) != 0 {
			b[i] = set[i]
		} else {
			b[i] = clear[i]
		}
	}
	return string(b[:])
}

func wantReg(t *testing.T, cpu *testCPU, name string, want uint16) {
	t.Helper()

	var got uint16
	switch name {
	case "A", "F", "B", "C", "D", "E", "H", "L":
		got = uint16(cpu.Reg8(reg8ByName[name]))
		if got != want {
			t.Errorf("got %s=$%02X, want $%02X", name, got, want)
		}
		return
	case "AF":
		got = cpu.Reg16(sm83.AF)
	case "BC":
		got = cpu.Reg16(sm83.BC)
	case "DE":
		got = cpu.Reg16(sm83.DE)
	case "HL":
		got = cpu.Reg16(sm83.HL)
	case "SP":
		got = cpu.SP
	case "PC":
		got = cpu.PC
	default:
		panic("unknown register: " + name)
	}
	if got != want {
		t.Errorf("got %s=$%04X, want $%04X", name, got, want)
	}
}

var reg8ByName = map[string]sm83.Reg8{
	"A": sm83.A, "F": sm83.F, "B": sm83.B, "C": sm83.C,
	"D": sm83.D, "E": sm83.E, "H": sm83.H, "L": sm83.L,
}

// runAndCheckState runs nsteps CPU steps then checks the given states,
// passed as name/value pairs: register names, "flags", "cycles", "ime",
// "halted" or "mem".
func runAndCheckState(t *testing.T, cpu *testCPU, nsteps int, states ...any) {
	t.Helper()

	if len(states)%2 != 0 {
		panic("odd number of states")
	}

	if testing.Verbose() {
		cpu.SetTraceOutput(tbwriter{t}, TraceText)
		defer cpu.SetTraceOutput(nil, TraceText)
	}

	for range nsteps {
		cpu.Step()
	}

	for i := 0; i < len(states); i += 2 {
		s := states[i].(string)
		switch s {
		case "flags":
			wantFlags(t, cpu, states[i+1].(string))
		case "cycles":
			if got, want := cpu.clock.Cycles(), int64(states[i+1].(int)); got != want {
				t.Errorf("got %d cycles, want %d", got, want)
			}
		case "ime":
			if got, want := cpu.IME(), states[i+1].(bool); got != want {
				t.Errorf("got IME=%t, want %t", got, want)
			}
		case "halted":
			if got, want := cpu.Halted(), states[i+1].(bool); got != want {
				t.Errorf("got halted=%t, want %t", got, want)
			}
		case "mem":
			for _, line := range loadDump(t, states[i+1].(string)) {
				wantMem(t, cpu, line)
			}
		default:
			wantReg(t, cpu, s, uint16(states[i+1].(int)))
		}
	}

	if t.Failed() {
		t.FailNow()
	}
}

type dumpline struct {
	off   uint16
	len   uint16 // actual length
	bytes []byte // pow2 sized (padded with 0)
}

func loadDump(tb testing.TB, dump string) []dumpline {
	tb.Helper()

	var lines []dumpline
	scan := bufio.NewScanner(strings.NewReader(dump))
	for scan.Scan() {
		line := scan.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		off, octets, ok := strings.Cut(line, ":")
		if !ok {
			tb.Fatalf("malformed line: %s", line)
		}

		ioff, err := strconv.ParseUint(strings.TrimSpace(off), 16, 16)
		if err != nil {
			tb.Fatalf("malformed offset %s: %s", off, err)
		}
		var buf []byte
		for _, c := range octets {
			if c != ' ' {
				buf = append(buf, byte(c))
			}
		}
		n, err := hex.Decode(buf, buf)
		if err != nil {
			tb.Fatalf("hex decode: %s", err)
		}
		// clear the rest of the buffer
		nbytes := nextpow2(uint64(n))
		for i := uint64(n); i < nbytes; i++ {
			buf[i] = 0
		}
		lines = append(lines, dumpline{off: uint16(ioff), len: uint16(n), bytes: buf[:nbytes]})
	}
	if scan.Err() != nil {
		tb.Fatalf("scan error: %s", scan.Err())
	}

	return lines
}

func nextpow2(v uint64) uint64 {
	v--
	v |= v>>1 | v>>2 | v>>4 | v>>8 | v>>16 | v>>32
	return v + 1
}

type tbwriter struct {
	testing.TB
}

func (t tbwriter) Write(p []byte) (int, error) {
	t.TB.Helper()
	t.TB.Log(string(bytes.TrimSpace((p))))
	return len(p), nil
}

func TestLoadDump(t *testing.T) {
	tests := []struct {
		dump string
		want []dumpline
	}{
		{
			dump: `01f0: 0f 0e 0d`,
			want: []dumpline{
				{0x01f0, 3, []byte{0x0f, 0x0e, 0x0d, 0x00}},
			},
		},
		{
			dump: `
# comment
0100: 00 c3 50 01
c000: 01 02 03 04 05
`,
			want: []dumpline{
				{0x0100, 4, []byte{0x00, 0xc3, 0x50, 0x01}},
				{0xc000, 5, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x00, 0x00, 0x00}},
			},
		},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			got := loadDump(t, tt.dump)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(dumpline{})); diff != "" {
				t.Fatalf("loadDump mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
