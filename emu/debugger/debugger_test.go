package debugger

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"gbcore/hw"
	"gbcore/hw/cart"
)

type peekMem map[uint16]uint8

func (m peekMem) Peek8(addr uint16) uint8 { return m[addr] }

func TestDebuggerFollowsCalls(t *testing.T) {
	mem := peekMem{
		0x0150: 0xCD, 0x0151: 0x00, 0x0152: 0x02, // CALL $0200
		0x0200: 0xC4, 0x0201: 0x00, 0x0202: 0x30, // CALL NZ,$3000
		0x0203: 0xFF, // RST $38
		0x0038: 0xC9, // RET
		0x0204: 0xC9, // RET
	}

	d := New(mem)
	d.Trace(0x0150)
	d.Trace(0x0200)
	if d.Depth() != 1 {
		t.Fatalf("depth after CALL = %d, want 1", d.Depth())
	}

	// Not taken.
	d.Trace(0x0203)
	if d.Depth() != 1 {
		t.Fatalf("depth after CALL NZ not taken = %d, want 1", d.Depth())
	}

	d.Trace(0x0038)
	want := []Frame{
		{"0038", "$0038"},
		{"0200", "$0203"},
		{"[bottom of stack]", "$0150"},
	}
	if diff := cmp.Diff(want, d.CallStack(0x0038)); diff != "" {
		t.Fatalf("callstack differs (-want +got):\n%s", diff)
	}

	d.Trace(0x0204)
	d.Trace(0x0153)
	if d.Depth() != 0 {
		t.Fatalf("depth after both RETs = %d, want 0", d.Depth())
	}
}

func TestDebuggerInterrupt(t *testing.T) {
	mem := peekMem{
		0x0150: 0x00, // NOP
		0x0040: 0xD9, // RETI
	}

	d := New(mem)
	d.Trace(0x0150)
	d.Interrupt(0x0151, 0x0040, hw.IntVBlank)
	d.Trace(0x0040)

	want := []Frame{
		{"[irq vblank] $0040", "$0040"},
		{"[bottom of stack]", "$0151"},
	}
	if diff := cmp.Diff(want, d.CallStack(0x0040)); diff != "" {
		t.Fatalf("callstack differs (-want +got):\n%s", diff)
	}

	d.Trace(0x0151)
	if d.Depth() != 0 {
		t.Errorf("depth after RETI = %d, want 0", d.Depth())
	}
}

func TestDebuggerBreaksAndReset(t *testing.T) {
	d := New(peekMem{0x0100: 0xCD})
	d.Trace(0x0100)
	d.Trace(0x1234)
	d.Break("watchpoint")
	d.FrameEnd()

	if diff := cmp.Diff([]string{"watchpoint"}, d.Breaks()); diff != "" {
		t.Errorf("breaks differ (-want +got):\n%s", diff)
	}
	if d.Frames() != 1 {
		t.Errorf("frames = %d, want 1", d.Frames())
	}

	d.Reset()
	if d.Depth() != 0 || d.Frames() != 0 || len(d.Breaks()) != 0 {
		t.Errorf("state not cleared by Reset: depth=%d frames=%d breaks=%v", d.Depth(), d.Frames(), d.Breaks())
	}
}

func buildROM(tb testing.TB, code map[uint16][]byte) []byte {
	tb.Helper()

	rom := make([]byte, 0x8000)
	for addr, b := range code {
		copy(rom[addr:], b)
	}
	copy(rom[0x134:], "DBGTEST")

	var sum uint8
	for _, b := range rom[0x0134:0x014D] {
		sum = sum - b - 1
	}
	rom[0x014D] = sum
	return rom
}

func TestDebuggerOnMachine(t *testing.T) {
	rom := buildROM(t, map[uint16][]byte{
		0x0100: {0xCD, 0x00, 0x02}, // CALL $0200
		0x0200: {0xCD, 0x00, 0x03}, // CALL $0300
		0x0300: {0xD3},             // invalid
	})
	c, err := cart.New(rom)
	if err != nil {
		t.Fatal(err)
	}

	gb := hw.New(c, hw.ModelDMG)
	d := New(gb.Bus)
	gb.SetDebugger(d)
	gb.RunCycles(100)

	if !gb.System.IsTrap() {
		t.Fatal("machine should have trapped")
	}

	var sb strings.Builder
	if err := d.WriteCallStack(&sb, gb.CPU.PC); err != nil {
		t.Fatal(err)
	}
	const want = `#0  0300                   $0300
#1  0200                   $0200
#2  [bottom of stack]      $0100
`
	if got := sb.String(); got != want {
		t.Errorf("call stack:\n%s\nwant:\n%s", got, want)
	}
}
