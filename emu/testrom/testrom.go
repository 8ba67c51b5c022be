// Package testrom runs test roms reporting their results over the serial
// port (blargg) or through the CPU registers (mooneye).
package testrom

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"gbcore/hw"
	"gbcore/hw/cart"
	"gbcore/hw/sm83"
)

type Verdict uint8

const (
	Running Verdict = iota
	Passed
	Failed
	TimedOut
)

func (v Verdict) String() string {
	switch v {
	case Passed:
		return "PASS"
	case Failed:
		return "FAIL"
	case TimedOut:
		return "TIMEOUT"
	}
	return "RUNNING"
}

var (
	// Mooneye test roms send (and load in B, C, D, E, H, L) the first
	// Fibonacci numbers on success, and 0x42 six times on failure.
	mooneyePass = []byte{3, 5, 8, 13, 21, 34}
	mooneyeFail = []byte{0x42, 0x42, 0x42, 0x42, 0x42, 0x42}
)

// Judge returns the verdict of a test rom given what it sent over the serial
// port and its B, C, D, E, H and L registers.
func Judge(serial []byte, regs [6]uint8) Verdict {
	switch {
	case bytes.Contains(serial, []byte("Passed")), bytes.Contains(serial, mooneyePass):
		return Passed
	case bytes.Contains(serial, []byte("Failed")), bytes.Contains(serial, mooneyeFail):
		return Failed
	case bytes.Equal(regs[:], mooneyePass):
		return Passed
	}
	return Running
}

type Result struct {
	Path    string
	Verdict Verdict
	Frames  int
	Elapsed time.Duration
	Serial  []byte
	Msg     string // trap message
}

func (r Result) String() string {
	s := fmt.Sprintf("%-7s %s (%d frames, %s)", r.Verdict, filepath.Base(r.Path), r.Frames, r.Elapsed.Round(time.Millisecond))
	if r.Msg != "" {
		s += ": " + r.Msg
	}
	return s
}

// Run runs the test rom at path until it reports its result, the CPU traps
// or maxFrames frames have been emulated. model is dmg, cgb or auto.
func Run(path, model string, maxFrames int) (res Result, err error) {
	res.Path = path

	c, err := cart.Open(path)
	if err != nil {
		return res, err
	}
	m, err := hw.ParseModel(model, c.Header())
	if err != nil {
		return res, err
	}

	var serial bytes.Buffer
	gb := hw.New(c, m, hw.WithSerialOutput(&serial))

	start := time.Now()
	defer func() {
		res.Elapsed = time.Since(start)
		res.Serial = serial.Bytes()
	}()

	for res.Frames < maxFrames {
		gb.RunFrame()
		res.Frames++

		regs := [6]uint8{
			gb.CPU.Reg8(sm83.B), gb.CPU.Reg8(sm83.C),
			gb.CPU.Reg8(sm83.D), gb.CPU.Reg8(sm83.E),
			gb.CPU.Reg8(sm83.H), gb.CPU.Reg8(sm83.L),
		}
		if res.Verdict = Judge(serial.Bytes(), regs); res.Verdict != Running {
			return res, nil
		}
		if gb.System.IsTrap() {
			res.Verdict = Failed
			res.Msg = gb.System.TrapMessage()
			return res, nil
		}
	}

	res.Verdict = TimedOut
	return res, nil
}
