package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"runtime/pprof"

	"gbcore/emu/debugger"
	"gbcore/emu/log"
	"gbcore/hw"
	"gbcore/hw/cart"
	"gbcore/hw/sm83"
	"gbcore/hw/snapshot"
)

// runMain runs the given rom headless, until the CPU traps, the frame limit
// is reached or the user interrupts it.
func runMain(args Run, cfg Config) int {
	c, err := cart.Open(args.RomPath)
	checkf(err, "error reading ROM")

	model, err := hw.ParseModel(cmp.Or(args.Model, cfg.General.Model), c.Header())
	checkf(err, "invalid hardware model")

	var opts []hw.Option
	if args.Serial || cfg.General.Serial {
		opts = append(opts, hw.WithSerialOutput(os.Stdout))
	}

	gb := hw.New(c, model, opts...)
	log.AddContext(gb.CPU)
	defer log.RemoveContext(gb.CPU)

	savePath := cart.SavePath(args.RomPath)
	if c.Type().Battery() {
		ram, err := os.ReadFile(savePath)
		switch {
		case err == nil:
			gb.Cart.Reset(ram)
			log.ModCart.InfoZ("battery RAM restored").String("path", savePath).End()
		case !errors.Is(err, fs.ErrNotExist):
			checkf(err, "failed to read battery save")
		}
	}

	if args.LoadState != "" {
		s, err := snapshot.ReadFile(args.LoadState)
		checkf(err, "failed to read savestate")
		checkf(gb.Load(s), "failed to load savestate %s", args.LoadState)
	}

	if args.Trace != nil {
		defer args.Trace.Close()

		var format hw.TraceFormat
		if args.TraceFormat != nil {
			format = args.TraceFormat.TraceFormat
		} else {
			format, err = hw.ParseTraceFormat(cmp.Or(cfg.Trace.Format, "text"))
			checkf(err, "invalid trace format in configuration")
		}
		gb.SetTraceOutput(args.Trace, format)
	}

	var (
		dbg    hw.Debugger
		cstack *debugger.Debugger
	)
	if args.CallStack {
		cstack = debugger.New(gb.Bus)
		dbg = cstack
		gb.SetDebugger(dbg)
	}

	if len(args.Watch) > 0 {
		wp := hw.NewWatchpoints(&gb.System, dbg)
		for _, w := range args.Watch {
			checkf(wp.Parse(w), "invalid watchpoint %q", w)
		}
		gb.Bus.AddObserver(wp)
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	maxFrames := cmp.Or(args.Frames, cfg.General.MaxFrames)
	nframes := 0
	for !gb.System.IsTrap() && ctx.Err() == nil {
		gb.RunFrame()
		nframes++
		if maxFrames > 0 && nframes >= maxFrames {
			break
		}
	}

	exitcode := 0
	if gb.System.IsTrap() {
		fmt.Fprintf(os.Stderr, "emulation stopped after %d frames: %s\n", nframes, gb.System.TrapMessage())
		if cstack != nil {
			cstack.WriteCallStack(os.Stderr, gb.CPU.PC)
		}
		exitcode = 1
	}

	if args.SaveState != "" {
		s := snapshot.New()
		gb.Save(s)
		if err := snapshot.WriteFile(args.SaveState, s); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write savestate: %v\n", err)
			exitcode = 1
		}
	}

	if c.Type().Battery() && len(c.RAM()) > 0 {
		if err := os.WriteFile(savePath, c.RAM(), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write battery save: %v\n", err)
			exitcode = 1
		}
	}

	return exitcode
}

func romInfosMain(args RomInfos) {
	c, err := cart.Open(args.RomPath)
	checkf(err, "error reading ROM")

	fmt.Println(c.Header())
	fmt.Printf("battery:  %t\n", c.Type().Battery())
}

// romPeeker exposes a rom image, as it's mapped at reset, to the
// disassembler.
type romPeeker []byte

func (r romPeeker) Peek8(addr uint16) uint8 {
	if int(addr) >= len(r) {
		return 0xFF
	}
	return r[addr]
}

func disasmMain(args Disasm) {
	rom, err := cart.ReadROM(args.RomPath)
	checkf(err, "error reading ROM")

	addr := uint16(args.Start)
	for range args.Count {
		op := sm83.Disasm(romPeeker(rom), addr)
		fmt.Println(op)
		addr += uint16(len(op.Buf))
	}
}
