package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"gbcore/emu/log"
	"gbcore/hw"
)

type mode byte

const (
	runMode      mode = iota // Run a ROM headless
	romInfosMode             // Show ROM infos
	disasmMode               // Disassemble a ROM
	testMode                 // Run test ROMs
	versionMode              // Show gbcore version
)

type (
	CLI struct {
		Run      Run      `cmd:"" help:"Run ROM in emulator."`
		RomInfos RomInfos `cmd:"" help:"Show ROM infos." name:"rom-infos"`
		Disasm   Disasm   `cmd:"" help:"Disassemble ROM."`
		Test     Test     `cmd:"" help:"Run test ROMs and report their results."`
		Version  Version  `cmd:"" help:"Show gbcore version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `name:"config" help:"${config_help}" type:"path"`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"${rompath_help}" required:"true" type:"existingfile"`

		Model       string           `name:"model" help:"${model_help}" placeholder:"dmg|cgb|auto"`
		Frames      int              `name:"frames" help:"Stop after that many frames (0: until the CPU traps)."`
		Serial      bool             `name:"serial" help:"Echo serial output to stdout."`
		Trace       *outfile         `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		TraceFormat *traceFormatFlag `name:"trace-format" help:"${trace_format_help}" placeholder:"text|doctor|json"`
		Watch       []string         `name:"watch" help:"${watch_help}" placeholder:"r:ADDR|w:ADDR|rw:START-END"`
		CallStack   bool             `name:"callstack" help:"Follow the call stack, print it when the emulation stops on a trap."`
		SaveState   string           `name:"save-state" help:"Write a savestate when the emulation stops." type:"path"`
		LoadState   string           `name:"load-state" help:"Load a savestate before running." type:"existingfile"`
		CPUProfile  string           `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
	}

	RomInfos struct {
		RomPath string `arg:"" name:"/path/to/rom" type:"existingfile"`
	}

	Disasm struct {
		RomPath string `arg:"" name:"/path/to/rom" type:"existingfile"`
		Start   addrFlag `name:"start" help:"Address of the first instruction." default:"0100"`
		Count   int      `name:"count" help:"Number of instructions to disassemble." default:"32"`
	}

	Test struct {
		RomPaths []string `arg:"" name:"/path/to/rom" help:"Test ROMs to run."`

		Model  string `name:"model" help:"${model_help}" placeholder:"dmg|cgb|auto"`
		Frames int    `name:"frames" help:"Give up on a ROM after that many frames." default:"3600"`
		Jobs   int    `name:"jobs" short:"j" help:"Number of ROMs run concurrently (0: one per CPU)." default:"0"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"rompath_help":      "ROM to run, .gb/.gbc files or a .zip/.7z archive containing one.",
	"cpuprofile_help":   "Write CPU profile to file.",
	"log_help":          "Enable logging for specified modules.",
	"config_help":       "Configuration file (default: <user config dir>/gbcore/config.toml).",
	"model_help":        "Hardware model: dmg, cgb or auto (from the cartridge header).",
	"trace_format_help": "CPU trace format: text, doctor or json.",
	"watch_help":        "Stop when the given address range is read or written.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("gbcore"),
		kong.Description("Cycle-accurate Game Boy (DMG/CGB) emulator core."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch strings.Fields(ctx.Command())[0] {
	case "rom-infos":
		cfg.mode = romInfosMode
	case "disasm":
		cfg.mode = disasmMode
	case "test":
		cfg.mode = testMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") || strings.HasPrefix(ctx.Command(), "test") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask struct {
	mask log.ModuleMask
	set  bool
}

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	mask, err := parseLogModules(tok.Value.(string))
	if err != nil {
		return err
	}
	lm.mask = mask
	lm.set = true
	return nil
}

// parseLogModules parses a comma-separated list of module names, 'all' or
// 'no', and applies it to the log package.
func parseLogModules(list string) (log.ModuleMask, error) {
	var lm log.ModuleMask
	nolog := false
	allLogs := false

	for _, v := range strings.Split(list, ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		case "":
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return 0, fmt.Errorf("unknown log module %s", v)
			}
			lm |= mod.Mask()
		}
	}

	if nolog {
		if allLogs {
			return 0, fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return 0, fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return 0, nil
	}

	if allLogs {
		lm = log.ModuleMaskAll
	}

	log.EnableDebugModules(lm)
	return lm, nil
}

type traceFormatFlag struct {
	hw.TraceFormat
}

// Decode implements kong.MapperValue interface.
func (f *traceFormatFlag) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	format, err := hw.ParseTraceFormat(tok.Value.(string))
	if err != nil {
		return err
	}
	f.TraceFormat = format
	return nil
}

type addrFlag uint16

// Decode decodes an hexadecimal address, optionally prefixed by $ or 0x.
//
// Implements kong.MapperValue interface.
func (a *addrFlag) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	s, ok := tok.Value.(string)
	if !ok {
		return fmt.Errorf("expected an address, got %v", tok.Value)
	}
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "$"), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return fmt.Errorf("invalid address %q", tok.Value)
	}
	*a = addrFlag(v)
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
