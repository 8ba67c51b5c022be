package main

import (
	"fmt"
	"os"
	"runtime/debug"
)

func main() {
	args := parseArgs(os.Args[1:])

	cfg, err := LoadConfigOrDefault(args.Config)
	checkf(err, "failed to load configuration")
	if !args.Log.set && cfg.General.Log != "" {
		_, err := parseLogModules(cfg.General.Log)
		checkf(err, "invalid log modules in configuration")
	}

	switch args.mode {
	case romInfosMode:
		romInfosMain(args.RomInfos)
	case disasmMode:
		disasmMain(args.Disasm)
	case testMode:
		os.Exit(testMain(args.Test, cfg))
	case versionMode:
		fmt.Println("gbcore", version())
	case runMode:
		os.Exit(runMain(args.Run, cfg))
	}
}

func version() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "(devel)"
	}
	return bi.Main.Version
}
