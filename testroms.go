package main

import (
	"cmp"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"gbcore/emu/testrom"
)

// testMain runs all test roms concurrently and reports their results. The
// exit code is non-zero if at least one rom didn't pass.
func testMain(args Test, cfg Config) int {
	jobs := args.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	model := cmp.Or(args.Model, cfg.General.Model)

	results := make([]testrom.Result, len(args.RomPaths))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range args.RomPaths {
		g.Go(func() error {
			res, err := testrom.Run(path, model, args.Frames)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	npassed := 0
	for _, res := range results {
		fmt.Println(res)
		if res.Verdict == testrom.Passed {
			npassed++
		}
	}
	fmt.Printf("%d/%d passed\n", npassed, len(results))

	if npassed != len(results) {
		return 1
	}
	return 0
}
