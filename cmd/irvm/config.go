package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/orizon-lang/irvm/internal/cli"
)

// cmdConfig writes a configuration file for run -config. Limit flags given
// here replace the defaults in the written file.
func cmdConfig(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { cli.PrintCommandUsage(stderr, toolName, configCommand) }

	var (
		force = fs.Bool("force", false, "overwrite an existing file")
		heap  = fs.Int("heap", cli.DefaultHeapSize, "heap size in bytes")
		depth = fs.Int("depth", cli.DefaultMaxCallDepth, "maximum call depth")
		lower = fs.Bool("lower", false, "run the lowered LIR form by default")
		seed  = fs.Uint64("seed", 0, "seed for unset register values")
	)

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := cli.ValidateArgs(fs.Args(), 1, configCommand.Usage); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	path := fs.Arg(0)

	if !*force {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(stderr, "Error: %s already exists (use -force to overwrite)\n", path)
			return 1
		}
	}

	if *heap <= 0 || *depth <= 0 {
		fmt.Fprintf(stderr, "Error: heap and depth must be positive\n")
		return 2
	}

	cfg := cli.DefaultConfig()
	cfg.HeapSize = *heap
	cfg.MaxCallDepth = *depth
	cfg.Lower = *lower
	cfg.Seed = *seed

	if err := cfg.SaveConfig(path); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "wrote %s\n", path)

	return 0
}
