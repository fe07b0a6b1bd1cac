package main

import (
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/orizon-lang/irvm/internal/cli"
	"github.com/orizon-lang/irvm/internal/interp"
)

func cmdDump(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { cli.PrintCommandUsage(stderr, toolName, dumpCommand) }

	lower := fs.Bool("lir", false, "print LIR")
	linear := fs.Bool("linear", false, "print linearized code")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := cli.ValidateArgs(fs.Args(), 1, dumpCommand.Usage); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	b, err := compile(fs.Arg(0), *lower)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if *linear {
		p, err := linearize(b, *lower)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}

		writeLinear(stdout, p)

		return 0
	}

	if *lower {
		fmt.Fprint(stdout, b.lir.String())
	} else {
		fmt.Fprint(stdout, b.hir.String())
	}

	return 0
}

func linearize(b *build, lower bool) (*interp.Program, error) {
	if lower {
		return interp.LinearizeLIR(b.lir)
	}

	return interp.Linearize(b.hir)
}

// writeLinear prints one node per address with the labels bound to each
// address listed before it.
func writeLinear(w io.Writer, p *interp.Program) {
	at := make(map[int][]string, len(p.Labels))
	for name, addr := range p.Labels {
		at[addr] = append(at[addr], name)
	}

	for _, names := range at {
		sort.Strings(names)
	}

	for addr := 0; addr <= len(p.Code); addr++ {
		for _, name := range at[addr] {
			fmt.Fprintf(w, "%s:\n", name)
		}

		if addr < len(p.Code) {
			fmt.Fprintf(w, "%6d  %s\n", addr, opcode(p.Code[addr]))
		}
	}
}
