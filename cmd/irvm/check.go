package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"runtime"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/orizon-lang/irvm/internal/cli"
	"github.com/orizon-lang/irvm/internal/interp"
)

// maxConcurrency bounds parallel builds. IRVM_MAX_CONCURRENCY overrides
// the default of one build per CPU.
func maxConcurrency() int {
	if v := os.Getenv("IRVM_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > 1024 {
				return 1024
			}

			return n
		}
	}

	return max(runtime.NumCPU(), 1)
}

func cmdCheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { cli.PrintCommandUsage(stderr, toolName, checkCommand) }

	if err := fs.Parse(args); err != nil {
		return 2
	}

	files := fs.Args()
	if err := cli.ValidateArgs(files, 1, checkCommand.Usage); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	results := checkAll(context.Background(), files)

	failed := 0

	for i, path := range files {
		if err := results[i]; err != nil {
			fmt.Fprintf(stderr, "FAIL %s: %v\n", path, err)
			failed++

			continue
		}

		fmt.Fprintf(stdout, "ok   %s\n", path)
	}

	if failed > 0 {
		fmt.Fprintf(stderr, "%d of %d programs failed\n", failed, len(files))
		return 1
	}

	return 0
}

// checkAll checks every file concurrently. Each file gets its own
// generator, lowerer and linearizer; a failure in one does not stop the
// others.
func checkAll(ctx context.Context, files []string) []error {
	results := make([]error, len(files))
	sem := make(chan struct{}, maxConcurrency())
	g, gctx := errgroup.WithContext(ctx)

	for i, path := range files {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}

			defer func() { <-sem }()

			results[i] = checkFile(path)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for i := range results {
			if results[i] == nil {
				results[i] = err
			}
		}
	}

	return results
}

// checkFile builds both IR forms, linearizes each twice and links them.
func checkFile(path string) error {
	b, err := compile(path, true)
	if err != nil {
		return err
	}

	for _, lower := range []bool{false, true} {
		first, err := linearize(b, lower)
		if err != nil {
			return err
		}

		second, err := linearize(b, lower)
		if err != nil {
			return err
		}

		if err := sameProgram(first, second); err != nil {
			return fmt.Errorf("nondeterministic linearization: %w", err)
		}

		if err := interp.Link(first); err != nil {
			return fmt.Errorf("link: %w", err)
		}
	}

	return nil
}

func sameProgram(a, b *interp.Program) error {
	if !maps.Equal(a.Labels, b.Labels) {
		return fmt.Errorf("label maps differ")
	}

	if !slices.Equal(a.Funcs, b.Funcs) {
		return fmt.Errorf("function ranges differ")
	}

	if len(a.Code) != len(b.Code) {
		return fmt.Errorf("code length %d != %d", len(a.Code), len(b.Code))
	}

	for i := range a.Code {
		if x, y := fmt.Sprint(a.Code[i]), fmt.Sprint(b.Code[i]); x != y {
			return fmt.Errorf("address %d: %s != %s", i, x, y)
		}
	}

	return nil
}
