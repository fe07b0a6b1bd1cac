package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orizon-lang/irvm/internal/cli"
	"github.com/orizon-lang/irvm/internal/interp"
	"github.com/orizon-lang/irvm/internal/watch"
)

// runJob is one invocation of a program function.
type runJob struct {
	path   string
	fn     string
	args   []int32
	cfg    *cli.Config
	stdin  io.Reader
	stdout io.Writer
	logger *cli.Logger
}

func cmdRun(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { cli.PrintCommandUsage(stderr, toolName, runCommand) }

	var (
		lower      = fs.Bool("lower", false, "run the lowered LIR form")
		heap       = fs.Int("heap", 0, "heap size in bytes")
		depth      = fs.Int("depth", 0, "maximum call depth")
		seed       = fs.Uint64("seed", 0, "seed for unset register values")
		configPath = fs.String("config", "", "configuration file")
		watchMode  = fs.Bool("watch", false, "re-run on change")
		poll       = fs.Bool("poll", false, "poll for changes")
		verbose    = fs.Bool("v", false, "verbose output")
		debug      = fs.Bool("debug", false, "trace calls")
	)

	if err := fs.Parse(args); err != nil {
		return 2
	}

	rest := fs.Args()
	if err := cli.ValidateArgs(rest, 1, runCommand.Usage); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := cli.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Flags given on the command line override the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lower":
			cfg.Lower = *lower
		case "heap":
			cfg.HeapSize = *heap
		case "depth":
			cfg.MaxCallDepth = *depth
		case "seed":
			cfg.Seed = *seed
		case "v":
			cfg.Verbose = *verbose
		case "debug":
			cfg.Debug = *debug
		}
	})

	job := &runJob{path: rest[0], fn: "main", cfg: cfg, stdin: stdin, stdout: stdout, logger: newLogger(cfg, stderr)}

	if len(rest) > 1 {
		job.fn = rest[1]
	}

	if job.args, err = parseArgs(rest[min(2, len(rest)):]); err != nil {
		job.logger.Error("%v", err)
		return 2
	}

	if !*watchMode {
		return job.exec()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return job.watch(ctx, *poll)
}

// exec builds and runs the job once, returning the exit status.
func (j *runJob) exec() int {
	start := time.Now()

	b, err := compile(j.path, j.cfg.Lower)
	if err != nil {
		j.logger.Error("%v", err)
		return 1
	}

	in, err := b.interpreter(j.cfg.Lower, interp.Options{
		HeapSize:     j.cfg.HeapSize,
		MaxCallDepth: j.cfg.MaxCallDepth,
		Stdin:        j.stdin,
		Stdout:       j.stdout,
		Seed:         j.cfg.Seed,
		Logger:       j.logger,
	})
	if err != nil {
		j.logger.Error("link %s: %v", j.path, err)
		return 1
	}

	form := "HIR"
	if j.cfg.Lower {
		form = "LIR"
	}

	j.logger.Info("running %s(%v) from %s as %s", j.fn, j.args, j.path, form)

	results, err := in.CallAll(j.fn, j.args...)
	if err != nil {
		j.logger.Error("%v", err)
		return 1
	}

	if len(results) > 0 {
		fmt.Fprintln(j.stdout, results[0])
	}

	j.logger.Info("finished in %v, heap %d/%d bytes", time.Since(start).Round(time.Microsecond), in.Heap().Used(), in.Heap().Limit())

	return 0
}

// watch runs the job, then again after every change to the program file,
// until ctx is done.
func (j *runJob) watch(ctx context.Context, poll bool) int {
	w := watch.New(ctx, poll, 250*time.Millisecond)
	defer w.Close()

	if err := w.Add(j.path); err != nil {
		j.logger.Error("watch %s: %v", j.path, err)
		return 1
	}

	status := j.exec()
	changes := watch.Debounce(ctx, w.Events(), 100*time.Millisecond)

	for {
		select {
		case <-ctx.Done():
			return status
		case ev, ok := <-changes:
			if !ok {
				return status
			}

			j.logger.Info("%s: %s, re-running", ev.Path, ev.Op)
			status = j.exec()
		case err := <-w.Errors():
			j.logger.Warn("watch: %v", err)
		}
	}
}
