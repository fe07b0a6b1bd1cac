package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/orizon-lang/irvm/internal/cli"
	"github.com/orizon-lang/irvm/internal/interp"
)

const (
	historyFile = ".irvm_history"
	prompt      = "irvm> "
)

// session is the state of one REPL. Each IR form keeps its own
// interpreter, so heap contents persist between calls in the same form.
type session struct {
	build   *build
	lower   bool
	out     io.Writer
	opts    interp.Options
	interps map[bool]*interp.Interpreter
}

func newSession(b *build, lower bool, out io.Writer, opts interp.Options) *session {
	opts.Stdout = out

	return &session{build: b, lower: lower, out: out, opts: opts, interps: make(map[bool]*interp.Interpreter)}
}

func (s *session) current() (*interp.Interpreter, error) {
	if in, ok := s.interps[s.lower]; ok {
		return in, nil
	}

	in, err := s.build.interpreter(s.lower, s.opts)
	if err != nil {
		return nil, err
	}

	s.interps[s.lower] = in

	return in, nil
}

// exec handles one input line and reports whether the session should end.
func (s *session) exec(line string) (quit bool) {
	line = strings.TrimSpace(line)

	switch line {
	case "":
		return false
	case ":quit", ":q", ":exit":
		return true
	case ":hir":
		s.lower = false
		fmt.Fprintln(s.out, "mode: HIR")

		return false
	case ":lir":
		s.lower = true
		fmt.Fprintln(s.out, "mode: LIR")

		return false
	case ":funcs":
		fmt.Fprintln(s.out, strings.Join(s.build.functions(), " "))
		return false
	case ":help", ":h":
		fmt.Fprintln(s.out, "call a function as name(arg, ...) or name arg ...")
		fmt.Fprintln(s.out, ":hir, :lir   switch IR form")
		fmt.Fprintln(s.out, ":funcs       list functions")
		fmt.Fprintln(s.out, ":quit        exit")

		return false
	}

	if strings.HasPrefix(line, ":") {
		fmt.Fprintf(s.out, "unknown command %s. Type :help for help.\n", line)
		return false
	}

	name, args, err := parseCall(line)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return false
	}

	in, err := s.current()
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return false
	}

	results, err := in.CallAll(name, args...)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return false
	}

	strs := make([]string, len(results))
	for i, v := range results {
		strs[i] = fmt.Sprint(v)
	}

	fmt.Fprintf(s.out, "= %s\n", strings.Join(strs, ", "))

	return false
}

// parseCall accepts "f(1, 2)", "f 1 2" and "f".
func parseCall(line string) (string, []int32, error) {
	var name, rest string

	if open := strings.IndexByte(line, '('); open >= 0 {
		if !strings.HasSuffix(line, ")") {
			return "", nil, fmt.Errorf("missing ')'")
		}

		name = strings.TrimSpace(line[:open])
		rest = strings.ReplaceAll(line[open+1:len(line)-1], ",", " ")
	} else {
		fields := strings.Fields(line)
		name = fields[0]
		rest = strings.Join(fields[1:], " ")
	}

	if name == "" || strings.ContainsAny(name, " \t") {
		return "", nil, fmt.Errorf("bad function name %q", name)
	}

	args, err := parseArgs(strings.Fields(rest))
	if err != nil {
		return "", nil, err
	}

	return name, args, nil
}

func (s *session) complete(line string) []string {
	var out []string

	for _, name := range slices.Concat(s.build.functions(), interp.LibraryNames(), []string{":hir", ":lir", ":funcs", ":help", ":quit"}) {
		if strings.HasPrefix(name, line) {
			out = append(out, name)
		}
	}

	return out
}

func cmdRepl(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { cli.PrintCommandUsage(stderr, toolName, replCommand) }

	home, _ := os.UserHomeDir()

	lower := fs.Bool("lower", false, "start in LIR mode")
	histPath := fs.String("history", filepath.Join(home, historyFile), "history file")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := cli.ValidateArgs(fs.Args(), 1, replCommand.Usage); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	b, err := compile(fs.Arg(0), false)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	s := newSession(b, *lower, stdout, interp.Options{Stdin: os.Stdin})

	ln := liner.NewLiner()
	defer ln.Close()

	ln.SetCtrlCAborts(true)
	ln.SetCompleter(s.complete)

	if f, err := os.Open(*histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	defer func() {
		if f, err := os.Create(*histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)

	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	fmt.Fprintf(stdout, "%s %s: %s (%d functions). Type :help for help.\n", toolName, cli.Version, b.prog.Name, len(b.hir.Functions))

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(stdout)
			return 0
		}

		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}

		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}

		if s.exec(line) {
			return 0
		}
	}
}
