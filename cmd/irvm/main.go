// Package main provides the irvm command. It loads typed program documents,
// generates HIR, optionally lowers it to LIR, and runs functions on the
// linearizing interpreter.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/orizon-lang/irvm/internal/cli"
)

const toolName = "irvm"

var (
	runCommand = cli.CommandInfo{
		Name:        "run",
		Usage:       "irvm run [OPTIONS] <program.json> [function] [args...]",
		Description: "Run a function (default main) and print its first result",
		Examples: []string{
			"irvm run testdata/programs/factorial.json factorial_tailWrap 5",
			"irvm run -lower -watch testdata/programs/collatz.json",
		},
		Flags: []cli.FlagInfo{
			{Name: "lower", Usage: "run the lowered LIR form instead of HIR"},
			{Name: "heap", Usage: "heap size in bytes", Default: fmt.Sprint(cli.DefaultHeapSize)},
			{Name: "depth", Usage: "maximum call depth", Default: fmt.Sprint(cli.DefaultMaxCallDepth)},
			{Name: "seed", Usage: "seed for unset register values", Default: "0"},
			{Name: "config", Usage: "configuration file"},
			{Name: "watch", Usage: "re-run whenever the program file changes"},
			{Name: "poll", Usage: "poll for changes instead of using OS notifications"},
			{Name: "v", Usage: "verbose output"},
			{Name: "debug", Usage: "trace every call"},
		},
	}
	dumpCommand = cli.CommandInfo{
		Name:        "dump",
		Usage:       "irvm dump [-lir] [-linear] <program.json>",
		Description: "Print the generated IR",
		Flags: []cli.FlagInfo{
			{Name: "lir", Usage: "print the lowered LIR instead of HIR"},
			{Name: "linear", Usage: "print the linearized instruction list with addresses"},
		},
	}
	checkCommand = cli.CommandInfo{
		Name:        "check",
		Usage:       "irvm check <program.json>...",
		Description: "Build, lower and link programs concurrently",
		Examples:    []string{"IRVM_MAX_CONCURRENCY=2 irvm check testdata/programs/*.json"},
	}
	replCommand = cli.CommandInfo{
		Name:        "repl",
		Usage:       "irvm repl [OPTIONS] <program.json>",
		Description: "Call functions interactively",
		Flags: []cli.FlagInfo{
			{Name: "lower", Usage: "start in LIR mode"},
			{Name: "history", Usage: "history file", Default: "~/" + historyFile},
		},
	}
	configCommand = cli.CommandInfo{
		Name:        "config",
		Usage:       "irvm config [OPTIONS] <file.json>",
		Description: "Write a configuration file for run -config",
		Examples:    []string{"irvm config -heap 65536 irvm.json"},
		Flags: []cli.FlagInfo{
			{Name: "force", Usage: "overwrite an existing file"},
			{Name: "heap", Usage: "heap size in bytes", Default: fmt.Sprint(cli.DefaultHeapSize)},
			{Name: "depth", Usage: "maximum call depth", Default: fmt.Sprint(cli.DefaultMaxCallDepth)},
			{Name: "lower", Usage: "run the lowered LIR form by default"},
			{Name: "seed", Usage: "seed for unset register values", Default: "0"},
		},
	}
	versionCommand = cli.CommandInfo{
		Name:        "version",
		Usage:       "irvm version [--json]",
		Description: "Print version information",
	}

	commands = []cli.CommandInfo{runCommand, dumpCommand, checkCommand, replCommand, configCommand, versionCommand}
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// realMain dispatches a subcommand and returns the process exit status.
func realMain(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		cli.PrintUsage(stderr, toolName, commands)
		return 2
	}

	sub, rest := args[0], args[1:]

	switch sub {
	case "help", "-h", "--help":
		return help(rest, stdout, stderr)
	case "version", "--version":
		jsonOutput := false

		for _, arg := range rest {
			if arg == "--json" || arg == "-j" {
				jsonOutput = true
				break
			}
		}

		if err := cli.WriteVersion(stdout, "irvm", jsonOutput); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}

		return 0
	case "run":
		return cmdRun(rest, stdin, stdout, stderr)
	case "dump":
		return cmdDump(rest, stdout, stderr)
	case "check":
		return cmdCheck(rest, stdout, stderr)
	case "repl":
		return cmdRepl(rest, stdout, stderr)
	case "config":
		return cmdConfig(rest, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown subcommand: %s\n", sub)
		cli.PrintUsage(stderr, toolName, commands)

		return 2
	}
}

func help(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		cli.PrintUsage(stdout, toolName, commands)
		return 0
	}

	for _, cmd := range commands {
		if cmd.Name == args[0] {
			cli.PrintCommandUsage(stdout, toolName, cmd)
			return 0
		}
	}

	fmt.Fprintf(stderr, "unknown command: %s\n", args[0])

	return 2
}

// newLogger builds the CLI logger. Level tags are coloured only when the
// log goes to a terminal.
func newLogger(cfg *cli.Config, w io.Writer) *cli.Logger {
	logger := cli.NewLogger(cfg.Verbose, cfg.Debug)
	logger.Out = w

	if f, ok := w.(*os.File); ok {
		logger.Color = isTerminal(f)
	}

	return logger
}
