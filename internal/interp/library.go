package interp

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/orizon-lang/irvm/internal/errors"
)

// libFunc is a library routine. It runs against the caller's frame and
// returns the values for RET1..RETn.
type libFunc func(in *Interpreter, f *frame, args []int32) ([]int32, error)

// library holds every routine reachable by name without a user frame.
var library = map[string]libFunc{
	"print":        libPrint,
	"println":      libPrintln,
	"readln":       libReadln,
	"getchar":      libGetchar,
	"eof":          libEOF,
	"parseInt":     libParseInt,
	"unparseInt":   libUnparseInt,
	"lengthInt":    libLength,
	"lengthBool":   libLength,
	"malloc":       libMalloc,
	"assert":       libAssert,
	"_outOfBounds": libOutOfBounds,
}

// IsLibrary reports whether name is a library routine.
func IsLibrary(name string) bool {
	_, ok := library[name]
	return ok
}

// LibraryNames returns the library routine names in sorted order.
func LibraryNames() []string {
	names := make([]string, 0, len(library))
	for name := range library {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func arity(name string, args []int32, n int) error {
	if len(args) < n {
		return errors.OperandTag(name, fmt.Sprintf("%d arguments, want %d", len(args), n))
	}

	return nil
}

func (in *Interpreter) readString(ref int32) (string, error) {
	codes, err := in.heap.Array(ref)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, c := range codes {
		b.WriteRune(rune(c))
	}

	return b.String(), nil
}

func (in *Interpreter) newString(s string) (int32, error) {
	runes := []rune(s)
	codes := make([]int32, len(runes))

	for i, r := range runes {
		codes[i] = int32(r)
	}

	return in.heap.NewArray(codes)
}

func libPrint(in *Interpreter, _ *frame, args []int32) ([]int32, error) {
	if err := arity("print", args, 1); err != nil {
		return nil, err
	}

	s, err := in.readString(args[0])
	if err != nil {
		return nil, err
	}

	if _, err := in.stdout.WriteString(s); err != nil {
		return nil, errors.IOFailure("print", err)
	}

	return nil, nil
}

func libPrintln(in *Interpreter, f *frame, args []int32) ([]int32, error) {
	if _, err := libPrint(in, f, args); err != nil {
		return nil, err
	}

	if err := in.stdout.WriteByte('\n'); err != nil {
		return nil, errors.IOFailure("println", err)
	}

	return nil, nil
}

// libReadln reads one line without its terminator. At end of input it
// returns an empty string.
func libReadln(in *Interpreter, _ *frame, _ []int32) ([]int32, error) {
	if err := in.stdout.Flush(); err != nil {
		return nil, errors.IOFailure("flush stdout", err)
	}

	line, err := in.stdin.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errors.IOFailure("readln", err)
	}

	line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

	ref, err := in.newString(line)
	if err != nil {
		return nil, err
	}

	return []int32{ref}, nil
}

// libGetchar returns the next character code, or -1 at end of input.
func libGetchar(in *Interpreter, _ *frame, _ []int32) ([]int32, error) {
	if err := in.stdout.Flush(); err != nil {
		return nil, errors.IOFailure("flush stdout", err)
	}

	r, _, err := in.stdin.ReadRune()
	if err == io.EOF {
		return []int32{-1}, nil
	}

	if err != nil {
		return nil, errors.IOFailure("getchar", err)
	}

	return []int32{int32(r)}, nil
}

func libEOF(in *Interpreter, _ *frame, _ []int32) ([]int32, error) {
	if err := in.stdout.Flush(); err != nil {
		return nil, errors.IOFailure("flush stdout", err)
	}

	if _, err := in.stdin.Peek(1); err != nil {
		if err == io.EOF {
			return []int32{1}, nil
		}

		return nil, errors.IOFailure("eof", err)
	}

	return []int32{0}, nil
}

// libParseInt returns the parsed value in RET1 and 1 in RET2 on success,
// or 0 and 0 when the text is not a 32-bit decimal integer.
func libParseInt(in *Interpreter, _ *frame, args []int32) ([]int32, error) {
	if err := arity("parseInt", args, 1); err != nil {
		return nil, err
	}

	s, err := in.readString(args[0])
	if err != nil {
		return nil, err
	}

	v, perr := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if perr != nil {
		return []int32{0, 0}, nil
	}

	return []int32{int32(v), 1}, nil
}

func libUnparseInt(in *Interpreter, _ *frame, args []int32) ([]int32, error) {
	if err := arity("unparseInt", args, 1); err != nil {
		return nil, err
	}

	ref, err := in.newString(strconv.FormatInt(int64(args[0]), 10))
	if err != nil {
		return nil, err
	}

	return []int32{ref}, nil
}

func libLength(in *Interpreter, _ *frame, args []int32) ([]int32, error) {
	if err := arity("length", args, 1); err != nil {
		return nil, err
	}

	n, err := in.heap.ArrayLen(args[0])
	if err != nil {
		return nil, err
	}

	return []int32{n}, nil
}

func libMalloc(in *Interpreter, _ *frame, args []int32) ([]int32, error) {
	if err := arity("malloc", args, 1); err != nil {
		return nil, err
	}

	addr, err := in.heap.Alloc(args[0])
	if err != nil {
		return nil, err
	}

	return []int32{addr}, nil
}

func libAssert(_ *Interpreter, f *frame, args []int32) ([]int32, error) {
	if err := arity("assert", args, 1); err != nil {
		return nil, err
	}

	if args[0] == 0 {
		return nil, errors.AssertionFailed(f.fn.Name)
	}

	return nil, nil
}

func libOutOfBounds(_ *Interpreter, f *frame, _ []int32) ([]int32, error) {
	return nil, errors.IndexOutOfBounds(f.fn.Name)
}
