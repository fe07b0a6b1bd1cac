// Package interp linearizes HIR (or LIR lifted back to HIR) into an
// addressable instruction sequence and executes it with explicit frames, a
// shared operand stack and a simulated heap.
package interp

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/orizon-lang/irvm/internal/cli"
	"github.com/orizon-lang/irvm/internal/errors"
	"github.com/orizon-lang/irvm/internal/hir"
	"github.com/orizon-lang/irvm/internal/lir"
)

// Options configures an interpreter. Zero fields take their defaults.
type Options struct {
	// HeapSize is the maximum simulated heap in bytes.
	HeapSize int
	// MaxCallDepth bounds nested user calls.
	MaxCallDepth int
	Stdin        io.Reader
	// Stdout is buffered and flushed when the outermost call returns.
	Stdout io.Writer
	// Seed drives the filler for reads of unset registers.
	Seed uint64
	// Logger traces calls at debug level when set.
	Logger *cli.Logger
}

func (o Options) withDefaults() Options {
	if o.HeapSize <= 0 {
		o.HeapSize = cli.DefaultHeapSize
	}

	if o.MaxCallDepth <= 0 {
		o.MaxCallDepth = cli.DefaultMaxCallDepth
	}

	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}

	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}

	return o
}

// Interpreter executes one linearized program. It is not safe for
// concurrent use; each run of a program gets its own instance.
type Interpreter struct {
	prog   *Program
	heap   *Heap
	stack  operandStack
	rng    *rand.Rand
	logger *cli.Logger

	maxDepth int
	depth    int

	stdin  *bufio.Reader
	stdout *bufio.Writer
}

// New linearizes and links u. Build and link failures are reported here,
// before any frame exists.
func New(u *hir.Unit, opts Options) (*Interpreter, error) {
	p, err := Linearize(u)
	if err != nil {
		return nil, err
	}

	return NewProgram(p, opts)
}

// NewLIR is New for a lowered unit.
func NewLIR(u *lir.Unit, opts Options) (*Interpreter, error) {
	p, err := LinearizeLIR(u)
	if err != nil {
		return nil, err
	}

	return NewProgram(p, opts)
}

// NewProgram links an already linearized program.
func NewProgram(p *Program, opts Options) (*Interpreter, error) {
	if err := Link(p); err != nil {
		return nil, err
	}

	opts = opts.withDefaults()

	return &Interpreter{
		prog:     p,
		heap:     NewHeap(opts.HeapSize),
		rng:      rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		logger:   opts.Logger,
		maxDepth: opts.MaxCallDepth,
		stdin:    bufio.NewReader(opts.Stdin),
		stdout:   bufio.NewWriter(opts.Stdout),
	}, nil
}

// Program returns the linearized program being executed.
func (in *Interpreter) Program() *Program { return in.prog }

// Heap returns the simulated heap.
func (in *Interpreter) Heap() *Heap { return in.heap }

// Call runs the function or library routine name and returns its first
// result, or 0 when it returns none.
func (in *Interpreter) Call(name string, args ...int32) (int32, error) {
	results, err := in.CallAll(name, args...)
	if err != nil {
		return 0, err
	}

	if len(results) == 0 {
		return 0, nil
	}

	return results[0], nil
}

// CallAll runs name and returns every value it returned.
func (in *Interpreter) CallAll(name string, args ...int32) (results []int32, err error) {
	if in.depth == 0 {
		defer func() {
			if ferr := in.stdout.Flush(); ferr != nil && err == nil {
				err = errors.IOFailure("flush stdout", ferr)
			}

			if err != nil {
				in.stack.reset()
			}
		}()
	}

	addr, ok := in.prog.Labels[name]
	if !ok {
		if !IsLibrary(name) {
			return nil, fmt.Errorf("call %s: %w", name, errors.UnresolvedName(name))
		}

		addr = -1
	}

	root := newFrame(FuncRange{Name: "<root>"}, -1, nil)

	results, err = in.invoke(root, entry{kind: kindSymbol, name: name, value: int32(addr)}, args)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}

	return results, nil
}

// invoke calls target with args evaluated in the caller. Library routines
// run against the caller's frame; user functions get a fresh frame.
func (in *Interpreter) invoke(caller *frame, target entry, args []int32) ([]int32, error) {
	if target.kind == kindSymbol && target.value < 0 {
		fn, ok := library[target.name]
		if !ok {
			return nil, errors.UnresolvedName(target.name)
		}

		return fn(in, caller, args)
	}

	if target.kind != kindSymbol && target.kind != kindValue {
		return nil, errors.OperandTag("call", target.kind.String())
	}

	addr := int(target.value)

	fn, ok := in.prog.Entry(target.name)
	if !ok || fn.Start != addr {
		if fn, ok = in.prog.Function(addr); !ok {
			return nil, errors.BadInstruction(addr)
		}
	}

	if in.depth >= in.maxDepth {
		return nil, errors.CallDepthExceeded(in.depth)
	}

	if in.logger != nil && in.logger.DebugMode {
		in.logger.Debug("call %s%v depth=%d", fn.Name, args, in.depth+1)
	}

	in.depth++
	height := in.stack.height()

	callee := newFrame(fn, addr, args)
	err := in.run(callee)

	in.stack.truncate(height)
	in.depth--

	if err != nil {
		return nil, err
	}

	return callee.returns, nil
}

// run steps f until it returns.
func (in *Interpreter) run(f *frame) error {
	for {
		if f.ip == f.fn.End {
			return nil
		}

		if f.ip < f.fn.Start || f.ip > f.fn.End {
			return errors.BadInstruction(f.ip)
		}

		f.jumped = false

		if err := in.step(f, in.prog.Code[f.ip]); err != nil {
			return err
		}

		switch {
		case f.ip == -1:
			return nil
		case !f.jumped:
			f.ip++
		}
	}
}

// value extracts the int32 an entry stands for.
func (in *Interpreter) value(f *frame, e entry) int32 {
	if e.kind == kindTemp && !e.set {
		return f.filler(e.name, in.rng)
	}

	return e.value
}

func (in *Interpreter) popValue(f *frame, op string) (int32, error) {
	e, err := in.stack.pop(op)
	if err != nil {
		return 0, err
	}

	return in.value(f, e), nil
}

func (in *Interpreter) popValues(f *frame, op string, n int) ([]int32, error) {
	entries, err := in.stack.popN(op, n)
	if err != nil {
		return nil, err
	}

	out := make([]int32, n)
	for i, e := range entries {
		out[i] = in.value(f, e)
	}

	return out, nil
}

// step interprets one node. Its children have already run and left their
// entries on the stack, leftmost deepest.
func (in *Interpreter) step(f *frame, n hir.Node) error {
	switch x := n.(type) {
	case *hir.Seq:
		// children did all the work
	case *hir.ESeq:
		// the statement pushed nothing; X's entry is already on top
	case *hir.Const:
		in.stack.pushValue(x.Value)
	case *hir.Temp:
		v, ok := f.read(x.Name)
		in.stack.push(entry{kind: kindTemp, name: x.Name, value: v, set: ok})
	case *hir.Name:
		addr, ok := in.prog.Labels[x.Label]
		if !ok {
			addr = -1
		}

		in.stack.push(entry{kind: kindSymbol, name: x.Label, value: int32(addr), set: true})
	case *hir.Mem:
		addr, err := in.popValue(f, "mem")
		if err != nil {
			return err
		}

		v, err := in.heap.Load(addr)
		if err != nil {
			return err
		}

		in.stack.push(entry{kind: kindMem, addr: addr, value: v, set: true})
	case *hir.BinOp:
		operands, err := in.popValues(f, x.Op.String(), 2)
		if err != nil {
			return err
		}

		v, err := binop(x.Op, operands[0], operands[1])
		if err != nil {
			return err
		}

		in.stack.pushValue(v)
	case *hir.UnaryOp:
		v, err := in.popValue(f, x.Op.String())
		if err != nil {
			return err
		}

		in.stack.pushValue(unop(x.Op, v))
	case *hir.Call:
		results, err := in.call(f, "call", len(x.Args))
		if err != nil {
			return err
		}

		first := int32(0)
		if len(results) > 0 {
			first = results[0]
		}

		in.stack.pushValue(first)
	case *hir.CallStmt:
		results, err := in.call(f, "callstmt", len(x.Args))
		if err != nil {
			return err
		}

		if x.NumReturns > 0 && len(results) < x.NumReturns {
			return errors.ReturnCount(x.Target.String(), x.NumReturns, len(results))
		}
	case *hir.Move:
		return in.move(f)
	case *hir.Exp:
		_, err := in.stack.pop("exp")
		return err
	case *hir.Jump:
		target, err := in.stack.pop("jump")
		if err != nil {
			return err
		}

		if target.kind == kindSymbol && target.value < 0 {
			return errors.OperandTag("jump", "library routine "+target.name)
		}

		f.jump(int(in.value(f, target)))
	case *hir.CJump:
		cond, err := in.popValue(f, "cjump")
		if err != nil {
			return err
		}

		label := x.False
		if cond != 0 {
			label = x.True
		}

		f.jump(in.prog.Labels[label])
	case *hir.Return:
		values, err := in.popValues(f, "return", len(x.Values))
		if err != nil {
			return err
		}

		f.returns = values
		f.ip = -1
	default:
		return errors.OperandTag("step", fmt.Sprintf("node %T", n))
	}

	return nil
}

// call pops nargs arguments and the target, invokes it and copies the
// results into the caller's RET registers.
func (in *Interpreter) call(f *frame, op string, nargs int) ([]int32, error) {
	args, err := in.popValues(f, op, nargs)
	if err != nil {
		return nil, err
	}

	target, err := in.stack.pop(op)
	if err != nil {
		return nil, err
	}

	results, err := in.invoke(f, target, args)
	if err != nil {
		return nil, err
	}

	f.setReturns(results)

	return results, nil
}

// move stores the source value into the register or memory cell the
// target entry came from.
func (in *Interpreter) move(f *frame) error {
	src, err := in.popValue(f, "move")
	if err != nil {
		return err
	}

	target, err := in.stack.pop("move")
	if err != nil {
		return err
	}

	switch target.kind {
	case kindTemp:
		f.write(target.name, src)
		return nil
	case kindMem:
		return in.heap.Store(target.addr, src)
	default:
		return errors.OperandTag("move", target.kind.String())
	}
}

func boolValue(b bool) int32 {
	if b {
		return 1
	}

	return 0
}

// binop applies op with 32-bit wrapping arithmetic. Shift counts use the
// low five bits.
func binop(op hir.BinOpKind, l, r int32) (int32, error) {
	switch op {
	case hir.OpAdd:
		return l + r, nil
	case hir.OpSub:
		return l - r, nil
	case hir.OpMul:
		return l * r, nil
	case hir.OpDiv:
		if r == 0 {
			return 0, errors.DivisionByZero("div")
		}

		return l / r, nil
	case hir.OpMod:
		if r == 0 {
			return 0, errors.DivisionByZero("mod")
		}

		return l % r, nil
	case hir.OpAnd:
		return l & r, nil
	case hir.OpOr:
		return l | r, nil
	case hir.OpXor:
		return l ^ r, nil
	case hir.OpShl:
		return l << (uint32(r) & 31), nil
	case hir.OpShr:
		return l >> (uint32(r) & 31), nil
	case hir.OpUShr:
		return int32(uint32(l) >> (uint32(r) & 31)), nil
	case hir.OpEq:
		return boolValue(l == r), nil
	case hir.OpNe:
		return boolValue(l != r), nil
	case hir.OpLt:
		return boolValue(l < r), nil
	case hir.OpLe:
		return boolValue(l <= r), nil
	case hir.OpGt:
		return boolValue(l > r), nil
	case hir.OpGe:
		return boolValue(l >= r), nil
	case hir.OpULt:
		return boolValue(uint32(l) < uint32(r)), nil
	default:
		return 0, errors.OperandTag("binop", op.String())
	}
}

func unop(op hir.UnaryOpKind, v int32) int32 {
	if op == hir.OpNeg {
		return -v
	}

	return ^v
}
