package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orizon-lang/irvm/internal/ast"
	"github.com/orizon-lang/irvm/internal/hir"
	"github.com/orizon-lang/irvm/internal/interp"
	"github.com/orizon-lang/irvm/internal/irgen"
	"github.com/orizon-lang/irvm/internal/lir"
)

// build holds one program document carried through the pipeline.
type build struct {
	path string
	prog *ast.Program
	hir  *hir.Unit
	lir  *lir.Unit
}

// compile loads path and generates HIR. The LIR form is produced only when
// lower is set.
func compile(path string, lower bool) (*build, error) {
	prog, err := ast.LoadFile(path)
	if err != nil {
		return nil, err
	}

	u, err := irgen.Generate(prog)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", path, err)
	}

	b := &build{path: path, prog: prog, hir: u}

	if lower {
		if b.lir, err = lir.Lower(u); err != nil {
			return nil, fmt.Errorf("lower %s: %w", path, err)
		}
	}

	return b, nil
}

// interpreter links the requested IR form into a fresh interpreter.
func (b *build) interpreter(lower bool, opts interp.Options) (*interp.Interpreter, error) {
	if lower {
		if b.lir == nil {
			l, err := lir.Lower(b.hir)
			if err != nil {
				return nil, fmt.Errorf("lower %s: %w", b.path, err)
			}

			b.lir = l
		}

		return interp.NewLIR(b.lir, opts)
	}

	return interp.New(b.hir, opts)
}

// functions lists the user function names in declaration order.
func (b *build) functions() []string {
	names := make([]string, len(b.hir.Functions))
	for i, f := range b.hir.Functions {
		names[i] = f.Name
	}

	return names
}

// parseArgs converts decimal command-line arguments to 32-bit values.
func parseArgs(args []string) ([]int32, error) {
	out := make([]int32, len(args))

	for i, a := range args {
		v, err := strconv.ParseInt(strings.TrimSpace(a), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %q is not a 32-bit integer", i+1, a)
		}

		out[i] = int32(v)
	}

	return out, nil
}

// opcode is the one-line form of a linearized node: the node itself
// without the operands that were already evaluated at earlier addresses.
func opcode(n hir.Node) string {
	switch x := n.(type) {
	case *hir.Seq:
		return "SEQ"
	case *hir.ESeq:
		return "ESEQ"
	case *hir.Move:
		return "MOVE"
	case *hir.Exp:
		return "EXP"
	case *hir.Jump:
		return "JUMP"
	case *hir.CJump:
		return fmt.Sprintf("CJUMP %s %s", x.True, x.False)
	case *hir.Return:
		return fmt.Sprintf("RETURN/%d", len(x.Values))
	case *hir.CallStmt:
		return fmt.Sprintf("CALLSTMT[%d]/%d", x.NumReturns, len(x.Args))
	case *hir.Call:
		return fmt.Sprintf("CALL/%d", len(x.Args))
	case *hir.Mem:
		return "MEM"
	case *hir.BinOp:
		return "BINOP " + x.Op.String()
	case *hir.UnaryOp:
		return "UNOP " + x.Op.String()
	default:
		return fmt.Sprint(n)
	}
}
