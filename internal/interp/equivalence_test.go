package interp

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/orizon-lang/irvm/internal/ast"
	"github.com/orizon-lang/irvm/internal/errors"
	"github.com/orizon-lang/irvm/internal/irgen"
	"github.com/orizon-lang/irvm/internal/testrunner/prop"
)

type termKind int

const (
	termConst termKind = iota
	termParam
	termTick
	termBinary
	termIndex
	termLogical
)

// term is a generated integer expression over the parameters a and b, an
// array xs = {a, b, 7}, and tick(k), which prints k and returns it so that
// evaluation order shows up in the output.
type term struct {
	kind  termKind
	op    ast.BinaryOp
	value int32
	kids  []*term
}

func (t *term) String() string {
	switch t.kind {
	case termConst:
		return fmt.Sprint(t.value)
	case termParam:
		return string(rune('a' + t.value))
	case termTick:
		return fmt.Sprintf("tick(%s)", t.kids[0])
	case termIndex:
		return fmt.Sprintf("xs[%s & 3]", t.kids[0])
	default:
		return fmt.Sprintf("(%s %s %s)", t.kids[0], t.op, t.kids[1])
	}
}

var arithmetic = []ast.BinaryOp{
	ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod,
	ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr,
	ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe,
}

func genTerm(r *rand.Rand, depth int) *term {
	if depth <= 0 || r.IntN(4) == 0 {
		if r.IntN(2) == 0 {
			return &term{kind: termConst, value: r.Int32N(11) - 5}
		}

		return &term{kind: termParam, value: r.Int32N(2)}
	}

	switch r.IntN(6) {
	case 0:
		return &term{kind: termTick, kids: []*term{genTerm(r, depth-1)}}
	case 1:
		return &term{kind: termIndex, kids: []*term{genTerm(r, depth-1)}}
	case 2:
		op := ast.OpLogAnd
		if r.IntN(2) == 0 {
			op = ast.OpLogOr
		}

		return &term{kind: termLogical, op: op, kids: []*term{genTerm(r, depth-1), genTerm(r, depth-1)}}
	default:
		op := arithmetic[r.IntN(len(arithmetic))]
		return &term{kind: termBinary, op: op, kids: []*term{genTerm(r, depth-1), genTerm(r, depth-1)}}
	}
}

func shrinkTerm(t *term) []*term {
	var out []*term

	if t.kind != termConst || t.value != 0 {
		out = append(out, &term{kind: termConst})
	}

	out = append(out, t.kids...)

	for i, k := range t.kids {
		for _, s := range shrinkTerm(k) {
			kids := append([]*term(nil), t.kids...)
			kids[i] = s
			out = append(out, &term{kind: t.kind, op: t.op, value: t.value, kids: kids})
		}
	}

	return out
}

func (t *term) expr() ast.Expr {
	switch t.kind {
	case termConst:
		return ast.NewInt(t.value)
	case termParam:
		return ast.NewIdent(t.String())
	case termTick:
		return ast.NewCall("tick", t.kids[0].expr())
	case termIndex:
		return ast.NewIndex(ast.NewIdent("xs"), ast.NewBinary(ast.OpBitAnd, t.kids[0].expr(), ast.NewInt(3)))
	default:
		return ast.NewBinary(t.op, t.kids[0].expr(), t.kids[1].expr())
	}
}

type trial struct {
	t    *term
	a, b int32
}

func (tr trial) String() string { return fmt.Sprintf("a=%d b=%d: %s", tr.a, tr.b, tr.t) }

type outcome struct {
	value int32
	out   string
	code  string
}

// evaluate builds the trial's program and runs it once in each IR form.
func (tr trial) evaluate() ([]outcome, error) {
	tick := ast.NewFunc("tick", ints("k"), intRet,
		ast.NewExprStmt(ast.NewCall("print", ast.NewCall("unparseInt", id("k")))),
		ast.NewExprStmt(ast.NewCall("print", ast.NewString(" "))),
		ast.NewReturn(id("k")),
	)
	main := ast.NewFunc("main", ints("a", "b"), intRet,
		ast.NewArrayLit("xs", ast.Int, id("a"), id("b"), ast.NewInt(7)),
		ast.NewReturn(tr.t.expr()),
	)

	prog := ast.NewProgram("equiv", tick, main)
	if err := ast.Resolve(prog); err != nil {
		return nil, err
	}

	u, err := irgen.Generate(prog)
	if err != nil {
		return nil, err
	}

	var outcomes []outcome

	for _, m := range modes {
		var out bytes.Buffer

		in, err := m.build(u, Options{Stdout: &out, Stdin: strings.NewReader(""), HeapSize: 1 << 16})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.name, err)
		}

		v, err := in.Call("main", tr.a, tr.b)
		outcomes = append(outcomes, outcome{value: v, out: out.String(), code: errors.CodeOf(err)})
	}

	return outcomes, nil
}

func TestLoweringPreservesBehaviour(t *testing.T) {
	gen := func(r *rand.Rand, size int) trial {
		return trial{t: genTerm(r, size), a: r.Int32N(21) - 10, b: r.Int32N(21) - 10}
	}

	shrink := func(tr trial) []trial {
		var out []trial
		for _, s := range shrinkTerm(tr.t) {
			out = append(out, trial{t: s, a: tr.a, b: tr.b})
		}

		return out
	}

	same := func(tr trial) bool {
		got, err := tr.evaluate()
		if err != nil {
			return false
		}

		return got[0] == got[1]
	}

	prop.Check(t, gen, shrink, same, prop.Options{Trials: 300, Size: 5, Seed: 20261018})
}

func TestGeneratedTermsCoverTraps(t *testing.T) {
	// xs[9 & 3] reads index 1 and xs[-1 & 3] reads index 3, which traps.
	for _, tt := range []struct {
		idx  int32
		code string
	}{
		{9, ""},
		{-1, errors.CodeIndexOutOfBounds},
	} {
		tr := trial{t: &term{kind: termIndex, kids: []*term{{kind: termConst, value: tt.idx}}}, a: 4, b: 5}

		got, err := tr.evaluate()
		if err != nil {
			t.Fatalf("%v: %v", tr, err)
		}

		for _, o := range got {
			if o.code != tt.code {
				t.Errorf("%v: code %q, want %q", tr, o.code, tt.code)
			}
		}

		if tt.code == "" && got[0].value != 5 {
			t.Errorf("%v = %d, want 5", tr, got[0].value)
		}
	}
}
