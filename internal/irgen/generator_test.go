package irgen

import (
	"testing"

	"github.com/orizon-lang/irvm/internal/ast"
	"github.com/orizon-lang/irvm/internal/errors"
	"github.com/orizon-lang/irvm/internal/hir"
	"github.com/orizon-lang/irvm/internal/testrunner/assert"
)

func generate(t *testing.T, fns ...*ast.FuncDecl) *hir.Unit {
	t.Helper()

	prog := ast.NewProgram("test", fns...)
	if err := ast.Resolve(prog); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	unit, err := Generate(prog)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	return unit
}

func intParams(names ...string) []*ast.Param {
	out := make([]*ast.Param, len(names))
	for i, n := range names {
		out[i] = ast.NewParam(n, ast.Int)
	}

	return out
}

func TestWhileWithShortCircuitCondition(t *testing.T) {
	fn := ast.NewFunc("f", intParams("n"), nil,
		ast.NewWhile(
			ast.NewBinary(ast.OpLogAnd,
				ast.NewBinary(ast.OpGt, ast.NewIdent("n"), ast.NewInt(0)),
				ast.NewBool(true)),
			ast.NewAssign(ast.NewIdent("n"), ast.NewBinary(ast.OpSub, ast.NewIdent("n"), ast.NewInt(1))),
		),
	)

	unit := generate(t, fn)

	want := "func f(n):\n" +
		"  MOVE(TEMP n, TEMP ARG1)\n" +
		"while.begin.1:\n" +
		"  CJUMP(BINOP(gt, TEMP n, CONST 0), and.rhs.4, while.end.3)\n" +
		"and.rhs.4:\n" +
		"  JUMP(NAME while.body.2)\n" +
		"while.body.2:\n" +
		"  MOVE(TEMP n, BINOP(sub, TEMP n, CONST 1))\n" +
		"  JUMP(NAME while.begin.1)\n" +
		"while.end.3:\n" +
		"  RETURN()\n"
	assert.Equal(t, unit.Functions[0].String(), want)
}

func TestConditionTranslation(t *testing.T) {
	tests := []struct {
		name string
		cond ast.Expr
		want []string
	}{
		{
			name: "false literal jumps to the false label",
			cond: ast.NewBool(false),
			want: []string{"JUMP(NAME if.end.2)"},
		},
		{
			name: "not swaps targets",
			cond: ast.NewUnary(ast.OpLogNot, ast.NewIdent("n")),
			want: []string{"CJUMP(TEMP n, if.end.2, if.then.1)"},
		},
		{
			name: "or tests the right side only on a false left side",
			cond: ast.NewBinary(ast.OpLogOr, ast.NewBool(true), ast.NewCall("eof")),
			want: []string{"JUMP(NAME if.then.1)", "or.rhs.3:", "CJUMP(CALL(NAME eof), if.then.1, if.end.2)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := ast.NewFunc("f", []*ast.Param{ast.NewParam("n", ast.Bool)}, nil,
				ast.NewIf(tt.cond, ast.NewBlock(ast.NewExprStmt(ast.NewCall("println", ast.NewString("")))), nil),
			)

			out := generate(t, fn).String()
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestIfElseShape(t *testing.T) {
	fn := ast.NewFunc("sign", intParams("x"), []*ast.Type{ast.Int},
		ast.NewIf(
			ast.NewBinary(ast.OpLt, ast.NewIdent("x"), ast.NewInt(0)),
			ast.NewBlock(ast.NewReturn(ast.NewInt(-1))),
			ast.NewBlock(ast.NewReturn(ast.NewInt(1))),
		),
	)

	want := "func sign(x):\n" +
		"  MOVE(TEMP x, TEMP ARG1)\n" +
		"  CJUMP(BINOP(lt, TEMP x, CONST 0), if.then.1, if.else.3)\n" +
		"if.then.1:\n" +
		"  RETURN(CONST -1)\n" +
		"  JUMP(NAME if.end.2)\n" +
		"if.else.3:\n" +
		"  RETURN(CONST 1)\n" +
		"if.end.2:\n"
	assert.Equal(t, generate(t, fn).Functions[0].String(), want)
}

func TestBooleanValueIsMaterialized(t *testing.T) {
	fn := ast.NewFunc("f", []*ast.Param{ast.NewParam("a", ast.Bool), ast.NewParam("c", ast.Bool)}, []*ast.Type{ast.Bool},
		ast.NewReturn(ast.NewBinary(ast.OpLogAnd, ast.NewIdent("a"), ast.NewIdent("c"))),
	)

	out := generate(t, fn).String()
	assert.Contains(t, out, "MOVE(TEMP b.1, CONST 0)")
	assert.Contains(t, out, "CJUMP(TEMP a, and.rhs.3, bool.done.2)")
	assert.Contains(t, out, "CJUMP(TEMP c, bool.true.1, bool.done.2)")
	assert.Contains(t, out, "MOVE(TEMP b.1, CONST 1); LABEL bool.done.2), TEMP b.1)")
	assert.NotContains(t, out, "BINOP(and")
}

func TestOperatorTableRejectsShortCircuit(t *testing.T) {
	for _, op := range []ast.BinaryOp{ast.OpLogAnd, ast.OpLogOr} {
		_, err := binaryOp(op)
		if assert.NotNil(t, err, op.String()) {
			assert.Equal(t, err.Code, errors.CodeUnsupportedOperator)
			assert.Equal(t, err.Category, errors.CategoryBuild)
		}
	}

	_, err := unaryOp(ast.OpLogNot)
	assert.NotNil(t, err)

	kind, err := binaryOp(ast.OpShr)
	assert.Nil(t, err)
	assert.Equal(t, kind, hir.OpShr)
}

func TestMultiAssignOrder(t *testing.T) {
	pair := ast.NewFunc("pair", intParams("i", "j"), []*ast.Type{ast.Int, ast.Int},
		ast.NewReturn(ast.NewIdent("i"), ast.NewBinary(ast.OpMul, ast.NewInt(2), ast.NewIdent("j"))),
	)
	main := ast.NewFunc("main", intParams("i", "j"), []*ast.Type{ast.Int},
		ast.NewVar("x", ast.Int, nil),
		ast.NewVar("y", ast.Int, nil),
		ast.NewMultiAssign([]string{"x", "y"}, ast.NewCall("pair", ast.NewIdent("i"), ast.NewIdent("j"))),
		ast.NewReturn(ast.NewIdent("x")),
	)

	want := "func main(i, j):\n" +
		"  MOVE(TEMP i, TEMP ARG1)\n" +
		"  MOVE(TEMP j, TEMP ARG2)\n" +
		"  CALLSTMT[2](NAME pair, TEMP i, TEMP j)\n" +
		"  MOVE(TEMP x, TEMP RET1)\n" +
		"  MOVE(TEMP y, TEMP RET2)\n" +
		"  RETURN(TEMP x)\n"
	assert.Equal(t, generate(t, pair, main).Functions[1].String(), want)
}

func TestArrayReadIsBoundsChecked(t *testing.T) {
	fn := ast.NewFunc("get", []*ast.Param{ast.NewParam("a", ast.ArrayOf(ast.Int)), ast.NewParam("i", ast.Int)}, []*ast.Type{ast.Int},
		ast.NewReturn(ast.NewIndex(ast.NewIdent("a"), ast.NewIdent("i"))),
	)

	want := "func get(a, i):\n" +
		"  MOVE(TEMP a, TEMP ARG1)\n" +
		"  MOVE(TEMP i, TEMP ARG2)\n" +
		"  RETURN(ESEQ(SEQ(MOVE(TEMP aA.1, TEMP a); MOVE(TEMP aI.2, TEMP i); " +
		"CJUMP(BINOP(ult, TEMP aI.2, MEM(BINOP(sub, TEMP aA.1, CONST 4))), bounds.ok.1, get.bounds); " +
		"LABEL bounds.ok.1), MEM(BINOP(add, TEMP aA.1, BINOP(mul, CONST 4, TEMP aI.2)))))\n" +
		"  RETURN()\n" +
		"get.bounds:\n" +
		"  EXP(CALL(NAME _outOfBounds))\n"
	assert.Equal(t, generate(t, fn).Functions[0].String(), want)
}

func TestArrayWriteChecksBeforeStoring(t *testing.T) {
	fn := ast.NewFunc("set", []*ast.Param{ast.NewParam("a", ast.ArrayOf(ast.Int))}, nil,
		ast.NewAssign(ast.NewIndex(ast.NewIdent("a"), ast.NewInt(0)), ast.NewInt(9)),
	)

	out := generate(t, fn).String()
	assert.Contains(t, out, "MOVE(MEM(ESEQ(SEQ(MOVE(TEMP aA.1, TEMP a); MOVE(TEMP aI.2, CONST 0);")
	assert.Contains(t, out, "BINOP(add, TEMP aA.1, BINOP(mul, CONST 4, TEMP aI.2)))), CONST 9)")
	assert.Contains(t, out, "set.bounds:")
}

func TestArrayDeclarations(t *testing.T) {
	sized := ast.NewFunc("sized", intParams("n"), nil,
		ast.NewArray("a", ast.ArrayOf(ast.Int), ast.NewIdent("n")),
	)
	literal := ast.NewFunc("literal", nil, nil,
		ast.NewArrayLit("xs", ast.Int, ast.NewInt(5), ast.NewInt(6)),
	)

	unit := generate(t, sized, literal)

	out := unit.Functions[0].String()
	assert.Contains(t, out, "MOVE(TEMP aS.1, TEMP n)")
	assert.Contains(t, out, "MOVE(TEMP aB.2, CALL(NAME malloc, BINOP(mul, BINOP(add, TEMP aS.1, CONST 1), CONST 4)))")
	assert.Contains(t, out, "MOVE(MEM(TEMP aB.2), TEMP aS.1)")
	assert.Contains(t, out, "MOVE(TEMP aR.3, BINOP(add, TEMP aB.2, CONST 4))")
	assert.Contains(t, out, "MOVE(TEMP a, TEMP aR.3)")
	assert.NotContains(t, out, "bounds")

	out = unit.Functions[1].String()
	assert.Contains(t, out, "MOVE(TEMP aB.4, CALL(NAME malloc, CONST 12))")
	assert.Contains(t, out, "MOVE(MEM(TEMP aB.4), CONST 2)")
	assert.Contains(t, out, "MOVE(MEM(BINOP(add, TEMP aB.4, CONST 4)), CONST 5)")
	assert.Contains(t, out, "MOVE(MEM(BINOP(add, TEMP aB.4, CONST 8)), CONST 6)")
	assert.Contains(t, out, "MOVE(TEMP xs, BINOP(add, TEMP aB.4, CONST 4))")
}

func TestTwoDimensionalArrayAllocatesRows(t *testing.T) {
	fn := ast.NewFunc("grid", nil, nil,
		ast.NewArray("g", ast.ArrayOf(ast.ArrayOf(ast.Int)), ast.NewInt(2), ast.NewInt(3)),
	)

	out := generate(t, fn).String()
	assert.Contains(t, out, "rows.begin.1:")
	assert.Contains(t, out, "CJUMP(BINOP(lt, TEMP aJ.5, TEMP aS.1), rows.body.2, rows.end.3)")
	assert.Contains(t, out, "MOVE(MEM(TEMP aB.6), TEMP aS.2)")
	assert.Contains(t, out, "MOVE(MEM(BINOP(add, TEMP aR.4, BINOP(mul, TEMP aJ.5, CONST 4))), TEMP aR.7)")
	assert.Contains(t, out, "MOVE(TEMP g, TEMP aR.4)")
}

func TestShadowedVariablesGetDistinctRegisters(t *testing.T) {
	fn := ast.NewFunc("f", nil, []*ast.Type{ast.Int},
		ast.NewVar("x", ast.Int, ast.NewInt(1)),
		ast.NewBlock(
			ast.NewVar("x", ast.Int, ast.NewBinary(ast.OpAdd, ast.NewIdent("x"), ast.NewInt(1))),
			ast.NewExprStmt(ast.NewCall("assert", ast.NewBinary(ast.OpEq, ast.NewIdent("x"), ast.NewInt(2)))),
		),
		ast.NewReturn(ast.NewIdent("x")),
	)

	want := "func f():\n" +
		"  MOVE(TEMP x, CONST 1)\n" +
		"  MOVE(TEMP x.1, BINOP(add, TEMP x, CONST 1))\n" +
		"  EXP(CALL(NAME assert, BINOP(eq, TEMP x.1, CONST 2)))\n" +
		"  RETURN(TEMP x)\n"
	assert.Equal(t, generate(t, fn).Functions[0].String(), want)
}

func TestStringLiteralIsCharArray(t *testing.T) {
	fn := ast.NewFunc("hi", nil, nil,
		ast.NewExprStmt(ast.NewCall("print", ast.NewString("hi"))),
	)

	out := generate(t, fn).String()
	assert.Contains(t, out, "CALL(NAME malloc, CONST 12)")
	assert.Contains(t, out, "MOVE(MEM(BINOP(add, TEMP aB.1, CONST 4)), CONST 104)")
	assert.Contains(t, out, "MOVE(MEM(BINOP(add, TEMP aB.1, CONST 8)), CONST 105)")
}

func TestUnresolvedProgram(t *testing.T) {
	prog := ast.NewProgram("raw", ast.NewFunc("main", nil, nil))

	_, err := Generate(prog)
	assert.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnresolvedScope))
}

func TestLabelsAreUniqueAcrossFunctions(t *testing.T) {
	loop := func(name string) *ast.FuncDecl {
		return ast.NewFunc(name, nil, nil, ast.NewWhile(ast.NewBool(false)))
	}

	unit := generate(t, loop("a"), loop("b"))

	seen := map[string]bool{}
	for _, fn := range unit.Functions {
		hir.Walk(fn.Body, func(n hir.Node) bool {
			if l, ok := n.(*hir.Label); ok {
				assert.False(t, seen[l.Name], "duplicate label "+l.Name)
				seen[l.Name] = true
			}

			return true
		})
	}

	assert.Len(t, seen, 6)
}

func TestRegisterNamedVariablesAreRenamed(t *testing.T) {
	fn := ast.NewFunc("f", intParams("ARG2", "x"), []*ast.Type{ast.Int},
		ast.NewVar("RET1", ast.Int, ast.NewInt(5)),
		ast.NewReturn(ast.NewBinary(ast.OpAdd, ast.NewIdent("RET1"), ast.NewIdent("x"))),
	)

	want := "func f(ARG2.1, x):\n" +
		"  MOVE(TEMP ARG2.1, TEMP ARG1)\n" +
		"  MOVE(TEMP x, TEMP ARG2)\n" +
		"  MOVE(TEMP RET1.2, CONST 5)\n" +
		"  RETURN(BINOP(add, TEMP RET1.2, TEMP x))\n"
	assert.Equal(t, generate(t, fn).Functions[0].String(), want)
}
