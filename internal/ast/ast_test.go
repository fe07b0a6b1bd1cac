package ast

import (
	"testing"

	"github.com/orizon-lang/irvm/internal/testrunner/assert"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want string
		dims int
		ok   bool
	}{
		{"int", "int", 0, true},
		{"bool", "bool", 0, true},
		{"int[]", "int[]", 1, true},
		{"bool[][]", "bool[][]", 2, true},
		{"void", "void", 0, true},
		{"void[]", "", 0, false},
		{"string", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseType(tt.in)
			assert.Equal(t, ok, tt.ok)

			if ok {
				assert.Equal(t, got.String(), tt.want)
				assert.Equal(t, got.Dims(), tt.dims)
			}
		})
	}
}

func TestTypeEqual(t *testing.T) {
	assert.True(t, ArrayOf(ArrayOf(Int)).Equal(ArrayOf(ArrayOf(Int))))
	assert.False(t, ArrayOf(Int).Equal(ArrayOf(Bool)))
	assert.False(t, Int.Equal(nil))
}

func TestOperatorRoundTrip(t *testing.T) {
	for op := OpAdd; op <= OpLogOr; op++ {
		got, ok := ParseBinaryOp(op.String())
		assert.True(t, ok, op.String())
		assert.Equal(t, got, op)
	}

	for op := OpNeg; op <= OpLogNot; op++ {
		got, ok := ParseUnaryOp(op.String())
		assert.True(t, ok, op.String())
		assert.Equal(t, got, op)
	}

	assert.True(t, OpLe.IsComparison())
	assert.True(t, OpLogOr.IsLogical())
	assert.False(t, OpShl.IsComparison())
}

func TestScopeShadowing(t *testing.T) {
	outer := NewScope(Universe())
	x1 := &Symbol{Name: "x", Kind: SymbolKindVariable, Type: Int}
	assert.NoError(t, outer.Define(x1))
	assert.Error(t, outer.Define(&Symbol{Name: "x", Kind: SymbolKindVariable}))

	inner := NewScope(outer)
	x2 := &Symbol{Name: "x", Kind: SymbolKindVariable, Type: Bool}
	assert.NoError(t, inner.Define(x2))

	assert.True(t, inner.Lookup("x") == x2)
	assert.True(t, outer.Lookup("x") == x1)
	assert.Nil(t, inner.LookupLocal("print"))
	assert.Equal(t, inner.Lookup("print").Kind, SymbolKindBuiltin)
	assert.Len(t, inner.Symbols(), 1)
}

func TestResolveAnnotatesTypes(t *testing.T) {
	prog := NewProgram("p",
		NewFunc("pair", nil, []*Type{Int, Bool},
			NewReturn(NewInt(1), NewBool(true))),
		NewFunc("main", nil, []*Type{Bool},
			NewArray("grid", ArrayOf(ArrayOf(Int)), NewInt(2), NewInt(3)),
			NewVar("k", Int, NewIndex(NewIndex(NewIdent("grid"), NewInt(1)), NewInt(2))),
			NewReturn(NewBinary(OpLogAnd, NewBinary(OpLt, NewIdent("k"), NewCall("pair")), NewUnary(OpLogNot, NewBool(false))))),
	)

	if !assert.NoError(t, Resolve(prog)) {
		return
	}

	main := prog.Function("main")
	k := main.Body.Stmts[1].(*VarDecl)
	assert.Equal(t, k.Init.GetType().String(), "int")

	inner := k.Init.(*Index).Array.(*Index)
	assert.Equal(t, inner.GetType().String(), "int[]")

	ret := main.Body.Stmts[2].(*Return).Values[0].(*Binary)
	assert.Equal(t, ret.GetType().String(), "bool")
	assert.Equal(t, ret.Left.(*Binary).Right.GetType().String(), "int")
}

func TestResolveRejectsDuplicates(t *testing.T) {
	prog := NewProgram("p",
		NewFunc("f", nil, nil),
		NewFunc("f", nil, nil),
	)
	assert.Error(t, Resolve(prog))

	prog = NewProgram("p",
		NewFunc("g", []*Param{NewParam("a", Int), NewParam("a", Int)}, nil),
	)
	assert.Error(t, Resolve(prog))
}
