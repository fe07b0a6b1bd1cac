package hir

import (
	"testing"

	"github.com/orizon-lang/irvm/internal/testrunner/assert"
)

func TestRegisterNames(t *testing.T) {
	assert.Equal(t, ArgReg(1), "ARG1")
	assert.Equal(t, RetReg(12), "RET12")

	for _, name := range []string{"ARG1", "RET1", "RET12", "ARG007"} {
		assert.True(t, IsConventionReg(name), name)
	}

	for _, name := range []string{"ARG", "RET", "RETx", "arg1", "ARG1a", "x", "RETURN"} {
		assert.False(t, IsConventionReg(name), name)
	}
}

func TestNodeStrings(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{NewConst(-3), "CONST -3"},
		{NewMem(NewBinOp(OpSub, NewTemp("a"), NewConst(4))), "MEM(BINOP(sub, TEMP a, CONST 4))"},
		{NewCall("f", NewConst(1)), "CALL(NAME f, CONST 1)"},
		{NewESeq(NewExp(NewCall("g")), NewTemp("x")), "ESEQ(EXP(CALL(NAME g)), TEMP x)"},
		{NewCallStmt("pair", 2, NewTemp("i")), "CALLSTMT[2](NAME pair, TEMP i)"},
		{NewCJump(NewBinOp(OpULt, NewTemp("i"), NewTemp("n")), "ok", "bad"), "CJUMP(BINOP(ult, TEMP i, TEMP n), ok, bad)"},
		{NewReturn(), "RETURN()"},
		{NewSeq(NewLabel("L"), NewJump("L")), "SEQ(LABEL L; JUMP(NAME L))"},
		{NewUnaryOp(OpNot, NewConst(0)), "UNOP(not, CONST 0)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.node.String(), tt.want)
	}
}

func TestUnitString(t *testing.T) {
	u := &Unit{Name: "demo", Functions: []*Function{{
		Name:   "f",
		Params: []string{"n"},
		Body: NewSeq(
			NewMove(NewTemp("n"), NewTemp(ArgReg(1))),
			NewSeq(NewLabel("loop"), NewJump("loop")),
			NewReturn(NewTemp("n")),
		),
	}}}

	want := "unit demo\n" +
		"func f(n):\n" +
		"  MOVE(TEMP n, TEMP ARG1)\n" +
		"loop:\n" +
		"  JUMP(NAME loop)\n" +
		"  RETURN(TEMP n)\n"
	assert.Equal(t, u.String(), want)
	assert.NotNil(t, u.Lookup("f"))
	assert.Nil(t, u.Lookup("g"))
}

func TestWalkOrder(t *testing.T) {
	body := NewSeq(
		NewMove(NewMem(NewTemp("p")), NewBinOp(OpAdd, NewConst(1), NewCall("h"))),
		NewLabel("end"),
	)

	var names []string

	Walk(body, func(n Node) bool {
		switch x := n.(type) {
		case *Temp:
			names = append(names, x.Name)
		case *Name:
			names = append(names, x.Label)
		case *Const:
			names = append(names, x.String())
		}

		return true
	})

	assert.SliceEqual(t, names, []string{"p", "CONST 1", "h"})

	count := 0
	Walk(body, func(n Node) bool {
		count++
		_, isMove := n.(*Move)

		return !isMove
	})
	assert.Equal(t, count, 3, "seq, move, label")
}
