// Package lir defines the flat low-level IR and the passes between it and
// HIR.
//
// A LIR function body is one flat statement list. Expressions have no side
// effects: calls only appear as the CallM statement and there is no ESeq, so
// every effect is an ordered statement in the body.
package lir

import (
	"github.com/orizon-lang/irvm/internal/hir"
)

// Node is implemented by every LIR statement and expression.
type Node interface {
	String() string
	lirNode()
}

// Stmt is a LIR statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is a side-effect-free LIR expression.
type Expr interface {
	Node
	exprNode()
}

// ====== Statements ======

// MoveToTemp stores Src into the register Name.
type MoveToTemp struct {
	Name string
	Src  Expr
}

// MoveToMem stores Src into the word at Addr.
type MoveToMem struct {
	Addr Expr
	Src  Expr
}

// Exp evaluates X and discards it. Only kept when X can fault.
type Exp struct{ X Expr }

// Jump transfers control to the address Target evaluates to.
type Jump struct{ Target Expr }

// CJump branches to True when Cond is non-zero, otherwise to False.
type CJump struct {
	Cond  Expr
	True  string
	False string
}

// Label marks a jump target.
type Label struct{ Name string }

// Return leaves the function with Values.
type Return struct{ Values []Expr }

// CallM calls Target. NumReturns is the number of results the caller
// expects in RET1..RETn (0 means no check). When Dst is set, the first
// result, or 0, is also written to that register.
type CallM struct {
	Target     Expr
	Args       []Expr
	NumReturns int
	Dst        string
}

// ====== Expressions ======

// Const is a 32-bit constant.
type Const struct{ Value int32 }

// Temp reads an abstract register.
type Temp struct{ Name string }

// Mem reads the word at Addr.
type Mem struct{ Addr Expr }

// Name is the address of a label or function.
type Name struct{ Label string }

// BinOp applies Op to Left and Right. Operator tags are shared with HIR.
type BinOp struct {
	Op    hir.BinOpKind
	Left  Expr
	Right Expr
}

// UnaryOp applies Op to X.
type UnaryOp struct {
	Op hir.UnaryOpKind
	X  Expr
}

func (*MoveToTemp) lirNode() {}
func (*MoveToMem) lirNode()  {}
func (*Exp) lirNode()        {}
func (*Jump) lirNode()       {}
func (*CJump) lirNode()      {}
func (*Label) lirNode()      {}
func (*Return) lirNode()     {}
func (*CallM) lirNode()      {}
func (*Const) lirNode()      {}
func (*Temp) lirNode()       {}
func (*Mem) lirNode()        {}
func (*Name) lirNode()       {}
func (*BinOp) lirNode()      {}
func (*UnaryOp) lirNode()    {}

func (*MoveToTemp) stmtNode() {}
func (*MoveToMem) stmtNode()  {}
func (*Exp) stmtNode()        {}
func (*Jump) stmtNode()       {}
func (*CJump) stmtNode()      {}
func (*Label) stmtNode()      {}
func (*Return) stmtNode()     {}
func (*CallM) stmtNode()      {}

func (*Const) exprNode()   {}
func (*Temp) exprNode()    {}
func (*Mem) exprNode()     {}
func (*Name) exprNode()    {}
func (*BinOp) exprNode()   {}
func (*UnaryOp) exprNode() {}

// ====== Compilation unit ======

// Function is one lowered function.
type Function struct {
	Name   string
	Params []string
	Body   []Stmt
}

// Unit is a named set of lowered functions in a fixed order.
type Unit struct {
	Name      string
	Functions []*Function
}

// Lookup returns the function with the given name, or nil.
func (u *Unit) Lookup(name string) *Function {
	for _, fn := range u.Functions {
		if fn.Name == name {
			return fn
		}
	}

	return nil
}
