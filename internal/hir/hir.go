// Package hir defines the tree-shaped high-level IR.
//
// HIR statements and expressions are closed variant sets: only the types in
// this file implement Stmt and Expr. Expressions may embed a statement through
// ESeq, which is the one place side effects appear inside an expression.
package hir

import (
	"fmt"
	"strconv"
	"strings"
)

// WordSize is the size in bytes of every value and memory cell.
const WordSize = 4

// Abstract register name prefixes used by the calling convention.
const (
	ArgPrefix = "ARG"
	RetPrefix = "RET"
)

// ArgReg returns the name of the i-th (1-based) argument register.
func ArgReg(i int) string { return ArgPrefix + strconv.Itoa(i) }

// RetReg returns the name of the i-th (1-based) return register.
func RetReg(i int) string { return RetPrefix + strconv.Itoa(i) }

// IsConventionReg reports whether name has the form of an argument or
// return register.
func IsConventionReg(name string) bool {
	var digits string

	switch {
	case strings.HasPrefix(name, ArgPrefix):
		digits = name[len(ArgPrefix):]
	case strings.HasPrefix(name, RetPrefix):
		digits = name[len(RetPrefix):]
	default:
		return false
	}

	if digits == "" {
		return false
	}

	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// Node is implemented by every HIR statement and expression.
type Node interface {
	fmt.Stringer
	hirNode()
}

// Stmt is an HIR statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an HIR expression. Evaluating it yields one int32.
type Expr interface {
	Node
	exprNode()
}

// ====== Statements ======

// Seq runs its statements in order.
type Seq struct{ Stmts []Stmt }

// Move stores Src into Target, which must be a Temp or a Mem.
type Move struct {
	Target Expr
	Src    Expr
}

// Exp evaluates X for its effect and discards the value.
type Exp struct{ X Expr }

// Jump transfers control to the address Target evaluates to.
type Jump struct{ Target Expr }

// CJump branches to True when Cond is non-zero, otherwise to False.
type CJump struct {
	Cond  Expr
	True  string
	False string
}

// Label marks a jump target. It occupies no address.
type Label struct{ Name string }

// Return leaves the current function with Values.
type Return struct{ Values []Expr }

// CallStmt calls Target and expects NumReturns results in RET1..RETn.
type CallStmt struct {
	Target     Expr
	Args       []Expr
	NumReturns int
}

// ====== Expressions ======

// Const is a 32-bit constant.
type Const struct{ Value int32 }

// Temp is an abstract register.
type Temp struct{ Name string }

// Mem is the word at address Addr.
type Mem struct{ Addr Expr }

// Name is the address of a label or function.
type Name struct{ Label string }

// BinOp applies Op to two operands, left first.
type BinOp struct {
	Op    BinOpKind
	Left  Expr
	Right Expr
}

// UnaryOp applies Op to X.
type UnaryOp struct {
	Op UnaryOpKind
	X  Expr
}

// Call calls Target in expression position and yields the first result.
type Call struct {
	Target Expr
	Args   []Expr
}

// ESeq runs Stmt for effect, then yields X.
type ESeq struct {
	Stmt Stmt
	X    Expr
}

func (*Seq) hirNode()      {}
func (*Move) hirNode()     {}
func (*Exp) hirNode()      {}
func (*Jump) hirNode()     {}
func (*CJump) hirNode()    {}
func (*Label) hirNode()    {}
func (*Return) hirNode()   {}
func (*CallStmt) hirNode() {}
func (*Const) hirNode()    {}
func (*Temp) hirNode()     {}
func (*Mem) hirNode()      {}
func (*Name) hirNode()     {}
func (*BinOp) hirNode()    {}
func (*UnaryOp) hirNode()  {}
func (*Call) hirNode()     {}
func (*ESeq) hirNode()     {}

func (*Seq) stmtNode()      {}
func (*Move) stmtNode()     {}
func (*Exp) stmtNode()      {}
func (*Jump) stmtNode()     {}
func (*CJump) stmtNode()    {}
func (*Label) stmtNode()    {}
func (*Return) stmtNode()   {}
func (*CallStmt) stmtNode() {}

func (*Const) exprNode()   {}
func (*Temp) exprNode()    {}
func (*Mem) exprNode()     {}
func (*Name) exprNode()    {}
func (*BinOp) exprNode()   {}
func (*UnaryOp) exprNode() {}
func (*Call) exprNode()    {}
func (*ESeq) exprNode()    {}

// ====== Compilation unit ======

// Function is one function body in a unit.
type Function struct {
	Name   string
	Params []string
	Body   Stmt
}

// Unit is a named set of functions in a fixed order.
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
