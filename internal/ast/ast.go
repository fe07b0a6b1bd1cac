// Package ast defines the typed syntax tree consumed by the IR generator.
//
// The tree is produced upstream by the parser and type checker: every
// expression carries its resolved Type and every block carries the lexical
// Scope that was in effect for it. The generator trusts these annotations and
// does not re-check them.
package ast

import (
	"fmt"

	"github.com/orizon-lang/irvm/internal/position"
)

// Node is the base interface for all tree nodes
type Node interface {
	GetSpan() position.Span
	node()
}

// Stmt represents all statement nodes
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents all expression nodes. Every expression has a resolved type.
type Expr interface {
	Node
	exprNode()
	GetType() *Type
}

// ===== Program Structure =====

// Program is the root of a typed tree.
type Program struct {
	Span      position.Span
	Name      string
	Functions []*FuncDecl
	Scope     *Scope
}

// Function returns the declaration with the given name, or nil.
func (p *Program) Function(name string) *FuncDecl {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn
		}
	}

	return nil
}

// FuncDecl is a function declaration. Returns lists the declared return types
// in order; it is empty for procedures.
type FuncDecl struct {
	Span    position.Span
	Name    string
	Params  []*Param
	Returns []*Type
	Body    *Block
}

// Param is a single named, typed parameter.
type Param struct {
	Span position.Span
	Name string
	Type *Type
}

// Block is a braced statement list with its own scope.
type Block struct {
	Span  position.Span
	Stmts []Stmt
	Scope *Scope
}

// ===== Statements =====

// VarDecl declares a scalar variable, optionally initialized.
type VarDecl struct {
	Span position.Span
	Name string
	Type *Type
	Init Expr
}

// ArrayDecl declares an array. Either Sizes (one entry per dimension) or Init
// (a literal element list, 1-D only) is set.
type ArrayDecl struct {
	Span  position.Span
	Name  string
	Type  *Type
	Sizes []Expr
	Init  []Expr
}

// Assign stores Value into an identifier or an array element.
type Assign struct {
	Span   position.Span
	Target Expr
	Value  Expr
}

// MultiAssign binds every result of a multi-return call: a, b = f(...).
type MultiAssign struct {
	Span    position.Span
	Targets []*Ident
	Call    *CallExpr
}

// If is a conditional with an optional else branch.
type If struct {
	Span position.Span
	Cond Expr
	Then Stmt
	Else Stmt
}

// While loops while Cond holds.
type While struct {
	Span position.Span
	Cond Expr
	Body Stmt
}

// Return leaves the function with zero or more values.
type Return struct {
	Span   position.Span
	Values []Expr
}

// ExprStmt evaluates an expression for its effect.
type ExprStmt struct {
	Span position.Span
	X    Expr
}

// ===== Expressions =====

// IntLit is a 32-bit integer literal.
type IntLit struct {
	Span  position.Span
	Value int32
}

// BoolLit is true or false.
type BoolLit struct {
	Span  position.Span
	Value bool
}

// StringLit is a string literal; its value is an int array of char codes.
type StringLit struct {
	Span  position.Span
	Value string
}

// Ident references a variable or parameter. Symbol is filled in by scope
// resolution and identifies the declaration the name binds to.
type Ident struct {
	Span   position.Span
	Name   string
	Type   *Type
	Symbol *Symbol
}

// Index reads one array element: Array[Index].
type Index struct {
	Span  position.Span
	Array Expr
	Index Expr
	Type  *Type
}

// Binary is a binary operator application.
type Binary struct {
	Span  position.Span
	Op    BinaryOp
	Left  Expr
	Right Expr
	Type  *Type
}

// Unary is a unary operator application.
type Unary struct {
	Span position.Span
	Op   UnaryOp
	X    Expr
	Type *Type
}

// CallExpr calls a user function or library routine by name.
type CallExpr struct {
	Span position.Span
	Func string
	Args []Expr
	Type *Type
}

func (p *Program) GetSpan() position.Span  { return p.Span }
func (f *FuncDecl) GetSpan() position.Span { return f.Span }
func (p *Param) GetSpan() position.Span    { return p.Span }
func (b *Block) GetSpan() position.Span    { return b.Span }

func (s *VarDecl) GetSpan() position.Span     { return s.Span }
func (s *ArrayDecl) GetSpan() position.Span   { return s.Span }
func (s *Assign) GetSpan() position.Span      { return s.Span }
func (s *MultiAssign) GetSpan() position.Span { return s.Span }
func (s *If) GetSpan() position.Span          { return s.Span }
func (s *While) GetSpan() position.Span       { return s.Span }
func (s *Return) GetSpan() position.Span      { return s.Span }
func (s *ExprStmt) GetSpan() position.Span    { return s.Span }

func (e *IntLit) GetSpan() position.Span    { return e.Span }
func (e *BoolLit) GetSpan() position.Span   { return e.Span }
func (e *StringLit) GetSpan() position.Span { return e.Span }
func (e *Ident) GetSpan() position.Span     { return e.Span }
func (e *Index) GetSpan() position.Span     { return e.Span }
func (e *Binary) GetSpan() position.Span    { return e.Span }
func (e *Unary) GetSpan() position.Span     { return e.Span }
func (e *CallExpr) GetSpan() position.Span  { return e.Span }

func (*Program) node()     {}
func (*FuncDecl) node()    {}
func (*Param) node()       {}
func (*Block) node()       {}
func (*VarDecl) node()     {}
func (*ArrayDecl) node()   {}
func (*Assign) node()      {}
func (*MultiAssign) node() {}
func (*If) node()          {}
func (*While) node()       {}
func (*Return) node()      {}
func (*ExprStmt) node()    {}
func (*IntLit) node()      {}
func (*BoolLit) node()     {}
func (*StringLit) node()   {}
func (*Ident) node()       {}
func (*Index) node()       {}
func (*Binary) node()      {}
func (*Unary) node()       {}
func (*CallExpr) node()    {}

func (*Block) stmtNode()       {}
func (*VarDecl) stmtNode()     {}
func (*ArrayDecl) stmtNode()   {}
func (*Assign) stmtNode()      {}
func (*MultiAssign) stmtNode() {}
func (*If) stmtNode()          {}
func (*While) stmtNode()       {}
func (*Return) stmtNode()      {}
func (*ExprStmt) stmtNode()    {}

func (*IntLit) exprNode()    {}
func (*BoolLit) exprNode()   {}
func (*StringLit) exprNode() {}
func (*Ident) exprNode()     {}
func (*Index) exprNode()     {}
func (*Binary) exprNode()    {}
func (*Unary) exprNode()     {}
func (*CallExpr) exprNode()  {}

func (*IntLit) GetType() *Type    { return Int }
func (*BoolLit) GetType() *Type   { return Bool }
func (*StringLit) GetType() *Type { return ArrayOf(Int) }
func (e *Ident) GetType() *Type   { return e.Type }
func (e *Index) GetType() *Type   { return e.Type }
func (e *Binary) GetType() *Type  { return e.Type }
func (e *Unary) GetType() *Type   { return e.Type }
func (e *CallExpr) GetType() *Type {
	if e.Type == nil {
		return Void
	}

	return e.Type
}

// ===== Operators =====

// BinaryOp is a source-level binary operator.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLogAnd
	OpLogOr
)

var binaryOpNames = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpBitAnd: "&", OpBitOr: "|", OpBitXor: "^", OpShl: "<<", OpShr: ">>",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpLogAnd: "&&", OpLogOr: "||",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}

	return fmt.Sprintf("binop(%d)", int(op))
}

// IsComparison reports whether op yields a boolean from two integers.
func (op BinaryOp) IsComparison() bool { return op >= OpEq && op <= OpGe }

// IsLogical reports whether op is a short-circuit boolean operator.
func (op BinaryOp) IsLogical() bool { return op == OpLogAnd || op == OpLogOr }

// ParseBinaryOp maps operator text to its BinaryOp.
func ParseBinaryOp(s string) (BinaryOp, bool) {
	for i, name := range binaryOpNames {
		if name == s {
			return BinaryOp(i), true
		}
	}

	return 0, false
}

// UnaryOp is a source-level unary operator.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpBitNot
	OpLogNot
)

var unaryOpNames = [...]string{OpNeg: "-", OpBitNot: "~", OpLogNot: "!"}

func (op UnaryOp) String() string {
	if int(op) < len(unaryOpNames) {
		return unaryOpNames[op]
	}

	return fmt.Sprintf("unop(%d)", int(op))
}

// ParseUnaryOp maps operator text to its UnaryOp.
func ParseUnaryOp(s string) (UnaryOp, bool) {
	for i, name := range unaryOpNames {
		if name == s {
			return UnaryOp(i), true
		}
	}

	return 0, false
}
