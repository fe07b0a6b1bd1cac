package ast

// Constructors for hand-built trees. They leave spans empty and types unset
// where Resolve fills them in.

func NewProgram(name string, fns ...*FuncDecl) *Program {
	return &Program{Name: name, Functions: fns}
}

func NewFunc(name string, params []*Param, returns []*Type, body ...Stmt) *FuncDecl {
	return &FuncDecl{Name: name, Params: params, Returns: returns, Body: NewBlock(body...)}
}

func NewParam(name string, t *Type) *Param { return &Param{Name: name, Type: t} }

func NewBlock(stmts ...Stmt) *Block { return &Block{Stmts: stmts} }

func NewVar(name string, t *Type, init Expr) *VarDecl {
	return &VarDecl{Name: name, Type: t, Init: init}
}

// NewArray declares an array sized by one expression per dimension.
func NewArray(name string, t *Type, sizes ...Expr) *ArrayDecl {
	return &ArrayDecl{Name: name, Type: t, Sizes: sizes}
}

// NewArrayLit declares a 1-D array initialized from a literal element list.
func NewArrayLit(name string, elem *Type, elems ...Expr) *ArrayDecl {
	if elems == nil {
		elems = []Expr{}
	}

	return &ArrayDecl{Name: name, Type: ArrayOf(elem), Init: elems}
}

func NewAssign(target, value Expr) *Assign { return &Assign{Target: target, Value: value} }

func NewMultiAssign(targets []string, call *CallExpr) *MultiAssign {
	ids := make([]*Ident, len(targets))
	for i, name := range targets {
		ids[i] = NewIdent(name)
	}

	return &MultiAssign{Targets: ids, Call: call}
}

// NewIf builds a conditional; pass a nil els for no else branch.
func NewIf(cond Expr, then Stmt, els Stmt) *If {
	return &If{Cond: cond, Then: then, Else: els}
}

func NewWhile(cond Expr, body ...Stmt) *While {
	return &While{Cond: cond, Body: NewBlock(body...)}
}

func NewReturn(values ...Expr) *Return { return &Return{Values: values} }

func NewExprStmt(x Expr) *ExprStmt { return &ExprStmt{X: x} }

func NewInt(v int32) *IntLit { return &IntLit{Value: v} }

func NewBool(v bool) *BoolLit { return &BoolLit{Value: v} }

func NewString(s string) *StringLit { return &StringLit{Value: s} }

func NewIdent(name string) *Ident { return &Ident{Name: name} }

func NewIndex(array, index Expr) *Index { return &Index{Array: array, Index: index} }

func NewBinary(op BinaryOp, left, right Expr) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

func NewUnary(op UnaryOp, x Expr) *Unary { return &Unary{Op: op, X: x} }

func NewCall(fn string, args ...Expr) *CallExpr { return &CallExpr{Func: fn, Args: args} }
