package hir

// Short constructors used by the generator and by tests.

// NewSeq groups statements that run in order.
func NewSeq(stmts ...Stmt) *Seq { return &Seq{Stmts: stmts} }

// NewMove stores src into target, a Temp or a Mem.
func NewMove(target, src Expr) *Move { return &Move{Target: target, Src: src} }

// NewExp evaluates x and discards its value.
func NewExp(x Expr) *Exp { return &Exp{X: x} }

// NewJump jumps to a named label.
func NewJump(label string) *Jump { return &Jump{Target: &Name{Label: label}} }

// NewCJump branches to t when cond is non-zero and to f otherwise.
func NewCJump(cond Expr, t, f string) *CJump { return &CJump{Cond: cond, True: t, False: f} }

// NewLabel marks a jump target.
func NewLabel(name string) *Label { return &Label{Name: name} }

// NewReturn returns values from the current function.
func NewReturn(values ...Expr) *Return { return &Return{Values: values} }

// NewCallStmt calls fn for its n results, left in RET1..RETn.
func NewCallStmt(fn string, n int, args ...Expr) *CallStmt {
	return &CallStmt{Target: &Name{Label: fn}, Args: args, NumReturns: n}
}

// NewConst is a 32-bit integer constant.
func NewConst(v int32) *Const { return &Const{Value: v} }

// NewTemp names a register of the current frame.
func NewTemp(name string) *Temp { return &Temp{Name: name} }

// NewMem is the heap word at addr.
func NewMem(addr Expr) *Mem { return &Mem{Addr: addr} }

// NewName refers to a label or function by name.
func NewName(label string) *Name { return &Name{Label: label} }

// NewBinOp applies op to l and r, evaluated left to right.
func NewBinOp(op BinOpKind, l, r Expr) *BinOp { return &BinOp{Op: op, Left: l, Right: r} }

// NewUnaryOp applies op to x.
func NewUnaryOp(op UnaryOpKind, x Expr) *UnaryOp { return &UnaryOp{Op: op, X: x} }

// NewCall calls a function or library routine by name.
func NewCall(fn string, args ...Expr) *Call {
	return &Call{Target: &Name{Label: fn}, Args: args}
}

// NewESeq runs s, then evaluates x as the value of the expression.
func NewESeq(s Stmt, x Expr) *ESeq { return &ESeq{Stmt: s, X: x} }
