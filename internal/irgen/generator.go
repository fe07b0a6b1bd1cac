// Package irgen generates HIR from a resolved, typed syntax tree.
//
// Every declaration, statement and expression kind maps to one fixed HIR
// shape. Boolean conditions are compiled by control-flow translation into
// jumps; they are never materialised as 0/1 just to be tested again.
package irgen

import (
	"fmt"

	"github.com/orizon-lang/irvm/internal/ast"
	"github.com/orizon-lang/irvm/internal/errors"
	"github.com/orizon-lang/irvm/internal/hir"
)

// Library routine names the generator emits calls to on its own.
const (
	MallocFunc = "malloc"
	BoundsTrap = "_outOfBounds"
)

// Generator converts typed tree nodes to HIR. A Generator is single-use per
// unit: its label and temp counters are unit-wide so every label it emits is
// unique within the unit.
type Generator struct {
	labelCounter int
	tempCounter  int

	// per-function state
	scope       *ast.Scope
	temps       map[*ast.Symbol]string
	usedTemps   map[string]bool
	boundsLabel string
	needsBounds bool
}

// NewGenerator creates a generator with fresh counters.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate converts a resolved program into an HIR unit named after it.
func Generate(prog *ast.Program) (*hir.Unit, error) {
	return NewGenerator().GenerateProgram(prog)
}

// GenerateProgram converts every function of prog, in declaration order.
func (g *Generator) GenerateProgram(prog *ast.Program) (*hir.Unit, error) {
	if prog == nil {
		return nil, fmt.Errorf("program is nil")
	}

	if prog.Scope == nil {
		return nil, errors.UnresolvedScope(prog.Name).At(prog.Span)
	}

	unit := &hir.Unit{Name: prog.Name, Functions: make([]*hir.Function, 0, len(prog.Functions))}

	for _, fn := range prog.Functions {
		hfn, err := g.function(fn)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}

		unit.Functions = append(unit.Functions, hfn)
	}

	return unit, nil
}

// ====== Naming ======

func (g *Generator) newLabel(hint string) string {
	g.labelCounter++
	return fmt.Sprintf("%s.%d", hint, g.labelCounter)
}

func (g *Generator) newTemp(hint string) *hir.Temp {
	g.tempCounter++
	return hir.NewTemp(fmt.Sprintf("%s.%d", hint, g.tempCounter))
}

// bind assigns a register name to a newly declared symbol. The first symbol
// with a given name in a function keeps the plain name; shadowing
// declarations get a numbered variant so an inner block cannot clobber the
// outer variable. Names that collide with the ARGn/RETn registers are always
// renamed.
func (g *Generator) bind(sym *ast.Symbol) string {
	name := sym.Name
	if g.usedTemps[name] || hir.IsConventionReg(name) {
		g.tempCounter++
		name = fmt.Sprintf("%s.%d", sym.Name, g.tempCounter)
	}

	g.usedTemps[name] = true
	g.temps[sym] = name

	return name
}

func (g *Generator) declare(name string, node ast.Node) (*hir.Temp, error) {
	if g.scope == nil {
		return nil, errors.UnresolvedScope(name).At(node.GetSpan())
	}

	sym := g.scope.LookupLocal(name)
	if sym == nil {
		return nil, errors.UnresolvedScope(name).At(node.GetSpan())
	}

	return hir.NewTemp(g.bind(sym)), nil
}

func (g *Generator) lookup(id *ast.Ident) (*hir.Temp, error) {
	sym := id.Symbol
	if sym == nil && g.scope != nil {
		sym = g.scope.Lookup(id.Name)
	}

	if sym == nil {
		return nil, errors.UnresolvedScope(id.Name).At(id.Span)
	}

	name, ok := g.temps[sym]
	if !ok {
		return nil, errors.UnresolvedScope(id.Name).At(id.Span)
	}

	return hir.NewTemp(name), nil
}

// ====== Functions ======

func (g *Generator) function(fn *ast.FuncDecl) (*hir.Function, error) {
	if fn.Body == nil || fn.Body.Scope == nil || fn.Body.Scope.Parent() == nil {
		return nil, errors.UnresolvedScope(fn.Name).At(fn.Span)
	}

	g.temps = make(map[*ast.Symbol]string)
	g.usedTemps = make(map[string]bool)
	g.boundsLabel = fn.Name + ".bounds"
	g.needsBounds = false
	g.scope = fn.Body.Scope.Parent()

	out := &hir.Function{Name: fn.Name}
	stmts := make([]hir.Stmt, 0, len(fn.Params)+len(fn.Body.Stmts)+3)

	for i, prm := range fn.Params {
		t, err := g.declare(prm.Name, prm)
		if err != nil {
			return nil, err
		}

		out.Params = append(out.Params, t.Name)
		stmts = append(stmts, hir.NewMove(t, hir.NewTemp(hir.ArgReg(i+1))))
	}

	body, err := g.block(fn.Body)
	if err != nil {
		return nil, err
	}

	stmts = append(stmts, body)

	// The trap block must not be reachable by falling off the body.
	if len(fn.Returns) == 0 || g.needsBounds {
		stmts = append(stmts, hir.NewReturn())
	}

	if g.needsBounds {
		stmts = append(stmts,
			hir.NewLabel(g.boundsLabel),
			hir.NewExp(hir.NewCall(BoundsTrap)),
		)
	}

	out.Body = hir.NewSeq(stmts...)

	return out, nil
}

// ====== Statements ======

func (g *Generator) block(b *ast.Block) (hir.Stmt, error) {
	if b.Scope == nil {
		return nil, errors.UnresolvedScope("block").At(b.Span)
	}

	saved := g.scope
	g.scope = b.Scope

	defer func() { g.scope = saved }()

	return g.stmtList(b.Stmts)
}

func (g *Generator) stmtList(list []ast.Stmt) (hir.Stmt, error) {
	out := make([]hir.Stmt, 0, len(list))

	for _, st := range list {
		s, err := g.stmt(st)
		if err != nil {
			return nil, err
		}

		if s != nil {
			out = append(out, s)
		}
	}

	return hir.NewSeq(out...), nil
}

func (g *Generator) stmt(st ast.Stmt) (hir.Stmt, error) {
	switch s := st.(type) {
	case *ast.Block:
		return g.block(s)
	case *ast.VarDecl:
		return g.varDecl(s)
	case *ast.ArrayDecl:
		return g.arrayDecl(s)
	case *ast.Assign:
		return g.assign(s)
	case *ast.MultiAssign:
		return g.multiAssign(s)
	case *ast.If:
		return g.ifStmt(s)
	case *ast.While:
		return g.while(s)
	case *ast.Return:
		values, err := g.values(s.Values)
		if err != nil {
			return nil, err
		}

		return hir.NewReturn(values...), nil
	case *ast.ExprStmt:
		x, err := g.value(s.X)
		if err != nil {
			return nil, err
		}

		return hir.NewExp(x), nil
	default:
		return nil, errors.UnsupportedNode(fmt.Sprintf("statement %T", st)).At(st.GetSpan())
	}
}

func (g *Generator) varDecl(s *ast.VarDecl) (hir.Stmt, error) {
	// The initializer is generated before the name is bound so that
	// `var x = x + 1` reads the outer x.
	var (
		src hir.Expr
		err error
	)

	if s.Init != nil {
		if src, err = g.value(s.Init); err != nil {
			return nil, err
		}
	}

	t, err := g.declare(s.Name, s)
	if err != nil {
		return nil, err
	}

	if src == nil {
		return nil, nil
	}

	return hir.NewMove(t, src), nil
}

func (g *Generator) assign(s *ast.Assign) (hir.Stmt, error) {
	switch target := s.Target.(type) {
	case *ast.Ident:
		t, err := g.lookup(target)
		if err != nil {
			return nil, err
		}

		src, err := g.value(s.Value)
		if err != nil {
			return nil, err
		}

		return hir.NewMove(t, src), nil
	case *ast.Index:
		addr, err := g.elementAddr(target)
		if err != nil {
			return nil, err
		}

		src, err := g.value(s.Value)
		if err != nil {
			return nil, err
		}

		return hir.NewMove(hir.NewMem(addr), src), nil
	default:
		return nil, errors.UnsupportedNode(fmt.Sprintf("assignment to %T", s.Target)).At(s.Span)
	}
}

// multiAssign emits CallStmt followed by one move per destination, in
// left-to-right order, from RET1..RETn.
func (g *Generator) multiAssign(s *ast.MultiAssign) (hir.Stmt, error) {
	args, err := g.values(s.Call.Args)
	if err != nil {
		return nil, err
	}

	stmts := []hir.Stmt{hir.NewCallStmt(s.Call.Func, len(s.Targets), args...)}

	for i, id := range s.Targets {
		t, err := g.lookup(id)
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, hir.NewMove(t, hir.NewTemp(hir.RetReg(i+1))))
	}

	return hir.NewSeq(stmts...), nil
}

func (g *Generator) ifStmt(s *ast.If) (hir.Stmt, error) {
	thenLbl := g.newLabel("if.then")
	endLbl := g.newLabel("if.end")
	elseLbl := endLbl

	if s.Else != nil {
		elseLbl = g.newLabel("if.else")
	}

	cond, err := g.cond(s.Cond, thenLbl, elseLbl)
	if err != nil {
		return nil, err
	}

	then, err := g.stmt(s.Then)
	if err != nil {
		return nil, err
	}

	stmts := []hir.Stmt{cond, hir.NewLabel(thenLbl)}
	if then != nil {
		stmts = append(stmts, then)
	}

	if s.Else != nil {
		els, err := g.stmt(s.Else)
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, hir.NewJump(endLbl), hir.NewLabel(elseLbl))
		if els != nil {
			stmts = append(stmts, els)
		}
	}

	stmts = append(stmts, hir.NewLabel(endLbl))

	return hir.NewSeq(stmts...), nil
}

func (g *Generator) while(s *ast.While) (hir.Stmt, error) {
	begin := g.newLabel("while.begin")
	body := g.newLabel("while.body")
	end := g.newLabel("while.end")

	cond, err := g.cond(s.Cond, body, end)
	if err != nil {
		return nil, err
	}

	inner, err := g.stmt(s.Body)
	if err != nil {
		return nil, err
	}

	stmts := []hir.Stmt{hir.NewLabel(begin), cond, hir.NewLabel(body)}
	if inner != nil {
		stmts = append(stmts, inner)
	}

	stmts = append(stmts, hir.NewJump(begin), hir.NewLabel(end))

	return hir.NewSeq(stmts...), nil
}

// ====== Control-flow translation ======

// cond compiles a boolean expression into jumps to t or f.
func (g *Generator) cond(e ast.Expr, t, f string) (hir.Stmt, error) {
	switch x := e.(type) {
	case *ast.BoolLit:
		if x.Value {
			return hir.NewJump(t), nil
		}

		return hir.NewJump(f), nil
	case *ast.Unary:
		if x.Op == ast.OpLogNot {
			return g.cond(x.X, f, t)
		}
	case *ast.Binary:
		switch x.Op {
		case ast.OpLogAnd:
			mid := g.newLabel("and.rhs")

			left, err := g.cond(x.Left, mid, f)
			if err != nil {
				return nil, err
			}

			right, err := g.cond(x.Right, t, f)
			if err != nil {
				return nil, err
			}

			return hir.NewSeq(left, hir.NewLabel(mid), right), nil
		case ast.OpLogOr:
			mid := g.newLabel("or.rhs")

			left, err := g.cond(x.Left, t, mid)
			if err != nil {
				return nil, err
			}

			right, err := g.cond(x.Right, t, f)
			if err != nil {
				return nil, err
			}

			return hir.NewSeq(left, hir.NewLabel(mid), right), nil
		}
	}

	v, err := g.value(e)
	if err != nil {
		return nil, err
	}

	return hir.NewCJump(v, t, f), nil
}

// materialize turns a boolean that only has a control-flow encoding into a
// 0/1 value held in a fresh temp.
func (g *Generator) materialize(e ast.Expr) (hir.Expr, error) {
	t := g.newTemp("b")
	yes := g.newLabel("bool.true")
	done := g.newLabel("bool.done")

	c, err := g.cond(e, yes, done)
	if err != nil {
		return nil, err
	}

	return hir.NewESeq(hir.NewSeq(
		hir.NewMove(t, hir.NewConst(0)),
		c,
		hir.NewLabel(yes),
		hir.NewMove(t, hir.NewConst(1)),
		hir.NewLabel(done),
	), t), nil
}

// ====== Expressions ======

func (g *Generator) values(list []ast.Expr) ([]hir.Expr, error) {
	out := make([]hir.Expr, 0, len(list))

	for _, e := range list {
		v, err := g.value(e)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

func (g *Generator) value(e ast.Expr) (hir.Expr, error) {
	switch x := e.(type) {
	case *ast.IntLit:
		return hir.NewConst(x.Value), nil
	case *ast.BoolLit:
		if x.Value {
			return hir.NewConst(1), nil
		}

		return hir.NewConst(0), nil
	case *ast.StringLit:
		return g.stringLit(x)
	case *ast.Ident:
		return g.lookup(x)
	case *ast.Index:
		return g.elementRead(x)
	case *ast.Binary:
		if x.Op.IsLogical() {
			return g.materialize(x)
		}

		op, err := binaryOp(x.Op)
		if err != nil {
			return nil, err.At(x.Span)
		}

		l, lerr := g.value(x.Left)
		if lerr != nil {
			return nil, lerr
		}

		r, rerr := g.value(x.Right)
		if rerr != nil {
			return nil, rerr
		}

		return hir.NewBinOp(op, l, r), nil
	case *ast.Unary:
		if x.Op == ast.OpLogNot {
			return g.materialize(x)
		}

		op, err := unaryOp(x.Op)
		if err != nil {
			return nil, err.At(x.Span)
		}

		v, verr := g.value(x.X)
		if verr != nil {
			return nil, verr
		}

		return hir.NewUnaryOp(op, v), nil
	case *ast.CallExpr:
		args, err := g.values(x.Args)
		if err != nil {
			return nil, err
		}

		return hir.NewCall(x.Func, args...), nil
	default:
		return nil, errors.UnsupportedNode(fmt.Sprintf("expression %T", e)).At(e.GetSpan())
	}
}

// binaryOp maps operators with a direct arithmetic or bitwise encoding.
// Short-circuit operators have none and are rejected.
func binaryOp(op ast.BinaryOp) (hir.BinOpKind, *errors.StandardError) {
	switch op {
	case ast.OpAdd:
		return hir.OpAdd, nil
	case ast.OpSub:
		return hir.OpSub, nil
	case ast.OpMul:
		return hir.OpMul, nil
	case ast.OpDiv:
		return hir.OpDiv, nil
	case ast.OpMod:
		return hir.OpMod, nil
	case ast.OpBitAnd:
		return hir.OpAnd, nil
	case ast.OpBitOr:
		return hir.OpOr, nil
	case ast.OpBitXor:
		return hir.OpXor, nil
	case ast.OpShl:
		return hir.OpShl, nil
	case ast.OpShr:
		return hir.OpShr, nil
	case ast.OpEq:
		return hir.OpEq, nil
	case ast.OpNe:
		return hir.OpNe, nil
	case ast.OpLt:
		return hir.OpLt, nil
	case ast.OpLe:
		return hir.OpLe, nil
	case ast.OpGt:
		return hir.OpGt, nil
	case ast.OpGe:
		return hir.OpGe, nil
	default:
		return 0, errors.UnsupportedOperator(op.String())
	}
}

func unaryOp(op ast.UnaryOp) (hir.UnaryOpKind, *errors.StandardError) {
	switch op {
	case ast.OpNeg:
		return hir.OpNeg, nil
	case ast.OpBitNot:
		return hir.OpNot, nil
	default:
		return 0, errors.UnsupportedOperator(op.String())
	}
}

// ====== Arrays ======

func word(n int32) *hir.Const { return hir.NewConst(n * hir.WordSize) }

// allocBytes is (n+1)*WordSize: room for the length header and n elements.
func allocBytes(n hir.Expr) hir.Expr {
	return hir.NewBinOp(hir.OpMul, hir.NewBinOp(hir.OpAdd, n, hir.NewConst(1)), hir.NewConst(hir.WordSize))
}

func (g *Generator) arrayDecl(s *ast.ArrayDecl) (hir.Stmt, error) {
	var (
		stmts []hir.Stmt
		ref   hir.Expr
	)

	if len(s.Sizes) > 0 {
		sizes := make([]*hir.Temp, len(s.Sizes))

		for i, e := range s.Sizes {
			v, err := g.value(e)
			if err != nil {
				return nil, err
			}

			sizes[i] = g.newTemp("aS")
			stmts = append(stmts, hir.NewMove(sizes[i], v))
		}

		alloc, r := g.allocArray(sizes)
		stmts = append(stmts, alloc...)
		ref = r
	} else {
		elems, err := g.values(s.Init)
		if err != nil {
			return nil, err
		}

		lit, r := g.arrayLiteral(elems)
		stmts = append(stmts, lit)
		ref = r
	}

	t, err := g.declare(s.Name, s)
	if err != nil {
		return nil, err
	}

	stmts = append(stmts, hir.NewMove(t, ref))

	return hir.NewSeq(stmts...), nil
}

// allocArray allocates an array whose length is held in sizes[0]. For more
// than one dimension every element is itself filled with a freshly
// allocated row of the remaining dimensions.
func (g *Generator) allocArray(sizes []*hir.Temp) ([]hir.Stmt, *hir.Temp) {
	base := g.newTemp("aB")
	ref := g.newTemp("aR")
	n := sizes[0]

	stmts := []hir.Stmt{
		hir.NewMove(base, hir.NewCall(MallocFunc, allocBytes(n))),
		hir.NewMove(hir.NewMem(base), n),
		hir.NewMove(ref, hir.NewBinOp(hir.OpAdd, base, hir.NewConst(hir.WordSize))),
	}

	if len(sizes) == 1 {
		return stmts, ref
	}

	j := g.newTemp("aJ")
	begin := g.newLabel("rows.begin")
	body := g.newLabel("rows.body")
	end := g.newLabel("rows.end")

	inner, row := g.allocArray(sizes[1:])

	stmts = append(stmts,
		hir.NewMove(j, hir.NewConst(0)),
		hir.NewLabel(begin),
		hir.NewCJump(hir.NewBinOp(hir.OpLt, j, n), body, end),
		hir.NewLabel(body),
	)
	stmts = append(stmts, inner...)
	stmts = append(stmts,
		hir.NewMove(
			hir.NewMem(hir.NewBinOp(hir.OpAdd, ref, hir.NewBinOp(hir.OpMul, j, hir.NewConst(hir.WordSize)))),
			row,
		),
		hir.NewMove(j, hir.NewBinOp(hir.OpAdd, j, hir.NewConst(1))),
		hir.NewJump(begin),
		hir.NewLabel(end),
	)

	return stmts, ref
}

// arrayLiteral allocates len(elems)+1 words, stores the length at the base
// and element i at base+(i+1)*WordSize. It yields the element-0 reference.
func (g *Generator) arrayLiteral(elems []hir.Expr) (hir.Stmt, hir.Expr) {
	base := g.newTemp("aB")
	n := int32(len(elems))

	stmts := make([]hir.Stmt, 0, len(elems)+2)
	stmts = append(stmts,
		hir.NewMove(base, hir.NewCall(MallocFunc, word(n+1))),
		hir.NewMove(hir.NewMem(base), hir.NewConst(n)),
	)

	for i, e := range elems {
		addr := hir.NewBinOp(hir.OpAdd, base, word(int32(i)+1))
		stmts = append(stmts, hir.NewMove(hir.NewMem(addr), e))
	}

	return hir.NewSeq(stmts...), hir.NewBinOp(hir.OpAdd, base, hir.NewConst(hir.WordSize))
}

func (g *Generator) stringLit(s *ast.StringLit) (hir.Expr, error) {
	runes := []rune(s.Value)
	elems := make([]hir.Expr, len(runes))

	for i, r := range runes {
		elems[i] = hir.NewConst(int32(r))
	}

	lit, ref := g.arrayLiteral(elems)

	return hir.NewESeq(lit, ref), nil
}

// boundsCheck evaluates the array and index of x into fresh temps and
// branches to the function's trap block unless index < length, compared
// unsigned so that negative indexes fail the same test. It returns the
// check and the element address.
func (g *Generator) boundsCheck(x *ast.Index) (hir.Stmt, hir.Expr, error) {
	arr, err := g.value(x.Array)
	if err != nil {
		return nil, nil, err
	}

	idx, err := g.value(x.Index)
	if err != nil {
		return nil, nil, err
	}

	tA := g.newTemp("aA")
	tI := g.newTemp("aI")
	ok := g.newLabel("bounds.ok")
	g.needsBounds = true

	length := hir.NewMem(hir.NewBinOp(hir.OpSub, tA, hir.NewConst(hir.WordSize)))

	check := hir.NewSeq(
		hir.NewMove(tA, arr),
		hir.NewMove(tI, idx),
		hir.NewCJump(hir.NewBinOp(hir.OpULt, tI, length), ok, g.boundsLabel),
		hir.NewLabel(ok),
	)
	addr := hir.NewBinOp(hir.OpAdd, tA, hir.NewBinOp(hir.OpMul, hir.NewConst(hir.WordSize), tI))

	return check, addr, nil
}

func (g *Generator) elementRead(x *ast.Index) (hir.Expr, error) {
	check, addr, err := g.boundsCheck(x)
	if err != nil {
		return nil, err
	}

	return hir.NewESeq(check, hir.NewMem(addr)), nil
}

func (g *Generator) elementAddr(x *ast.Index) (hir.Expr, error) {
	check, addr, err := g.boundsCheck(x)
	if err != nil {
		return nil, err
	}

	return hir.NewESeq(check, addr), nil
}
