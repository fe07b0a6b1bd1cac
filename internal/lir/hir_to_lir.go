package lir

import (
	"fmt"

	"github.com/orizon-lang/irvm/internal/errors"
	"github.com/orizon-lang/irvm/internal/hir"
)

// ====== HIR to LIR Lowerer ======

// Lowerer canonicalizes HIR into LIR. Statements are processed top-down and
// expressions bottom-up: every expression lowers to the statements that must
// run first plus a pure expression for its value. Sibling expressions keep
// their left-to-right order; an earlier sibling whose value could be changed
// by a later sibling's statements is spilled to a fresh register first.
type Lowerer struct {
	tempCounter int

	// registers introduced by lowering; each is assigned exactly once
	owned map[string]bool
	// registers named by the input, never reused for fresh temps
	taken map[string]bool
}

// NewLowerer creates a lowerer with a fresh temp counter.
func NewLowerer() *Lowerer {
	return &Lowerer{owned: make(map[string]bool), taken: make(map[string]bool)}
}

// Lower lowers every function of u, in order.
func Lower(u *hir.Unit) (*Unit, error) {
	return NewLowerer().LowerUnit(u)
}

// LowerUnit lowers every function of u, in order.
func (l *Lowerer) LowerUnit(u *hir.Unit) (*Unit, error) {
	if u == nil {
		return nil, fmt.Errorf("HIR unit is nil")
	}

	for _, fn := range u.Functions {
		hir.Walk(fn.Body, func(n hir.Node) bool {
			if t, ok := n.(*hir.Temp); ok {
				l.taken[t.Name] = true
			}

			return true
		})
	}

	out := &Unit{Name: u.Name, Functions: make([]*Function, 0, len(u.Functions))}

	for _, fn := range u.Functions {
		lf, err := l.LowerFunction(fn)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}

		out.Functions = append(out.Functions, lf)
	}

	return out, nil
}

// LowerFunction flattens one function body.
func (l *Lowerer) LowerFunction(fn *hir.Function) (*Function, error) {
	body, err := l.stmt(fn.Body)
	if err != nil {
		return nil, err
	}

	params := make([]string, len(fn.Params))
	copy(params, fn.Params)

	return &Function{Name: fn.Name, Params: params, Body: body}, nil
}

func (l *Lowerer) newTemp(hint string) string {
	var name string

	for name == "" || l.taken[name] {
		l.tempCounter++
		name = fmt.Sprintf("%s.%d", hint, l.tempCounter)
	}

	l.owned[name] = true

	return name
}

// ====== Statements ======

func (l *Lowerer) stmt(s hir.Stmt) ([]Stmt, error) {
	switch st := s.(type) {
	case nil:
		return nil, nil
	case *hir.Seq:
		var out []Stmt

		for _, inner := range st.Stmts {
			lowered, err := l.stmt(inner)
			if err != nil {
				return nil, err
			}

			out = append(out, lowered...)
		}

		return out, nil
	case *hir.Move:
		return l.move(st.Target, st.Src)
	case *hir.Exp:
		if call, ok := st.X.(*hir.Call); ok {
			return l.call(call.Target, call.Args, 0, "")
		}

		pre, x, err := l.expr(st.X)
		if err != nil {
			return nil, err
		}

		switch x.(type) {
		case *Const, *Temp, *Name:
			return pre, nil
		}

		return append(pre, &Exp{X: x}), nil
	case *hir.Jump:
		pre, target, err := l.expr(st.Target)
		if err != nil {
			return nil, err
		}

		return append(pre, &Jump{Target: target}), nil
	case *hir.CJump:
		pre, cond, err := l.expr(st.Cond)
		if err != nil {
			return nil, err
		}

		return append(pre, &CJump{Cond: cond, True: st.True, False: st.False}), nil
	case *hir.Label:
		return []Stmt{&Label{Name: st.Name}}, nil
	case *hir.Return:
		pre, values, err := l.exprList(st.Values)
		if err != nil {
			return nil, err
		}

		return append(pre, &Return{Values: values}), nil
	case *hir.CallStmt:
		return l.call(st.Target, st.Args, st.NumReturns, "")
	default:
		return nil, errors.UnsupportedNode(fmt.Sprintf("HIR statement %T", s))
	}
}

// move lowers the source first for a register target. A memory target's
// address is lowered before the source.
func (l *Lowerer) move(target, src hir.Expr) ([]Stmt, error) {
	switch t := target.(type) {
	case *hir.Temp:
		if call, ok := src.(*hir.Call); ok {
			return l.call(call.Target, call.Args, 0, t.Name)
		}

		pre, x, err := l.expr(src)
		if err != nil {
			return nil, err
		}

		return append(pre, &MoveToTemp{Name: t.Name, Src: x}), nil
	case *hir.Mem:
		pre, xs, err := l.exprList([]hir.Expr{t.Addr, src})
		if err != nil {
			return nil, err
		}

		return append(pre, &MoveToMem{Addr: xs[0], Src: xs[1]}), nil
	case *hir.ESeq:
		pre, err := l.stmt(t.Stmt)
		if err != nil {
			return nil, err
		}

		rest, err := l.move(t.X, src)
		if err != nil {
			return nil, err
		}

		return append(pre, rest...), nil
	default:
		return nil, errors.UnsupportedNode(fmt.Sprintf("move target %s", target))
	}
}

func (l *Lowerer) call(target hir.Expr, args []hir.Expr, numReturns int, dst string) ([]Stmt, error) {
	pre, xs, err := l.exprList(append([]hir.Expr{target}, args...))
	if err != nil {
		return nil, err
	}

	return append(pre, &CallM{Target: xs[0], Args: xs[1:], NumReturns: numReturns, Dst: dst}), nil
}

// ====== Expressions ======

func (l *Lowerer) expr(e hir.Expr) ([]Stmt, Expr, error) {
	switch x := e.(type) {
	case *hir.Const:
		return nil, &Const{Value: x.Value}, nil
	case *hir.Temp:
		return nil, &Temp{Name: x.Name}, nil
	case *hir.Name:
		return nil, &Name{Label: x.Label}, nil
	case *hir.Mem:
		pre, addr, err := l.expr(x.Addr)
		if err != nil {
			return nil, nil, err
		}

		return pre, &Mem{Addr: addr}, nil
	case *hir.BinOp:
		pre, xs, err := l.exprList([]hir.Expr{x.Left, x.Right})
		if err != nil {
			return nil, nil, err
		}

		return pre, &BinOp{Op: x.Op, Left: xs[0], Right: xs[1]}, nil
	case *hir.UnaryOp:
		pre, v, err := l.expr(x.X)
		if err != nil {
			return nil, nil, err
		}

		return pre, &UnaryOp{Op: x.Op, X: v}, nil
	case *hir.Call:
		dst := l.newTemp("lc")

		pre, err := l.call(x.Target, x.Args, 0, dst)
		if err != nil {
			return nil, nil, err
		}

		return pre, &Temp{Name: dst}, nil
	case *hir.ESeq:
		pre, err := l.stmt(x.Stmt)
		if err != nil {
			return nil, nil, err
		}

		rest, v, err := l.expr(x.X)
		if err != nil {
			return nil, nil, err
		}

		return append(pre, rest...), v, nil
	default:
		return nil, nil, errors.UnsupportedNode(fmt.Sprintf("HIR expression %T", e))
	}
}

// exprList lowers sibling expressions left to right. Before the statements
// of a later sibling are appended, every earlier value that those
// statements could change is moved into a fresh register.
func (l *Lowerer) exprList(list []hir.Expr) ([]Stmt, []Expr, error) {
	var pre []Stmt

	out := make([]Expr, len(list))

	for i, e := range list {
		stmts, x, err := l.expr(e)
		if err != nil {
			return nil, nil, err
		}

		if len(stmts) > 0 {
			for j := range i {
				if l.isConstant(out[j]) {
					continue
				}

				t := l.newTemp("lt")
				pre = append(pre, &MoveToTemp{Name: t, Src: out[j]})
				out[j] = &Temp{Name: t}
			}

			pre = append(pre, stmts...)
		}

		out[i] = x
	}

	return pre, out, nil
}

// isConstant reports whether no later statement can change the value of x.
func (l *Lowerer) isConstant(x Expr) bool {
	switch v := x.(type) {
	case *Const, *Name:
		return true
	case *Temp:
		return l.owned[v.Name]
	default:
		return false
	}
}
