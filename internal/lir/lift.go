package lir

import (
	"github.com/orizon-lang/irvm/internal/hir"
)

// Lift maps a LIR unit back onto HIR node for node, so the same
// interpreter can run both forms. A CallM with a destination becomes
// Move(Temp, Call); any other CallM becomes a CallStmt.
func Lift(u *Unit) *hir.Unit {
	out := &hir.Unit{Name: u.Name, Functions: make([]*hir.Function, 0, len(u.Functions))}

	for _, fn := range u.Functions {
		stmts := make([]hir.Stmt, len(fn.Body))
		for i, s := range fn.Body {
			stmts[i] = liftStmt(s)
		}

		params := make([]string, len(fn.Params))
		copy(params, fn.Params)

		out.Functions = append(out.Functions, &hir.Function{
			Name:   fn.Name,
			Params: params,
			Body:   hir.NewSeq(stmts...),
		})
	}

	return out
}

func liftStmt(s Stmt) hir.Stmt {
	switch st := s.(type) {
	case *MoveToTemp:
		return hir.NewMove(hir.NewTemp(st.Name), liftExpr(st.Src))
	case *MoveToMem:
		return hir.NewMove(hir.NewMem(liftExpr(st.Addr)), liftExpr(st.Src))
	case *Exp:
		return hir.NewExp(liftExpr(st.X))
	case *Jump:
		return &hir.Jump{Target: liftExpr(st.Target)}
	case *CJump:
		return hir.NewCJump(liftExpr(st.Cond), st.True, st.False)
	case *Label:
		return hir.NewLabel(st.Name)
	case *Return:
		return hir.NewReturn(liftExprs(st.Values)...)
	case *CallM:
		if st.Dst != "" {
			return hir.NewMove(hir.NewTemp(st.Dst), &hir.Call{Target: liftExpr(st.Target), Args: liftExprs(st.Args)})
		}

		return &hir.CallStmt{Target: liftExpr(st.Target), Args: liftExprs(st.Args), NumReturns: st.NumReturns}
	default:
		panic("lir: unknown statement " + s.String())
	}
}

func liftExprs(xs []Expr) []hir.Expr {
	out := make([]hir.Expr, len(xs))
	for i, x := range xs {
		out[i] = liftExpr(x)
	}

	return out
}

func liftExpr(e Expr) hir.Expr {
	switch x := e.(type) {
	case *Const:
		return hir.NewConst(x.Value)
	case *Temp:
		return hir.NewTemp(x.Name)
	case *Mem:
		return hir.NewMem(liftExpr(x.Addr))
	case *Name:
		return hir.NewName(x.Label)
	case *BinOp:
		return hir.NewBinOp(x.Op, liftExpr(x.Left), liftExpr(x.Right))
	case *UnaryOp:
		return hir.NewUnaryOp(x.Op, liftExpr(x.X))
	default:
		panic("lir: unknown expression " + e.String())
	}
}
