package hir

// Children returns the direct children of n in evaluation order. Label and
// leaf expressions have none; a Move's target comes before its source.
func Children(n Node) []Node {
	switch x := n.(type) {
	case *Seq:
		out := make([]Node, len(x.Stmts))
		for i, s := range x.Stmts {
			out[i] = s
		}

		return out
	case *Move:
		return []Node{x.Target, x.Src}
	case *Exp:
		return []Node{x.X}
	case *Jump:
		return []Node{x.Target}
	case *CJump:
		return []Node{x.Cond}
	case *Return:
		return exprNodes(x.Values)
	case *CallStmt:
		return append([]Node{x.Target}, exprNodes(x.Args)...)
	case *Mem:
		return []Node{x.Addr}
	case *BinOp:
		return []Node{x.Left, x.Right}
	case *UnaryOp:
		return []Node{x.X}
	case *Call:
		return append([]Node{x.Target}, exprNodes(x.Args)...)
	case *ESeq:
		return []Node{x.Stmt, x.X}
	default:
		return nil
	}
}

func exprNodes(xs []Expr) []Node {
	out := make([]Node, len(xs))
	for i, x := range xs {
		out[i] = x
	}

	return out
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	for _, c := range Children(n) {
		Walk(c, fn)
	}
}
