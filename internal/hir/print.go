package hir

import (
	"fmt"
	"strings"
)

func (s *Seq) String() string {
	parts := make([]string, len(s.Stmts))
	for i, st := range s.Stmts {
		parts[i] = st.String()
	}

	return "SEQ(" + strings.Join(parts, "; ") + ")"
}

func (m *Move) String() string  { return fmt.Sprintf("MOVE(%s, %s)", m.Target, m.Src) }
func (e *Exp) String() string   { return fmt.Sprintf("EXP(%s)", e.X) }
func (j *Jump) String() string  { return fmt.Sprintf("JUMP(%s)", j.Target) }
func (l *Label) String() string { return "LABEL " + l.Name }

func (c *CJump) String() string {
	return fmt.Sprintf("CJUMP(%s, %s, %s)", c.Cond, c.True, c.False)
}

func (r *Return) String() string { return "RETURN(" + joinExprs(r.Values) + ")" }

func (c *CallStmt) String() string {
	return fmt.Sprintf("CALLSTMT[%d](%s)", c.NumReturns, joinExprs(append([]Expr{c.Target}, c.Args...)))
}

func (c *Const) String() string { return fmt.Sprintf("CONST %d", c.Value) }
func (t *Temp) String() string  { return "TEMP " + t.Name }
func (m *Mem) String() string   { return fmt.Sprintf("MEM(%s)", m.Addr) }
func (n *Name) String() string  { return "NAME " + n.Label }

func (b *BinOp) String() string {
	return fmt.Sprintf("BINOP(%s, %s, %s)", b.Op, b.Left, b.Right)
}

func (u *UnaryOp) String() string { return fmt.Sprintf("UNOP(%s, %s)", u.Op, u.X) }

func (c *Call) String() string {
	return "CALL(" + joinExprs(append([]Expr{c.Target}, c.Args...)) + ")"
}

func (e *ESeq) String() string { return fmt.Sprintf("ESEQ(%s, %s)", e.Stmt, e.X) }

func joinExprs(xs []Expr) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.String()
	}

	return strings.Join(parts, ", ")
}

// String prints one statement per line, flattening nested sequences and
// outdenting labels.
func (f *Function) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "func %s(%s):\n", f.Name, strings.Join(f.Params, ", "))
	writeStmt(&b, f.Body)

	return b.String()
}

func writeStmt(b *strings.Builder, s Stmt) {
	switch st := s.(type) {
	case nil:
		return
	case *Seq:
		for _, inner := range st.Stmts {
			writeStmt(b, inner)
		}
	case *Label:
		fmt.Fprintf(b, "%s:\n", st.Name)
	default:
		b.WriteString("  ")
		b.WriteString(st.String())
		b.WriteByte('\n')
	}
}

func (u *Unit) String() string {
	if u == nil {
		return "<nil-hir-unit>"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "unit %s\n", u.Name)

	for _, f := range u.Functions {
		b.WriteString(f.String())
	}

	return b.String()
}
