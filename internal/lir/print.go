package lir

import (
	"fmt"
	"strings"
)

func (m *MoveToTemp) String() string { return fmt.Sprintf("MOVE(TEMP %s, %s)", m.Name, m.Src) }
func (m *MoveToMem) String() string  { return fmt.Sprintf("MOVE(MEM(%s), %s)", m.Addr, m.Src) }
func (e *Exp) String() string        { return fmt.Sprintf("EXP(%s)", e.X) }
func (j *Jump) String() string       { return fmt.Sprintf("JUMP(%s)", j.Target) }
func (l *Label) String() string      { return "LABEL " + l.Name }

func (c *CJump) String() string {
	return fmt.Sprintf("CJUMP(%s, %s, %s)", c.Cond, c.True, c.False)
}

func (r *Return) String() string { return "RETURN(" + joinExprs(r.Values) + ")" }

func (c *CallM) String() string {
	s := fmt.Sprintf("CALLM[%d](%s)", c.NumReturns, joinExprs(append([]Expr{c.Target}, c.Args...)))
	if c.Dst != "" {
		s += " -> " + c.Dst
	}

	return s
}

func (c *Const) String() string { return fmt.Sprintf("CONST %d", c.Value) }
func (t *Temp) String() string  { return "TEMP " + t.Name }
func (m *Mem) String() string   { return fmt.Sprintf("MEM(%s)", m.Addr) }
func (n *Name) String() string  { return "NAME " + n.Label }

func (b *BinOp) String() string {
	return fmt.Sprintf("BINOP(%s, %s, %s)", b.Op, b.Left, b.Right)
}

func (u *UnaryOp) String() string { return fmt.Sprintf("UNOP(%s, %s)", u.Op, u.X) }

func joinExprs(xs []Expr) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.String()
	}

	return strings.Join(parts, ", ")
}

func (f *Function) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "func %s(%s):\n", f.Name, strings.Join(f.Params, ", "))

	for _, s := range f.Body {
		if l, ok := s.(*Label); ok {
			fmt.Fprintf(&b, "%s:\n", l.Name)
			continue
		}

		b.WriteString("  ")
		b.WriteString(s.String())
		b.WriteByte('\n')
	}

	return b.String()
}

func (u *Unit) String() string {
	if u == nil {
		return "<nil-lir-unit>"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "lir unit %s\n", u.Name)

	for _, f := range u.Functions {
		b.WriteString(f.String())
	}

	return b.String()
}
