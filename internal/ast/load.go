package ast

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	semver "github.com/Masterminds/semver/v3"

	"github.com/orizon-lang/irvm/internal/errors"
	"github.com/orizon-lang/irvm/internal/position"
)

// FormatConstraint is the range of program document versions this loader
// understands.
const FormatConstraint = "^1.0"

// CurrentFormat is written by tools that emit program documents.
const CurrentFormat = "1.1.0"

// document is the on-disk JSON form of a typed program.
type document struct {
	Format    string      `json:"format"`
	Name      string      `json:"name"`
	Functions []*jsonFunc `json:"functions"`
}

type jsonFunc struct {
	Name    string       `json:"name"`
	Line    int          `json:"line,omitempty"`
	Col     int          `json:"col,omitempty"`
	Params  []*jsonParam `json:"params"`
	Returns []string     `json:"returns"`
	Body    []*jsonNode  `json:"body"`
}

type jsonParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// jsonNode is the union of every statement and expression shape; Kind picks
// which fields are meaningful.
type jsonNode struct {
	Kind string `json:"kind"`
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`

	Name    string          `json:"name,omitempty"`
	Type    string          `json:"type,omitempty"`
	Op      string          `json:"op,omitempty"`
	Func    string          `json:"func,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
	Targets []string        `json:"targets,omitempty"`

	Init     *jsonNode   `json:"init,omitempty"`
	Elements []*jsonNode `json:"elements,omitempty"`
	Size     []*jsonNode `json:"size,omitempty"`
	Target   *jsonNode   `json:"target,omitempty"`
	Call     *jsonNode   `json:"call,omitempty"`
	Cond     *jsonNode   `json:"cond,omitempty"`
	Then     []*jsonNode `json:"then,omitempty"`
	Else     []*jsonNode `json:"else,omitempty"`
	Body     []*jsonNode `json:"body,omitempty"`
	Values   []*jsonNode `json:"values,omitempty"`
	X        *jsonNode   `json:"x,omitempty"`
	Left     *jsonNode   `json:"left,omitempty"`
	Right    *jsonNode   `json:"right,omitempty"`
	Array    *jsonNode   `json:"array,omitempty"`
	Index    *jsonNode   `json:"index,omitempty"`
	Args     []*jsonNode `json:"args,omitempty"`
}

// LoadFile reads and resolves a program document from path.
func LoadFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program: %w", err)
	}
	defer f.Close()

	l := &loader{file: path}

	return l.load(f)
}

// LoadProgram reads and resolves a program document from r.
func LoadProgram(r io.Reader) (*Program, error) {
	l := &loader{}

	return l.load(r)
}

// CheckFormat validates a document format version against FormatConstraint.
func CheckFormat(format string) error {
	if format == "" {
		return fmt.Errorf("program document has no format version")
	}

	v, err := semver.NewVersion(format)
	if err != nil {
		return fmt.Errorf("invalid format version %q: %w", format, err)
	}

	c, err := semver.NewConstraint(FormatConstraint)
	if err != nil {
		return fmt.Errorf("invalid format constraint: %w", err)
	}

	if !c.Check(v) {
		return fmt.Errorf("unsupported format version %s (want %s)", v, FormatConstraint)
	}

	return nil
}

type loader struct {
	file string
}

func (l *loader) load(r io.Reader) (*Program, error) {
	var doc document

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse program: %w", err)
	}

	if err := CheckFormat(doc.Format); err != nil {
		return nil, err
	}

	prog := &Program{Name: doc.Name}

	for _, jf := range doc.Functions {
		fn, err := l.function(jf)
		if err != nil {
			return nil, err
		}

		prog.Functions = append(prog.Functions, fn)
	}

	if err := Resolve(prog); err != nil {
		return nil, err
	}

	return prog, nil
}

func (l *loader) span(line, col int) position.Span {
	if line <= 0 {
		return position.Span{}
	}

	if col <= 0 {
		col = 1
	}

	return position.At(l.file, line, col)
}

func (l *loader) typ(s string, span position.Span) (*Type, error) {
	t, ok := ParseType(s)
	if !ok {
		return nil, errors.UnsupportedNode(fmt.Sprintf("type %q", s)).At(span)
	}

	return t, nil
}

func (l *loader) function(jf *jsonFunc) (*FuncDecl, error) {
	span := l.span(jf.Line, jf.Col)
	fn := &FuncDecl{Span: span, Name: jf.Name}

	for _, jp := range jf.Params {
		t, err := l.typ(jp.Type, span)
		if err != nil {
			return nil, err
		}

		fn.Params = append(fn.Params, &Param{Span: span, Name: jp.Name, Type: t})
	}

	for _, rt := range jf.Returns {
		t, err := l.typ(rt, span)
		if err != nil {
			return nil, err
		}

		fn.Returns = append(fn.Returns, t)
	}

	body, err := l.stmts(jf.Body)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", jf.Name, err)
	}

	fn.Body = &Block{Span: span, Stmts: body}

	return fn, nil
}

func (l *loader) stmts(nodes []*jsonNode) ([]Stmt, error) {
	out := make([]Stmt, 0, len(nodes))

	for _, n := range nodes {
		st, err := l.stmt(n)
		if err != nil {
			return nil, err
		}

		out = append(out, st)
	}

	return out, nil
}

func (l *loader) block(nodes []*jsonNode, span position.Span) (*Block, error) {
	stmts, err := l.stmts(nodes)
	if err != nil {
		return nil, err
	}

	return &Block{Span: span, Stmts: stmts}, nil
}

func (l *loader) stmt(n *jsonNode) (Stmt, error) {
	if n == nil {
		return nil, errors.UnsupportedNode("missing statement")
	}

	span := l.span(n.Line, n.Col)

	switch n.Kind {
	case "var":
		t, err := l.typ(n.Type, span)
		if err != nil {
			return nil, err
		}

		var init Expr
		if n.Init != nil {
			if init, err = l.expr(n.Init); err != nil {
				return nil, err
			}
		}

		return &VarDecl{Span: span, Name: n.Name, Type: t, Init: init}, nil
	case "array":
		t, err := l.typ(n.Type, span)
		if err != nil {
			return nil, err
		}

		if !t.IsArray() {
			return nil, errors.UnsupportedNode("array declaration of non-array type " + t.String()).At(span)
		}

		sizes, err := l.exprs(n.Size)
		if err != nil {
			return nil, err
		}

		decl := &ArrayDecl{Span: span, Name: n.Name, Type: t, Sizes: sizes}
		if n.Elements != nil {
			if decl.Init, err = l.exprs(n.Elements); err != nil {
				return nil, err
			}
		}

		if len(decl.Sizes) == 0 && decl.Init == nil {
			decl.Init = []Expr{}
		}

		return decl, nil
	case "assign":
		target, err := l.expr(n.Target)
		if err != nil {
			return nil, err
		}

		value, err := l.rawExpr(n.Value)
		if err != nil {
			return nil, err
		}

		return &Assign{Span: span, Target: target, Value: value}, nil
	case "multi":
		ce, err := l.expr(n.Call)
		if err != nil {
			return nil, err
		}

		call, ok := ce.(*CallExpr)
		if !ok {
			return nil, errors.UnsupportedNode("multi-assignment from a non-call").At(span)
		}

		targets := make([]*Ident, len(n.Targets))
		for i, name := range n.Targets {
			targets[i] = &Ident{Span: span, Name: name}
		}

		return &MultiAssign{Span: span, Targets: targets, Call: call}, nil
	case "if":
		cond, err := l.expr(n.Cond)
		if err != nil {
			return nil, err
		}

		then, err := l.block(n.Then, span)
		if err != nil {
			return nil, err
		}

		st := &If{Span: span, Cond: cond, Then: then}
		if n.Else != nil {
			els, err := l.block(n.Else, span)
			if err != nil {
				return nil, err
			}

			st.Else = els
		}

		return st, nil
	case "while":
		cond, err := l.expr(n.Cond)
		if err != nil {
			return nil, err
		}

		body, err := l.block(n.Body, span)
		if err != nil {
			return nil, err
		}

		return &While{Span: span, Cond: cond, Body: body}, nil
	case "return":
		values, err := l.exprs(n.Values)
		if err != nil {
			return nil, err
		}

		return &Return{Span: span, Values: values}, nil
	case "expr":
		x, err := l.expr(n.X)
		if err != nil {
			return nil, err
		}

		return &ExprStmt{Span: span, X: x}, nil
	case "block":
		return l.block(n.Body, span)
	default:
		return nil, errors.UnsupportedNode(fmt.Sprintf("statement kind %q", n.Kind)).At(span)
	}
}

func (l *loader) exprs(nodes []*jsonNode) ([]Expr, error) {
	out := make([]Expr, 0, len(nodes))

	for _, n := range nodes {
		e, err := l.expr(n)
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, nil
}

// rawExpr decodes an expression held in a "value" field.
func (l *loader) rawExpr(raw json.RawMessage) (Expr, error) {
	if len(raw) == 0 {
		return nil, errors.UnsupportedNode("missing value expression")
	}

	var n jsonNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("failed to parse value expression: %w", err)
	}

	return l.expr(&n)
}

func (l *loader) expr(n *jsonNode) (Expr, error) {
	if n == nil {
		return nil, errors.UnsupportedNode("missing expression")
	}

	span := l.span(n.Line, n.Col)

	switch n.Kind {
	case "int":
		var v int32
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, errors.UnsupportedNode("int literal " + string(n.Value)).At(span)
		}

		return &IntLit{Span: span, Value: v}, nil
	case "bool":
		var v bool
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, errors.UnsupportedNode("bool literal " + string(n.Value)).At(span)
		}

		return &BoolLit{Span: span, Value: v}, nil
	case "string":
		var v string
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, errors.UnsupportedNode("string literal " + string(n.Value)).At(span)
		}

		return &StringLit{Span: span, Value: v}, nil
	case "ident":
		return &Ident{Span: span, Name: n.Name}, nil
	case "index":
		arr, err := l.expr(n.Array)
		if err != nil {
			return nil, err
		}

		idx, err := l.expr(n.Index)
		if err != nil {
			return nil, err
		}

		return &Index{Span: span, Array: arr, Index: idx}, nil
	case "binary":
		op, ok := ParseBinaryOp(n.Op)
		if !ok {
			return nil, errors.UnsupportedOperator(n.Op).At(span)
		}

		left, err := l.expr(n.Left)
		if err != nil {
			return nil, err
		}

		right, err := l.expr(n.Right)
		if err != nil {
			return nil, err
		}

		return &Binary{Span: span, Op: op, Left: left, Right: right}, nil
	case "unary":
		op, ok := ParseUnaryOp(n.Op)
		if !ok {
			return nil, errors.UnsupportedOperator(n.Op).At(span)
		}

		x, err := l.expr(n.X)
		if err != nil {
			return nil, err
		}

		return &Unary{Span: span, Op: op, X: x}, nil
	case "call":
		args, err := l.exprs(n.Args)
		if err != nil {
			return nil, err
		}

		return &CallExpr{Span: span, Func: n.Func, Args: args}, nil
	default:
		return nil, errors.UnsupportedNode(fmt.Sprintf("expression kind %q", n.Kind)).At(span)
	}
}
