package ast

import (
	"fmt"

	"github.com/orizon-lang/irvm/internal/errors"
)

// Resolve rebuilds the scope graph of p and annotates every identifier,
// index, operator and call expression with its resolved type. It is the
// minimal resolution pass needed when a tree arrives without scopes (the JSON
// loader, hand-built trees in tests); it does not type-check.
func Resolve(p *Program) error {
	r := &resolver{}

	p.Scope = NewScope(Universe())

	for _, fn := range p.Functions {
		sym := &Symbol{Name: fn.Name, Kind: SymbolKindFunction, Returns: fn.Returns, Decl: fn}
		if err := p.Scope.Define(sym); err != nil {
			return errors.UnsupportedNode(err.Error()).At(fn.Span)
		}
	}

	for _, fn := range p.Functions {
		if err := r.function(p.Scope, fn); err != nil {
			return fmt.Errorf("function %s: %w", fn.Name, err)
		}
	}

	return nil
}

type resolver struct{}

func (r *resolver) function(global *Scope, fn *FuncDecl) error {
	scope := NewScope(global)

	for _, prm := range fn.Params {
		if err := scope.Define(&Symbol{Name: prm.Name, Kind: SymbolKindParameter, Type: prm.Type, Decl: prm}); err != nil {
			return errors.UnsupportedNode(err.Error()).At(prm.Span)
		}
	}

	if fn.Body == nil {
		fn.Body = &Block{Span: fn.Span}
	}

	return r.block(scope, fn.Body)
}

func (r *resolver) block(parent *Scope, b *Block) error {
	b.Scope = NewScope(parent)

	for _, st := range b.Stmts {
		if err := r.stmt(b.Scope, st); err != nil {
			return err
		}
	}

	return nil
}

func (r *resolver) stmt(scope *Scope, st Stmt) error {
	switch s := st.(type) {
	case *Block:
		return r.block(scope, s)
	case *VarDecl:
		if s.Init != nil {
			if err := r.expr(scope, s.Init); err != nil {
				return err
			}
		}

		return r.define(scope, s.Name, s.Type, s)
	case *ArrayDecl:
		for _, e := range s.Sizes {
			if err := r.expr(scope, e); err != nil {
				return err
			}
		}

		for _, e := range s.Init {
			if err := r.expr(scope, e); err != nil {
				return err
			}
		}

		return r.define(scope, s.Name, s.Type, s)
	case *Assign:
		if err := r.expr(scope, s.Target); err != nil {
			return err
		}

		return r.expr(scope, s.Value)
	case *MultiAssign:
		if err := r.expr(scope, s.Call); err != nil {
			return err
		}

		for _, id := range s.Targets {
			if err := r.expr(scope, id); err != nil {
				return err
			}
		}

		return nil
	case *If:
		if err := r.expr(scope, s.Cond); err != nil {
			return err
		}

		if err := r.stmt(scope, s.Then); err != nil {
			return err
		}

		if s.Else != nil {
			return r.stmt(scope, s.Else)
		}

		return nil
	case *While:
		if err := r.expr(scope, s.Cond); err != nil {
			return err
		}

		return r.stmt(scope, s.Body)
	case *Return:
		for _, v := range s.Values {
			if err := r.expr(scope, v); err != nil {
				return err
			}
		}

		return nil
	case *ExprStmt:
		return r.expr(scope, s.X)
	case nil:
		return nil
	default:
		return errors.UnsupportedNode(fmt.Sprintf("statement %T", st)).At(st.GetSpan())
	}
}

func (r *resolver) define(scope *Scope, name string, t *Type, decl Node) error {
	if err := scope.Define(&Symbol{Name: name, Kind: SymbolKindVariable, Type: t, Decl: decl}); err != nil {
		return errors.UnsupportedNode(err.Error()).At(decl.GetSpan())
	}

	return nil
}

func (r *resolver) expr(scope *Scope, ex Expr) error {
	switch e := ex.(type) {
	case *IntLit, *BoolLit, *StringLit:
		return nil
	case *Ident:
		sym := scope.Lookup(e.Name)
		if sym == nil || sym.IsCallable() {
			return errors.UnresolvedScope(e.Name).At(e.Span)
		}

		e.Type = sym.Type
		e.Symbol = sym

		return nil
	case *Index:
		if err := r.expr(scope, e.Array); err != nil {
			return err
		}

		if err := r.expr(scope, e.Index); err != nil {
			return err
		}

		if at := e.Array.GetType(); at.IsArray() {
			e.Type = at.Elem
		}

		return nil
	case *Binary:
		if err := r.expr(scope, e.Left); err != nil {
			return err
		}

		if err := r.expr(scope, e.Right); err != nil {
			return err
		}

		if e.Op.IsComparison() || e.Op.IsLogical() {
			e.Type = Bool
		} else {
			e.Type = Int
		}

		return nil
	case *Unary:
		if err := r.expr(scope, e.X); err != nil {
			return err
		}

		if e.Op == OpLogNot {
			e.Type = Bool
		} else {
			e.Type = Int
		}

		return nil
	case *CallExpr:
		sym := scope.Lookup(e.Func)
		if sym == nil || !sym.IsCallable() {
			return errors.UnresolvedScope(e.Func).At(e.Span)
		}

		for _, a := range e.Args {
			if err := r.expr(scope, a); err != nil {
				return err
			}
		}

		e.Type = Void
		if len(sym.Returns) > 0 {
			e.Type = sym.Returns[0]
		}

		return nil
	default:
		return errors.UnsupportedNode(fmt.Sprintf("expression %T", ex)).At(ex.GetSpan())
	}
}
