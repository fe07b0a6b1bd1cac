package interp

import (
	"fmt"
	"sort"

	"github.com/orizon-lang/irvm/internal/errors"
	"github.com/orizon-lang/irvm/internal/hir"
	"github.com/orizon-lang/irvm/internal/lir"
)

// FuncRange is the half-open address range [Start, End) of one function.
// Reaching End returns from the function with no values.
type FuncRange struct {
	Name  string
	Start int
	End   int
}

// Program is a linearized compilation unit: every non-label node has a
// dense zero-based address assigned in post-order, and every label and
// function name maps to an address. Function names share the label
// namespace.
type Program struct {
	Unit   string
	Code   []hir.Node
	Labels map[string]int
	Funcs  []FuncRange
}

// Linearize assigns addresses to every node of u.
func Linearize(u *hir.Unit) (*Program, error) {
	if u == nil {
		return nil, fmt.Errorf("HIR unit is nil")
	}

	p := &Program{Unit: u.Name, Labels: make(map[string]int)}

	for _, fn := range u.Functions {
		if err := p.define(fn.Name); err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}

		start := len(p.Code)
		if err := p.visit(fn.Body); err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}

		p.Funcs = append(p.Funcs, FuncRange{Name: fn.Name, Start: start, End: len(p.Code)})
	}

	return p, nil
}

// LinearizeLIR lifts u back to HIR form and linearizes it.
func LinearizeLIR(u *lir.Unit) (*Program, error) {
	if u == nil {
		return nil, fmt.Errorf("LIR unit is nil")
	}

	return Linearize(lir.Lift(u))
}

func (p *Program) define(name string) error {
	if _, dup := p.Labels[name]; dup {
		return errors.DuplicateLabel(name)
	}

	p.Labels[name] = len(p.Code)

	return nil
}

// visit records children first, then n itself. A label records the next
// address without taking one.
func (p *Program) visit(n hir.Node) error {
	if n == nil {
		return nil
	}

	if l, ok := n.(*hir.Label); ok {
		return p.define(l.Name)
	}

	for _, c := range hir.Children(n) {
		if err := p.visit(c); err != nil {
			return err
		}
	}

	p.Code = append(p.Code, n)

	return nil
}

// Function returns the range of the function that contains addr.
func (p *Program) Function(addr int) (FuncRange, bool) {
	i := sort.Search(len(p.Funcs), func(i int) bool { return p.Funcs[i].End > addr })
	if i < len(p.Funcs) && p.Funcs[i].Start <= addr {
		return p.Funcs[i], true
	}

	return FuncRange{}, false
}

// Entry returns the range of the function named name.
func (p *Program) Entry(name string) (FuncRange, bool) {
	for _, f := range p.Funcs {
		if f.Name == name {
			return f, true
		}
	}

	return FuncRange{}, false
}

// Link checks that every name used as a jump or call target, and every
// branch label, resolves to an address or a library routine.
func Link(p *Program) error {
	for _, n := range p.Code {
		switch x := n.(type) {
		case *hir.Name:
			if _, ok := p.Labels[x.Label]; !ok && !IsLibrary(x.Label) {
				return errors.UnresolvedName(x.Label)
			}
		case *hir.CJump:
			for _, l := range []string{x.True, x.False} {
				if _, ok := p.Labels[l]; !ok {
					return errors.UnresolvedName(l)
				}
			}
		}
	}

	return nil
}
