package ast

import (
	"fmt"
	"maps"
	"slices"
)

// SymbolKind represents the kind of symbol.
type SymbolKind int

const (
	SymbolKindVariable SymbolKind = iota
	SymbolKindParameter
	SymbolKindFunction
	SymbolKindBuiltin
)

// String returns the string representation of SymbolKind.
func (sk SymbolKind) String() string {
	switch sk {
	case SymbolKindVariable:
		return "variable"
	case SymbolKindParameter:
		return "parameter"
	case SymbolKindFunction:
		return "function"
	case SymbolKindBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}

// Symbol represents a named entity in the program. Symbols are compared by
// identity: two variables with the same name in different scopes are
// distinct symbols.
type Symbol struct {
	Name string
	Kind SymbolKind
	Type *Type
	// Returns is set for functions and builtins.
	Returns []*Type
	Decl    Node
}

// IsCallable reports whether the symbol names a function or builtin.
func (s *Symbol) IsCallable() bool {
	return s.Kind == SymbolKindFunction || s.Kind == SymbolKindBuiltin
}

// Scope is one lexical scope. Lookups walk outward through parents.
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
	order   []*Symbol
}

// NewScope creates a scope nested in parent (nil for the outermost scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, symbols: make(map[string]*Symbol)}
}

// Parent returns the enclosing scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Define adds sym to this scope. Redefinition within one scope is an error.
func (s *Scope) Define(sym *Symbol) error {
	if _, exists := s.symbols[sym.Name]; exists {
		return fmt.Errorf("%s %q already declared in this scope", sym.Kind, sym.Name)
	}

	s.symbols[sym.Name] = sym
	s.order = append(s.order, sym)

	return nil
}

// Lookup resolves name in this scope or any enclosing one.
func (s *Scope) Lookup(name string) *Symbol {
	for cur := s; cur != nil; cur = cur.parent {
		if sym, ok := cur.symbols[name]; ok {
			return sym
		}
	}

	return nil
}

// LookupLocal resolves name in this scope only.
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.symbols[name]
}

// Symbols returns the symbols of this scope in declaration order.
func (s *Scope) Symbols() []*Symbol {
	return append([]*Symbol(nil), s.order...)
}

// Builtins lists the library routines every program can call, with their
// result types. Argument types are not checked here.
var Builtins = map[string][]*Type{
	"print":      nil,
	"println":    nil,
	"readln":     {ArrayOf(Int)},
	"getchar":    {Int},
	"eof":        {Bool},
	"parseInt":   {Int, Bool},
	"unparseInt": {ArrayOf(Int)},
	"lengthInt":  {Int},
	"lengthBool": {Int},
	"malloc":     {Int},
	"assert":     nil,
}

// Universe returns a fresh outermost scope holding the builtins.
func Universe() *Scope {
	u := NewScope(nil)

	for _, name := range sortedBuiltinNames() {
		_ = u.Define(&Symbol{Name: name, Kind: SymbolKindBuiltin, Returns: Builtins[name]})
	}

	return u
}

func sortedBuiltinNames() []string {
	return slices.Sorted(maps.Keys(Builtins))
}
