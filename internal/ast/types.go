package ast

import "strings"

// Kind classifies a resolved value type.
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindBool
	KindArray
)

// Type is a resolved value type. Arrays nest through Elem; a 2-D array is an
// array whose element type is itself an array.
type Type struct {
	Kind Kind
	Elem *Type
}

var (
	Void = &Type{Kind: KindVoid}
	Int  = &Type{Kind: KindInt}
	Bool = &Type{Kind: KindBool}
)

// ArrayOf returns the array type with the given element type.
func ArrayOf(elem *Type) *Type {
	return &Type{Kind: KindArray, Elem: elem}
}

// IsArray reports whether t is an array type of any rank.
func (t *Type) IsArray() bool { return t != nil && t.Kind == KindArray }

// Dims returns the array rank of t (0 for scalars).
func (t *Type) Dims() int {
	n := 0
	for cur := t; cur.IsArray(); cur = cur.Elem {
		n++
	}

	return n
}

// Equal reports structural type equality.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}

	if t.Kind != o.Kind {
		return false
	}

	if t.Kind == KindArray {
		return t.Elem.Equal(o.Elem)
	}

	return true
}

func (t *Type) String() string {
	if t == nil {
		return "<untyped>"
	}

	switch t.Kind {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindArray:
		return t.Elem.String() + "[]"
	default:
		return "void"
	}
}

// ParseType parses the textual form used by the program loader:
// "int", "bool", "void", optionally followed by one or more "[]".
func ParseType(s string) (*Type, bool) {
	s = strings.TrimSpace(s)

	dims := 0
	for strings.HasSuffix(s, "[]") {
		dims++
		s = strings.TrimSpace(strings.TrimSuffix(s, "[]"))
	}

	var base *Type

	switch s {
	case "int":
		base = Int
	case "bool":
		base = Bool
	case "void", "":
		if dims > 0 {
			return nil, false
		}

		base = Void
	default:
		return nil, false
	}

	for i := 0; i < dims; i++ {
		base = ArrayOf(base)
	}

	return base, true
}
