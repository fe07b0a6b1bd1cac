// Package position provides source position tracking for typed syntax tree
// nodes. Positions are carried through generation so build errors can point
// back at the construct that produced them.
package position

import (
	"fmt"
	"path/filepath"
)

// Position represents a single point in source code
type Position struct {
	Filename string `json:"file,omitempty"`
	Line     int    `json:"line"`   // 1-based line number
	Column   int    `json:"column"` // 1-based column number
	Offset   int    `json:"offset"` // 0-based byte offset in source
}

// IsValid returns true if the position is valid
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

// String returns a string representation of the position
func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}

	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", filepath.Base(p.Filename), p.Line, p.Column)
	}

	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before returns true if this position comes before other
func (p Position) Before(other Position) bool {
	if p.Filename != other.Filename {
		return p.Filename < other.Filename
	}

	return p.Offset < other.Offset
}

// Span represents a range of source code between two positions
type Span struct {
	Start Position `json:"start"` // inclusive
	End   Position `json:"end"`   // exclusive
}

// IsValid returns true if the span is valid
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid() &&
		s.Start.Filename == s.End.Filename &&
		s.Start.Offset <= s.End.Offset
}

// String returns a string representation of the span
func (s Span) String() string {
	if !s.Start.IsValid() {
		return "-"
	}

	if !s.End.IsValid() || s.End == s.Start {
		return s.Start.String()
	}

	prefix := ""
	if s.Start.Filename != "" {
		prefix = filepath.Base(s.Start.Filename) + ":"
	}

	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s%d:%d-%d", prefix, s.Start.Line, s.Start.Column, s.End.Column)
	}

	return fmt.Sprintf("%s%d:%d-%d:%d", prefix, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Contains returns true if the span contains the given position
func (s Span) Contains(pos Position) bool {
	if !s.IsValid() || !pos.IsValid() {
		return false
	}

	return pos.Filename == s.Start.Filename &&
		pos.Offset >= s.Start.Offset && pos.Offset < s.End.Offset
}

// NewSpan builds a span from two positions.
func NewSpan(start, end Position) Span {
	return Span{Start: start, End: end}
}

// At returns a zero-width span at the given line and column.
func At(filename string, line, column int) Span {
	p := Position{Filename: filename, Line: line, Column: column}

	return Span{Start: p, End: p}
}
