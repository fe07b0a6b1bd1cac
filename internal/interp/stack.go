package interp

import (
	"fmt"

	"github.com/orizon-lang/irvm/internal/errors"
)

// entryKind tags an operand stack entry.
type entryKind uint8

const (
	// kindValue is a computed int32.
	kindValue entryKind = iota
	// kindMem is a word read from memory; addr is where it came from.
	kindMem
	// kindTemp is a register read; name identifies the register.
	kindTemp
	// kindSymbol is a label or function name; value is its address, or -1
	// for a library routine.
	kindSymbol
)

func (k entryKind) String() string {
	switch k {
	case kindValue:
		return "value"
	case kindMem:
		return "memory"
	case kindTemp:
		return "register"
	case kindSymbol:
		return "symbol"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// entry is one operand stack slot. A register read of an unset register
// leaves set false; the filler is chosen only if the value is consumed.
type entry struct {
	kind  entryKind
	value int32
	addr  int32
	name  string
	set   bool
}

// operandStack is shared by every frame of one interpreter. Each node
// consumes exactly the entries its children pushed; a returning frame
// truncates back to its height at entry.
type operandStack struct {
	items []entry
}

func (s *operandStack) push(e entry) { s.items = append(s.items, e) }

func (s *operandStack) pushValue(v int32) {
	s.items = append(s.items, entry{kind: kindValue, value: v, set: true})
}

func (s *operandStack) pop(op string) (entry, error) {
	n := len(s.items)
	if n == 0 {
		return entry{}, errors.OperandTag(op, "empty stack")
	}

	e := s.items[n-1]
	s.items = s.items[:n-1]

	return e, nil
}

// popN removes the top n entries and returns them bottom first.
func (s *operandStack) popN(op string, n int) ([]entry, error) {
	if n > len(s.items) {
		return nil, errors.OperandTag(op, fmt.Sprintf("%d entries, want %d", len(s.items), n))
	}

	start := len(s.items) - n
	out := make([]entry, n)
	copy(out, s.items[start:])
	s.items = s.items[:start]

	return out, nil
}

func (s *operandStack) height() int { return len(s.items) }

func (s *operandStack) truncate(h int) {
	if h < len(s.items) {
		s.items = s.items[:h]
	}
}

func (s *operandStack) reset() { s.items = s.items[:0] }
