package interp

import (
	"encoding/binary"

	"github.com/orizon-lang/irvm/internal/errors"
	"github.com/orizon-lang/irvm/internal/hir"
)

// Heap is the simulated byte-addressable memory. It grows one allocation
// at a time up to a fixed limit and never shrinks. The first word is
// reserved so that address 0 never holds data.
type Heap struct {
	mem   []byte
	limit int
}

// NewHeap creates a heap that may grow to limit bytes.
func NewHeap(limit int) *Heap {
	return &Heap{mem: make([]byte, hir.WordSize), limit: limit}
}

// Used returns the high-water mark: the first address past all
// allocations.
func (h *Heap) Used() int { return len(h.mem) }

// Limit returns the configured maximum size in bytes.
func (h *Heap) Limit() int { return h.limit }

// Alloc reserves size zeroed bytes and returns their address. size must be
// a non-negative multiple of the word size.
func (h *Heap) Alloc(size int32) (int32, error) {
	if size < 0 {
		return 0, errors.InvalidSize(size, "negative")
	}

	if size%hir.WordSize != 0 {
		return 0, errors.InvalidSize(size, "not word-aligned")
	}

	if len(h.mem)+int(size) > h.limit {
		return 0, errors.HeapExhausted(int(size), len(h.mem), h.limit)
	}

	addr := int32(len(h.mem))
	h.mem = append(h.mem, make([]byte, size)...)

	return addr, nil
}

func (h *Heap) check(addr int32, op string) error {
	switch {
	case addr == 0:
		return errors.NullPointer(op)
	case addr < 0:
		return errors.BadAddress(addr, "negative")
	case addr%hir.WordSize != 0:
		return errors.BadAddress(addr, "misaligned")
	case int(addr)+hir.WordSize > len(h.mem):
		return errors.BadAddress(addr, "past the high-water mark")
	default:
		return nil
	}
}

// Load reads the word at addr.
func (h *Heap) Load(addr int32) (int32, error) {
	if err := h.check(addr, "load"); err != nil {
		return 0, err
	}

	return int32(binary.LittleEndian.Uint32(h.mem[addr:])), nil
}

// Store writes v to the word at addr.
func (h *Heap) Store(addr, v int32) error {
	if err := h.check(addr, "store"); err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(h.mem[addr:], uint32(v))

	return nil
}

// NewArray allocates an array with a length header and returns the
// reference to element 0.
func (h *Heap) NewArray(elems []int32) (int32, error) {
	base, err := h.Alloc(int32(len(elems)+1) * hir.WordSize)
	if err != nil {
		return 0, err
	}

	binary.LittleEndian.PutUint32(h.mem[base:], uint32(len(elems)))

	for i, v := range elems {
		binary.LittleEndian.PutUint32(h.mem[int(base)+(i+1)*hir.WordSize:], uint32(v))
	}

	return base + hir.WordSize, nil
}

// ArrayLen reads the length header of the array referenced by ref.
func (h *Heap) ArrayLen(ref int32) (int32, error) {
	return h.Load(ref - hir.WordSize)
}

// Array reads every element of the array referenced by ref.
func (h *Heap) Array(ref int32) ([]int32, error) {
	n, err := h.ArrayLen(ref)
	if err != nil {
		return nil, err
	}

	if n < 0 {
		return nil, errors.InvalidSize(n, "array length")
	}

	if int64(ref)+int64(n)*hir.WordSize > int64(len(h.mem)) {
		return nil, errors.BadAddress(ref, "array extends past the high-water mark")
	}

	out := make([]int32, n)

	for i := range out {
		v, err := h.Load(ref + int32(i)*hir.WordSize)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}
