package interp

import (
	"testing"

	"github.com/orizon-lang/irvm/internal/errors"
	"github.com/orizon-lang/irvm/internal/testrunner/assert"
)

func TestHeapAlloc(t *testing.T) {
	h := NewHeap(32)
	assert.Equal(t, h.Used(), 4)

	a, err := h.Alloc(8)
	assert.NoError(t, err)
	assert.Equal(t, a, int32(4))

	b, err := h.Alloc(0)
	assert.NoError(t, err)
	assert.Equal(t, b, int32(12))
	assert.Equal(t, h.Used(), 12)

	tests := []struct {
		size int32
		code string
	}{
		{-4, errors.CodeInvalidSize},
		{6, errors.CodeInvalidSize},
		{24, errors.CodeHeapExhausted},
	}

	for _, tt := range tests {
		_, err := h.Alloc(tt.size)
		assert.True(t, errors.HasCode(err, tt.code), tt.size, err)
	}

	c, err := h.Alloc(20)
	assert.NoError(t, err, "exactly reaching the limit is allowed")
	assert.Equal(t, c, int32(12))
	assert.Equal(t, h.Used(), h.Limit())
}

func TestHeapLoadStore(t *testing.T) {
	h := NewHeap(64)

	addr, err := h.Alloc(8)
	if !assert.NoError(t, err) {
		return
	}

	v, err := h.Load(addr)
	assert.NoError(t, err)
	assert.Equal(t, v, int32(0), "fresh memory is zeroed")

	assert.NoError(t, h.Store(addr+4, -2))

	v, err = h.Load(addr + 4)
	assert.NoError(t, err)
	assert.Equal(t, v, int32(-2))

	tests := []struct {
		addr int32
		code string
	}{
		{0, errors.CodeNullPointer},
		{-4, errors.CodeBadAddress},
		{2, errors.CodeBadAddress},
		{12, errors.CodeBadAddress},
	}

	for _, tt := range tests {
		_, err := h.Load(tt.addr)
		assert.True(t, errors.HasCode(err, tt.code), "load", tt.addr, err)

		err = h.Store(tt.addr, 1)
		assert.True(t, errors.HasCode(err, tt.code), "store", tt.addr, err)
	}
}

func TestHeapArrays(t *testing.T) {
	h := NewHeap(64)

	ref, err := h.NewArray([]int32{3, 1, 4})
	if !assert.NoError(t, err) {
		return
	}

	assert.Equal(t, ref, int32(8))

	n, err := h.ArrayLen(ref)
	assert.NoError(t, err)
	assert.Equal(t, n, int32(3))

	elems, err := h.Array(ref)
	assert.NoError(t, err)
	assert.SliceEqual(t, elems, []int32{3, 1, 4})

	empty, err := h.NewArray(nil)
	assert.NoError(t, err)

	elems, err = h.Array(empty)
	assert.NoError(t, err)
	assert.Len(t, elems, 0)

	_, err = h.Array(4)
	assert.True(t, errors.HasCode(err, errors.CodeNullPointer), err)
}

func TestHeapArrayLengthPastHighWater(t *testing.T) {
	tests := []struct {
		name   string
		header int32
	}{
		{"one past", 3},
		{"large", 100_000_000},
		{"max", 0x7fffffff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHeap(64)

			ref, err := h.NewArray([]int32{1, 2})
			if !assert.NoError(t, err) {
				return
			}

			assert.NoError(t, h.Store(ref-4, tt.header))

			elems, err := h.Array(ref)
			assert.Nil(t, elems)
			assert.True(t, errors.HasCode(err, errors.CodeBadAddress), err)
		})
	}
}
