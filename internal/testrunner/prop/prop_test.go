package prop

import (
	"slices"
	"testing"
	"time"

	"github.com/orizon-lang/irvm/internal/testrunner/assert"
)

func TestForAllPassingProperty(t *testing.T) {
	gen := Slice(Int32(1000))
	reverseTwice := func(xs []int32) bool {
		ys := slices.Clone(xs)
		slices.Reverse(ys)
		slices.Reverse(ys)

		return slices.Equal(xs, ys)
	}

	res := ForAll(gen, ShrinkSlice(ShrinkInt32), reverseTwice, Options{Trials: 100, Seed: 1})
	assert.False(t, res.Failed)
	assert.Equal(t, res.PassedTrials, 100)
	assert.Equal(t, res.Seed, uint64(1))
}

func TestForAllShrinksFailure(t *testing.T) {
	allSmall := func(xs []int32) bool {
		for _, x := range xs {
			if x > 10 {
				return false
			}
		}

		return true
	}

	res := ForAll(Slice(Int32(1000)), ShrinkSlice(ShrinkInt32), allSmall,
		Options{Trials: 200, Seed: 7, Size: 10, MaxShrinkTime: 2 * time.Second})
	if !assert.True(t, res.Failed) {
		return
	}

	assert.False(t, allSmall(res.ShrunkInput))
	assert.True(t, len(res.ShrunkInput) <= len(res.FailingInput))
}

func TestRandIsReproducible(t *testing.T) {
	a := Int32(1<<20)(Rand(42, 3), 0)
	b := Int32(1<<20)(Rand(42, 3), 0)
	assert.Equal(t, a, b)
}

func TestShrinkInt32(t *testing.T) {
	assert.Len(t, ShrinkInt32(0), 0)
	assert.SliceEqual(t, ShrinkInt32(1), []int32{0})
	assert.SliceEqual(t, ShrinkInt32(-1), []int32{0})
	assert.SliceEqual(t, ShrinkInt32(10), []int32{0, 5, 9})
	assert.SliceEqual(t, ShrinkInt32(-3), []int32{0, -1, -2})
}
