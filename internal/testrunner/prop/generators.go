package prop

import "math/rand/v2"

// Int32 generates values in [-limit, limit].
func Int32(limit int32) Generator[int32] {
	return func(r *rand.Rand, _ int) int32 {
		if limit <= 0 {
			return 0
		}

		return r.Int32N(2*limit+1) - limit
	}
}

// ShrinkInt32 moves v toward zero.
func ShrinkInt32(v int32) []int32 {
	if v == 0 {
		return nil
	}

	out := []int32{0}
	if h := v / 2; h != 0 {
		out = append(out, h)
	}

	step := v - 1
	if v < 0 {
		step = v + 1
	}

	if step != 0 && step != v/2 {
		out = append(out, step)
	}

	return out
}

// Bool generates true or false with equal weight.
func Bool() Generator[bool] {
	return func(r *rand.Rand, _ int) bool { return r.IntN(2) == 0 }
}

// OneOf picks one of the given generators uniformly for each value.
func OneOf[T any](gens ...Generator[T]) Generator[T] {
	return func(r *rand.Rand, size int) T {
		return gens[r.IntN(len(gens))](r, size)
	}
}

// Slice generates slices of up to size elements.
func Slice[T any](elem Generator[T]) Generator[[]T] {
	return func(r *rand.Rand, size int) []T {
		out := make([]T, r.IntN(max(0, size)+1))
		for i := range out {
			out[i] = elem(r, size)
		}

		return out
	}
}

// ShrinkSlice drops either half, then shrinks the head element.
func ShrinkSlice[T any](elem Shrinker[T]) Shrinker[[]T] {
	return func(v []T) [][]T {
		if len(v) == 0 {
			return nil
		}

		mid := len(v) / 2
		candidates := [][]T{
			append([]T(nil), v[:mid]...),
			append([]T(nil), v[mid:]...),
		}

		if elem != nil {
			for _, s := range elem(v[0]) {
				candidates = append(candidates, append([]T{s}, v[1:]...))
			}
		}

		return candidates
	}
}
