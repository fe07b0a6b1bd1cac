// Package prop is a small property-based testing harness: seeded
// generators, optional shrinking of failing inputs, and trials spread over
// a worker pool.
package prop

import (
	"context"
	"math/rand/v2"
	"runtime"
	"testing"
	"time"
)

// Generator produces a value from a PRNG and a size hint.
type Generator[T any] func(r *rand.Rand, size int) T

// Shrinker returns smaller candidates for v, most aggressive first.
type Shrinker[T any] func(v T) []T

// Property reports whether v satisfies the property under test.
type Property[T any] func(v T) bool

// Options control property checking.
type Options struct {
	Trials          int           // number of trials
	Seed            uint64        // 0 picks a seed from the clock
	Size            int           // size hint for generators
	Parallelism     int           // workers; <=0 means GOMAXPROCS
	MaxShrinkRounds int           // limit for shrinking attempts
	MaxShrinkTime   time.Duration // wall time limit for shrinking; 0 to disable
}

func (o Options) withDefaults() Options {
	if o.Trials <= 0 {
		o.Trials = 200
	}

	if o.Seed == 0 {
		o.Seed = uint64(time.Now().UnixNano())
	}

	if o.Size <= 0 {
		o.Size = 8
	}

	if o.Parallelism <= 0 {
		o.Parallelism = max(runtime.GOMAXPROCS(0), 1)
	}

	if o.MaxShrinkRounds <= 0 {
		o.MaxShrinkRounds = 200
	}

	return o
}

// Result is the outcome of a property check.
type Result[T any] struct {
	PassedTrials int
	Failed       bool
	FailingInput T
	ShrunkInput  T
	Seed         uint64
	Duration     time.Duration
	ShrinkRounds int
}

// Rand returns the PRNG used for trial idx of a run seeded with seed, so a
// reported failure can be regenerated exactly.
func Rand(seed uint64, idx int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(idx)))
}

// ForAll checks prop against opts.Trials generated values. Trials run
// concurrently, so gen and prop must be safe for parallel use. The first
// failure stops generation and is shrunk synchronously.
func ForAll[T any](gen Generator[T], shrink Shrinker[T], prop Property[T], opts Options) Result[T] {
	start := time.Now()
	opts = opts.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type outcome struct {
		v  T
		ok bool
	}

	tasks := make(chan int)
	outs := make(chan outcome)

	for range opts.Parallelism {
		go func() {
			for idx := range tasks {
				v := gen(Rand(opts.Seed, idx), opts.Size)

				select {
				case outs <- outcome{v: v, ok: prop(v)}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(tasks)

		for i := range opts.Trials {
			select {
			case tasks <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	res := Result[T]{Seed: opts.Seed}

	for range opts.Trials {
		o := <-outs
		if o.ok {
			res.PassedTrials++
			continue
		}

		res.Failed = true
		res.FailingInput = o.v
		res.ShrunkInput = o.v

		cancel()

		if shrink != nil {
			res.ShrunkInput, res.ShrinkRounds = shrinkFailure(o.v, shrink, prop, opts)
		}

		break
	}

	res.Duration = time.Since(start)

	return res
}

func shrinkFailure[T any](v T, shrink Shrinker[T], prop Property[T], opts Options) (T, int) {
	var deadline time.Time
	if opts.MaxShrinkTime > 0 {
		deadline = time.Now().Add(opts.MaxShrinkTime)
	}

	best := v
	rounds := 0

	for rounds < opts.MaxShrinkRounds {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}

		progressed := false

		for _, c := range shrink(best) {
			if !prop(c) {
				best = c
				progressed = true

				break
			}
		}

		rounds++

		if !progressed {
			break
		}
	}

	return best, rounds
}

// Check runs ForAll and fails t with the seed and the shrunk input.
func Check[T any](t testing.TB, gen Generator[T], shrink Shrinker[T], prop Property[T], opts Options) {
	t.Helper()

	res := ForAll(gen, shrink, prop, opts)
	if res.Failed {
		t.Fatalf("property failed after %d trials (seed %d, %d shrink rounds)\ninput:  %v\nshrunk: %v",
			res.PassedTrials, res.Seed, res.ShrinkRounds, res.FailingInput, res.ShrunkInput)
	}
}
