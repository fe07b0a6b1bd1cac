package interp

import (
	"math/rand/v2"

	"github.com/orizon-lang/irvm/internal/hir"
)

// frame is the state of one active call. Registers are private to the
// frame; the caller sees only the values copied into its RET registers.
type frame struct {
	fn      FuncRange
	ip      int
	jumped  bool
	regs    map[string]int32
	returns []int32
}

func newFrame(fn FuncRange, entry int, args []int32) *frame {
	f := &frame{fn: fn, ip: entry, regs: make(map[string]int32, len(args)+4)}
	for i, a := range args {
		f.regs[hir.ArgReg(i+1)] = a
	}

	return f
}

func (f *frame) read(name string) (int32, bool) {
	v, ok := f.regs[name]
	return v, ok
}

func (f *frame) write(name string, v int32) { f.regs[name] = v }

// filler returns the value of a register that was unset when it was read.
// The first such read picks a pseudo-random value and stores it so later
// reads agree.
func (f *frame) filler(name string, rng *rand.Rand) int32 {
	if v, ok := f.regs[name]; ok {
		return v
	}

	v := rng.Int32()
	f.regs[name] = v

	return v
}

// setReturns copies results into RET1..RETn.
func (f *frame) setReturns(results []int32) {
	for i, v := range results {
		f.regs[hir.RetReg(i+1)] = v
	}
}

func (f *frame) jump(addr int) {
	f.ip = addr
	f.jumped = true
}
