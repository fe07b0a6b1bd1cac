package interp

import (
	"fmt"
	"maps"
	"testing"

	"github.com/orizon-lang/irvm/internal/errors"
	"github.com/orizon-lang/irvm/internal/hir"
	"github.com/orizon-lang/irvm/internal/lir"
	"github.com/orizon-lang/irvm/internal/testrunner/assert"
)

func TestLinearizePostOrder(t *testing.T) {
	u := &hir.Unit{Name: "order", Functions: []*hir.Function{
		{Name: "f", Body: hir.NewSeq(
			hir.NewMove(hir.NewTemp("x"), hir.NewBinOp(hir.OpAdd, hir.NewConst(1), hir.NewConst(2))),
			hir.NewLabel("L"),
			hir.NewReturn(hir.NewTemp("x")),
		)},
		{Name: "g", Body: hir.NewSeq()},
		{Name: "h", Body: hir.NewReturn()},
	}}

	p, err := Linearize(u)
	if !assert.NoError(t, err) {
		return
	}

	want := []string{
		"TEMP x", "CONST 1", "CONST 2", "BINOP(add, CONST 1, CONST 2)",
		"MOVE(TEMP x, BINOP(add, CONST 1, CONST 2))",
		"TEMP x", "RETURN(TEMP x)", "",
		"",
		"RETURN()",
	}

	if !assert.Len(t, p.Code, len(want)) {
		return
	}

	for i, n := range p.Code {
		if want[i] == "" {
			_, ok := n.(*hir.Seq)
			assert.True(t, ok, "address", i)

			continue
		}

		assert.Equal(t, fmt.Sprint(n), want[i], "address", i)
	}

	assert.Equal(t, p.Labels["f"], 0)
	assert.Equal(t, p.Labels["L"], 5)
	assert.Equal(t, p.Labels["g"], 8)
	assert.Equal(t, p.Labels["h"], 9)
	assert.SliceEqual(t, p.Funcs, []FuncRange{
		{Name: "f", Start: 0, End: 8},
		{Name: "g", Start: 8, End: 9},
		{Name: "h", Start: 9, End: 10},
	})

	for _, tt := range []struct {
		addr int
		name string
		ok   bool
	}{
		{0, "f", true}, {7, "f", true}, {8, "g", true}, {9, "h", true}, {10, "", false}, {-1, "", false},
	} {
		fn, ok := p.Function(tt.addr)
		assert.Equal(t, ok, tt.ok, tt.addr)
		assert.Equal(t, fn.Name, tt.name, tt.addr)
	}
}

func TestLinearizeIsDeterministic(t *testing.T) {
	u := loadUnit(t, "collatz.json")

	lowered, err := lir.Lower(u)
	if !assert.NoError(t, err) {
		return
	}

	for _, build := range []func() (*Program, error){
		func() (*Program, error) { return Linearize(u) },
		func() (*Program, error) { return LinearizeLIR(lowered) },
	} {
		a, err := build()
		assert.NoError(t, err)

		b, err := build()
		assert.NoError(t, err)

		assert.True(t, maps.Equal(a.Labels, b.Labels), "labels differ")
		assert.SliceEqual(t, a.Funcs, b.Funcs)

		if !assert.Len(t, b.Code, len(a.Code)) {
			continue
		}

		for i := range a.Code {
			assert.Equal(t, fmt.Sprint(a.Code[i]), fmt.Sprint(b.Code[i]), "address", i)
		}
	}
}

func TestLinearizeDuplicateLabels(t *testing.T) {
	tests := []struct {
		name string
		unit *hir.Unit
	}{
		{"label twice", &hir.Unit{Functions: []*hir.Function{
			{Name: "f", Body: hir.NewSeq(hir.NewLabel("L"), hir.NewLabel("L"))},
		}}},
		{"label across functions", &hir.Unit{Functions: []*hir.Function{
			{Name: "f", Body: hir.NewLabel("L")},
			{Name: "g", Body: hir.NewLabel("L")},
		}}},
		{"label shadows function", &hir.Unit{Functions: []*hir.Function{
			{Name: "f", Body: hir.NewReturn()},
			{Name: "g", Body: hir.NewLabel("f")},
		}}},
		{"function twice", &hir.Unit{Functions: []*hir.Function{
			{Name: "f", Body: hir.NewReturn()},
			{Name: "f", Body: hir.NewReturn()},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Linearize(tt.unit)
			assert.True(t, errors.HasCode(err, errors.CodeDuplicateLabel), err)
		})
	}
}

func TestLinkRejectsUnresolvedNames(t *testing.T) {
	tests := []struct {
		name string
		body hir.Stmt
	}{
		{"call", hir.NewExp(hir.NewCall("nowhere"))},
		{"jump", hir.NewJump("nowhere")},
		{"branch", hir.NewCJump(hir.NewConst(1), "f", "nowhere")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &hir.Unit{Functions: []*hir.Function{{Name: "f", Body: tt.body}}}

			_, err := New(u, Options{})
			assert.True(t, errors.HasCode(err, errors.CodeUnresolvedName), err)
		})
	}

	u := &hir.Unit{Functions: []*hir.Function{{Name: "f", Body: hir.NewExp(hir.NewCall("print", hir.NewConst(0)))}}}
	_, err := New(u, Options{})
	assert.NoError(t, err, "library routines link without a label")
}
