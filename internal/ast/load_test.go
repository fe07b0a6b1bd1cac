package ast

import (
	"strings"
	"testing"

	"github.com/orizon-lang/irvm/internal/errors"
	"github.com/orizon-lang/irvm/internal/testrunner/assert"
)

func TestLoadFileFactorial(t *testing.T) {
	prog, err := LoadFile("../../testdata/programs/factorial.json")
	if !assert.NoError(t, err) {
		return
	}

	assert.Equal(t, prog.Name, "factorial")
	assert.Len(t, prog.Functions, 3)

	fn := prog.Function("factorial_tail")
	if !assert.NotNil(t, fn) {
		return
	}

	assert.Len(t, fn.Params, 2)
	assert.Equal(t, fn.Returns[0].String(), "int")
	assert.NotNil(t, fn.Body.Scope, "body scope is rebuilt on load")
	assert.Equal(t, fn.Span.Start.Line, 6)

	ret := fn.Body.Stmts[1].(*Return)
	call := ret.Values[0].(*CallExpr)
	assert.Equal(t, call.GetType().String(), "int")
	assert.Equal(t, call.Args[1].GetType().String(), "int")
}

func TestLoadFileArrays(t *testing.T) {
	prog, err := LoadFile("../../testdata/programs/arrays.json")
	if !assert.NoError(t, err) {
		return
	}

	main := prog.Function("main")
	decl := main.Body.Stmts[3].(*ArrayDecl)
	assert.Equal(t, decl.Type.String(), "int[]")
	assert.Len(t, decl.Init, 3)
	assert.Len(t, decl.Sizes, 0)

	multi := main.Body.Stmts[2].(*MultiAssign)
	assert.Equal(t, multi.Targets[1].Name, "r")
	assert.Equal(t, multi.Targets[1].Type.String(), "int")
}

func TestCheckFormat(t *testing.T) {
	tests := []struct {
		format string
		ok     bool
	}{
		{"1.0.0", true},
		{"1.4.2", true},
		{"2.0.0", false},
		{"0.9.0", false},
		{"", false},
		{"not-a-version", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			err := CheckFormat(tt.format)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoadProgramErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "future format",
			src:  `{"format":"2.1.0","name":"x","functions":[]}`,
			want: "unsupported format version",
		},
		{
			name: "unknown field",
			src:  `{"format":"1.0.0","name":"x","functions":[],"extra":1}`,
			want: "unknown field",
		},
		{
			name: "unknown statement",
			src:  `{"format":"1.0.0","name":"x","functions":[{"name":"f","params":[],"returns":[],"body":[{"kind":"goto"}]}]}`,
			want: "statement kind",
		},
		{
			name: "bad type",
			src:  `{"format":"1.0.0","name":"x","functions":[{"name":"f","params":[{"name":"a","type":"float"}],"returns":[],"body":[]}]}`,
			want: "type \"float\"",
		},
		{
			name: "unresolved identifier",
			src: `{"format":"1.0.0","name":"x","functions":[{"name":"f","params":[],"returns":["int"],
				"body":[{"kind":"return","line":3,"col":5,"values":[{"kind":"ident","name":"ghost","line":3,"col":12}]}]}]}`,
			want: "UNRESOLVED_SCOPE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProgram(strings.NewReader(tt.src))
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestUnresolvedIdentifierCarriesSpan(t *testing.T) {
	src := `{"format":"1.0.0","name":"x","functions":[{"name":"f","params":[],"returns":[],
		"body":[{"kind":"expr","x":{"kind":"call","func":"nowhere","args":[],"line":9,"col":2}}]}]}`

	_, err := LoadProgram(strings.NewReader(src))
	assert.True(t, errors.HasCode(err, errors.CodeUnresolvedScope), err)
	assert.Contains(t, err.Error(), "9:2")
}
