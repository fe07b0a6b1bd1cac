package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/orizon-lang/irvm/internal/position"
	"github.com/orizon-lang/irvm/internal/testrunner/assert"
)

func TestStandardErrorFormat(t *testing.T) {
	err := DivisionByZero("modulo")
	assert.Equal(t, err.Error(), "[ARITHMETIC:DIVISION_BY_ZERO] modulo by zero")
	assert.False(t, err.IsBuildTime())

	located := UnresolvedScope("x").At(position.At("p.json", 4, 9))
	assert.Equal(t, located.Error(), "[BUILD:UNRESOLVED_SCOPE] p.json:4:9: no scope resolves \"x\"")
	assert.True(t, located.IsBuildTime())
}

func TestCodeOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("call main: %w", IndexOutOfBounds("main"))
	assert.Equal(t, CodeOf(wrapped), CodeIndexOutOfBounds)
	assert.True(t, HasCode(wrapped, CodeIndexOutOfBounds))
	assert.False(t, HasCode(nil, CodeIndexOutOfBounds))
	assert.Equal(t, CodeOf(io.EOF), "")

	var se *StandardError
	assert.True(t, As(wrapped, &se))
	assert.Equal(t, se.Category, CategoryBounds)
}

func TestIOFailureUnwraps(t *testing.T) {
	err := IOFailure("readln", io.ErrUnexpectedEOF)
	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, err.Code, CodeIO)
}
