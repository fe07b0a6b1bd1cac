// Package errors provides standardized error messaging for irvm
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"

	"github.com/orizon-lang/irvm/internal/position"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryBuild      ErrorCategory = "BUILD"
	CategoryLink       ErrorCategory = "LINK"
	CategoryMemory     ErrorCategory = "MEMORY"
	CategoryBounds     ErrorCategory = "BOUNDS"
	CategoryArithmetic ErrorCategory = "ARITHMETIC"
	CategoryAssert     ErrorCategory = "ASSERT"
	CategoryStack      ErrorCategory = "STACK"
	CategoryIO         ErrorCategory = "IO"
)

// Error codes. Tests and callers match on these rather than on messages.
const (
	CodeDuplicateLabel      = "DUPLICATE_LABEL"
	CodeUnresolvedScope     = "UNRESOLVED_SCOPE"
	CodeUnsupportedNode     = "UNSUPPORTED_NODE"
	CodeUnsupportedOperator = "UNSUPPORTED_OPERATOR"
	CodeUnresolvedName      = "UNRESOLVED_NAME"
	CodeDivisionByZero      = "DIVISION_BY_ZERO"
	CodeHeapExhausted       = "HEAP_EXHAUSTED"
	CodeInvalidSize         = "INVALID_SIZE"
	CodeBadAddress          = "BAD_ADDRESS"
	CodeNullPointer         = "NULL_POINTER"
	CodeIndexOutOfBounds    = "INDEX_OUT_OF_BOUNDS"
	CodeAssertionFailed     = "ASSERTION_FAILED"
	CodeOperandTag          = "OPERAND_TAG"
	CodeCallDepth           = "CALL_DEPTH_EXCEEDED"
	CodeReturnCount         = "RETURN_COUNT"
	CodeBadInstruction      = "BAD_INSTRUCTION_POINTER"
	CodeIO                  = "IO_FAILURE"
)

// StandardError provides a consistent error format
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Context  map[string]interface{}
	Span     position.Span
	Caller   string
	Err      error
}

// Error implements the error interface
func (e *StandardError) Error() string {
	if e.Span.Start.IsValid() {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Code, e.Span, e.Message)
	}

	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error { return e.Err }

// IsBuildTime reports whether the error was raised before execution started.
func (e *StandardError) IsBuildTime() bool {
	return e.Category == CategoryBuild || e.Category == CategoryLink
}

// NewStandardError creates a new standardized error
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(1)
	caller := "unknown"

	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// At attaches a source span and returns the receiver.
func (e *StandardError) At(span position.Span) *StandardError {
	e.Span = span
	return e
}

// CodeOf returns the code of the first StandardError in err's chain, or "".
func CodeOf(err error) string {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code
	}

	return ""
}

// HasCode reports whether err carries a StandardError with the given code.
func HasCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// As is errors.As, re-exported so callers need not import both packages.
func As(err error, target any) bool { return stderrors.As(err, target) }

// Build-time constructors

func DuplicateLabel(name string) *StandardError {
	return NewStandardError(CategoryBuild, CodeDuplicateLabel,
		fmt.Sprintf("label %q defined more than once", name),
		map[string]interface{}{"label": name})
}

func UnresolvedScope(name string) *StandardError {
	return NewStandardError(CategoryBuild, CodeUnresolvedScope,
		fmt.Sprintf("no scope resolves %q", name),
		map[string]interface{}{"name": name})
}

func UnsupportedNode(what string) *StandardError {
	return NewStandardError(CategoryBuild, CodeUnsupportedNode,
		fmt.Sprintf("cannot generate %s", what),
		map[string]interface{}{"node": what})
}

func UnsupportedOperator(op string) *StandardError {
	return NewStandardError(CategoryBuild, CodeUnsupportedOperator,
		fmt.Sprintf("operator %q has no value encoding", op),
		map[string]interface{}{"operator": op})
}

func UnresolvedName(name string) *StandardError {
	return NewStandardError(CategoryLink, CodeUnresolvedName,
		fmt.Sprintf("unresolved label or function %q", name),
		map[string]interface{}{"name": name})
}

// Run-time constructors

func DivisionByZero(operation string) *StandardError {
	return NewStandardError(CategoryArithmetic, CodeDivisionByZero,
		fmt.Sprintf("%s by zero", operation),
		map[string]interface{}{"operation": operation})
}

func HeapExhausted(requested, used, limit int) *StandardError {
	return NewStandardError(CategoryMemory, CodeHeapExhausted,
		fmt.Sprintf("heap exhausted: requested %d bytes with %d of %d in use", requested, used, limit),
		map[string]interface{}{"requested": requested, "used": used, "limit": limit})
}

func InvalidSize(size int32, context string) *StandardError {
	return NewStandardError(CategoryMemory, CodeInvalidSize,
		fmt.Sprintf("invalid size %d in %s", size, context),
		map[string]interface{}{"size": size, "context": context})
}

func BadAddress(addr int32, reason string) *StandardError {
	return NewStandardError(CategoryMemory, CodeBadAddress,
		fmt.Sprintf("bad memory address %d: %s", addr, reason),
		map[string]interface{}{"address": addr, "reason": reason})
}

func NullPointer(operation string) *StandardError {
	return NewStandardError(CategoryMemory, CodeNullPointer,
		fmt.Sprintf("null address in %s", operation),
		map[string]interface{}{"operation": operation})
}

func IndexOutOfBounds(function string) *StandardError {
	return NewStandardError(CategoryBounds, CodeIndexOutOfBounds,
		fmt.Sprintf("array index out of bounds in %s", function),
		map[string]interface{}{"function": function})
}

func AssertionFailed(function string) *StandardError {
	return NewStandardError(CategoryAssert, CodeAssertionFailed,
		fmt.Sprintf("assertion failed in %s", function),
		map[string]interface{}{"function": function})
}

func OperandTag(operation, got string) *StandardError {
	return NewStandardError(CategoryStack, CodeOperandTag,
		fmt.Sprintf("%s cannot use a %s operand", operation, got),
		map[string]interface{}{"operation": operation, "operand": got})
}

func CallDepthExceeded(depth int) *StandardError {
	return NewStandardError(CategoryStack, CodeCallDepth,
		fmt.Sprintf("call depth %d exceeded", depth),
		map[string]interface{}{"depth": depth})
}

func ReturnCount(function string, want, got int) *StandardError {
	return NewStandardError(CategoryStack, CodeReturnCount,
		fmt.Sprintf("%s returned %d values, caller expects %d", function, got, want),
		map[string]interface{}{"function": function, "want": want, "got": got})
}

func BadInstruction(ip int) *StandardError {
	return NewStandardError(CategoryStack, CodeBadInstruction,
		fmt.Sprintf("instruction pointer %d outside program", ip),
		map[string]interface{}{"ip": ip})
}

func IOFailure(operation string, err error) *StandardError {
	e := NewStandardError(CategoryIO, CodeIO,
		fmt.Sprintf("%s: %v", operation, err),
		map[string]interface{}{"operation": operation})
	e.Err = err

	return e
}
