// Package assert holds the small set of generic test assertions shared by
// the irvm packages. Every helper reports through t.Errorf and returns
// whether the assertion held, so callers can bail out with an early return.
package assert

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

// Equal asserts that two comparable values are equal.
func Equal[T comparable](t testing.TB, got, want T, msgAndArgs ...any) bool {
	t.Helper()

	if got != want {
		fail(t, "Equal", got, want, msgAndArgs...)
		return false
	}

	return true
}

// NotEqual asserts that two comparable values differ.
func NotEqual[T comparable](t testing.TB, got, notWant T, msgAndArgs ...any) bool {
	t.Helper()

	if got == notWant {
		fail(t, "NotEqual", got, notWant, msgAndArgs...)
		return false
	}

	return true
}

// SliceEqual asserts element-wise equality of two slices.
func SliceEqual[T comparable](t testing.TB, got, want []T, msgAndArgs ...any) bool {
	t.Helper()

	if len(got) != len(want) {
		failMsg(t, "SliceEqual", fmt.Sprintf("got %v (len %d), want %v (len %d)", got, len(got), want, len(want)), msgAndArgs...)
		return false
	}

	for i := range got {
		if got[i] != want[i] {
			failMsg(t, "SliceEqual", fmt.Sprintf("index %d: got %v, want %v (full: %v vs %v)", i, got[i], want[i], got, want), msgAndArgs...)
			return false
		}
	}

	return true
}

// Nil asserts that the provided value is nil.
func Nil(t testing.TB, v any, msgAndArgs ...any) bool {
	t.Helper()

	if !isNil(v) {
		failMsg(t, "Nil", fmt.Sprintf("expected nil, got %T(%v)", v, v), msgAndArgs...)
		return false
	}

	return true
}

// NotNil asserts that the provided value is not nil.
func NotNil(t testing.TB, v any, msgAndArgs ...any) bool {
	t.Helper()

	if isNil(v) {
		failMsg(t, "NotNil", "unexpected nil", msgAndArgs...)
		return false
	}

	return true
}

// True asserts that cond is true.
func True(t testing.TB, cond bool, msgAndArgs ...any) bool {
	t.Helper()

	if !cond {
		failMsg(t, "True", "condition is false", msgAndArgs...)
		return false
	}

	return true
}

// False asserts that cond is false.
func False(t testing.TB, cond bool, msgAndArgs ...any) bool {
	t.Helper()

	if cond {
		failMsg(t, "False", "condition is true", msgAndArgs...)
		return false
	}

	return true
}

// Error asserts that err is non-nil.
func Error(t testing.TB, err error, msgAndArgs ...any) bool {
	t.Helper()

	if err == nil {
		failMsg(t, "Error", "expected error, got nil", msgAndArgs...)
		return false
	}

	return true
}

// NoError asserts that err is nil.
func NoError(t testing.TB, err error, msgAndArgs ...any) bool {
	t.Helper()

	if err != nil {
		failMsg(t, "NoError", fmt.Sprintf("unexpected error: %v", err), msgAndArgs...)
		return false
	}

	return true
}

// ErrorIs asserts that err matches target via errors.Is.
func ErrorIs(t testing.TB, err, target error, msgAndArgs ...any) bool {
	t.Helper()

	if !errors.Is(err, target) {
		failMsg(t, "ErrorIs", fmt.Sprintf("%v is not %v", err, target), msgAndArgs...)
		return false
	}

	return true
}

// Contains asserts that s contains substr.
func Contains(t testing.TB, s, substr string, msgAndArgs ...any) bool {
	t.Helper()

	if !strings.Contains(s, substr) {
		failMsg(t, "Contains", fmt.Sprintf("%q does not contain %q", s, substr), msgAndArgs...)
		return false
	}

	return true
}

// NotContains asserts that s does not contain substr.
func NotContains(t testing.TB, s, substr string, msgAndArgs ...any) bool {
	t.Helper()

	if strings.Contains(s, substr) {
		failMsg(t, "NotContains", fmt.Sprintf("%q contains %q", s, substr), msgAndArgs...)
		return false
	}

	return true
}

// Len asserts that the length of v equals want. Works with arrays, slices,
// maps, strings and channels.
func Len(t testing.TB, v any, want int, msgAndArgs ...any) bool {
	t.Helper()

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array, reflect.Slice, reflect.Map, reflect.String, reflect.Chan:
		if l := rv.Len(); l != want {
			failMsg(t, "Len", fmt.Sprintf("got len=%d, want %d", l, want), msgAndArgs...)
			return false
		}

		return true
	default:
		failMsg(t, "Len", fmt.Sprintf("unsupported kind %s", rv.Kind()), msgAndArgs...)
		return false
	}
}

// fail formats a standard mismatch error with caller information.
func fail[T any](t testing.TB, op string, got, want T, msgAndArgs ...any) {
	t.Helper()

	base := fmt.Sprintf("%s: got=%v want=%v (%T) at %s", op, got, want, got, caller())
	if len(msgAndArgs) > 0 {
		base += ": " + fmt.Sprint(msgAndArgs...)
	}

	t.Errorf("%s", base)
}

func failMsg(t testing.TB, op string, detail string, msgAndArgs ...any) {
	t.Helper()

	base := fmt.Sprintf("%s: %s at %s", op, detail, caller())
	if len(msgAndArgs) > 0 {
		base += ": " + fmt.Sprint(msgAndArgs...)
	}

	t.Errorf("%s", base)
}

func caller() string {
	// Skip runtime frames and assertion functions to point at the test site.
	for i := 2; i < 10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		name := ""
		if fn := runtime.FuncForPC(pc); fn != nil {
			name = fn.Name()
		}

		if !strings.Contains(name, "assert.") {
			return fmt.Sprintf("%s:%d", file, line)
		}
	}

	return "unknown:0"
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
