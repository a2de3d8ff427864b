/*
Package assert provides fatal assertions for table driven tests. Every
failed check stops the current test, which keeps the pool and batch
scenarios from running on top of a broken state.
*/
package assert

import (
	"reflect"

	testify "github.com/stretchr/testify/assert"
)

// Tester is the part of testing.TB the assertions rely on.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil stops the test unless value is nil or a typed nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if nilable(value) {
		return
	}
	// %+v prints the stack of wrapped errors.
	t.Fatalf("want a nil value, got %+v", value)
}

func nilable(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// Equal stops the test unless want and got hold the same type and value.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if testify.ObjectsAreEqual(want, got) {
		return
	}
	t.Fatalf("values not equal \nwant %T %v\n got %T %v", want, want, got, got)
}

// Panics stops the test if fn returns normally.
func Panics(t Tester, fn func()) {
	t.Helper()
	if !panicked(fn) {
		t.Fatal("panic expected")
	}
}

func panicked(fn func()) (ok bool) {
	defer func() {
		ok = recover() != nil
	}()
	fn()
	return false
}

// IsErr stops the test unless got matches want. A registered error
// matches any error wrapping it. A nil want only matches a nil got.
func IsErr(t Tester, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if m, ok := want.(interface{ Is(error) bool }); ok && m.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}
