package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors shared by every extension. Codes below 100 belong to this
// package.
var (
	ErrUnauthorized       = Register(2, "unauthorized")
	ErrNotFound           = Register(3, "not found")
	ErrMsg                = Register(4, "invalid message")
	ErrModel              = Register(5, "invalid model")
	ErrDuplicate          = Register(6, "duplicate")
	ErrHuman              = Register(7, "coding error")
	ErrImmutable          = Register(8, "cannot be modified")
	ErrEmpty              = Register(9, "value is empty")
	ErrState              = Register(10, "invalid state")
	ErrType               = Register(11, "invalid type")
	ErrAmount             = Register(12, "invalid amount")
	ErrInsufficientAmount = Register(13, "insufficient amount")
	ErrInput              = Register(14, "invalid input")
	ErrExpired            = Register(15, "expired")
	ErrOverflow           = Register(16, "an operation cannot be completed due to value overflow")
	ErrDatabase           = Register(17, "database")
	ErrCapacity           = Register(18, "capacity exceeded")
	ErrIteratorDone       = Register(19, "iterator done")

	// ErrPanic marks a recovered panic. Its message is never shown to
	// clients outside of debug mode.
	ErrPanic = Register(111222, "panic")
)

// registry maps every claimed code to its root error. Code 1 stands for
// errors without a code and cannot be claimed.
var registry = map[uint32]*Error{1: nil}

// Register declares a root error. It panics if code was claimed before, so
// it must only be called while the program starts.
func Register(code uint32, description string) *Error {
	if prev, ok := registry[code]; ok {
		desc := "reserved"
		if prev != nil {
			desc = prev.desc
		}
		panic(fmt.Sprintf("error code %d already registered as %q", code, desc))
	}
	e := &Error{code: code, desc: description}
	registry[code] = e
	return e
}

// Error is a root error. Runtime errors wrap one of them.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string    { return e.desc }
func (e Error) ABCICode() uint32 { return e.code }

// Is reports whether err is e or wraps it. A nil e matches any nil err,
// typed or not.
func (e *Error) Is(err error) bool {
	if e == nil {
		return isNilErr(err)
	}
	for ; err != nil; err = unwrap(err) {
		if err == e {
			return true
		}
	}
	return false
}

// Wrap prefixes err with description. The first wrap of an error records
// the stack. A nil err gives nil.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrapped{msg: description, cause: err}
}

// Wrapf is Wrap with a formatted description.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Recover turns a panic into an ErrPanic assigned to err. It must be
// deferred.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type wrapped struct {
	msg   string
	cause error
}

func (w *wrapped) Error() string { return w.msg + ": " + w.cause.Error() }
func (w *wrapped) Cause() error  { return w.cause }

// Format prints the recorded stack for %+v.
func (w *wrapped) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s\n%+v", w.Error(), stackTrace(w))
		return
	}
	fmt.Fprint(s, w.Error())
}

// unwrap returns the error err was built from, or nil.
func unwrap(err error) error {
	if c, ok := err.(interface{ Cause() error }); ok {
		return c.Cause()
	}
	return nil
}

func stackTrace(err error) errors.StackTrace {
	for ; err != nil; err = unwrap(err) {
		if st, ok := err.(interface{ StackTrace() errors.StackTrace }); ok {
			return st.StackTrace()
		}
	}
	return nil
}

func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
