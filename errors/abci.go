package errors

import (
	"github.com/pkg/errors"
)

// SuccessABCICode is the code of a successful ABCI response.
const SuccessABCICode = 0

// Errors without a registered root share one code. Their message can leak
// node internals, so it is hidden unless debug is set.
const (
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and log reported to the client for err.
// Outside of debug mode a recovered panic is reported as an internal
// error.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessABCICode, ""
	}
	if debug {
		return abciCode(err), err.Error()
	}
	if code := abciCode(err); code != internalABCICode && !ErrPanic.Is(err) {
		return code, err.Error()
	}
	return internalABCICode, internalABCILog
}

// abciCode returns the code of the first error in the chain that has one.
func abciCode(err error) uint32 {
	for ; err != nil; err = unwrap(err) {
		if c, ok := err.(interface{ ABCICode() uint32 }); ok {
			return c.ABCICode()
		}
	}
	return internalABCICode
}

// ABCIError rebuilds an error out of a response code and log. When code
// belongs to a registered root error, the result wraps that root so that
// Is keeps working on the client side.
func ABCIError(code uint32, log string) error {
	if code == SuccessABCICode {
		return nil
	}
	root := registry[code]
	if root == nil {
		return errors.New(log)
	}
	return &remote{root: root, log: log}
}

// remote is an error received in a response. Its log already holds the
// root description.
type remote struct {
	root *Error
	log  string
}

func (r *remote) Error() string { return r.log }
func (r *remote) Cause() error  { return r.root }
