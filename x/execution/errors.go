package execution

import "github.com/iov-one/vestengine/errors"

var (
	// ErrInvalidSigner is returned when the batch has no authenticated
	// caller, or when a sub-call requires a signature the caller does not
	// hold.
	ErrInvalidSigner = errors.Register(1120, "invalid signer")
	// ErrUnknownTarget is returned for a sub-call to a program that is not
	// registered.
	ErrUnknownTarget = errors.Register(1121, "unknown target")
)
