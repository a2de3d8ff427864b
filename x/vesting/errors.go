package vesting

import "github.com/iov-one/vestengine/errors"

// x/vesting reserves 1100 ~ 1109.
var (
	ErrZeroVestAmount       = errors.Register(1100, "zero vest amount")
	ErrInvalidLockingPeriod = errors.Register(1101, "invalid locking period")
	ErrInvalidSender        = errors.Register(1102, "invalid sender")
	ErrInvalidMint          = errors.Register(1103, "invalid mint")
	ErrInvalidVestingStatus = errors.Register(1104, "invalid vesting status")
	ErrInsufficientSigners  = errors.Register(1105, "insufficient signers")
	ErrInvalidReceiver      = errors.Register(1106, "invalid receiver")
	ErrInvalidBaseKey       = errors.Register(1107, "invalid base key")
	ErrInvalidClaimTime     = errors.Register(1108, "invalid claim time")
	ErrNoSuchPool           = errors.Register(1109, "no such pool")
)
