package cash

import "github.com/iov-one/vestengine/errors"

// ErrEmptyHolding is returned when a transfer debits a holding that does
// not exist.
var ErrEmptyHolding = errors.Register(1000, "empty holding")
