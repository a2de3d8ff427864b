package x

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
)

// Validater is any struct that can be validated.
// Not the same as a Validator, which votes on the blocks.
type Validater interface {
	Validate() error
}

// ValidAddress validates that address is set and has a proper size.
// The error is wrapped with the field name.
func ValidAddress(field string, addr weave.Address) error {
	if len(addr) == 0 {
		return errors.Wrapf(errors.ErrEmpty, "%s: missing address", field)
	}
	if err := addr.Validate(); err != nil {
		return errors.Wrap(err, field)
	}
	return nil
}
