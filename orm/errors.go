package orm

import (
	"github.com/iov-one/vestengine/errors"
)

// ErrInvalidIndex is returned for a lookup on an index the bucket does
// not have. Codes 100 to 109 belong to this package.
var ErrInvalidIndex = errors.Register(100, "invalid index")
