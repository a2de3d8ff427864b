package utils

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
)

// Recovery turns a panic raised further down the chain into an ErrPanic
// failure of the transaction. The panic value is logged with the message
// path.
type Recovery struct{}

var _ weave.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (_ *weave.CheckResult, err error) {
	defer reportPanic(ctx, tx, &err)
	return next.Check(ctx, db, tx)
}

func (Recovery) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (_ *weave.DeliverResult, err error) {
	defer reportPanic(ctx, tx, &err)
	return next.Deliver(ctx, db, tx)
}

// reportPanic must be deferred directly so that recover sees the panic.
func reportPanic(ctx weave.Context, tx weave.Tx, err *error) {
	r := recover()
	if r == nil {
		return
	}
	*err = errors.Wrapf(errors.ErrPanic, "%v", r)
	weave.GetLogger(ctx).Error("handler panic", "path", weave.GetPath(tx), "panic", r)
}
