package utils

import (
	"time"

	weave "github.com/iov-one/vestengine"
)

// Logging records every processed message with its path and duration.
// Failures are logged as errors, delivered messages as info and checked
// messages as debug.
type Logging struct{}

var _ weave.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	var msg string
	if res != nil {
		msg = res.Log
	}
	logResult(ctx, tx, start, msg, err, true)
	return res, err
}

func (Logging) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	var msg string
	if res != nil {
		msg = res.Log
	}
	logResult(ctx, tx, start, msg, err, false)
	return res, err
}

// logResult always emits an entry, even with an empty message, as the
// path and duration are worth keeping.
func logResult(ctx weave.Context, tx weave.Tx, start time.Time, msg string, err error, checkOnly bool) {
	logger := weave.GetLogger(ctx).With(
		"path", weave.GetPath(tx),
		"duration_us", time.Since(start)/time.Microsecond,
	)
	switch {
	case err != nil:
		logger.Error(msg, "err", err)
	case checkOnly:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
