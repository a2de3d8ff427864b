package execution

import (
	"strings"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/codec"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r weave.Registry, auth x.Authenticator, programs *Programs) {
	r.Handle(&ExecuteMsg{}, NewExecuteHandler(auth, programs))
}

// ExecuteHandler runs a batch of sub-calls with the authority of the
// transaction signers.
type ExecuteHandler struct {
	auth     x.Authenticator
	programs *Programs
}

var _ weave.Handler = ExecuteHandler{}

// NewExecuteHandler returns a handler that dispatches sub-calls to the
// given programs.
func NewExecuteHandler(auth x.Authenticator, programs *Programs) ExecuteHandler {
	return ExecuteHandler{auth: auth, programs: programs}
}

// Check validates every call and checks them with their programs. Checks
// do not see the writes of the earlier calls of the batch.
func (h ExecuteHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	msg, progs, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	datas := make([][]byte, len(msg.Calls))
	logs := make([]string, len(msg.Calls))
	for i := range msg.Calls {
		res, err := progs[i].Check(ctx, db, &msg.Calls[i])
		if err != nil {
			return nil, errors.Wrapf(err, "call %d", i)
		}
		datas[i], logs[i] = res.Data, res.Log
	}
	return &weave.CheckResult{Data: combineData(datas), Log: strings.Join(logs, "\n")}, nil
}

// Deliver runs the calls in order. Each call sees the writes of the calls
// before it. On the first failure all writes of the batch are dropped.
func (h ExecuteHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, progs, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}

	cstore, ok := db.(weave.CacheableKVStore)
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "store %T cannot be cache wrapped", db)
	}
	cache := cstore.CacheWrap()

	datas := make([][]byte, len(msg.Calls))
	logs := make([]string, len(msg.Calls))
	for i := range msg.Calls {
		res, err := progs[i].Deliver(ctx, cache, &msg.Calls[i])
		if err != nil {
			cache.Discard()
			return nil, errors.Wrapf(err, "call %d", i)
		}
		datas[i], logs[i] = res.Data, res.Log
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write batch")
	}
	weave.GetLogger(ctx).Debug("batch executed", "calls", len(msg.Calls))
	return &weave.DeliverResult{Data: combineData(datas), Log: strings.Join(logs, "\n")}, nil
}

// validate resolves the program of every call and makes sure the caller
// holds every signature the calls claim. Nothing is executed until the
// whole batch passes.
func (h ExecuteHandler) validate(ctx weave.Context, tx weave.Tx) (*ExecuteMsg, []Program, error) {
	var msg ExecuteMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if len(h.auth.GetConditions(ctx)) == 0 {
		return nil, nil, errors.Wrap(ErrInvalidSigner, "caller not authenticated")
	}
	progs := make([]Program, len(msg.Calls))
	for i := range msg.Calls {
		c := &msg.Calls[i]
		prog, err := h.programs.Lookup(c.Target)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "call %d", i)
		}
		if s, missing := x.FirstUnsigned(ctx, h.auth, c.Signers()); missing {
			return nil, nil, errors.Wrapf(ErrInvalidSigner, "call %d: %s did not sign", i, s)
		}
		progs[i] = prog
	}
	return &msg, progs, nil
}

// combineData encodes the result data of all calls as a repeated bytes
// field, keeping empty results so that indexes match the calls.
func combineData(datas [][]byte) []byte {
	var e codec.Encoder
	e.RepeatedBytes(1, datas)
	return e.Result()
}
