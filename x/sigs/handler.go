package sigs

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/orm"
	"github.com/iov-one/vestengine/x"
)

// RegisterRoutes installs the sequence bump handler.
func RegisterRoutes(r weave.Registry, auth x.Authenticator) {
	r.Handle(&BumpSequenceMsg{}, BumpSequenceHandler{auth: auth, bucket: NewBucket()})
}

// BumpSequenceHandler advances the sequence of the main signer, which
// invalidates every transaction signed for the skipped values.
type BumpSequenceHandler struct {
	auth   x.Authenticator
	bucket Bucket
}

var _ weave.Handler = BumpSequenceHandler{}

func (h BumpSequenceHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h BumpSequenceHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	user, msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	// Verifying the signature of this transaction consumed one value
	// already.
	if skip := int64(msg.Increment) - 1; skip > 0 {
		user.Sequence += skip
		if err := h.bucket.Save(db, orm.NewSimpleObj(user.Pubkey.Address(), user)); err != nil {
			return nil, errors.Wrap(err, "save sequence")
		}
	}
	return &weave.DeliverResult{}, nil
}

func (h BumpSequenceHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*UserData, *BumpSequenceMsg, error) {
	var msg BumpSequenceMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	obj, err := h.bucket.Get(db, signer.Address())
	switch {
	case err != nil:
		return nil, nil, errors.Wrap(err, "load sequence")
	case obj == nil:
		return nil, nil, errors.Wrapf(errors.ErrNotFound, "no sequence for %s", signer.Address())
	}
	user := AsUser(obj)
	if user.Sequence+int64(msg.Increment) > maxSequenceValue {
		return nil, nil, errors.Wrap(errors.ErrOverflow, "sequence")
	}
	return user, &msg, nil
}
