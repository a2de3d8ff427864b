package cash

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/x"
)

// RegisterRoutes routes SendMsg to a SendHandler.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, control Controller) {
	r.Handle(&SendMsg{}, NewSendHandler(auth, control))
}

// RegisterQuery exposes the holdings under "/holdings".
func RegisterQuery(qr weave.QueryRouter) {
	NewBucket().Register("holdings", qr)
}

// SendHandler moves an amount of one asset between two holders. The
// source holder must sign.
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ weave.Handler = SendHandler{}

func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{auth: auth, control: control}
}

func (h SendHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	_, err := h.authorized(ctx, tx)
	if err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h SendHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.authorized(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.Transfer(ctx, db, h.auth, msg.Source, msg.Destination, msg.Asset, msg.Amount); err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Debug("send",
		"src", msg.Source, "dst", msg.Destination, "asset", msg.Asset, "amount", msg.Amount)
	return &weave.DeliverResult{}, nil
}

// authorized loads the message and requires the source signature.
func (h SendHandler) authorized(ctx weave.Context, tx weave.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "source %s did not sign", msg.Source)
	}
	return &msg, nil
}
