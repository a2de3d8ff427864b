package app

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp runs decoded transactions through a handler on top of the state
// kept by StoreApp. Check and deliver share the handler but never the
// store.
type BaseApp struct {
	*StoreApp
	decoder weave.TxDecoder
	handler weave.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp returns an application decoding raw transactions with
// decoder. In debug mode responses keep internal error details.
func NewBaseApp(store *StoreApp, decoder weave.TxDecoder, handler weave.Handler, debug bool) BaseApp {
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

func (b BaseApp) DeliverTx(raw []byte) abci.ResponseDeliverTx {
	tx, err := b.decode(raw)
	if err != nil {
		return weave.DeliverTxError(err, b.debug)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	res, err := b.handler.Deliver(b.txContext("deliver_tx", tx), b.DeliverStore(), tx)
	return weave.DeliverOrError(res, err, b.debug)
}

func (b BaseApp) CheckTx(raw []byte) abci.ResponseCheckTx {
	tx, err := b.decode(raw)
	if err != nil {
		return weave.CheckTxError(err, b.debug)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	res, err := b.handler.Check(b.txContext("check_tx", tx), b.CheckStore(), tx)
	return weave.CheckOrError(res, err, b.debug)
}

// txContext is the block context with a logger tagged for tx.
func (b BaseApp) txContext(call string, tx weave.Tx) weave.Context {
	return weave.WithLogInfo(b.BlockContext(), "call", call, "path", weave.GetPath(tx))
}

// decode turns a decoder panic into an error, malformed input must never
// stop the node.
func (b BaseApp) decode(raw []byte) (tx weave.Tx, err error) {
	defer errors.Recover(&err)
	return b.decoder(raw)
}
