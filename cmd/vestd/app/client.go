package vestd

import (
	"time"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/app"
	"github.com/iov-one/vestengine/crypto"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/x/sigs"
	abci "github.com/tendermint/tendermint/abci/types"
)

// Client drives an embedded application: it signs transactions with the
// current signer sequences and applies each one in a block of its own.
type Client struct {
	app app.BaseApp
}

// NewClient returns a client for an application whose chain was
// already initialized.
func NewClient(a app.BaseApp) *Client {
	return &Client{app: a}
}

// Sign appends a signature of every signer to the transaction. Each
// signature uses the next sequence of its signer.
func (c *Client) Sign(tx *Tx, signers ...crypto.Signer) error {
	chainID := c.app.GetChainID()
	if chainID == "" {
		return errors.Wrap(errors.ErrState, "chain not initialized")
	}
	for _, s := range signers {
		seq, err := sigs.NextNonce(c.app.DeliverStore(), s.PublicKey().Address())
		if err != nil {
			return err
		}
		sig, err := sigs.SignTx(s, tx, chainID, seq)
		if err != nil {
			return errors.Wrap(err, "sign")
		}
		tx.Signatures = append(tx.Signatures, sig)
	}
	return nil
}

// Apply delivers the transaction in a new block with the given time and
// commits it. A failed delivery is returned as an error carrying the
// ABCI code, and the block is committed anyway.
func (c *Client) Apply(tx *Tx, now time.Time) (*abci.ResponseDeliverTx, error) {
	raw, err := tx.Marshal()
	if err != nil {
		return nil, err
	}
	height := c.app.Info(abci.RequestInfo{}).LastBlockHeight + 1

	c.app.BeginBlock(abci.RequestBeginBlock{
		Header: abci.Header{Height: height, Time: now},
	})
	res := c.app.DeliverTx(raw)
	c.app.EndBlock(abci.RequestEndBlock{Height: height})
	c.app.Commit()

	if err := errors.ABCIError(res.Code, res.Log); err != nil {
		return &res, err
	}
	return &res, nil
}

// Query returns all models found under the path for the given data.
func (c *Client) Query(path string, data []byte) ([]weave.Model, error) {
	res := c.app.Query(abci.RequestQuery{Path: path, Data: data})
	if err := errors.ABCIError(res.Code, res.Log); err != nil {
		return nil, err
	}
	var keys, values app.ResultSet
	if err := keys.Unmarshal(res.Key); err != nil {
		return nil, errors.Wrap(err, "keys")
	}
	if err := values.Unmarshal(res.Value); err != nil {
		return nil, errors.Wrap(err, "values")
	}
	return app.JoinResults(&keys, &values)
}
