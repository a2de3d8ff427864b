package cash

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
)

// GenesisHolding is an initial balance of one asset.
type GenesisHolding struct {
	Asset  weave.Address `json:"asset"`
	Amount uint64        `json:"amount"`
}

// GenesisAccount lists the initial holdings of one address. Addresses
// use the weave.Address JSON form, hex by default.
type GenesisAccount struct {
	Address  weave.Address    `json:"address"`
	Holdings []GenesisHolding `json:"holdings"`
}

// Initializer issues the balances of the "cash" genesis section.
type Initializer struct{}

var _ weave.Initializer = Initializer{}

func (Initializer) FromGenesis(opts weave.Options, db weave.KVStore) error {
	var accounts []GenesisAccount
	if err := opts.ReadOptions("cash", &accounts); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	ctrl := NewController(NewBucket())
	for i, a := range accounts {
		if err := a.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		for _, h := range a.Holdings {
			if err := ctrl.Issue(db, a.Address, h.Asset, h.Amount); err != nil {
				return errors.Wrapf(err, "account %d asset %s", i, h.Asset)
			}
		}
	}
	return nil
}
