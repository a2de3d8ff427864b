package vestd

import (
	"encoding/json"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/app"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/x/cash"
	"github.com/iov-one/vestengine/x/vesting"
)

// DefaultSupply is issued to the genesis account when no amount is given.
const DefaultSupply uint64 = 123456789

// GenInitOptions produces a genesis with one rich account holding supply
// of asset, to use for dev mode. The vesting configuration is owned by
// the same account.
func GenInitOptions(chainID string, holder, asset weave.Address, supply uint64) (app.Genesis, error) {
	if !weave.IsValidChainID(chainID) {
		return app.Genesis{}, errors.Wrapf(errors.ErrInput, "chain id: %q", chainID)
	}
	if err := holder.Validate(); err != nil {
		return app.Genesis{}, errors.Wrap(err, "holder")
	}
	if err := asset.Validate(); err != nil {
		return app.Genesis{}, errors.Wrap(err, "asset")
	}

	accounts := []cash.GenesisAccount{{
		Address:  holder,
		Holdings: []cash.GenesisHolding{{Asset: asset, Amount: supply}},
	}}
	conf := vesting.DefaultConfiguration()
	conf.Owner = holder
	sections := map[string]interface{}{
		"cash": accounts,
		"conf": map[string]interface{}{"vesting": conf},
	}

	state := make(weave.Options, len(sections))
	for name, v := range sections {
		raw, err := json.Marshal(v)
		if err != nil {
			return app.Genesis{}, errors.Wrapf(errors.ErrInput, "%s: %s", name, err)
		}
		state[name] = raw
	}
	return app.Genesis{ChainID: chainID, AppState: state}, nil
}
