package app

import (
	"encoding/json"
	"io/ioutil"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
)

// Genesis is the part of a tendermint genesis file the application
// reads. Other fields of the file are ignored.
type Genesis struct {
	ChainID  string        `json:"chain_id"`
	AppState weave.Options `json:"app_state"`
}

// LoadGenesis reads and checks the genesis file at path.
func LoadGenesis(path string) (Genesis, error) {
	var gen Genesis
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return gen, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "genesis %s: %s", path, err)
	}
	if !weave.IsValidChainID(gen.ChainID) {
		return gen, errors.Wrapf(errors.ErrInput, "chain id %q", gen.ChainID)
	}
	return gen, nil
}

// AppStateBytes encodes the app state the way InitChain receives it.
func (g Genesis) AppStateBytes() ([]byte, error) {
	raw, err := json.Marshal(g.AppState)
	return raw, errors.Wrap(err, "encode app state")
}
