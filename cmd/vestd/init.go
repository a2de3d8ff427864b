package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/vestengine/app"
	vestd "github.com/iov-one/vestengine/cmd/vestd/app"
	"github.com/iov-one/vestengine/errors"
	"github.com/spf13/cobra"
	abci "github.com/tendermint/tendermint/abci/types"
)

const (
	genesisFile = "genesis.json"

	flagChainID = "chain-id"
	flagHolder  = "holder"
	flagAsset   = "asset"
	flagSupply  = "supply"
)

// InitCommand writes the genesis file and initializes the database from
// it.
func InitCommand(defaultChainID string) *cobra.Command {
	c := &cobra.Command{
		Use:   "init",
		Short: "Initialize the chain with one funded account",
		Args:  cobra.NoArgs,
		RunE:  initFunc,
	}
	flags := c.Flags()
	flags.String(flagChainID, defaultChainID, "chain id")
	flags.String(flagHolder, "", "key name or address of the funded account (required)")
	flags.String(flagAsset, "", "address of the issued asset (required)")
	flags.Uint64(flagSupply, vestd.DefaultSupply, "amount issued to the holder")
	return c
}

func initFunc(c *cobra.Command, args []string) error {
	g, err := parseGlobals(c)
	if err != nil {
		return err
	}
	flags := c.Flags()
	chainID, err := flags.GetString(flagChainID)
	if err != nil {
		return err
	}
	holder, err := addressFlag(c, g.home, flagHolder)
	if err != nil {
		return err
	}
	asset, err := addressFlag(c, g.home, flagAsset)
	if err != nil {
		return err
	}
	supply, err := flags.GetUint64(flagSupply)
	if err != nil {
		return err
	}

	path := filepath.Join(g.home, genesisFile)
	if _, err := os.Stat(path); err == nil {
		return errors.Wrapf(errors.ErrState, "genesis file %s exists", path)
	}
	gen, err := vestd.GenInitOptions(chainID, holder, asset, supply)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(g.home, 0700); err != nil {
		return err
	}
	if err := ioutil.WriteFile(path, raw, 0600); err != nil {
		return err
	}
	g.logger.Info("Generated genesis file", "path", path)

	return initChain(g, path)
}

// initChain loads the genesis file into a fresh database.
func initChain(g *globals, path string) error {
	gen, err := app.LoadGenesis(path)
	if err != nil {
		return err
	}
	state, err := gen.AppStateBytes()
	if err != nil {
		return err
	}
	a, err := vestd.GenerateApp(g.home, g.logger, g.debug)
	if err != nil {
		return err
	}
	if a.GetChainID() != "" {
		return errors.Wrapf(errors.ErrState, "chain %s already initialized", a.GetChainID())
	}
	a.InitChain(abci.RequestInitChain{ChainId: gen.ChainID, AppStateBytes: state})
	a.Commit()
	g.logger.Info("Initialized chain", "chain_id", gen.ChainID)
	return nil
}
