package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/crypto"
	"github.com/iov-one/vestengine/errors"
	"github.com/spf13/cobra"
)

const keysDir = "keys"

// KeysCommand groups the key management commands.
func KeysCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "keys",
		Short: "Manage the ed25519 keys stored in the home directory",
	}
	c.AddCommand(
		&cobra.Command{
			Use:   "new NAME",
			Short: "Generate a new key",
			Args:  cobra.ExactArgs(1),
			RunE:  newKeyFunc,
		},
		&cobra.Command{
			Use:   "show NAME",
			Short: "Print the address of a key",
			Args:  cobra.ExactArgs(1),
			RunE:  showKeyFunc,
		},
	)
	return c
}

func newKeyFunc(c *cobra.Command, args []string) error {
	g, err := parseGlobals(c)
	if err != nil {
		return err
	}
	path := keyPath(g.home, args[0])
	if _, err := os.Stat(path); err == nil {
		return errors.Wrapf(errors.ErrDuplicate, "key %q", args[0])
	}
	key := crypto.GenPrivKeyEd25519()
	raw, err := json.Marshal(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	if err := ioutil.WriteFile(path, raw, 0600); err != nil {
		return err
	}
	g.logger.Info("Generated key", "name", args[0], "path", path)
	return printAddress(c, key.PublicKey().Address())
}

func showKeyFunc(c *cobra.Command, args []string) error {
	g, err := parseGlobals(c)
	if err != nil {
		return err
	}
	key, err := loadKey(g.home, args[0])
	if err != nil {
		return err
	}
	return printAddress(c, key.PublicKey().Address())
}

// addressHRP is the human readable part of bech32 encoded addresses.
const addressHRP = "vest"

func printAddress(c *cobra.Command, addr weave.Address) error {
	b32, err := addr.Bech32(addressHRP)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.OutOrStdout(), "hex:    %s\nbase58: %s\nbech32: %s\n", addr, addr.Base58(), b32)
	return nil
}

func keyPath(home, name string) string {
	return filepath.Join(home, keysDir, name+".json")
}

func loadKey(home, name string) (crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(keyPath(home, name))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "key %q: %s", name, err)
	}
	var key crypto.PrivateKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, errors.Wrapf(err, "key %q", name)
	}
	return key, nil
}

// resolveAddress accepts either the name of a stored key or an address in
// any of the formats weave.ParseAddress understands.
func resolveAddress(home, s string) (weave.Address, error) {
	if key, err := loadKey(home, s); err == nil {
		return key.PublicKey().Address(), nil
	}
	addr, err := weave.ParseAddress(s)
	if err != nil {
		return nil, errors.Wrapf(err, "address %q", s)
	}
	if addr == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "address")
	}
	return addr, nil
}
