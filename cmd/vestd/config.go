package main

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/iov-one/vestengine/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Config holds the defaults of the global flags. Every value can be set
// through the environment and overridden on the command line.
type Config struct {
	Home     string `env:"VESTD_HOME,expand" envDefault:"${HOME}/.vestd"`
	LogLevel string `env:"VESTD_LOG_LEVEL" envDefault:"info"`
	ChainID  string `env:"VESTD_CHAIN_ID" envDefault:"vestd-dev-chain"`
}

// ParseEnv loads the configuration from environment variables.
func ParseEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return c, errors.Wrapf(errors.ErrInput, "parse env: %s", err)
	}
	return c, nil
}

// NewLogger returns a logger writing to stdout that drops everything
// below the given level.
func NewLogger(level string) (log.Logger, error) {
	allowed, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	return log.NewFilter(logger, allowed).With("module", "vestd"), nil
}
