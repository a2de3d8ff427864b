/*
Command vestd runs the vesting escrow application.

It keeps its state in a home directory: the genesis file, the database and
the key files. Transactions can be applied locally, each in a block of its
own, or the application can be served over ABCI to a tendermint node.
*/
package main

import (
	"fmt"
	"os"

	weave "github.com/iov-one/vestengine"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagHome     = "home"
	flagLogLevel = "log-level"
	flagDebug    = "debug"
)

func main() {
	conf, err := ParseEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := RootCommand(conf).Execute(); err != nil {
		os.Exit(1)
	}
}

// RootCommand returns the vestd command with all subcommands attached.
// The configuration provides the flag defaults.
func RootCommand(conf Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "vestd",
		Short:        "Vesting escrow application",
		SilenceUsage: true,
	}
	flags := root.PersistentFlags()
	flags.String(flagHome, conf.Home, "directory to store files under")
	flags.String(flagLogLevel, conf.LogLevel, "log level (debug, info, error, none)")
	flags.Bool(flagDebug, false, "return the full error stack in responses")

	root.AddCommand(
		InitCommand(conf.ChainID),
		KeysCommand(),
		TxCommand(),
		QueryCommand(),
		StartCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the app version",
			Run: func(c *cobra.Command, args []string) {
				fmt.Fprintln(c.OutOrStdout(), weave.Version())
			},
		},
	)
	return root
}

// globals reads the persistent flags shared by all commands.
type globals struct {
	home   string
	debug  bool
	logger log.Logger
}

func parseGlobals(c *cobra.Command) (*globals, error) {
	flags := c.Flags()
	home, err := flags.GetString(flagHome)
	if err != nil {
		return nil, err
	}
	level, err := flags.GetString(flagLogLevel)
	if err != nil {
		return nil, err
	}
	debug, err := flags.GetBool(flagDebug)
	if err != nil {
		return nil, err
	}
	logger, err := NewLogger(level)
	if err != nil {
		return nil, err
	}
	return &globals{home: home, debug: debug, logger: logger}, nil
}
