package main

import (
	"os"
	"os/signal"
	"syscall"

	vestd "github.com/iov-one/vestengine/cmd/vestd/app"
	"github.com/iov-one/vestengine/errors"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/abci/server"
)

const flagBind = "bind"

// StartCommand serves the application over an ABCI socket until the
// process is interrupted.
func StartCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "start",
		Short: "Run the abci server",
		Args:  cobra.NoArgs,
		RunE:  startFunc,
	}
	c.Flags().String(flagBind, "tcp://localhost:26658", "address server listens on")
	return c
}

func startFunc(c *cobra.Command, args []string) error {
	g, err := parseGlobals(c)
	if err != nil {
		return err
	}
	addr, err := c.Flags().GetString(flagBind)
	if err != nil {
		return err
	}

	app, err := vestd.GenerateApp(g.home, g.logger, g.debug)
	if err != nil {
		return err
	}

	g.logger.Info("Starting ABCI app", "bind", addr)
	svr, err := server.NewServer(addr, "socket", app)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "creating listener: %s", err)
	}
	svr.SetLogger(g.logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	g.logger.Info("Stopping ABCI app")
	return svr.Stop()
}
