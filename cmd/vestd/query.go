package main

import (
	"encoding/json"
	"fmt"

	weave "github.com/iov-one/vestengine"
	vestd "github.com/iov-one/vestengine/cmd/vestd/app"
	"github.com/iov-one/vestengine/x/cash"
	"github.com/iov-one/vestengine/x/vesting"
	"github.com/spf13/cobra"
)

const flagHolderAddr = "address"

// QueryCommand groups the commands reading the committed state.
func QueryCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "query",
		Short: "Read the committed state",
	}

	holding := &cobra.Command{
		Use:   "holding",
		Short: "Print the balance of one asset",
		Args:  cobra.NoArgs,
		RunE:  queryHoldingFunc,
	}
	holding.Flags().String(flagHolderAddr, "", "holder key name or address")
	holding.Flags().String(flagAsset, "", "asset address")

	pool := &cobra.Command{
		Use:   "pool",
		Short: "Print the pool created with the given base",
		Args:  cobra.NoArgs,
		RunE:  queryPoolFunc,
	}
	pool.Flags().String(flagBase, "", "base key name or address of the pool")

	bySender := &cobra.Command{
		Use:   "pools-by-sender",
		Short: "Print all pools of a sender",
		Args:  cobra.NoArgs,
		RunE:  poolsByIndexFunc("/pools/sender", flagSender),
	}
	bySender.Flags().String(flagSender, "", "sender key name or address")

	bySigner := &cobra.Command{
		Use:   "pools-by-signer",
		Short: "Print all pools an address may approve",
		Args:  cobra.NoArgs,
		RunE:  poolsByIndexFunc("/pools/signer", flagApprover),
	}
	bySigner.Flags().String(flagApprover, "", "approver key name or address")

	c.AddCommand(holding, pool, bySender, bySigner)
	return c
}

func queryClient(c *cobra.Command) (*vestd.Client, string, error) {
	g, err := parseGlobals(c)
	if err != nil {
		return nil, "", err
	}
	a, err := vestd.GenerateApp(g.home, g.logger, g.debug)
	if err != nil {
		return nil, "", err
	}
	return vestd.NewClient(a), g.home, nil
}

func queryHoldingFunc(c *cobra.Command, args []string) error {
	client, home, err := queryClient(c)
	if err != nil {
		return err
	}
	holder, err := addressFlag(c, home, flagHolderAddr)
	if err != nil {
		return err
	}
	asset, err := addressFlag(c, home, flagAsset)
	if err != nil {
		return err
	}
	models, err := client.Query("/holdings", cash.HoldingKey(holder, asset))
	if err != nil {
		return err
	}
	var h cash.Holding
	if len(models) > 0 {
		if err := h.Unmarshal(models[0].Value); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.OutOrStdout(), h.Amount)
	return nil
}

func queryPoolFunc(c *cobra.Command, args []string) error {
	client, home, err := queryClient(c)
	if err != nil {
		return err
	}
	base, err := addressFlag(c, home, flagBase)
	if err != nil {
		return err
	}
	models, err := client.Query("/pools", vesting.PoolAddress(base))
	if err != nil {
		return err
	}
	return printPools(c, models)
}

// poolsByIndexFunc prints the pools found under the address of flag in
// the index served at path.
func poolsByIndexFunc(path, flag string) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, args []string) error {
		client, home, err := queryClient(c)
		if err != nil {
			return err
		}
		addr, err := addressFlag(c, home, flag)
		if err != nil {
			return err
		}
		models, err := client.Query(path, addr)
		if err != nil {
			return err
		}
		return printPools(c, models)
	}
}

// poolView is the JSON form of a pool.
type poolView struct {
	Base         weave.Address   `json:"base"`
	Sender       weave.Address   `json:"sender"`
	Recipient    weave.Address   `json:"recipient,omitempty"`
	Asset        weave.Address   `json:"asset"`
	Vault        weave.Address   `json:"vault"`
	Amount       uint64          `json:"amount"`
	LockedPeriod int64           `json:"locked_period"`
	DepositTime  weave.UnixTime  `json:"deposit_time,omitempty"`
	MinSign      uint8           `json:"min_sign"`
	Status       string          `json:"status"`
	Capacity     uint8           `json:"capacity"`
	Signers      []weave.Address `json:"signers"`
}

func printPools(c *cobra.Command, models []weave.Model) error {
	views := make([]poolView, 0, len(models))
	for _, m := range models {
		var p vesting.Pool
		if err := p.Unmarshal(m.Value); err != nil {
			return err
		}
		views = append(views, poolView{
			Base:         p.Base,
			Sender:       p.Sender,
			Recipient:    p.Recipient,
			Asset:        p.Asset,
			Vault:        p.Vault,
			Amount:       p.Amount,
			LockedPeriod: p.LockedPeriod,
			DepositTime:  p.DepositTime,
			MinSign:      p.MinSign,
			Status:       p.Status.String(),
			Capacity:     p.Capacity,
			Signers:      p.Signers,
		})
	}
	raw, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.OutOrStdout(), string(raw))
	return nil
}
