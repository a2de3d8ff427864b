package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	weave "github.com/iov-one/vestengine"
	vestd "github.com/iov-one/vestengine/cmd/vestd/app"
	"github.com/iov-one/vestengine/crypto"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/x/cash"
	"github.com/iov-one/vestengine/x/execution"
	"github.com/iov-one/vestengine/x/sigs"
	"github.com/iov-one/vestengine/x/vesting"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	flagFrom = "from"
	flagAt   = "at"

	flagSrc          = "src"
	flagDst          = "dst"
	flagAmount       = "amount"
	flagMemo         = "memo"
	flagSender       = "sender"
	flagBase         = "base"
	flagSigners      = "signers"
	flagApprover     = "approver"
	flagMinSign      = "min-sign"
	flagCapacity     = "capacity"
	flagLockedPeriod = "locked-period"
	flagRecipient    = "recipient"
	flagReceiver     = "receiver"
	flagIncrement    = "increment"
	flagSend         = "send"
	flagOwner        = "owner"
	flagMaxSigners   = "max-signers"
	flagMinLock      = "min-lock-period"
)

// msgBuilder reads the command flags into a message.
type msgBuilder func(c *cobra.Command, home string) (weave.Msg, error)

// TxCommand groups the commands that sign a message and apply it in a
// new block.
func TxCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "tx",
		Short: "Sign a transaction and apply it in a new block",
	}
	c.AddCommand(
		txCommand("send", "Move funds between two holders", sendFlags, buildSend),
		txCommand("create-pool", "Create a vesting pool", createPoolFlags, buildCreatePool),
		txCommand("deposit", "Deposit the pool amount into its vault", depositFlags, buildDeposit),
		txCommand("nominate", "Nominate the recipient of a pool", nominateFlags, buildNominate),
		txCommand("claim", "Release the vault to the recipient", claimFlags, buildClaim),
		txCommand("execute", "Run a batch of cash transfers at once", executeFlags, buildExecute),
		txCommand("update-config", "Patch the vesting configuration", updateConfigFlags, buildUpdateConfig),
		txCommand("bump-sequence", "Skip sequence numbers of the signer", bumpSequenceFlags, buildBumpSequence),
	)
	return c
}

func txCommand(use, short string, addFlags func(*pflag.FlagSet), build msgBuilder) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runTx(c, build)
		},
	}
	flags := c.Flags()
	flags.StringSlice(flagFrom, nil, "names of the keys signing the transaction (required)")
	flags.Int64(flagAt, 0, "block time as unix seconds, defaults to now")
	addFlags(flags)
	return c
}

func runTx(c *cobra.Command, build msgBuilder) error {
	g, err := parseGlobals(c)
	if err != nil {
		return err
	}
	flags := c.Flags()
	from, err := flags.GetStringSlice(flagFrom)
	if err != nil {
		return err
	}
	if len(from) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "at least one signer required")
	}
	signers := make([]crypto.Signer, 0, len(from))
	for _, name := range from {
		key, err := loadKey(g.home, name)
		if err != nil {
			return err
		}
		signers = append(signers, key)
	}
	at, err := flags.GetInt64(flagAt)
	if err != nil {
		return err
	}
	now := time.Now()
	if at != 0 {
		now = time.Unix(at, 0)
	}

	msg, err := build(c, g.home)
	if err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	a, err := vestd.GenerateApp(g.home, g.logger, g.debug)
	if err != nil {
		return err
	}
	client := vestd.NewClient(a)
	tx := &vestd.Tx{Msg: msg}
	if err := client.Sign(tx, signers...); err != nil {
		return err
	}
	res, err := client.Apply(tx, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.OutOrStdout(), "ok %s %X\n", msg.Path(), res.Data)
	return nil
}

func addressFlag(c *cobra.Command, home, name string) (weave.Address, error) {
	s, err := c.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, errors.Wrapf(errors.ErrEmpty, "--%s required", name)
	}
	addr, err := resolveAddress(home, s)
	if err != nil {
		return nil, errors.Wrapf(err, "--%s", name)
	}
	return addr, nil
}

func sendFlags(flags *pflag.FlagSet) {
	flags.String(flagSrc, "", "source key name or address")
	flags.String(flagDst, "", "destination key name or address")
	flags.String(flagAsset, "", "asset address")
	flags.Uint64(flagAmount, 0, "amount to move")
	flags.String(flagMemo, "", "optional memo")
}

func buildSend(c *cobra.Command, home string) (weave.Msg, error) {
	var msg cash.SendMsg
	var err error
	if msg.Source, err = addressFlag(c, home, flagSrc); err != nil {
		return nil, err
	}
	if msg.Destination, err = addressFlag(c, home, flagDst); err != nil {
		return nil, err
	}
	if msg.Asset, err = addressFlag(c, home, flagAsset); err != nil {
		return nil, err
	}
	if msg.Amount, err = c.Flags().GetUint64(flagAmount); err != nil {
		return nil, err
	}
	if msg.Memo, err = c.Flags().GetString(flagMemo); err != nil {
		return nil, err
	}
	return &msg, nil
}

func createPoolFlags(flags *pflag.FlagSet) {
	flags.String(flagBase, "", "base key name or address, identifies the pool")
	flags.String(flagSender, "", "sender key name or address")
	flags.String(flagAsset, "", "asset address")
	flags.Uint64(flagAmount, 0, "amount to lock")
	flags.Int64(flagLockedPeriod, 0, "lock period in seconds")
	flags.Uint8(flagMinSign, 1, "approvals required, the sender counts as one")
	flags.StringSlice(flagSigners, nil, "approvers besides the sender")
	flags.Uint8(flagCapacity, 1, "greatest number of signers, the sender included")
}

func buildCreatePool(c *cobra.Command, home string) (weave.Msg, error) {
	var msg vesting.CreatePoolMsg
	var err error
	flags := c.Flags()
	if msg.Base, err = addressFlag(c, home, flagBase); err != nil {
		return nil, err
	}
	if msg.Sender, err = addressFlag(c, home, flagSender); err != nil {
		return nil, err
	}
	if msg.Asset, err = addressFlag(c, home, flagAsset); err != nil {
		return nil, err
	}
	if msg.Amount, err = flags.GetUint64(flagAmount); err != nil {
		return nil, err
	}
	if msg.LockedPeriod, err = flags.GetInt64(flagLockedPeriod); err != nil {
		return nil, err
	}
	if msg.MinSign, err = flags.GetUint8(flagMinSign); err != nil {
		return nil, err
	}
	if msg.Capacity, err = flags.GetUint8(flagCapacity); err != nil {
		return nil, err
	}
	signers, err := flags.GetStringSlice(flagSigners)
	if err != nil {
		return nil, err
	}
	for _, s := range signers {
		addr, err := resolveAddress(home, s)
		if err != nil {
			return nil, errors.Wrapf(err, "--%s", flagSigners)
		}
		msg.Signers = append(msg.Signers, addr)
	}
	return &msg, nil
}

// poolFlag reads the base of a pool and returns the pool address.
func poolFlag(c *cobra.Command, home string) (weave.Address, error) {
	base, err := addressFlag(c, home, flagBase)
	if err != nil {
		return nil, err
	}
	return vesting.PoolAddress(base), nil
}

func depositFlags(flags *pflag.FlagSet) {
	flags.String(flagBase, "", "base key name or address of the pool")
	flags.String(flagSender, "", "sender key name or address")
	flags.String(flagAsset, "", "asset address")
}

func buildDeposit(c *cobra.Command, home string) (weave.Msg, error) {
	var msg vesting.DepositMsg
	var err error
	if msg.Pool, err = poolFlag(c, home); err != nil {
		return nil, err
	}
	if msg.Sender, err = addressFlag(c, home, flagSender); err != nil {
		return nil, err
	}
	if msg.Asset, err = addressFlag(c, home, flagAsset); err != nil {
		return nil, err
	}
	return &msg, nil
}

func nominateFlags(flags *pflag.FlagSet) {
	flags.String(flagBase, "", "base key name or address of the pool")
	flags.String(flagSender, "", "sender key name or address")
	flags.String(flagRecipient, "", "recipient key name or address")
}

func buildNominate(c *cobra.Command, home string) (weave.Msg, error) {
	var msg vesting.NominateMsg
	var err error
	if msg.Pool, err = poolFlag(c, home); err != nil {
		return nil, err
	}
	if msg.Sender, err = addressFlag(c, home, flagSender); err != nil {
		return nil, err
	}
	if msg.Recipient, err = addressFlag(c, home, flagRecipient); err != nil {
		return nil, err
	}
	return &msg, nil
}

func claimFlags(flags *pflag.FlagSet) {
	flags.String(flagBase, "", "base key name or address of the pool")
	flags.String(flagReceiver, "", "receiver key name or address")
	flags.String(flagAsset, "", "asset address")
}

func buildClaim(c *cobra.Command, home string) (weave.Msg, error) {
	var msg vesting.ClaimMsg
	var err error
	if msg.Base, err = addressFlag(c, home, flagBase); err != nil {
		return nil, err
	}
	msg.Pool = vesting.PoolAddress(msg.Base)
	if msg.Receiver, err = addressFlag(c, home, flagReceiver); err != nil {
		return nil, err
	}
	if msg.Asset, err = addressFlag(c, home, flagAsset); err != nil {
		return nil, err
	}
	return &msg, nil
}

func executeFlags(flags *pflag.FlagSet) {
	flags.String(flagAsset, "", "asset address of all transfers")
	flags.StringArray(flagSend, nil, "transfer as SRC:DST:AMOUNT, repeat for more calls")
}

func buildExecute(c *cobra.Command, home string) (weave.Msg, error) {
	asset, err := addressFlag(c, home, flagAsset)
	if err != nil {
		return nil, err
	}
	sends, err := c.Flags().GetStringArray(flagSend)
	if err != nil {
		return nil, err
	}
	var msg execution.ExecuteMsg
	for i, s := range sends {
		call, err := parseSend(home, asset, s)
		if err != nil {
			return nil, errors.Wrapf(err, "--%s %d", flagSend, i)
		}
		msg.Calls = append(msg.Calls, call)
	}
	return &msg, nil
}

func parseSend(home string, asset weave.Address, s string) (execution.Call, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return execution.Call{}, errors.Wrapf(errors.ErrInput, "want SRC:DST:AMOUNT, got %q", s)
	}
	src, err := resolveAddress(home, parts[0])
	if err != nil {
		return execution.Call{}, err
	}
	dst, err := resolveAddress(home, parts[1])
	if err != nil {
		return execution.Call{}, err
	}
	amount, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return execution.Call{}, errors.Wrapf(errors.ErrAmount, "%q", parts[2])
	}
	return vestd.SendCall(src, dst, asset, amount)
}

func updateConfigFlags(flags *pflag.FlagSet) {
	flags.String(flagOwner, "", "new owner key name or address")
	flags.Uint32(flagMaxSigners, 0, "greatest signer capacity of new pools")
	flags.Int64(flagMinLock, 0, "shortest lock period of new pools in seconds")
}

func buildUpdateConfig(c *cobra.Command, home string) (weave.Msg, error) {
	var patch vesting.Configuration
	var err error
	flags := c.Flags()
	if owner, _ := flags.GetString(flagOwner); owner != "" {
		if patch.Owner, err = resolveAddress(home, owner); err != nil {
			return nil, err
		}
	}
	if patch.MaxSigners, err = flags.GetUint32(flagMaxSigners); err != nil {
		return nil, err
	}
	if patch.MinLockPeriod, err = flags.GetInt64(flagMinLock); err != nil {
		return nil, err
	}
	return &vesting.UpdateConfigurationMsg{Patch: &patch}, nil
}

func bumpSequenceFlags(flags *pflag.FlagSet) {
	flags.Uint32(flagIncrement, 1, "value added to the signer sequence")
}

func buildBumpSequence(c *cobra.Command, home string) (weave.Msg, error) {
	incr, err := c.Flags().GetUint32(flagIncrement)
	if err != nil {
		return nil, err
	}
	return &sigs.BumpSequenceMsg{Increment: incr}, nil
}
