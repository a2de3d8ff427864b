package vestd

import (
	"testing"
	"time"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/crypto"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/weavetest"
	"github.com/iov-one/vestengine/x/cash"
	"github.com/iov-one/vestengine/x/execution"
	"github.com/iov-one/vestengine/x/sigs"
	"github.com/iov-one/vestengine/x/vesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const testChainID = "vestd-test-chain"

type fixture struct {
	client *Client
	asset  weave.Address
	// sender holds the genesis supply
	sender crypto.PrivateKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		asset:  weavetest.NewCondition().Address(),
		sender: crypto.GenPrivKeyEd25519(),
	}
	gen, err := GenInitOptions(testChainID, f.sender.PublicKey().Address(), f.asset, 5000)
	require.NoError(t, err)
	state, err := gen.AppStateBytes()
	require.NoError(t, err)

	a, err := GenerateApp("", log.NewNopLogger(), false)
	require.NoError(t, err)
	a.InitChain(abci.RequestInitChain{ChainId: gen.ChainID, AppStateBytes: state})
	a.Commit()
	f.client = NewClient(a)
	return f
}

func (f *fixture) apply(t *testing.T, at time.Time, msg weave.Msg, signers ...crypto.Signer) error {
	t.Helper()
	tx := &Tx{Msg: msg}
	require.NoError(t, f.client.Sign(tx, signers...))
	_, err := f.client.Apply(tx, at)
	return err
}

func (f *fixture) balance(t *testing.T, holder weave.Address) uint64 {
	t.Helper()
	models, err := f.client.Query("/holdings", cash.HoldingKey(holder, f.asset))
	require.NoError(t, err)
	if len(models) == 0 {
		return 0
	}
	var h cash.Holding
	require.NoError(t, h.Unmarshal(models[0].Value))
	return h.Amount
}

func (f *fixture) pool(t *testing.T, base weave.Address) *vesting.Pool {
	t.Helper()
	models, err := f.client.Query("/pools", vesting.PoolAddress(base))
	require.NoError(t, err)
	require.Len(t, models, 1)
	var p vesting.Pool
	require.NoError(t, p.Unmarshal(models[0].Value))
	return &p
}

func (f *fixture) nonce(t *testing.T, signer crypto.Signer) int64 {
	t.Helper()
	n, err := sigs.NextNonce(f.client.app.DeliverStore(), signer.PublicKey().Address())
	require.NoError(t, err)
	return n
}

func TestVestingLifecycle(t *testing.T) {
	f := newFixture(t)
	base := crypto.GenPrivKeyEd25519()
	b := crypto.GenPrivKeyEd25519()
	c := crypto.GenPrivKeyEd25519()
	recipient := crypto.GenPrivKeyEd25519()

	baseAddr := base.PublicKey().Address()
	senderAddr := f.sender.PublicKey().Address()
	recipientAddr := recipient.PublicKey().Address()
	poolAddr := vesting.PoolAddress(baseAddr)
	t0 := time.Unix(1560000000, 0)

	create := &vesting.CreatePoolMsg{
		Base:         baseAddr,
		Sender:       senderAddr,
		Asset:        f.asset,
		Amount:       1000,
		LockedPeriod: 3600,
		MinSign:      2,
		Signers:      []weave.Address{b.PublicKey().Address(), c.PublicKey().Address()},
		Capacity:     3,
	}
	require.NoError(t, f.apply(t, t0, create, f.sender, base))
	assert.Equal(t, vesting.StatusCreated, f.pool(t, baseAddr).Status)

	deposit := &vesting.DepositMsg{Pool: poolAddr, Sender: senderAddr, Asset: f.asset}

	// Without quorum nothing is written, not even the signer sequence.
	seq := f.nonce(t, f.sender)
	err := f.apply(t, t0.Add(5*time.Second), deposit, f.sender)
	assert.True(t, vesting.ErrInsufficientSigners.Is(err), "got %v", err)
	assert.Equal(t, seq, f.nonce(t, f.sender))
	assert.Equal(t, uint64(5000), f.balance(t, senderAddr))

	require.NoError(t, f.apply(t, t0.Add(10*time.Second), deposit, f.sender, b))
	assert.Equal(t, uint64(4000), f.balance(t, senderAddr))
	assert.Equal(t, uint64(1000), f.balance(t, vesting.VaultAddress(baseAddr)))

	nominate := &vesting.NominateMsg{Pool: poolAddr, Sender: senderAddr, Recipient: recipientAddr}
	require.NoError(t, f.apply(t, t0.Add(20*time.Second), nominate, f.sender, c))
	assert.Equal(t, vesting.StatusNominated, f.pool(t, baseAddr).Status)

	claim := &vesting.ClaimMsg{Pool: poolAddr, Receiver: recipientAddr, Base: baseAddr, Asset: f.asset}
	err = f.apply(t, t0.Add(100*time.Second), claim, recipient)
	assert.True(t, vesting.ErrInvalidClaimTime.Is(err), "got %v", err)

	require.NoError(t, f.apply(t, t0.Add(3610*time.Second), claim, recipient))
	assert.Equal(t, uint64(1000), f.balance(t, recipientAddr))
	assert.Equal(t, uint64(0), f.balance(t, vesting.VaultAddress(baseAddr)))
	assert.Equal(t, vesting.StatusClaimed, f.pool(t, baseAddr).Status)

	err = f.apply(t, t0.Add(3620*time.Second), claim, recipient)
	assert.True(t, vesting.ErrInvalidVestingStatus.Is(err), "got %v", err)
}

func TestFailedTxKeepsItsNonce(t *testing.T) {
	f := newFixture(t)
	base := crypto.GenPrivKeyEd25519()
	recipient := crypto.GenPrivKeyEd25519()
	baseAddr := base.PublicKey().Address()
	senderAddr := f.sender.PublicKey().Address()
	recipientAddr := recipient.PublicKey().Address()
	poolAddr := vesting.PoolAddress(baseAddr)
	t0 := time.Unix(1560000000, 0)

	create := &vesting.CreatePoolMsg{
		Base:         baseAddr,
		Sender:       senderAddr,
		Asset:        f.asset,
		Amount:       100,
		LockedPeriod: 60,
		MinSign:      1,
		Capacity:     1,
	}
	require.NoError(t, f.apply(t, t0, create, f.sender, base))
	require.NoError(t, f.apply(t, t0, &vesting.DepositMsg{Pool: poolAddr, Sender: senderAddr, Asset: f.asset}, f.sender))
	require.NoError(t, f.apply(t, t0, &vesting.NominateMsg{Pool: poolAddr, Sender: senderAddr, Recipient: recipientAddr}, f.sender))

	claim := &Tx{Msg: &vesting.ClaimMsg{Pool: poolAddr, Receiver: recipientAddr, Base: baseAddr, Asset: f.asset}}
	require.NoError(t, f.client.Sign(claim, recipient))

	_, err := f.client.Apply(claim, t0.Add(time.Second))
	assert.True(t, vesting.ErrInvalidClaimTime.Is(err), "got %v", err)
	assert.Equal(t, int64(0), f.nonce(t, recipient))

	// The very same signed tx is accepted once the pool unlocks.
	_, err = f.client.Apply(claim, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, uint64(100), f.balance(t, recipientAddr))
	assert.Equal(t, int64(1), f.nonce(t, recipient))

	_, err = f.client.Apply(claim, t0.Add(2*time.Minute))
	assert.True(t, sigs.ErrInvalidSequence.Is(err), "got %v", err)
}

func TestExecuteBatch(t *testing.T) {
	f := newFixture(t)
	senderAddr := f.sender.PublicKey().Address()
	other := crypto.GenPrivKeyEd25519()
	otherAddr := other.PublicKey().Address()
	now := time.Unix(1560000000, 0)

	call := func(src, dst weave.Address, amount uint64) execution.Call {
		c, err := SendCall(src, dst, f.asset, amount)
		require.NoError(t, err)
		return c
	}

	batch := &execution.ExecuteMsg{Calls: []execution.Call{
		call(senderAddr, otherAddr, 300),
		call(senderAddr, otherAddr, 200),
	}}
	require.NoError(t, f.apply(t, now, batch, f.sender))
	assert.Equal(t, uint64(4500), f.balance(t, senderAddr))
	assert.Equal(t, uint64(500), f.balance(t, otherAddr))

	// The second call moves funds of an account that did not sign.
	batch = &execution.ExecuteMsg{Calls: []execution.Call{
		call(senderAddr, otherAddr, 100),
		call(otherAddr, senderAddr, 100),
	}}
	err := f.apply(t, now.Add(time.Second), batch, f.sender)
	assert.True(t, execution.ErrInvalidSigner.Is(err), "got %v", err)
	assert.Equal(t, uint64(4500), f.balance(t, senderAddr))

	// Both sign, the second call overdraws and everything is reverted.
	batch = &execution.ExecuteMsg{Calls: []execution.Call{
		call(senderAddr, otherAddr, 100),
		call(otherAddr, senderAddr, 1000),
	}}
	err = f.apply(t, now.Add(2*time.Second), batch, f.sender, other)
	assert.True(t, errors.ErrInsufficientAmount.Is(err), "got %v", err)
	assert.Equal(t, uint64(4500), f.balance(t, senderAddr))
	assert.Equal(t, uint64(500), f.balance(t, otherAddr))
}

func TestBumpSequence(t *testing.T) {
	f := newFixture(t)
	now := time.Unix(1560000000, 0)

	require.NoError(t, f.apply(t, now, &sigs.BumpSequenceMsg{Increment: 5}, f.sender))
	assert.Equal(t, int64(5), f.nonce(t, f.sender))

	// A signature for a skipped sequence is rejected.
	tx := &Tx{Msg: &sigs.BumpSequenceMsg{Increment: 1}}
	sig, err := sigs.SignTx(f.sender, tx, testChainID, 3)
	require.NoError(t, err)
	tx.Signatures = append(tx.Signatures, sig)
	_, err = f.client.Apply(tx, now.Add(time.Second))
	assert.True(t, sigs.ErrInvalidSequence.Is(err), "got %v", err)
}

func TestGenInitOptions(t *testing.T) {
	addr := weavetest.RandomAddr(t)
	cases := map[string]struct {
		chainID string
		holder  weave.Address
		wantErr *errors.Error
	}{
		"valid":          {chainID: testChainID, holder: addr},
		"bad chain id":   {chainID: "x", holder: addr, wantErr: errors.ErrInput},
		"missing holder": {chainID: testChainID, wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := GenInitOptions(tc.chainID, tc.holder, weavetest.RandomAddr(t), DefaultSupply)
			assert.True(t, tc.wantErr.Is(err), "got %v", err)
		})
	}
}
