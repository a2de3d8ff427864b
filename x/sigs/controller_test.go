package sigs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/vestengine/crypto"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/store"
)

func TestBuildSignBytes(t *testing.T) {
	a, err := BuildSignBytes([]byte("msg"), "test-chain", 1)
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := BuildSignBytes([]byte("msg"), "test-chain", 2)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	c, err := BuildSignBytes([]byte("msg"), "test-chain2", 1)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	_, err = BuildSignBytes([]byte("msg"), "bad", 1)
	assert.True(t, errors.ErrInput.Is(err))

	_, err = BuildSignBytes([]byte("msg"), "test-chain", -1)
	assert.True(t, ErrInvalidSequence.Is(err))
}

func TestVerifySignature(t *testing.T) {
	kv := store.MemStore()
	priv := crypto.GenPrivKeyEd25519()
	pub := priv.PublicKey()
	chainID := "emo-music-2345"
	bz := []byte("my special valentine")

	tx := NewStdTx(bz)
	sig0, err := SignTx(priv, tx, chainID, 0)
	require.NoError(t, err)
	sig1, err := SignTx(priv, tx, chainID, 1)
	require.NoError(t, err)
	empty := &StdSignature{Pubkey: pub, Sequence: 0}

	cases := map[string]struct {
		sig     *StdSignature
		chainID string
		wantErr *errors.Error
	}{
		"missing signature": {
			sig:     empty,
			chainID: chainID,
			wantErr: errors.ErrUnauthorized,
		},
		"wrong sequence": {
			sig:     sig1,
			chainID: chainID,
			wantErr: ErrInvalidSequence,
		},
		"wrong chain": {
			sig:     sig0,
			chainID: "metal-music-5432",
			wantErr: errors.ErrUnauthorized,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := VerifySignature(kv, tc.sig, bz, tc.chainID)
			assert.True(t, tc.wantErr.Is(err), "got %v", err)
		})
	}

	cond, err := VerifySignature(kv, sig0, bz, chainID)
	require.NoError(t, err)
	assert.Equal(t, pub.Condition(), cond)

	// replay fails
	_, err = VerifySignature(kv, sig0, bz, chainID)
	assert.True(t, ErrInvalidSequence.Is(err))

	cond, err = VerifySignature(kv, sig1, bz, chainID)
	require.NoError(t, err)
	assert.Equal(t, pub.Condition(), cond)

	n, err := NextNonce(kv, pub.Address())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestVerifyTxSignatures(t *testing.T) {
	kv := store.MemStore()
	chainID := "some-chain"
	a, b := crypto.GenPrivKeyEd25519(), crypto.GenPrivKeyEd25519()

	tx := NewStdTx([]byte("two signers"))
	sa, err := SignTx(a, tx, chainID, 0)
	require.NoError(t, err)
	sb, err := SignTx(b, tx, chainID, 0)
	require.NoError(t, err)
	tx.Signatures = []*StdSignature{sa, sb}

	conds, err := VerifyTxSignatures(kv, tx, chainID)
	require.NoError(t, err)
	require.Len(t, conds, 2)
	assert.Equal(t, a.PublicKey().Condition(), conds[0])
	assert.Equal(t, b.PublicKey().Condition(), conds[1])
}
