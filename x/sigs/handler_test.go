package sigs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/crypto"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/orm"
	"github.com/iov-one/vestengine/store"
	"github.com/iov-one/vestengine/weavetest"
)

type routeRecorder map[string]weave.Handler

func (r routeRecorder) Handle(m weave.Msg, h weave.Handler) {
	r[m.Path()] = h
}

func TestBumpSequence(t *testing.T) {
	pub := crypto.GenPrivKeyEd25519().PublicKey()
	unknown := weavetest.NewCondition()

	cases := map[string]struct {
		seq       int64
		signer    weave.Condition
		increment uint32
		wantErr   *errors.Error
		wantSeq   int64
	}{
		"increment by one is a noop": {
			seq: 5, signer: pub.Condition(), increment: 1, wantSeq: 5,
		},
		"increment by many": {
			seq: 5, signer: pub.Condition(), increment: 10, wantSeq: 14,
		},
		"zero increment": {
			seq: 5, signer: pub.Condition(), increment: 0, wantErr: errors.ErrMsg, wantSeq: 5,
		},
		"too big increment": {
			seq: 5, signer: pub.Condition(), increment: maxSequenceIncrement + 1, wantErr: errors.ErrMsg, wantSeq: 5,
		},
		"unknown signer": {
			seq: 5, signer: unknown, increment: 2, wantErr: errors.ErrNotFound, wantSeq: 5,
		},
		"overflow": {
			seq: maxSequenceValue - 1, signer: pub.Condition(), increment: 5, wantErr: errors.ErrOverflow, wantSeq: maxSequenceValue - 1,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			kv := store.MemStore()
			b := NewBucket()
			require.NoError(t, b.Save(kv, orm.NewSimpleObj(pub.Address(), &UserData{Pubkey: pub, Sequence: tc.seq})))

			routes := routeRecorder{}
			RegisterRoutes(routes, &weavetest.Auth{Signer: tc.signer})
			h := routes[pathBumpSequenceMsg]
			require.NotNil(t, h)

			tx := &weavetest.Tx{Msg: &BumpSequenceMsg{Increment: tc.increment}}
			_, err := h.Deliver(context.Background(), kv, tx)
			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.True(t, tc.wantErr.Is(err), "got %v", err)
			}

			n, err := NextNonce(kv, pub.Address())
			require.NoError(t, err)
			assert.Equal(t, tc.wantSeq, n)
		})
	}
}
