package weavetest

import (
	"context"
	"testing"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/weavetest/assert"
)

func TestAuth(t *testing.T) {
	a, b, c := NewCondition(), NewCondition(), NewCondition()

	cases := map[string]struct {
		auth       Auth
		wantConds  []weave.Condition
		wantSigned []weave.Condition
	}{
		"nobody signed": {
			wantConds: nil,
		},
		"signer only": {
			auth:       Auth{Signer: a},
			wantConds:  []weave.Condition{a},
			wantSigned: []weave.Condition{a},
		},
		"signers then signer": {
			auth:       Auth{Signer: c, Signers: []weave.Condition{a, b}},
			wantConds:  []weave.Condition{a, b, c},
			wantSigned: []weave.Condition{a, b, c},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.wantConds, tc.auth.GetConditions(nil))
			for _, s := range tc.wantSigned {
				if !tc.auth.HasAddress(nil, s.Address()) {
					t.Fatalf("%s must be signed", s)
				}
			}
			if tc.auth.HasAddress(nil, NewCondition().Address()) {
				t.Fatal("unknown condition signed")
			}
		})
	}
}

func TestCtxAuthKeysAreIndependent(t *testing.T) {
	first := CtxAuth{Key: "first"}
	second := CtxAuth{Key: "second"}
	c := NewCondition()

	ctx := context.Background()
	assert.Nil(t, first.GetConditions(ctx))

	ctx = first.SetConditions(ctx, c)
	assert.Equal(t, []weave.Condition{c}, first.GetConditions(ctx))
	if !first.HasAddress(ctx, c.Address()) {
		t.Fatal("condition must be signed")
	}
	if second.HasAddress(ctx, c.Address()) {
		t.Fatal("condition leaked to another key")
	}
}
