package vesting

import (
	"context"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/x"
)

// PoolAddress returns the key a pool derived from base is stored under.
func PoolAddress(base weave.Address) weave.Address {
	return weave.NewCondition("vesting", "pool", base).Address()
}

// CustodyCondition is the condition of the custody authority of the pool
// derived from base. No key can produce it.
func CustodyCondition(base weave.Address) weave.Condition {
	return weave.NewCondition("vesting", "vault", base)
}

// VaultAddress returns the holder address of the vault of the pool derived
// from base.
func VaultAddress(base weave.Address) weave.Address {
	return CustodyCondition(base).Address()
}

type contextKey int // local to the vesting module

const (
	contextKeyCustody contextKey = iota
)

// custody is the release capability of one vault. It is only created by
// the claim handler once every precondition holds.
type custody struct {
	cond weave.Condition
}

// withCustody installs the release capability of the vault of p.
func withCustody(ctx weave.Context, p *Pool) weave.Context {
	return context.WithValue(ctx, contextKeyCustody, custody{cond: CustodyCondition(p.Base)})
}

// custodyAuth authenticates the custody authority installed by withCustody
// and nothing else.
type custodyAuth struct{}

var _ x.Authenticator = custodyAuth{}

func (custodyAuth) GetConditions(ctx weave.Context) []weave.Condition {
	c, ok := ctx.Value(contextKeyCustody).(custody)
	if !ok {
		return nil
	}
	return []weave.Condition{c.cond}
}

func (a custodyAuth) HasAddress(ctx weave.Context, addr weave.Address) bool {
	return x.ConditionsHaveAddress(a.GetConditions(ctx), addr)
}
