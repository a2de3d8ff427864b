package sigs

import (
	"context"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/x"
)

type contextKey int

const contextKeySigners contextKey = 0

// withSigners is unexported so that only the Decorator, after verifying
// the signatures, can grant conditions.
func withSigners(ctx weave.Context, signers []weave.Condition) weave.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate exposes the signers verified by the Decorator.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

func (Authenticate) GetConditions(ctx weave.Context) []weave.Condition {
	signers, _ := ctx.Value(contextKeySigners).([]weave.Condition)
	return signers
}

func (a Authenticate) HasAddress(ctx weave.Context, addr weave.Address) bool {
	return x.ConditionsHaveAddress(a.GetConditions(ctx), addr)
}
