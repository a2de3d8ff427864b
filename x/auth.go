package x

import (
	weave "github.com/iov-one/vestengine"
)

// Authenticator tells a handler which conditions signed the current call.
// Handlers receive it in their constructor so the pool and batch modules
// never depend on a concrete signature scheme.
type Authenticator interface {
	// GetConditions returns every condition proven for this context.
	GetConditions(weave.Context) []weave.Condition
	// HasAddress reports whether any proven condition owns addr.
	HasAddress(weave.Context, weave.Address) bool
}

// MultiAuth merges the view of several authenticators.
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth returns an authenticator that accepts anything accepted by
// one of impls.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls: impls}
}

// GetConditions returns the union of all conditions in the order the
// authenticators were given. A repeated condition is listed once.
func (m MultiAuth) GetConditions(ctx weave.Context) []weave.Condition {
	var res []weave.Condition
	for _, impl := range m.impls {
		for _, c := range impl.GetConditions(ctx) {
			if !containsCondition(res, c) {
				res = append(res, c)
			}
		}
	}
	return res
}

func (m MultiAuth) HasAddress(ctx weave.Context, addr weave.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first proven condition or nil.
func MainSigner(ctx weave.Context, auth Authenticator) weave.Condition {
	if conds := auth.GetConditions(ctx); len(conds) > 0 {
		return conds[0]
	}
	return nil
}

// ConditionsHaveAddress reports whether addr belongs to one of conds. It
// lets a single source authenticator implement HasAddress on top of its
// GetConditions.
func ConditionsHaveAddress(conds []weave.Condition, addr weave.Address) bool {
	for _, c := range conds {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}

// FirstUnsigned returns the first address of required that was not proven
// in ctx. The second value is false when every address is covered.
func FirstUnsigned(ctx weave.Context, auth Authenticator, required []weave.Address) (weave.Address, bool) {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return r, true
		}
	}
	return nil, false
}

func containsCondition(conds []weave.Condition, c weave.Condition) bool {
	for _, have := range conds {
		if have.Equals(c) {
			return true
		}
	}
	return false
}
