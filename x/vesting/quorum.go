package vesting

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/x"
)

// Approvals counts the distinct approvers of a pool. The sender always
// approves, every other registered signer approves if verify accepts it.
func Approvals(p *Pool, verify func(weave.Address) bool) int {
	n := 1
	for _, s := range p.Signers {
		if s.Equals(p.Sender) {
			continue
		}
		if verify(s) {
			n++
		}
	}
	return n
}

// CheckQuorum fails with ErrInsufficientSigners unless at least MinSign
// registered signers authenticated the current call.
func CheckQuorum(ctx weave.Context, auth x.Authenticator, p *Pool) error {
	verify := func(a weave.Address) bool { return auth.HasAddress(ctx, a) }
	if n := Approvals(p, verify); n < int(p.MinSign) {
		return errors.Wrapf(ErrInsufficientSigners, "%d of %d approvals", n, p.MinSign)
	}
	return nil
}
