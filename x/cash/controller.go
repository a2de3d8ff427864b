package cash

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/x"
)

// Controller is the functionality needed by other extensions to move or
// inspect holdings.
type Controller interface {
	// Balance returns the amount of asset owned by holder.
	Balance(db weave.ReadOnlyKVStore, holder, asset weave.Address) (uint64, error)

	// Transfer moves amount of asset from src to dst. The src holder must
	// be authorized by auth in the given context.
	Transfer(ctx weave.Context, db weave.KVStore, auth x.Authenticator, src, dst, asset weave.Address, amount uint64) error

	// Issue mints amount of asset into the dst holding.
	Issue(db weave.KVStore, dst, asset weave.Address, amount uint64) error
}

// BaseController is a simple implementation of controller
// wallet must return something that supports AsHolding
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a controller using the given bucket
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

func (c BaseController) Balance(db weave.ReadOnlyKVStore, holder, asset weave.Address) (uint64, error) {
	return c.bucket.Balance(db, holder, asset)
}

// Transfer fails without any write if the source is not authorized, does
// not hold enough funds, or the destination balance would overflow.
func (c BaseController) Transfer(ctx weave.Context, db weave.KVStore, auth x.Authenticator, src, dst, asset weave.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero transfer")
	}
	if err := x.ValidAddress("src", src); err != nil {
		return err
	}
	if err := x.ValidAddress("dst", dst); err != nil {
		return err
	}
	if err := x.ValidAddress("asset", asset); err != nil {
		return err
	}
	if !auth.HasAddress(ctx, src) {
		return errors.Wrapf(errors.ErrUnauthorized, "source %s", src)
	}

	have, err := c.bucket.Balance(db, src, asset)
	if err != nil {
		return errors.Wrap(err, "source balance")
	}
	if have == 0 {
		return errors.Wrapf(ErrEmptyHolding, "source %s", src)
	}
	if have < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "have %d, need %d", have, amount)
	}
	if src.Equals(dst) {
		return nil
	}

	got, err := c.bucket.Balance(db, dst, asset)
	if err != nil {
		return errors.Wrap(err, "destination balance")
	}
	if got+amount < got {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}

	if err := c.bucket.SetBalance(db, src, asset, have-amount); err != nil {
		return errors.Wrap(err, "debit")
	}
	if err := c.bucket.SetBalance(db, dst, asset, got+amount); err != nil {
		return errors.Wrap(err, "credit")
	}
	return nil
}

// Issue attempts to add the given amount of asset to the destination
// holding. Fails if it overflows the holding.
func (c BaseController) Issue(db weave.KVStore, dst, asset weave.Address, amount uint64) error {
	if err := x.ValidAddress("dst", dst); err != nil {
		return err
	}
	if err := x.ValidAddress("asset", asset); err != nil {
		return err
	}
	got, err := c.bucket.Balance(db, dst, asset)
	if err != nil {
		return err
	}
	if got+amount < got {
		return errors.Wrap(errors.ErrOverflow, "issue")
	}
	return c.bucket.SetBalance(db, dst, asset, got+amount)
}
