package utils

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
)

// Savepoint gives the rest of the stack a cache wrap of the store and
// writes it back only if the call succeeds. A zero Savepoint does
// nothing: enable it per call type with OnCheck and OnDeliver.
type Savepoint struct {
	check   bool
	deliver bool
}

var _ weave.Decorator = Savepoint{}

func NewSavepoint() Savepoint {
	return Savepoint{}
}

func (s Savepoint) OnCheck() Savepoint {
	s.check = true
	return s
}

func (s Savepoint) OnDeliver() Savepoint {
	s.deliver = true
	return s
}

func (s Savepoint) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (res *weave.CheckResult, err error) {
	if !s.check {
		return next.Check(ctx, db, tx)
	}
	err = atomically(db, func(cache weave.KVStore) error {
		res, err = next.Check(ctx, cache, tx)
		return err
	})
	return res, err
}

func (s Savepoint) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (res *weave.DeliverResult, err error) {
	if !s.deliver {
		return next.Deliver(ctx, db, tx)
	}
	err = atomically(db, func(cache weave.KVStore) error {
		res, err = next.Deliver(ctx, cache, tx)
		return err
	})
	return res, err
}

// atomically runs fn on a cache wrap of db and keeps its writes only on
// success. A store that cannot be wrapped is used directly.
func atomically(db weave.KVStore, fn func(weave.KVStore) error) error {
	wrappable, ok := db.(weave.CacheableKVStore)
	if !ok {
		return fn(db)
	}
	cache := wrappable.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	return errors.Wrap(cache.Write(), "write savepoint")
}
