package app

import (
	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
)

// CommitStore keeps the committed state and the two caches writing on
// top of it. Deliver writes reach the committed state on Commit. Check
// writes are always thrown away.
type CommitStore struct {
	committed weave.CommitKVStore
	deliver   weave.KVCacheWrap
	check     weave.KVCacheWrap
}

// NewCommitStore opens the latest version of store. A store that cannot
// be loaded is fatal and panics.
func NewCommitStore(store weave.CommitKVStore) *CommitStore {
	if err := store.LoadLatestVersion(); err != nil {
		panic(err)
	}
	cs := &CommitStore{committed: store}
	cs.resetCaches()
	return cs
}

func (cs *CommitStore) resetCaches() {
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
}

// CommitInfo returns the version and hash of the last commit.
func (cs *CommitStore) CommitInfo() (weave.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit persists the deliver cache as a new version and starts fresh
// caches on top of it.
func (cs *CommitStore) Commit() (weave.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return weave.CommitID{}, errors.Wrap(err, "flush deliver cache")
	}
	cs.check.Discard()

	id, err := cs.committed.Commit()
	if err != nil {
		return id, err
	}
	cs.resetCaches()
	return id, nil
}

// CheckStore is the store CheckTx runs against.
func (cs *CommitStore) CheckStore() weave.CacheableKVStore {
	return cs.check
}

// DeliverStore is the store DeliverTx runs against.
func (cs *CommitStore) DeliverStore() weave.CacheableKVStore {
	return cs.deliver
}

// chainIDKey lives in the "_wv:" namespace reserved for application data.
var chainIDKey = []byte("_wv:chainID")

// mustLoadChainID returns the stored chain ID, or an empty string before
// genesis. A read failure panics.
func mustLoadChainID(kv weave.ReadOnlyKVStore) string {
	v, err := kv.Get(chainIDKey)
	if err != nil {
		panic(err)
	}
	return string(v)
}

// saveChainID stores the chain ID once. A second call fails with
// ErrUnauthorized.
func saveChainID(kv weave.KVStore, chainID string) error {
	if !weave.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	switch exists, err := kv.Has(chainIDKey); {
	case err != nil:
		return errors.Wrap(err, "load chain id")
	case exists:
		return errors.Wrap(errors.ErrUnauthorized, "chain id is set at genesis only")
	}
	return errors.Wrap(kv.Set(chainIDKey, []byte(chainID)), "save chain id")
}
