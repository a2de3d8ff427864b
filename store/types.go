package store

import weave "github.com/iov-one/vestengine"

// Aliases of the weave storage interfaces, so that this package reads
// without qualifiers.
type (
	ReadOnlyKVStore  = weave.ReadOnlyKVStore
	SetDeleter       = weave.SetDeleter
	KVStore          = weave.KVStore
	Batch            = weave.Batch
	Iterator         = weave.Iterator
	CacheableKVStore = weave.CacheableKVStore
	KVCacheWrap      = weave.KVCacheWrap
	CommitKVStore    = weave.CommitKVStore
	CommitID         = weave.CommitID
	Model            = weave.Model
)

// Pair returns a model holding key and value.
func Pair(key, value []byte) Model {
	return weave.Pair(key, value)
}
