package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/vestengine/errors"
)

// btreeDegree is the degree of every cache tree.
const btreeDegree = 2

// BTreeCacheable gives any KVStore a btree backed cache wrap.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns an in memory store with nothing persisted. Handlers
// and their tests run against it.
func MemStore() CacheableKVStore {
	var empty EmptyKVStore
	return NewBTreeCacheWrap(empty, empty.NewBatch(), nil)
}

// BTreeCacheWrap buffers writes in a btree until Write flushes them to
// the batch of the wrapped store. Reads see the buffered writes first.
type BTreeCacheWrap struct {
	tree  *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap wraps back. Every write is recorded in batch, which
// is what Write commits. Nested wraps share free, pass nil to allocate a
// new list.
func NewBTreeCacheWrap(back ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(btree.DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		tree:  btree.NewWithFreeList(btreeDegree, free),
		free:  free,
		back:  back,
		batch: batch,
	}
}

// CacheWrap stacks another cache on top of this one. Writing it only
// updates this cache.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write flushes all buffered writes and empties the cache.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops all buffered writes.
func (b BTreeCacheWrap) Discard() {
	b.tree.Clear(true)
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrDatabase, "nil key")
	}
	b.tree.ReplaceOrInsert(cacheItem{key: key, value: value})
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrDatabase, "nil key")
	}
	b.tree.ReplaceOrInsert(cacheItem{key: key, deleted: true})
	return b.batch.Delete(key)
}

// cached returns the buffered item of key, if any.
func (b BTreeCacheWrap) cached(key []byte) (cacheItem, bool) {
	found := b.tree.Get(cacheItem{key: key})
	if found == nil {
		return cacheItem{}, false
	}
	return found.(cacheItem), true
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if it, ok := b.cached(key); ok {
		if it.deleted {
			return nil, nil
		}
		return it.value, nil
	}
	return b.back.Get(key)
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	if it, ok := b.cached(key); ok {
		return !it.deleted, nil
	}
	return b.back.Has(key)
}

// Iterator walks [start, end) in ascending order, merging the cache with
// the wrapped store.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(collectBtree(b.tree, start, end, true), parent, true), nil
}

// ReverseIterator walks [start, end) in descending order, merging the
// cache with the wrapped store.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(collectBtree(b.tree, start, end, false), parent, false), nil
}

// cacheItem is a buffered write. A deleted item hides the key of the
// wrapped store.
type cacheItem struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = cacheItem{}

func (c cacheItem) Less(than btree.Item) bool {
	return bytes.Compare(c.key, than.(cacheItem).key) < 0
}
