/*
Package orm stores typed objects in prefixed sections of the key value
store, called buckets. A bucket holds a single model type under its
primary keys and may keep secondary indexes that are updated on every
save and delete. Buckets and their indexes can be exposed on a query
router.
*/
package orm

import (
	"fmt"
	"regexp"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Bucket is the prefixed key space of one model type. Module packages wrap
// it in a type safe bucket of their own.
type Bucket struct {
	name    string
	prefix  []byte
	proto   Cloneable
	indexes map[string]Index
}

var _ weave.QueryHandler = Bucket{}

// NewBucket returns a bucket storing clones of proto. An invalid name is
// a programming error and panics.
func NewBucket(name string, proto Cloneable) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: []byte(name + ":"),
		proto:  proto,
	}
}

// Register exposes the bucket under "/name" and every index under
// "/name/index". An empty name falls back to the bucket name.
func (b Bucket) Register(name string, r weave.QueryRouter) {
	if name == "" {
		name = b.name
	}
	root := "/" + name
	r.Register(root, b)
	for idxName, idx := range b.indexes {
		r.Register(root+"/"+idxName, idx)
	}
}

// Query answers a key lookup, which returns nothing on a miss, or a
// prefix scan of the bucket.
func (b Bucket) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	switch mod {
	case weave.KeyQueryMod:
		key := b.DBKey(data)
		value, err := db.Get(key)
		if err != nil || value == nil {
			return nil, err
		}
		return []weave.Model{weave.Pair(key, value)}, nil
	case weave.PrefixQueryMod:
		return queryPrefix(db, b.DBKey(data))
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod %q", mod)
	}
}

// DBKey returns a new slice holding the bucket prefix followed by key.
func (b Bucket) DBKey(key []byte) []byte {
	return joinKey(b.prefix, key)
}

// Get loads the object stored under key. A miss returns nil and no error.
func (b Bucket) Get(db weave.ReadOnlyKVStore, key []byte) (Object, error) {
	raw, err := db.Get(b.DBKey(key))
	if err != nil || raw == nil {
		return nil, err
	}
	obj := b.proto.Clone()
	if err := obj.Value().Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "%s: %s", b.name, err)
	}
	obj.SetKey(key)
	return obj, nil
}

// Save validates obj, updates the indexes and writes it.
func (b Bucket) Save(db weave.KVStore, obj Object) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	raw, err := obj.Value().Marshal()
	if err != nil {
		return err
	}
	if err := b.reindex(db, obj.Key(), obj); err != nil {
		return err
	}
	return db.Set(b.DBKey(obj.Key()), raw)
}

// Delete removes the object under key together with its index entries.
func (b Bucket) Delete(db weave.KVStore, key []byte) error {
	if err := b.reindex(db, key, nil); err != nil {
		return err
	}
	return db.Delete(b.DBKey(key))
}

// reindex moves the index entries of key from the stored object to obj.
func (b Bucket) reindex(db weave.KVStore, key []byte, obj Object) error {
	if len(b.indexes) == 0 {
		return nil
	}
	prev, err := b.Get(db, key)
	if err != nil {
		return err
	}
	if prev == nil && obj == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s: %X", b.name, key)
	}
	for _, idx := range b.indexes {
		if err := idx.Update(db, prev, obj); err != nil {
			return err
		}
	}
	return nil
}

// WithIndex returns a copy of the bucket with an index on the single value
// computed by indexer.
func (b Bucket) WithIndex(name string, indexer Indexer) Bucket {
	return b.WithMultiKeyIndex(name, asMultiKeyIndexer(indexer))
}

// WithMultiKeyIndex returns a copy of the bucket with an index on every
// value computed by indexer. Reusing a name panics.
func (b Bucket) WithMultiKeyIndex(name string, indexer MultiKeyIndexer) Bucket {
	if _, ok := b.indexes[name]; ok {
		panic(fmt.Sprintf("Index %s registered twice", name))
	}
	indexes := make(map[string]Index, len(b.indexes)+1)
	for n, idx := range b.indexes {
		indexes[n] = idx
	}
	indexes[name] = NewMultiKeyIndex(b.name+"_"+name, indexer, b.DBKey)
	b.indexes = indexes
	return b
}

// GetIndexed returns the objects stored under value of the named index.
func (b Bucket) GetIndexed(db weave.ReadOnlyKVStore, name string, value []byte) ([]Object, error) {
	idx, ok := b.indexes[name]
	if !ok {
		return nil, errors.Wrap(ErrInvalidIndex, name)
	}
	refs, err := idx.GetAt(db, value)
	if err != nil || len(refs) == 0 {
		return nil, err
	}
	objs := make([]Object, len(refs))
	for n, key := range refs {
		if objs[n], err = b.Get(db, key); err != nil {
			return nil, err
		}
	}
	return objs, nil
}
