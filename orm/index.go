package orm

import (
	"bytes"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
)

// indexPrefix starts every secondary index key, keeping indexes apart
// from bucket data.
const indexPrefix = "_i."

// Indexer returns the index value of an object. A nil value leaves the
// object out of the index.
type Indexer func(Object) ([]byte, error)

// MultiKeyIndexer returns every index value of an object.
type MultiKeyIndexer func(Object) ([][]byte, error)

// Index maps index values to the primary keys of the objects holding
// them. All keys of a value are kept in one MultiRef, which suits small
// fan outs such as the pools of one sender or one approver.
type Index struct {
	name    string
	prefix  []byte
	indexer MultiKeyIndexer
	refKey  func([]byte) []byte
}

var _ weave.QueryHandler = Index{}

// NewMultiKeyIndex returns an index called name. refKey turns a stored
// primary key into the full database key of the object.
func NewMultiKeyIndex(name string, indexer MultiKeyIndexer, refKey func([]byte) []byte) Index {
	return Index{
		name:    name,
		prefix:  []byte(indexPrefix + name + ":"),
		indexer: indexer,
		refKey:  refKey,
	}
}

func asMultiKeyIndexer(indexer Indexer) MultiKeyIndexer {
	return func(obj Object) ([][]byte, error) {
		key, err := indexer(obj)
		if err != nil || key == nil {
			return nil, err
		}
		return [][]byte{key}, nil
	}
}

func (i Index) dbKey(value []byte) []byte {
	return joinKey(i.prefix, value)
}

// Update moves the references of an object from the values of prev to
// the values of save. A nil prev is an insert and a nil save a delete.
// Both must share their primary key.
func (i Index) Update(db weave.KVStore, prev, save Object) error {
	if prev == nil && save == nil {
		return errors.Wrap(errors.ErrHuman, "update requires at least one non-nil object")
	}
	if prev != nil && save != nil && !bytes.Equal(prev.Key(), save.Key()) {
		return errors.Wrap(errors.ErrImmutable, "cannot modify the primary key of an object")
	}
	before, err := i.values(prev)
	if err != nil {
		return err
	}
	after, err := i.values(save)
	if err != nil {
		return err
	}
	stale, fresh := subtract(before, after), subtract(after, before)

	for _, v := range stale {
		if err := i.remove(db, v, prev.Key()); err != nil {
			return err
		}
	}
	for _, v := range fresh {
		if err := i.insert(db, v, save.Key()); err != nil {
			return err
		}
	}
	return nil
}

// values returns the non empty index values of obj.
func (i Index) values(obj Object) ([][]byte, error) {
	if obj == nil {
		return nil, nil
	}
	all, err := i.indexer(obj)
	if err != nil {
		return nil, err
	}
	res := all[:0:0]
	for _, v := range all {
		if len(v) != 0 {
			res = append(res, v)
		}
	}
	return res, nil
}

// GetAt returns the primary keys stored under value.
func (i Index) GetAt(db weave.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	raw, err := db.Get(i.dbKey(value))
	if err != nil || raw == nil {
		return nil, err
	}
	return i.decodeRefs(raw)
}

// GetPrefix returns the primary keys of every value starting with prefix.
func (i Index) GetPrefix(db weave.ReadOnlyKVStore, prefix []byte) ([][]byte, error) {
	entries, err := queryPrefix(db, i.dbKey(prefix))
	if err != nil {
		return nil, err
	}
	var refs [][]byte
	for _, e := range entries {
		r, err := i.decodeRefs(e.Value)
		if err != nil {
			return nil, err
		}
		refs = append(refs, r...)
	}
	return refs, nil
}

func (i Index) decodeRefs(raw []byte) ([][]byte, error) {
	var m MultiRef
	if err := m.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "unmarshal index refs")
	}
	return m.Refs, nil
}

// Query returns the objects referenced by an index value, or by all
// values starting with data for a prefix query.
func (i Index) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	var (
		refs [][]byte
		err  error
	)
	switch mod {
	case weave.KeyQueryMod:
		refs, err = i.GetAt(db, data)
	case weave.PrefixQueryMod:
		refs, err = i.GetPrefix(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod %q", mod)
	}
	if err != nil || len(refs) == 0 {
		return nil, err
	}
	res := make([]weave.Model, len(refs))
	for n, ref := range refs {
		key := i.refKey(ref)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		res[n] = weave.Pair(key, value)
	}
	return res, nil
}

func (i Index) insert(db weave.KVStore, value, pk []byte) error {
	key := i.dbKey(value)
	cur, err := db.Get(key)
	if err != nil {
		return err
	}
	var m MultiRef
	if cur != nil {
		if err := m.Unmarshal(cur); err != nil {
			return err
		}
	}
	if err := m.Add(pk); err != nil {
		return err
	}
	return saveRefs(db, key, &m)
}

func (i Index) remove(db weave.KVStore, value, pk []byte) error {
	key := i.dbKey(value)
	cur, err := db.Get(key)
	switch {
	case err != nil:
		return err
	case cur == nil:
		return errors.Wrap(errors.ErrNotFound, "cannot remove index from nothing")
	}
	var m MultiRef
	if err := m.Unmarshal(cur); err != nil {
		return err
	}
	if err := m.Remove(pk); err != nil {
		return err
	}
	if m.Size() == 0 {
		return db.Delete(key)
	}
	return saveRefs(db, key, &m)
}

func saveRefs(db weave.KVStore, key []byte, m *MultiRef) error {
	raw, err := m.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, raw)
}

// subtract returns the elements of a missing from b.
func subtract(a, b [][]byte) [][]byte {
	var res [][]byte
	for _, x := range a {
		if !containsKey(b, x) {
			res = append(res, x)
		}
	}
	return res
}

func containsKey(keys [][]byte, k []byte) bool {
	for _, have := range keys {
		if bytes.Equal(have, k) {
			return true
		}
	}
	return false
}
