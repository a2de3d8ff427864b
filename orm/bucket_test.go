package orm

import (
	"testing"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/store"
	"github.com/iov-one/vestengine/weavetest/assert"
)

// firstRef indexes a MultiRef by its first reference.
func firstRef(obj Object) ([]byte, error) {
	refs, ok := obj.Value().(*MultiRef)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	return refs.Refs[0], nil
}

// allRefs indexes a MultiRef by each of its references.
func allRefs(obj Object) ([][]byte, error) {
	refs, ok := obj.Value().(*MultiRef)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	return refs.Refs, nil
}

func newRefObj(t *testing.T, key string, refs ...string) Object {
	t.Helper()
	raw := make([][]byte, len(refs))
	for i, r := range refs {
		raw[i] = []byte(r)
	}
	m, err := NewMultiRef(raw...)
	assert.Nil(t, err)
	return NewSimpleObj([]byte(key), m)
}

func TestBucketSaveGetDelete(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("refs", NewSimpleObj(nil, new(MultiRef)))

	obj := newRefObj(t, "one", "b", "a")
	assert.Nil(t, b.Save(db, obj))

	got, err := b.Get(db, []byte("one"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("one"), got.Key())
	assert.Equal(t, &MultiRef{Refs: [][]byte{[]byte("a"), []byte("b")}}, got.Value())

	missing, err := b.Get(db, []byte("two"))
	assert.Nil(t, err)
	if missing != nil {
		t.Fatalf("unexpected object: %v", missing)
	}

	assert.Nil(t, b.Delete(db, []byte("one")))
	got, err = b.Get(db, []byte("one"))
	assert.Nil(t, err)
	if got != nil {
		t.Fatal("object not deleted")
	}
}

func TestBucketRejectsInvalid(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("refs", NewSimpleObj(nil, new(MultiRef)))

	err := b.Save(db, NewSimpleObj([]byte("k"), new(MultiRef)))
	assert.IsErr(t, errors.ErrEmpty, err)

	err = b.Save(db, NewSimpleObj(nil, &MultiRef{Refs: [][]byte{[]byte("x")}}))
	assert.IsErr(t, errors.ErrEmpty, err)
}

func TestBucketIllegalName(t *testing.T) {
	assert.Panics(t, func() { NewBucket("Bad-Name", NewSimpleObj(nil, new(MultiRef))) })
	assert.Panics(t, func() {
		NewBucket("refs", NewSimpleObj(nil, new(MultiRef))).
			WithIndex("first", firstRef).
			WithIndex("first", firstRef)
	})
}

func TestIndexFollowsUpdates(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("refs", NewSimpleObj(nil, new(MultiRef))).
		WithIndex("first", firstRef)

	assert.Nil(t, b.Save(db, newRefObj(t, "one", "a")))
	assert.Nil(t, b.Save(db, newRefObj(t, "two", "a")))
	assert.Nil(t, b.Save(db, newRefObj(t, "one", "c")))

	cases := map[string][]string{
		"a": {"two"},
		"c": {"one"},
	}
	for value, want := range cases {
		objs, err := b.GetIndexed(db, "first", []byte(value))
		assert.Nil(t, err)
		var got []string
		for _, o := range objs {
			got = append(got, string(o.Key()))
		}
		assert.Equal(t, want, got)
	}

	_, err := b.GetIndexed(db, "unknown", []byte("a"))
	assert.IsErr(t, ErrInvalidIndex, err)
}

func TestMultiKeyIndex(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("refs", NewSimpleObj(nil, new(MultiRef))).
		WithMultiKeyIndex("all", allRefs)

	assert.Nil(t, b.Save(db, newRefObj(t, "one", "a", "b")))
	assert.Nil(t, b.Save(db, newRefObj(t, "two", "b", "c")))

	cases := map[string][]string{
		"a": {"one"},
		"b": {"one", "two"},
		"c": {"two"},
		"d": nil,
	}
	for value, want := range cases {
		objs, err := b.GetIndexed(db, "all", []byte(value))
		assert.Nil(t, err)
		var got []string
		for _, o := range objs {
			got = append(got, string(o.Key()))
		}
		assert.Equal(t, want, got)
	}

	assert.Nil(t, b.Delete(db, []byte("one")))
	objs, err := b.GetIndexed(db, "all", []byte("b"))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(objs))
	assert.Equal(t, []byte("two"), objs[0].Key())
}

func TestBucketQuery(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("refs", NewSimpleObj(nil, new(MultiRef))).
		WithIndex("first", firstRef)
	assert.Nil(t, b.Save(db, newRefObj(t, "k1", "x")))
	assert.Nil(t, b.Save(db, newRefObj(t, "k2", "y")))
	assert.Nil(t, b.Save(db, newRefObj(t, "z1", "x")))

	qr := weave.NewQueryRouter()
	b.Register("", qr)

	res, err := qr.Handler("/refs").Query(db, weave.KeyQueryMod, []byte("k1"))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, b.DBKey([]byte("k1")), res[0].Key)

	res, err = qr.Handler("/refs").Query(db, weave.PrefixQueryMod, []byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(res))

	res, err = qr.Handler("/refs/first").Query(db, weave.KeyQueryMod, []byte("x"))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(res))
	assert.Equal(t, b.DBKey([]byte("k1")), res[0].Key)
	assert.Equal(t, b.DBKey([]byte("z1")), res[1].Key)

	_, err = qr.Handler("/refs").Query(db, "range", nil)
	assert.IsErr(t, errors.ErrInput, err)
}

func TestPrefixRange(t *testing.T) {
	cases := map[string]struct {
		prefix, start, end []byte
	}{
		"empty":    {nil, nil, nil},
		"simple":   {[]byte("ab"), []byte("ab"), []byte("ac")},
		"overflow": {[]byte{1, 255}, []byte{1, 255}, []byte{2, 0}},
		"all ff":   {[]byte{255}, []byte{255}, nil},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			start, end := prefixRange(tc.prefix)
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
		})
	}
}
