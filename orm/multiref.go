package orm

import (
	"bytes"
	"sort"

	"github.com/iov-one/vestengine/codec"
	"github.com/iov-one/vestengine/errors"
)

// MultiRef is the value of an index entry: the primary keys of
// every object sharing one index value, kept sorted and free of
// duplicates.
type MultiRef struct {
	Refs [][]byte
}

var _ Model = (*MultiRef)(nil)

// NewMultiRef builds a set out of refs. A repeated ref is an error.
func NewMultiRef(refs ...[]byte) (*MultiRef, error) {
	var m MultiRef
	for _, r := range refs {
		if err := m.Add(r); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// search returns the position of ref, or where it would be inserted.
func (m *MultiRef) search(ref []byte) (int, bool) {
	i := sort.Search(len(m.Refs), func(i int) bool {
		return bytes.Compare(m.Refs[i], ref) >= 0
	})
	return i, i < len(m.Refs) && bytes.Equal(m.Refs[i], ref)
}

// Add inserts ref. It fails with ErrDuplicate if ref is present.
func (m *MultiRef) Add(ref []byte) error {
	i, ok := m.search(ref)
	if ok {
		return errors.Wrapf(errors.ErrDuplicate, "ref %X", ref)
	}
	m.Refs = append(m.Refs, nil)
	copy(m.Refs[i+1:], m.Refs[i:])
	m.Refs[i] = ref
	return nil
}

// Remove deletes ref. It fails with ErrNotFound if ref is absent.
func (m *MultiRef) Remove(ref []byte) error {
	i, ok := m.search(ref)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "ref %X", ref)
	}
	m.Refs = append(m.Refs[:i], m.Refs[i+1:]...)
	return nil
}

func (m *MultiRef) Size() int { return len(m.Refs) }

// Validate rejects an empty set, which must be deleted instead.
func (m *MultiRef) Validate() error {
	if len(m.Refs) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no references")
	}
	return nil
}

func (m *MultiRef) Marshal() ([]byte, error) {
	var e codec.Encoder
	e.RepeatedBytes(1, m.Refs)
	return e.Result(), nil
}

func (m *MultiRef) Unmarshal(raw []byte) error {
	m.Refs = nil
	return codec.Walk(raw, func(num codec.Number, f codec.Field) error {
		if num != 1 {
			return nil
		}
		ref, err := f.Bytes()
		if err == nil {
			m.Refs = append(m.Refs, ref)
		}
		return err
	})
}
