package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/vestengine/errors"
)

// collectBtree copies all items of the [start, end) domain. The result is
// ordered as requested. Copying detaches the iterator from the btree, so
// writes during iteration cannot corrupt it.
func collectBtree(bt *btree.BTree, start, end []byte, ascending bool) []cacheItem {
	var items []cacheItem
	collect := func(i btree.Item) bool {
		items = append(items, i.(cacheItem))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(cacheItem{key: end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(cacheItem{key: start}, collect)
	default:
		bt.AscendRange(cacheItem{key: start}, cacheItem{key: end}, collect)
	}
	if !ascending {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
	return items
}

// mergeIterator combines the cached items with the parent iterator. Cached
// items shadow parent entries with the same key, and deleted items hide
// them.
type mergeIterator struct {
	items     []cacheItem
	parent    Iterator
	ascending bool

	// one element look ahead of the parent iterator
	pkey, pvalue []byte
	pdone        bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(items []cacheItem, parent Iterator, ascending bool) *mergeIterator {
	return &mergeIterator{
		items:     items,
		parent:    parent,
		ascending: ascending,
	}
}

// fill loads the next parent element if none is buffered.
func (m *mergeIterator) fill() error {
	if m.pdone || m.pkey != nil {
		return nil
	}
	k, v, err := m.parent.Next()
	if errors.ErrIteratorDone.Is(err) {
		m.pdone = true
		return nil
	}
	if err != nil {
		return err
	}
	m.pkey, m.pvalue = k, v
	return nil
}

// before returns true if key a comes before key b in iteration order.
func (m *mergeIterator) before(a, b []byte) bool {
	cmp := bytes.Compare(a, b)
	if m.ascending {
		return cmp < 0
	}
	return cmp > 0
}

// Next returns the next visible key value pair.
func (m *mergeIterator) Next() (key, value []byte, err error) {
	for {
		if err := m.fill(); err != nil {
			return nil, nil, err
		}
		if len(m.items) == 0 {
			if m.pdone {
				return nil, nil, errors.Wrap(errors.ErrIteratorDone, "merge iterator")
			}
			k, v := m.pkey, m.pvalue
			m.pkey, m.pvalue = nil, nil
			return k, v, nil
		}

		item := m.items[0]
		if !m.pdone && m.before(m.pkey, item.key) {
			k, v := m.pkey, m.pvalue
			m.pkey, m.pvalue = nil, nil
			return k, v, nil
		}

		// The cached item wins. Drop the shadowed parent entry.
		m.items = m.items[1:]
		if !m.pdone && bytes.Equal(m.pkey, item.key) {
			m.pkey, m.pvalue = nil, nil
		}
		if !item.deleted {
			return item.key, item.value, nil
		}
	}
}

// Release releases the Iterator.
func (m *mergeIterator) Release() {
	m.parent.Release()
	m.items = nil
}
