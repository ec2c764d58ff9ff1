package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/volreg/volreg/errors"
)

///////////////////////////////////////////////////////
// From Items to Iterator

// ascendBtree collects all cached items of the range in ascending order.
func ascendBtree(bt *btree.BTree, start, end []byte) []keyer {
	var res []keyer
	collect := func(item btree.Item) bool {
		res = append(res, item.(keyer))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	return res
}

func descendBtree(bt *btree.BTree, start, end []byte) []keyer {
	var res []keyer
	collect := func(item btree.Item) bool {
		res = append(res, item.(keyer))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Descend(collect)
	case start == nil:
		bt.DescendLessOrEqual(bkeyLess{end}, collect)
	case end == nil:
		bt.DescendGreaterThan(bkeyLess{start}, collect)
	default:
		bt.DescendRange(bkeyLess{end}, bkeyLess{start}, collect)
	}
	return res
}

// mergeIterator combines our cached items with those of the parent,
// taking into consideration overwrites and deletes.
type mergeIterator struct {
	cached    []keyer
	parent    Iterator
	ascending bool

	// one element lookahead of the parent iterator
	peekKey, peekValue []byte
	peeked             bool
	parentDone         bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(cached []keyer, parent Iterator, ascending bool) *mergeIterator {
	return &mergeIterator{
		cached:    cached,
		parent:    parent,
		ascending: ascending,
	}
}

// Next returns the next key in the iteration order, skipping all keys
// deleted in the cache.
func (m *mergeIterator) Next() (key, value []byte, err error) {
	for {
		if err := m.peek(); err != nil {
			return nil, nil, err
		}

		switch {
		case len(m.cached) == 0 && m.parentDone:
			return nil, nil, errors.Wrap(errors.ErrIteratorDone, "merge iterator")
		case len(m.cached) == 0:
			return m.takeParent()
		case m.parentDone:
			item := m.takeCached()
			if k, v, ok := itemValue(item); ok {
				return k, v, nil
			}
		default:
			cmp := bytes.Compare(m.cached[0].Key(), m.peekKey)
			if !m.ascending {
				cmp = -cmp
			}
			if cmp > 0 {
				return m.takeParent()
			}
			// cached entry wins on equal keys, drop the shadowed parent value
			if cmp == 0 {
				m.peeked = false
			}
			item := m.takeCached()
			if k, v, ok := itemValue(item); ok {
				return k, v, nil
			}
		}
	}
}

func (m *mergeIterator) peek() error {
	if m.peeked || m.parentDone {
		return nil
	}
	k, v, err := m.parent.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		m.parentDone = true
		return nil
	case err != nil:
		return err
	}
	m.peekKey, m.peekValue, m.peeked = k, v, true
	return nil
}

func (m *mergeIterator) takeParent() ([]byte, []byte, error) {
	m.peeked = false
	return m.peekKey, m.peekValue, nil
}

func (m *mergeIterator) takeCached() keyer {
	item := m.cached[0]
	m.cached = m.cached[1:]
	return item
}

// itemValue returns the content of a set item, or false for deletes.
func itemValue(item keyer) ([]byte, []byte, bool) {
	if set, ok := item.(setItem); ok {
		return set.key, set.value, true
	}
	return nil, nil, false
}

// Release releases the Iterator.
func (m *mergeIterator) Release() {
	m.parent.Release()
	m.cached = nil
}
