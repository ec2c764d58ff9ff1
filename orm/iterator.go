package orm

import (
	"github.com/volreg/volreg"
)

// ModelIterator over a bucket, in ascending key order.
// CONTRACT: No writes may happen within a domain while an iterator exists over it.
type ModelIterator interface {
	// LoadNext moves the iterator to the next sequential key in the database and
	// loads the current value at the given key into the passed destination.
	// It returns the primary key of the loaded entity, or ErrIteratorDone.
	LoadNext(dest Model) (key []byte, err error)

	// Release releases the Iterator.
	Release()
}

type modelIterator struct {
	// this is the raw KVStoreIterator
	iterator volreg.Iterator
	// this is the bucket prefix to strip from each key
	prefix []byte
}

var _ ModelIterator = (*modelIterator)(nil)

func (i *modelIterator) LoadNext(dest Model) ([]byte, error) {
	key, value, err := i.iterator.Next()
	if err != nil {
		return nil, err
	}
	if err := load(value, dest); err != nil {
		return nil, err
	}
	return key[len(i.prefix):], nil
}

func (i *modelIterator) Release() {
	i.iterator.Release()
}

// prefixRange turns a prefix into (start, end) to create
// and iterator
func prefixRange(prefix []byte) ([]byte, []byte) {
	// special case: no prefix is whole range
	if len(prefix) == 0 {
		return nil, nil
	}

	// copy the prefix and update last byte
	end := make([]byte, len(prefix))
	copy(end, prefix)
	l := len(end) - 1
	end[l]++

	// wait, what if that overflowed?....
	for end[l] == 0 && l > 0 {
		l--
		end[l]++
	}

	// okay, funny guy, you gave us FFF, no end to this range...
	if l == 0 && end[0] == 0 {
		end = nil
	}
	return prefix, end
}
