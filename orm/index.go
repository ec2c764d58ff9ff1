package orm

import (
	"bytes"

	"github.com/gogo/protobuf/proto"
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/errors"
)

const compactIdxPrefix = "_i."

// Indexer calculates the secondary index key for a given model. A nil key
// means the model is not indexed.
type Indexer func(Model) ([]byte, error)

// Index maintains a secondary index over the models of a bucket.
type Index interface {
	// Name returns the name of this index.
	Name() string

	// Update updates the index. It should be called when any of the bucket
	// entities has changed in the store.
	//
	// prev == nil means insert
	// next == nil means delete
	// both == nil is error
	Update(db volreg.KVStore, pk []byte, prev, next Model) error

	// Check returns ErrDuplicate if Update with the same arguments would
	// break a unique constraint. It never writes.
	Check(db volreg.ReadOnlyKVStore, pk []byte, prev, next Model) error

	// Keys returns all primary keys indexed under given value, in
	// ascending order.
	Keys(db volreg.ReadOnlyKVStore, value []byte) ([][]byte, error)
}

// compactIndex is an index implementation that stores all indexed entities as
// a set, serialized and stored under single key. This implementation should be
// used only for small sized index collections.
//
// The value is one primary key (unique),
// Or a MultiRef of primary keys (!unique).
type compactIndex struct {
	name    string
	id      []byte
	unique  bool
	indexer Indexer
}

var _ Index = compactIndex{}

// NewIndex constructs an index.
// Indexer calculates the index for a model
// unique enforces a unique constraint on the index
func NewIndex(bucket, name string, indexer Indexer, unique bool) Index {
	return compactIndex{
		name:    name,
		id:      []byte(compactIdxPrefix + bucket + "_" + name + ":"),
		indexer: indexer,
		unique:  unique,
	}
}

func (i compactIndex) Name() string {
	return i.name
}

// indexKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (i compactIndex) indexKey(key []byte) []byte {
	l := len(i.id)
	out := make([]byte, l+len(key))
	copy(out, i.id)
	copy(out[l:], key)
	return out
}

// keys returns the index values of both model states. changed is false
// when the update would not touch the index.
func (i compactIndex) keys(prev, next Model) (prevKey, nextKey []byte, changed bool, err error) {
	if prev == nil && next == nil {
		return nil, nil, false, errors.Wrap(errors.ErrState, "update requires at least one non-nil model")
	}
	if prev != nil {
		if prevKey, err = i.indexer(prev); err != nil {
			return nil, nil, false, errors.Wrapf(err, "index %s", i.name)
		}
	}
	if next != nil {
		if nextKey, err = i.indexer(next); err != nil {
			return nil, nil, false, errors.Wrapf(err, "index %s", i.name)
		}
	}
	// nothing changed, avoid a write
	if prev != nil && next != nil && bytes.Equal(prevKey, nextKey) {
		return prevKey, nextKey, false, nil
	}
	return prevKey, nextKey, true, nil
}

// Check implements Index.
func (i compactIndex) Check(db volreg.ReadOnlyKVStore, pk []byte, prev, next Model) error {
	_, nextKey, changed, err := i.keys(prev, next)
	if err != nil || !changed || !i.unique || nextKey == nil {
		return err
	}
	cur, err := db.Get(i.indexKey(nextKey))
	if err != nil {
		return err
	}
	if cur != nil && !bytes.Equal(cur, pk) {
		return errors.Wrapf(errors.ErrDuplicate, "index %s: %X", i.name, nextKey)
	}
	return nil
}

// Update handles updating the reference to the object in
// the secondary index.
func (i compactIndex) Update(db volreg.KVStore, pk []byte, prev, next Model) error {
	prevKey, nextKey, changed, err := i.keys(prev, next)
	if err != nil || !changed {
		return err
	}
	if prevKey != nil {
		if err := i.remove(db, prevKey, pk); err != nil {
			return err
		}
	}
	if nextKey != nil {
		if err := i.insert(db, nextKey, pk); err != nil {
			return err
		}
	}
	return nil
}

func (i compactIndex) remove(db volreg.KVStore, index []byte, pk []byte) error {
	key := i.indexKey(index)
	cur, err := db.Get(key)
	if err != nil {
		return err
	}
	if cur == nil {
		return errors.Wrapf(errors.ErrNotFound, "index %s has no entry", i.name)
	}

	if i.unique {
		if !bytes.Equal(cur, pk) {
			return errors.Wrapf(errors.ErrState, "index %s points to another key", i.name)
		}
		return db.Delete(key)
	}

	var refs MultiRef
	if err := proto.Unmarshal(cur, &refs); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "index %s: %s", i.name, err)
	}
	if err := refs.Remove(pk); err != nil {
		return errors.Wrapf(err, "index %s", i.name)
	}
	if len(refs.Refs) == 0 {
		return db.Delete(key)
	}
	return i.saveRefs(db, key, &refs)
}

func (i compactIndex) insert(db volreg.KVStore, index []byte, pk []byte) error {
	key := i.indexKey(index)
	cur, err := db.Get(key)
	if err != nil {
		return err
	}

	if i.unique {
		if cur != nil {
			return errors.Wrapf(errors.ErrDuplicate, "index %s: %X", i.name, index)
		}
		return db.Set(key, pk)
	}

	var refs MultiRef
	if cur != nil {
		if err := proto.Unmarshal(cur, &refs); err != nil {
			return errors.Wrapf(errors.ErrDatabase, "index %s: %s", i.name, err)
		}
	}
	if err := refs.Add(pk); err != nil {
		return errors.Wrapf(err, "index %s", i.name)
	}
	return i.saveRefs(db, key, &refs)
}

func (i compactIndex) saveRefs(db volreg.KVStore, key []byte, refs *MultiRef) error {
	raw, err := proto.Marshal(refs)
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "index %s: %s", i.name, err)
	}
	return db.Set(key, raw)
}

// Keys returns a list of all primary keys that were indexed under given value.
func (i compactIndex) Keys(db volreg.ReadOnlyKVStore, index []byte) ([][]byte, error) {
	val, err := db.Get(i.indexKey(index))
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, nil
	}
	if i.unique {
		return [][]byte{val}, nil
	}
	var refs MultiRef
	if err := proto.Unmarshal(val, &refs); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "index %s: %s", i.name, err)
	}
	return refs.GetRefs(), nil
}
