package orm

import (
	"sort"

	"github.com/gogo/protobuf/proto"
	"github.com/volreg/volreg"
	"github.com/volreg/volreg/errors"
)

// ModelBucket stores models of a single type under a prefixed key space and
// keeps all registered indexes in sync.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	One(db volreg.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists,
	// ErrNotFound otherwise.
	Has(db volreg.ReadOnlyKVStore, key []byte) error

	// ByIndex returns all objects that secondary index with given name and
	// given key. Main index is always unique but secondary indexes can
	// return more than one value for the same key.
	// All matching entities are appended to given destination slice. If no
	// result was found, no error is returned and destination slice is not
	// modified.
	ByIndex(db volreg.ReadOnlyKVStore, indexName string, key []byte, dest ModelSlicePtr) (keys [][]byte, err error)

	// Put saves given model in the database. All indexes are updated.
	Put(db volreg.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db volreg.KVStore, key []byte) error

	// IterAll returns an iterator over all entities of this bucket in
	// ascending primary key order.
	IterAll(db volreg.ReadOnlyKVStore) (ModelIterator, error)
}

// BucketOption configures a model bucket.
type BucketOption func(*modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using the indexer.
func WithIndex(name string, indexer Indexer, unique bool) BucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic("duplicated index name: " + name)
		}
		mb.indexes[name] = NewIndex(mb.name, name, indexer, unique)
		mb.indexNames = append(mb.indexNames, name)
		sort.Strings(mb.indexNames)
	}
}

// NewModelBucket returns a ModelBucket that stores instances of the
// prototype type. The prototype must be a pointer to a struct.
func NewModelBucket(name string, prototype Model, opts ...BucketOption) ModelBucket {
	mb := &modelBucket{
		name:      name,
		prefix:    []byte(name + ":"),
		prototype: prototype,
		indexes:   make(map[string]Index),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name       string
	prefix     []byte
	prototype  Model
	indexes    map[string]Index
	indexNames []string // sorted
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	out := make([]byte, len(mb.prefix)+len(key))
	copy(out, mb.prefix)
	copy(out[len(mb.prefix):], key)
	return out
}

func (mb *modelBucket) One(db volreg.ReadOnlyKVStore, key []byte, dest Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrInput, "empty key")
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return load(raw, dest)
}

func (mb *modelBucket) Has(db volreg.ReadOnlyKVStore, key []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrInput, "empty key")
	}
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) ByIndex(db volreg.ReadOnlyKVStore, indexName string, key []byte, dest ModelSlicePtr) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidIndex, "name %s", indexName)
	}
	refs, err := idx.Keys(db, key)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		m := newModel(mb.prototype)
		if err := mb.One(db, ref, m); err != nil {
			return nil, errors.Wrapf(err, "index %s reference", indexName)
		}
		if err := appendModel(dest, m); err != nil {
			return nil, err
		}
	}
	return refs, nil
}

func (mb *modelBucket) Put(db volreg.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrInput, "empty key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}

	var prev Model
	old := newModel(mb.prototype)
	switch err := mb.One(db, key, old); {
	case err == nil:
		prev = old
	case errors.ErrNotFound.Is(err):
	default:
		return errors.Wrap(err, "cannot load previous state")
	}

	// A rejected model leaves every index untouched.
	for _, name := range mb.indexNames {
		if err := mb.indexes[name].Check(db, key, prev, m); err != nil {
			return errors.Wrapf(err, "cannot update %s index", name)
		}
	}
	for _, name := range mb.indexNames {
		if err := mb.indexes[name].Update(db, key, prev, m); err != nil {
			return errors.Wrapf(err, "cannot update %s index", name)
		}
	}

	raw, err := proto.Marshal(m)
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "marshal %T: %s", m, err)
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db volreg.KVStore, key []byte) error {
	prev := newModel(mb.prototype)
	if err := mb.One(db, key, prev); err != nil {
		return err
	}
	for _, name := range mb.indexNames {
		if err := mb.indexes[name].Update(db, key, prev, nil); err != nil {
			return errors.Wrapf(err, "cannot update %s index", name)
		}
	}
	return db.Delete(mb.dbKey(key))
}

func (mb *modelBucket) IterAll(db volreg.ReadOnlyKVStore) (ModelIterator, error) {
	it, err := db.Iterator(prefixRange(mb.prefix))
	if err != nil {
		return nil, err
	}
	return &modelIterator{iterator: it, prefix: mb.prefix}, nil
}
