// Package iavl provides a versioned, merkleized commit store backed by a
// tendermint database.
package iavl

import (
	"sync"

	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/store"
)

// DefaultCacheSize is the number of tree nodes kept in memory.
const DefaultCacheSize = 10000

// CommitStore manages a iavl committed state
type CommitStore struct {
	mu   *sync.Mutex
	db   dbm.DB
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore creates a new store with disk backing. It loads the latest
// persisted version.
func NewCommitStore(dir, name string) (*CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %s in %s: %s", name, dir, err)
	}
	return openCommitStore(db)
}

// NewMemCommitStore creates a new store that lives only in memory.
func NewMemCommitStore() *CommitStore {
	s, err := openCommitStore(dbm.NewMemDB())
	if err != nil {
		// loading from an empty memory database cannot fail
		panic(err)
	}
	return s
}

func openCommitStore(db dbm.DB) (*CommitStore, error) {
	s := &CommitStore{
		mu:   &sync.Mutex{},
		db:   db,
		tree: iavl.NewMutableTree(db, DefaultCacheSize),
	}
	if err := s.LoadLatestVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Get returns the value at the latest written state
// returns nil iff key doesn't exist.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	return s.adapter().Get(key)
}

// Commit the next version to disk, and returns info
func (s *CommitStore) Commit() (store.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s *CommitStore) LoadLatestVersion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s *CommitStore) LatestVersion() (store.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap gives us a savepoint to perform actions. Writing it stages the
// changes in the working tree, a following Commit persists them.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	a := s.adapter()
	return store.NewBTreeCacheWrap(a, a.NewBatch(), nil)
}

// Adapter exposes the working tree as a cacheable store.
func (s *CommitStore) Adapter() store.CacheableKVStore {
	return store.BTreeCacheable{KVStore: s.adapter()}
}

// Close releases the underlying database.
func (s *CommitStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db.Close()
	return nil
}

func (s *CommitStore) adapter() treeAdapter {
	return treeAdapter{mu: s.mu, tree: s.tree}
}

// treeAdapter is a KVStore over the working tree
type treeAdapter struct {
	mu   *sync.Mutex
	tree *iavl.MutableTree
}

var _ store.KVStore = treeAdapter{}

// Get returns nil iff key doesn't exist.
func (a treeAdapter) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, errors.Wrap(errors.ErrDatabase, "empty key")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, val := a.tree.Get(key)
	return val, nil
}

// Has checks if a key exists.
func (a treeAdapter) Has(key []byte) (bool, error) {
	if len(key) == 0 {
		return false, errors.Wrap(errors.ErrDatabase, "empty key")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree.Has(key), nil
}

// Set adds a new value
func (a treeAdapter) Set(key, value []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrDatabase, "empty key")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tree.Set(key, value)
	return nil
}

// Delete removes from the tree
func (a treeAdapter) Delete(key []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tree.Remove(key)
	return nil
}

// NewBatch returns a batch that applies all ops to the working tree.
func (a treeAdapter) NewBatch() store.Batch {
	return store.NewNonAtomicBatch(a)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
func (a treeAdapter) Iterator(start, end []byte) (store.Iterator, error) {
	return a.iterate(start, end, true), nil
}

// ReverseIterator over a domain of keys in descending order. End is exclusive.
func (a treeAdapter) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return a.iterate(start, end, false), nil
}

// iterate copies the range out, so the tree lock is not held while
// the caller consumes the iterator.
func (a treeAdapter) iterate(start, end []byte, ascending bool) store.Iterator {
	a.mu.Lock()
	defer a.mu.Unlock()

	var res []store.Model
	a.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, store.Pair(key, value))
		return false
	})
	return store.NewSliceIterator(res)
}
