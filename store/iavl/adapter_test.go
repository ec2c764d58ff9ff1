package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/volreg/volreg/store"
	"github.com/volreg/volreg/volregtest/assert"
)

func makeBase() (store.CacheableKVStore, func()) {
	commit, cleanup := makeCommitStore()
	return commit.Adapter(), cleanup
}

func makeCommitStore() (*CommitStore, func()) {
	tmpDir, err := ioutil.TempDir("", "iavl-adapter-")
	if err != nil {
		panic(err)
	}
	commit, err := NewCommitStore(tmpDir, "base")
	if err != nil {
		panic(err)
	}
	cleanup := func() {
		commit.Close()
		os.RemoveAll(tmpDir)
	}
	return commit, cleanup
}

func TestIavlStore(t *testing.T) {
	suite := store.NewTestSuite(makeBase)

	t.Run("cache wrap", suite.CacheWrap)
	t.Run("empty key", suite.EmptyKey)
	t.Run("merged iteration", suite.MergedIteration)
}

// TestCommitOverwrite checks that we commit properly
// and can add/overwrite/query in the next cache wrap
func TestCommitOverwrite(t *testing.T) {
	k1, k2, k3 := []byte("token:1"), []byte("token:2"), []byte("token:3")
	v1, v2, v3 := []byte("alice"), []byte("bob"), []byte("carol")

	commit, cleanup := makeCommitStore()
	defer cleanup()

	id, err := commit.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, int64(0), id.Version)
	if len(id.Hash) != 0 {
		t.Fatal("hash is not empty")
	}

	parent := commit.CacheWrap()
	assert.Nil(t, parent.Set(k1, v1))
	assert.Nil(t, parent.Set(k2, v2))
	assert.Nil(t, parent.Write())
	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)
	if len(id.Hash) == 0 {
		t.Fatal("hash is empty")
	}

	child := commit.CacheWrap()
	assert.Nil(t, child.Set(k1, v3))
	assert.Nil(t, child.Delete(k2))
	assert.Nil(t, child.Set(k3, v3))

	// a parallel cache wrap does not see uncommitted changes
	side := commit.CacheWrap()
	store.AssertGetHas(t, side, k1, v1, true)
	store.AssertGetHas(t, side, k2, v2, true)
	store.AssertGetHas(t, side, k3, nil, false)

	assert.Nil(t, child.Write())
	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(2), id.Version)

	got, err := commit.Get(k1)
	assert.Nil(t, err)
	assert.Equal(t, v3, got)
	got, err = commit.Get(k2)
	assert.Nil(t, err)
	assert.Nil(t, got)
}

func TestReloadFromDisk(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "iavl-reload-")
	assert.Nil(t, err)
	defer os.RemoveAll(tmpDir)

	commit, err := NewCommitStore(tmpDir, "state")
	assert.Nil(t, err)
	cache := commit.CacheWrap()
	assert.Nil(t, cache.Set([]byte("item:1"), []byte("listed")))
	assert.Nil(t, cache.Write())
	want, err := commit.Commit()
	assert.Nil(t, err)
	assert.Nil(t, commit.Close())

	reopened, err := NewCommitStore(tmpDir, "state")
	assert.Nil(t, err)
	defer reopened.Close()

	got, err := reopened.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, want, got)
	val, err := reopened.Get([]byte("item:1"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("listed"), val)
}

func TestMemCommitStoreDiscard(t *testing.T) {
	commit := NewMemCommitStore()
	cache := commit.CacheWrap()
	assert.Nil(t, cache.Set([]byte("k"), []byte("v")))
	cache.Discard()

	val, err := commit.Get([]byte("k"))
	assert.Nil(t, err)
	assert.Nil(t, val)
}
