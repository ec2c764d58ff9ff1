package store

import (
	"testing"

	"github.com/volreg/volreg/errors"
	"github.com/volreg/volreg/volregtest/assert"
)

// TestSuite runs the KVStore checks every store backend must pass. It is
// shared by the btree and iavl store tests.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns a fresh, empty store and a function that
// releases it.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{
		makeBase: constructor,
	}
}

// CacheWrap checks that writes to a cache wrap stay invisible to the
// parent until Write and are dropped by Discard. A nil expected value means
// the key must be absent.
func (s *TestSuite) CacheWrap(t *testing.T) {
	cases := map[string]struct {
		parentOps  []Op
		childOps   []Op
		discard    bool
		wantChild  []Model
		wantParent []Model
	}{
		"child writes are applied on write": {
			parentOps:  []Op{SetOp([]byte("token:1"), []byte("alice")), SetOp([]byte("token:2"), []byte("bob"))},
			childOps:   []Op{SetOp([]byte("token:1"), []byte("escrow")), SetOp([]byte("token:3"), []byte("carol")), DelOp([]byte("token:2"))},
			wantChild:  []Model{Pair([]byte("token:1"), []byte("escrow")), Pair([]byte("token:2"), nil), Pair([]byte("token:3"), []byte("carol"))},
			wantParent: []Model{Pair([]byte("token:1"), []byte("escrow")), Pair([]byte("token:2"), nil), Pair([]byte("token:3"), []byte("carol"))},
		},
		"discarded child leaves the parent untouched": {
			parentOps:  []Op{SetOp([]byte("item:1"), []byte("listed"))},
			childOps:   []Op{SetOp([]byte("item:1"), []byte("sold")), SetOp([]byte("item:2"), []byte("listed"))},
			discard:    true,
			wantChild:  []Model{Pair([]byte("item:1"), []byte("sold")), Pair([]byte("item:2"), []byte("listed"))},
			wantParent: []Model{Pair([]byte("item:1"), []byte("listed")), Pair([]byte("item:2"), nil)},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()
			for _, op := range tc.parentOps {
				assert.Nil(t, op.Apply(parent))
			}

			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				assert.Nil(t, op.Apply(child))
			}
			for _, m := range tc.wantChild {
				AssertGetHas(t, child, m.Key, m.Value, m.Value != nil)
			}
			// nothing reaches the parent before the wrap is closed
			for _, op := range tc.parentOps {
				if op.kind == setKind {
					AssertGetHas(t, parent, op.key, op.value, true)
				}
			}

			if tc.discard {
				child.Discard()
			} else {
				assert.Nil(t, child.Write())
			}
			for _, m := range tc.wantParent {
				AssertGetHas(t, parent, m.Key, m.Value, m.Value != nil)
			}
		})
	}
}

// EmptyKey checks that neither the store nor its cache wrap accept a
// write without a key.
func (s *TestSuite) EmptyKey(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	assert.IsErr(t, errors.ErrDatabase, base.Set(nil, []byte("x")))
	cache := base.CacheWrap()
	assert.IsErr(t, errors.ErrDatabase, cache.Set([]byte{}, []byte("x")))
	assert.Nil(t, cache.Write())

	it, err := base.Iterator(nil, nil)
	assert.Nil(t, err)
	defer it.Release()
	_, _, err = it.Next()
	assert.IsErr(t, errors.ErrIteratorDone, err)
}

// MergedIteration checks that iterating a cache wrap merges its own
// writes with the parent content in both directions, with child writes
// shadowing parent values and child deletes hiding them.
func (s *TestSuite) MergedIteration(t *testing.T) {
	parent := []Op{
		SetOp([]byte("item:1"), []byte("p1")),
		SetOp([]byte("item:3"), []byte("p3")),
		SetOp([]byte("item:5"), []byte("p5")),
		SetOp([]byte("item:7"), []byte("p7")),
	}
	child := []Op{
		SetOp([]byte("item:2"), []byte("c2")),
		SetOp([]byte("item:3"), []byte("c3")),
		DelOp([]byte("item:5")),
		SetOp([]byte("item:6"), []byte("c6")),
		DelOp([]byte("item:9")),
	}

	cases := map[string]struct {
		parentOps  []Op
		childOps   []Op
		start, end []byte
		reverse    bool
		want       []string
	}{
		"child only": {
			childOps: child,
			want:     []string{"item:2=c2", "item:3=c3", "item:6=c6"},
		},
		"parent only": {
			parentOps: parent,
			want:      []string{"item:1=p1", "item:3=p3", "item:5=p5", "item:7=p7"},
		},
		"merged": {
			parentOps: parent,
			childOps:  child,
			want:      []string{"item:1=p1", "item:2=c2", "item:3=c3", "item:6=c6", "item:7=p7"},
		},
		"merged reverse": {
			parentOps: parent,
			childOps:  child,
			reverse:   true,
			want:      []string{"item:7=p7", "item:6=c6", "item:3=c3", "item:2=c2", "item:1=p1"},
		},
		"merged range": {
			parentOps: parent,
			childOps:  child,
			start:     []byte("item:2"),
			end:       []byte("item:7"),
			want:      []string{"item:2=c2", "item:3=c3", "item:6=c6"},
		},
		"merged reverse range": {
			parentOps: parent,
			childOps:  child,
			start:     []byte("item:3"),
			end:       []byte("item:7"),
			reverse:   true,
			want:      []string{"item:6=c6", "item:3=c3"},
		},
		"merged reverse open end": {
			parentOps: parent,
			childOps:  child,
			start:     []byte("item:4"),
			reverse:   true,
			want:      []string{"item:7=p7", "item:6=c6"},
		},
		"range ending on a deleted key": {
			parentOps: parent,
			childOps:  child,
			start:     []byte("item:4"),
			end:       []byte("item:6"),
			want:      nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			for _, op := range tc.parentOps {
				assert.Nil(t, op.Apply(base))
			}
			cache := base.CacheWrap()
			defer cache.Discard()
			for _, op := range tc.childOps {
				assert.Nil(t, op.Apply(cache))
			}

			var it Iterator
			var err error
			if tc.reverse {
				it, err = cache.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = cache.Iterator(tc.start, tc.end)
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, drain(t, it))
		})
	}
}

// AssertGetHas checks both Get and Has for a single key.
func AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

// drain consumes the iterator and returns its content as key=value strings.
func drain(t testing.TB, it Iterator) []string {
	t.Helper()
	defer it.Release()
	var res []string
	for {
		k, v, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res
		}
		assert.Nil(t, err)
		res = append(res, string(k)+"="+string(v))
	}
}
