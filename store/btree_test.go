package store

import (
	"testing"

	"github.com/iov-one/custodia/custodiatest/assert"
)

func TestBTreeCacheWrap(t *testing.T) {
	suite := NewTestSuite(func() (CacheableKVStore, func()) {
		return MemStore(), func() {}
	})

	t.Run("GetSet", suite.GetSet)
	t.Run("CacheConflicts", suite.CacheConflicts)
	t.Run("FuzzIterator", suite.FuzzIterator)
	t.Run("IteratorWithConflicts", suite.IteratorWithConflicts)
}

// TestBTreeCacheable makes sure we can wrap any KVStore
// with the btree caching strategy.
func TestBTreeCacheable(t *testing.T) {
	base := BTreeCacheable{MemStore()}
	cache := base.CacheWrap()

	k, v := []byte("cue"), []byte("ball")
	assert.Nil(t, cache.Set(k, v))
	got, err := cache.Get(k)
	assert.Nil(t, err)
	assert.Equal(t, v, got)

	// base is untouched until the cache is written
	got, err = base.Get(k)
	assert.Nil(t, err)
	if got != nil {
		t.Fatalf("expected no data in base, got %X", got)
	}

	assert.Nil(t, cache.Write())
	got, err = base.Get(k)
	assert.Nil(t, err)
	assert.Equal(t, v, got)
}

// TestLogableStore ensures all operations are recorded in order.
func TestLogableStore(t *testing.T) {
	kv, log := LogableStore()

	assert.Nil(t, kv.Set([]byte("a"), []byte("1")))
	assert.Nil(t, kv.Set([]byte("b"), []byte("2")))
	assert.Nil(t, kv.Delete([]byte("a")))

	ops := log.ShowOps()
	assert.Equal(t, 3, len(ops))
	if !ops[0].IsSetOp() || !ops[1].IsSetOp() || ops[2].IsSetOp() {
		t.Fatalf("unexpected op kinds: %v", ops)
	}
	assert.Equal(t, []byte("a"), ops[2].Key())
}
