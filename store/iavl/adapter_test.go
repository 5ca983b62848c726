package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/custodia/custodiatest/assert"
	"github.com/iov-one/custodia/store"
)

func makeCommitStore() (CommitStore, func()) {
	tmpDir, err := ioutil.TempDir("", "iavl-adapter-")
	if err != nil {
		panic(err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }
	commit := NewCommitStore(tmpDir, "base")
	return commit, cleanup
}

// TestCommitStoreSuite runs the generic kvstore test suite against the
// disk backed implementation.
func TestCommitStoreSuite(t *testing.T) {
	suite := store.NewTestSuite(func() (store.CacheableKVStore, func()) {
		return makeCommitStore()
	})

	t.Run("GetSet", suite.GetSet)
	t.Run("CacheConflicts", suite.CacheConflicts)
	t.Run("FuzzIterator", suite.FuzzIterator)
	t.Run("IteratorWithConflicts", suite.IteratorWithConflicts)
}

func assertGetHas(t testing.TB, kv store.ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

// TestCommitOverwrite checks that we commit properly
// and can add/overwrite/query in the next adapter
func TestCommitOverwrite(t *testing.T) {
	k1, v1 := []byte("french"), []byte("fry")
	k2, v2 := []byte("LA"), []byte("Dodgers")
	v12 := []byte("fries")

	commit, cleanup := makeCommitStore()
	defer cleanup()
	// only one version of history to trigger a cleanup
	commit.numHistory = 1

	id, err := commit.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, int64(0), id.Version)
	if len(id.Hash) != 0 {
		t.Fatal("hash is not empty")
	}

	parent := commit.CacheWrap()
	assert.Nil(t, parent.Set(k1, v1))
	assert.Nil(t, parent.Set(k2, v2))
	// write data to backing store
	assert.Nil(t, parent.Write())
	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)
	if len(id.Hash) == 0 {
		t.Fatal("hash is empty")
	}

	// child also comes from commit
	child := commit.CacheWrap()
	assert.Nil(t, child.Set(k1, v12))
	assert.Nil(t, child.Delete(k2))

	// and a side cache wrap to see they are in parallel
	side := commit.CacheWrap()

	// the side cache gets unmodified parent state
	assertGetHas(t, side, k1, v1, true)
	assertGetHas(t, side, k2, v2, true)

	// the child shows changes
	assertGetHas(t, child, k1, v12, true)
	assertGetHas(t, child, k2, nil, false)

	// write child to parent and make sure it also shows proper data
	assert.Nil(t, child.Write())
	assertGetHas(t, side, k1, v12, true)
	assertGetHas(t, side, k2, nil, false)

	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(2), id.Version)
}
