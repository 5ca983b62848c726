package app

import (
	"context"
	"testing"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/custodiatest"
	"github.com/iov-one/custodia/custodiatest/assert"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/store"
)

// failAfterWrite writes a key and then fails
type failAfterWrite struct {
	key []byte
	err error
}

func (h failAfterWrite) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if err := db.Set(h.key, []byte("dirty")); err != nil {
		return nil, err
	}
	return nil, h.err
}

func (h failAfterWrite) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	if err := db.Set(h.key, []byte("dirty")); err != nil {
		return nil, err
	}
	return nil, h.err
}

func TestSavepointDiscardsOnError(t *testing.T) {
	failure := errors.ErrState.New("broken invariant")
	stack := ChainDecorators(NewSavepoint().OnCheck().OnDeliver()).
		WithHandler(failAfterWrite{key: []byte("a"), err: failure})

	tx := &custodiatest.Tx{Msg: &custodiatest.Msg{RoutePath: "test/fail"}}
	db := store.MemStore()

	if _, err := stack.Deliver(context.Background(), db, tx); !errors.ErrState.Is(err) {
		t.Fatalf("want the handler error, got %+v", err)
	}
	has, err := db.Has([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)
}

func TestSavepointCommitsOnSuccess(t *testing.T) {
	stack := ChainDecorators(NewSavepoint().OnDeliver()).
		WithHandler(writeHandler{key: []byte("a"), value: []byte("b")})

	tx := &custodiatest.Tx{Msg: &custodiatest.Msg{RoutePath: "test/good"}}
	db := store.MemStore()

	_, err := stack.Deliver(context.Background(), db, tx)
	assert.Nil(t, err)
	v, err := db.Get([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("b"), v)
}
