package app

import (
	"context"
	"testing"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/custodiatest"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/store"
)

type panicHandler struct{}

func (panicHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	panic("check boom")
}

func (panicHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	panic("deliver boom")
}

func TestRecovery(t *testing.T) {
	stack := ChainDecorators(NewRecovery()).WithHandler(panicHandler{})
	tx := &custodiatest.Tx{Msg: &custodiatest.Msg{RoutePath: "test/panic"}}
	db := store.MemStore()

	if _, err := stack.Check(context.Background(), db, tx); !errors.ErrPanic.Is(err) {
		t.Fatalf("want a panic error, got %+v", err)
	}
	if _, err := stack.Deliver(context.Background(), db, tx); !errors.ErrPanic.Is(err) {
		t.Fatalf("want a panic error, got %+v", err)
	}
}
