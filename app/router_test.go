package app

import (
	"context"
	"testing"

	"github.com/iov-one/custodia/custodiatest"
	"github.com/iov-one/custodia/custodiatest/assert"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/store"
)

func TestRouterSuccess(t *testing.T) {
	r := NewRouter()

	var handler custodiatest.Handler
	msg := &custodiatest.Msg{RoutePath: "test/good"}
	r.Handle(msg, &handler)

	tx := &custodiatest.Tx{Msg: msg}
	db := store.MemStore()

	if _, err := r.Check(context.Background(), db, tx); err != nil {
		t.Fatalf("check failed: %+v", err)
	}
	if _, err := r.Deliver(context.Background(), db, tx); err != nil {
		t.Fatalf("deliver failed: %+v", err)
	}
	assert.Equal(t, 1, handler.CheckCallCount())
	assert.Equal(t, 1, handler.DeliverCallCount())
}

func TestRouterNoHandler(t *testing.T) {
	r := NewRouter()

	tx := &custodiatest.Tx{Msg: &custodiatest.Msg{RoutePath: "test/secret"}}
	db := store.MemStore()

	if _, err := r.Check(context.Background(), db, tx); !errors.ErrNotFound.Is(err) {
		t.Fatalf("expected not found, got %+v", err)
	}
	if _, err := r.Deliver(context.Background(), db, tx); !errors.ErrNotFound.Is(err) {
		t.Fatalf("expected not found, got %+v", err)
	}
}

func TestRouterInvalidPath(t *testing.T) {
	r := NewRouter()
	assert.Panics(t, func() {
		r.Handle(&custodiatest.Msg{RoutePath: "no-separator"}, &custodiatest.Handler{})
	})
}

func TestRouterDuplicatePath(t *testing.T) {
	r := NewRouter()
	msg := &custodiatest.Msg{RoutePath: "test/good"}
	r.Handle(msg, &custodiatest.Handler{})
	assert.Panics(t, func() {
		r.Handle(msg, &custodiatest.Handler{})
	})
}
