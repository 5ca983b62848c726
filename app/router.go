package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
)

// Router allows us to register many handlers with different paths and then
// direct each message to the proper handler.
type Router struct {
	routes map[string]custodia.Handler
}

var _ custodia.Registry = (*Router)(nil)
var _ custodia.Handler = (*Router)(nil)

// isPath constrains message paths to the "<extension>/<message>" form.
var isPath = regexp.MustCompile(`^[a-z0-9_]{3,20}/[a-z0-9_]{3,40}$`).MatchString

// NewRouter initializes a router with no routes
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]custodia.Handler),
	}
}

// Handle implements Registry interface. It registers a handler for the
// message of a given type. Using an invalid message path or registering a
// handler for the same message type twice is considered a programmer error
// and results in a panic.
func (r *Router) Handle(m custodia.Msg, h custodia.Handler) {
	path := m.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path %q for %T message", path, m))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("handler for message %T is already registered under %q path", m, path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this message, or a handler that
// always fails with not found error.
func (r *Router) handler(m custodia.Msg) custodia.Handler {
	if h, ok := r.routes[m.Path()]; ok {
		return h
	}
	return notFoundHandler(m.Path())
}

// Check dispatches to the proper handler based on message type
func (r *Router) Check(ctx custodia.Context, store custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	h := r.handler(msg)
	return h.Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on message type
func (r *Router) Deliver(ctx custodia.Context, store custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	h := r.handler(msg)
	return h.Deliver(ctx, store, tx)
}

// notFoundHandler always returns ErrNotFound, i.e. unknown message path
type notFoundHandler string

func (path notFoundHandler) Check(ctx custodia.Context, store custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}

func (path notFoundHandler) Deliver(ctx custodia.Context, store custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}
