package sigs

import (
	"context"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/x"
)

type contextKey int

const (
	contextKeySigners contextKey = iota
)

// withSigners is private, as only this package can set the verified
// signers for a context.
func withSigners(ctx custodia.Context, signers []custodia.Condition) custodia.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate implements x.Authenticator backed by the signatures that
// the Decorator verified on the transaction.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns who signed the current transaction. May be empty.
func (a Authenticate) GetConditions(ctx custodia.Context) []custodia.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeySigners).([]custodia.Condition)
	return val
}

// HasAddress returns true if any signer matches this address.
func (a Authenticate) HasAddress(ctx custodia.Context, addr custodia.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
