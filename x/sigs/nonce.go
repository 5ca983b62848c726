package sigs

import (
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
)

// NextNonce returns the next numeric nonce value that should be used
// during transaction signing. Signers without stored state start at zero.
func NextNonce(db custodia.ReadOnlyKVStore, signer custodia.Address) (int64, error) {
	var user UserData
	switch err := NewUserBucket().One(db, signer, &user); {
	case err == nil:
		return user.Sequence, nil
	case errors.ErrNotFound.Is(err):
		// If not yet present, nonce counting starts with zero.
		return 0, nil
	default:
		return 0, errors.Wrap(err, "bucket get")
	}
}
