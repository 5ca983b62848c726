package sigs

import (
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/crypto"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/orm"
)

func init() {
	migration.MustRegister(1, &UserData{}, migration.NoModification)
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Validate() error {
	var errs error
	errs = errors.Append(errs, u.Metadata.Validate())
	if u.Sequence < 0 {
		errs = errors.Append(errs, errors.Wrap(ErrInvalidSequence, "negative"))
	} else if u.Sequence > 0 && u.Pubkey == nil {
		errs = errors.Append(errs, errors.Wrap(ErrInvalidSequence, "needs pubkey"))
	}
	return errs
}

// CheckAndIncrementSequence implements a check and increment operation. If
// the current sequence value is the same as the given expected value then
// it is incremented. Otherwise an error is returned.
// Before incrementing the sequence, this function is testing for a value
// overflow.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "expected %d, got %d", expected, u.Sequence)
	}

	next := u.Sequence + 1

	// maxSequenceValue is limited by the client. The greatest supported
	// nonce value at client side is
	//   Number.MAX_SAFE_INTEGER = 9007199254740991 = 2^53 - 1
	// If greater values must be supported, we get much more complicated
	// client code.
	const maxSequenceValue = (1 << 53) - 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// NewUserBucket returns a bucket for keeping account state per public key,
// keyed by the key address.
func NewUserBucket() orm.ModelBucket {
	b := orm.NewModelBucket("sigs", &UserData{})
	return migration.NewModelBucket("sigs", b)
}

// loadOrCreateUser fetches the account state for the given public key. If
// none is stored yet, fresh state with a zero sequence is returned.
func loadOrCreateUser(db custodia.ReadOnlyKVStore, b orm.ModelBucket, pubkey *crypto.PublicKey) (*UserData, error) {
	var user UserData
	switch err := b.One(db, pubkey.Address(), &user); {
	case err == nil:
		return &user, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{
			Metadata: &custodia.Metadata{Schema: 1},
			Pubkey:   pubkey,
		}, nil
	default:
		return nil, errors.Wrap(err, "cannot load user")
	}
}
