package sigs

import (
	"testing"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/crypto"
	"github.com/iov-one/custodia/custodiatest/assert"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/store"
)

func TestUserDataValidate(t *testing.T) {
	pub := crypto.GenPrivKeyEd25519().PublicKey()

	cases := map[string]struct {
		User    UserData
		WantErr *errors.Error
	}{
		"valid": {
			User: UserData{
				Metadata: &custodia.Metadata{Schema: 1},
				Pubkey:   pub,
				Sequence: 5,
			},
		},
		"fresh account without a pubkey": {
			User: UserData{
				Metadata: &custodia.Metadata{Schema: 1},
			},
		},
		"missing metadata": {
			User:    UserData{Pubkey: pub},
			WantErr: errors.ErrMetadata,
		},
		"negative sequence": {
			User: UserData{
				Metadata: &custodia.Metadata{Schema: 1},
				Pubkey:   pub,
				Sequence: -1,
			},
			WantErr: ErrInvalidSequence,
		},
		"sequence without a pubkey": {
			User: UserData{
				Metadata: &custodia.Metadata{Schema: 1},
				Sequence: 1,
			},
			WantErr: ErrInvalidSequence,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.User.Validate(); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestCheckAndIncrementSequence(t *testing.T) {
	user := UserData{
		Metadata: &custodia.Metadata{Schema: 1},
		Pubkey:   crypto.GenPrivKeyEd25519().PublicKey(),
	}

	assert.Nil(t, user.CheckAndIncrementSequence(0))
	assert.Equal(t, int64(1), user.Sequence)

	// A mismatch must not modify the state.
	assert.IsErr(t, ErrInvalidSequence, user.CheckAndIncrementSequence(0))
	assert.IsErr(t, ErrInvalidSequence, user.CheckAndIncrementSequence(2))
	assert.Equal(t, int64(1), user.Sequence)

	// The sequence is capped to what clients can represent.
	user.Sequence = (1 << 53) - 1
	assert.IsErr(t, errors.ErrOverflow, user.CheckAndIncrementSequence((1<<53)-1))
}

func TestUserBucketRoundTrip(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "sigs")

	pub := crypto.GenPrivKeyEd25519().PublicKey()
	b := NewUserBucket()

	user, err := loadOrCreateUser(db, b, pub)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), user.Sequence)

	assert.Nil(t, user.CheckAndIncrementSequence(0))
	if _, err := b.Put(db, pub.Address(), user); err != nil {
		t.Fatalf("cannot store user: %+v", err)
	}

	loaded, err := loadOrCreateUser(db, b, pub)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), loaded.Sequence)
}
