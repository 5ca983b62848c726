package sigs

import (
	"context"
	"testing"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/app"
	"github.com/iov-one/custodia/crypto"
	"github.com/iov-one/custodia/custodiatest"
	"github.com/iov-one/custodia/custodiatest/assert"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/store"
)

func TestBumpSequence(t *testing.T) {
	priv := crypto.GenPrivKeyEd25519()
	stranger := custodiatest.NewCondition()

	cases := map[string]struct {
		Increment  uint32
		Conditions []custodia.Condition
		InitSeq    int64
		WantErr    *errors.Error
		WantSeq    int64
	}{
		"increment of one works exactly as transaction processing": {
			Increment:  1,
			Conditions: []custodia.Condition{priv.PublicKey().Condition()},
			InitSeq:    4,
			WantSeq:    4,
		},
		"increment invalidates a range of nonces": {
			Increment:  20,
			Conditions: []custodia.Condition{priv.PublicKey().Condition()},
			InitSeq:    4,
			WantSeq:    23,
		},
		"missing signature": {
			Increment: 2,
			WantErr:   errors.ErrUnauthorized,
		},
		"signer without stored sequence": {
			Increment:  2,
			Conditions: []custodia.Condition{stranger},
			WantErr:    errors.ErrNotFound,
		},
		"zero increment is rejected": {
			Increment:  0,
			Conditions: []custodia.Condition{priv.PublicKey().Condition()},
			WantErr:    errors.ErrMsg,
		},
		"increment is capped": {
			Increment:  maxSequenceIncrement + 1,
			Conditions: []custodia.Condition{priv.PublicKey().Condition()},
			WantErr:    errors.ErrMsg,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "sigs")

			users := NewUserBucket()
			user := &UserData{
				Metadata: &custodia.Metadata{Schema: 1},
				Pubkey:   priv.PublicKey(),
				Sequence: tc.InitSeq,
			}
			if _, err := users.Put(db, priv.PublicKey().Address(), user); err != nil {
				t.Fatalf("cannot store user: %+v", err)
			}

			auth := &custodiatest.CtxAuth{Key: "auth"}
			rt := app.NewRouter()
			RegisterRoutes(rt, auth)

			ctx := custodia.WithHeight(context.Background(), 100)
			ctx = auth.SetConditions(ctx, tc.Conditions...)

			tx := &custodiatest.Tx{Msg: &BumpSequenceMsg{
				Metadata:  &custodia.Metadata{Schema: 1},
				Increment: tc.Increment,
			}}

			cache := db.CacheWrap()
			if _, err := rt.Check(ctx, cache, tx); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			cache.Discard()

			if _, err := rt.Deliver(ctx, db, tx); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}

			if tc.WantErr == nil {
				var stored UserData
				if err := users.One(db, priv.PublicKey().Address(), &stored); err != nil {
					t.Fatalf("cannot load user: %+v", err)
				}
				assert.Equal(t, tc.WantSeq, stored.Sequence)
			}
		})
	}
}
