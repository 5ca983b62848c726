package vault

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/app"
	"github.com/iov-one/custodia/custodiatest"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/gconf"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/store"
)

func TestUseCases(t *testing.T) {
	type Request struct {
		Now        custodia.UnixTime
		Conditions []custodia.Condition
		Tx         custodia.Tx
		WantErr    *errors.Error
	}

	var (
		adminCond = custodiatest.NewCondition()
		ownerCond = custodiatest.NewCondition()
		emmaCond  = custodiatest.NewCondition()
		ericCond  = custodiatest.NewCondition()
		otherCond = custodiatest.NewCondition()

		now = custodia.UnixTime(1572247483)
	)

	lockTx := &custodiatest.Tx{Msg: &CreateLockMsg{
		Metadata: &custodia.Metadata{Schema: 1},
		Amount:   500,
		Duration: custodia.AsUnixDuration(24 * time.Hour),
		Memo:     "cold storage",
	}}
	releaseTx := &custodiatest.Tx{Msg: &ReleaseMsg{
		Metadata: &custodia.Metadata{Schema: 1},
		LockID:   custodiatest.SequenceID(1),
	}}
	approveTx := &custodiatest.Tx{Msg: &ApproveEmergencyMsg{
		Metadata: &custodia.Metadata{Schema: 1},
		LockID:   custodiatest.SequenceID(1),
	}}
	emergencyTx := &custodiatest.Tx{Msg: &EmergencyReleaseMsg{
		Metadata: &custodia.Metadata{Schema: 1},
		LockID:   custodiatest.SequenceID(1),
	}}

	cases := map[string]struct {
		Requests  []Request
		AfterTest func(t *testing.T, db custodia.KVStore)
	}{
		"lock can be claimed back after the release time": {
			Requests: []Request{
				{
					Now:        now,
					Conditions: []custodia.Condition{ownerCond},
					Tx:         lockTx,
				},
				{
					Now:        now + 1,
					Conditions: []custodia.Condition{ownerCond},
					Tx:         releaseTx,
					WantErr:    ErrNotYetUnlockable,
				},
				{
					Now:        now.Add(25 * time.Hour),
					Conditions: []custodia.Condition{otherCond},
					Tx:         releaseTx,
					WantErr:    errors.ErrUnauthorized,
				},
				{
					Now:        now.Add(25 * time.Hour),
					Conditions: []custodia.Condition{ownerCond},
					Tx:         releaseTx,
				},
				{
					Now:        now.Add(26 * time.Hour),
					Conditions: []custodia.Condition{ownerCond},
					Tx:         releaseTx,
					WantErr:    ErrAlreadyClaimed,
				},
			},
			AfterTest: func(t *testing.T, db custodia.KVStore) {
				var lock Lock
				if err := NewLockBucket().One(db, custodiatest.SequenceID(1), &lock); err != nil {
					t.Fatalf("cannot get lock: %s", err)
				}
				if !lock.Claimed {
					t.Fatal("lock must be claimed")
				}
			},
		},
		"emergency release bypasses the time lock once approved": {
			Requests: []Request{
				{
					Now:        now,
					Conditions: []custodia.Condition{ownerCond},
					Tx:         lockTx,
				},
				{
					// Below the threshold of two approvals.
					Now:        now + 1,
					Conditions: []custodia.Condition{emmaCond},
					Tx:         emergencyTx,
					WantErr:    ErrInsufficientApprovals,
				},
				{
					Now:        now + 2,
					Conditions: []custodia.Condition{emmaCond},
					Tx:         approveTx,
				},
				{
					Now:        now + 3,
					Conditions: []custodia.Condition{emmaCond},
					Tx:         approveTx,
					WantErr:    ErrAlreadyApproved,
				},
				{
					Now:        now + 4,
					Conditions: []custodia.Condition{ericCond},
					Tx:         approveTx,
				},
				{
					Now:        now + 5,
					Conditions: []custodia.Condition{ownerCond},
					Tx:         emergencyTx,
					WantErr:    errors.ErrUnauthorized,
				},
				{
					Now:        now + 6,
					Conditions: []custodia.Condition{ericCond},
					Tx:         emergencyTx,
				},
				{
					Now:        now + 7,
					Conditions: []custodia.Condition{emmaCond},
					Tx:         approveTx,
					WantErr:    ErrAlreadyClaimed,
				},
			},
			AfterTest: func(t *testing.T, db custodia.KVStore) {
				var lock Lock
				if err := NewLockBucket().One(db, custodiatest.SequenceID(1), &lock); err != nil {
					t.Fatalf("cannot get lock: %s", err)
				}
				if !lock.Claimed {
					t.Fatal("lock must be claimed")
				}
				if len(lock.EmergencyApprovals) != 2 {
					t.Fatalf("want 2 approvals, got %d", len(lock.EmergencyApprovals))
				}
			},
		},
		"only emergency signers can approve": {
			Requests: []Request{
				{
					Now:        now,
					Conditions: []custodia.Condition{ownerCond},
					Tx:         lockTx,
				},
				{
					Now:        now + 1,
					Conditions: []custodia.Condition{ownerCond},
					Tx:         approveTx,
					WantErr:    errors.ErrUnauthorized,
				},
			},
		},
		"vesting claims follow the linear schedule": {
			Requests: []Request{
				{
					Now:        now,
					Conditions: []custodia.Condition{otherCond},
					Tx: &custodiatest.Tx{Msg: &CreateVestingMsg{
						Metadata:    &custodia.Metadata{Schema: 1},
						Beneficiary: ownerCond.Address(),
						Total:       1000,
						Duration:    custodia.AsUnixDuration(100 * time.Second),
						Cliff:       custodia.AsUnixDuration(10 * time.Second),
					}},
					WantErr: errors.ErrUnauthorized,
				},
				{
					Now:        now,
					Conditions: []custodia.Condition{adminCond},
					Tx: &custodiatest.Tx{Msg: &CreateVestingMsg{
						Metadata:    &custodia.Metadata{Schema: 1},
						Beneficiary: ownerCond.Address(),
						Total:       1000,
						Duration:    custodia.AsUnixDuration(100 * time.Second),
						Cliff:       custodia.AsUnixDuration(10 * time.Second),
					}},
				},
				{
					// Before the cliff nothing is claimable.
					Now:        now + 5,
					Conditions: []custodia.Condition{ownerCond},
					Tx: &custodiatest.Tx{Msg: &ClaimVestedMsg{
						Metadata:  &custodia.Metadata{Schema: 1},
						VestingID: custodiatest.SequenceID(1),
					}},
					WantErr: ErrNothingToClaim,
				},
				{
					// Half way through, 500 is vested.
					Now:        now + 50,
					Conditions: []custodia.Condition{ownerCond},
					Tx: &custodiatest.Tx{Msg: &ClaimVestedMsg{
						Metadata:  &custodia.Metadata{Schema: 1},
						VestingID: custodiatest.SequenceID(1),
					}},
				},
				{
					// Nothing new vested since the last claim.
					Now:        now + 50,
					Conditions: []custodia.Condition{ownerCond},
					Tx: &custodiatest.Tx{Msg: &ClaimVestedMsg{
						Metadata:  &custodia.Metadata{Schema: 1},
						VestingID: custodiatest.SequenceID(1),
					}},
					WantErr: ErrNothingToClaim,
				},
				{
					// After the full duration the rest is released.
					Now:        now + 500,
					Conditions: []custodia.Condition{ownerCond},
					Tx: &custodiatest.Tx{Msg: &ClaimVestedMsg{
						Metadata:  &custodia.Metadata{Schema: 1},
						VestingID: custodiatest.SequenceID(1),
					}},
				},
			},
			AfterTest: func(t *testing.T, db custodia.KVStore) {
				var vesting Vesting
				if err := NewVestingBucket().One(db, custodiatest.SequenceID(1), &vesting); err != nil {
					t.Fatalf("cannot get vesting: %s", err)
				}
				if vesting.ClaimedAmount != vesting.TotalAmount {
					t.Fatalf("want fully claimed, got %d of %d", vesting.ClaimedAmount, vesting.TotalAmount)
				}
			},
		},
		"only the beneficiary can claim vested funds": {
			Requests: []Request{
				{
					Now:        now,
					Conditions: []custodia.Condition{adminCond},
					Tx: &custodiatest.Tx{Msg: &CreateVestingMsg{
						Metadata:    &custodia.Metadata{Schema: 1},
						Beneficiary: ownerCond.Address(),
						Total:       100,
						Duration:    custodia.AsUnixDuration(time.Second),
					}},
				},
				{
					Now:        now + 100,
					Conditions: []custodia.Condition{otherCond},
					Tx: &custodiatest.Tx{Msg: &ClaimVestedMsg{
						Metadata:  &custodia.Metadata{Schema: 1},
						VestingID: custodiatest.SequenceID(1),
					}},
					WantErr: errors.ErrUnauthorized,
				},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "vault")

			rt := app.NewRouter()
			auth := &custodiatest.CtxAuth{Key: "auth"}
			RegisterRoutes(rt, auth, nil)

			config := Config{
				Metadata: &custodia.Metadata{Schema: 1},
				Admin:    adminCond.Address(),
				EmergencySigners: []custodia.Address{
					emmaCond.Address(),
					ericCond.Address(),
				},
				EmergencyThreshold: 2,
			}
			if err := gconf.Save(db, "vault", &config); err != nil {
				t.Fatalf("cannot save configuration: %s", err)
			}

			for i, req := range tc.Requests {
				ctx := custodia.WithHeight(context.Background(), int64(100+i))
				ctx = custodia.WithChainID(ctx, "testchain-123")
				ctx = auth.SetConditions(ctx, req.Conditions...)
				ctx = custodia.WithBlockTime(ctx, req.Now.Time())

				cache := db.CacheWrap()
				if _, err := rt.Check(ctx, cache, req.Tx); !req.WantErr.Is(err) {
					t.Fatalf("unexpected %d check error: want %q, got %+v", i, req.WantErr, err)
				}
				cache.Discard()
				if _, err := rt.Deliver(ctx, db, req.Tx); !req.WantErr.Is(err) {
					t.Fatalf("unexpected %d deliver error: want %q, got %+v", i, req.WantErr, err)
				}
			}

			if tc.AfterTest != nil {
				tc.AfterTest(t, db)
			}
		})
	}
}
