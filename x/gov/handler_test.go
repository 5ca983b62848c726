package gov

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
		adminCond    = custodiatest.NewCondition()
		aliceCond    = custodiatest.NewCondition()
		bobCond      = custodiatest.NewCondition()
		charlieCond  = custodiatest.NewCondition()
		strangerCond = custodiatest.NewCondition()

		now          = custodia.UnixTime(1572247483)
		votingPeriod = custodia.AsUnixDuration(time.Hour)
	)

	newProposalTx := func(action Action, amount int64, target custodia.Address) custodia.Tx {
		return &custodiatest.Tx{Msg: &CreateProposalMsg{
			Metadata:    &custodia.Metadata{Schema: 1},
			Title:       "a proposal",
			Description: "description",
			Action:      action,
			Amount:      amount,
			Target:      target,
		}}
	}
	voteTx := func(voteFor bool) custodia.Tx {
		return &custodiatest.Tx{Msg: &VoteMsg{
			Metadata:   &custodia.Metadata{Schema: 1},
			ProposalID: custodiatest.SequenceID(1),
			VoteFor:    voteFor,
		}}
	}
	tallyTx := &custodiatest.Tx{Msg: &TallyMsg{
		Metadata:   &custodia.Metadata{Schema: 1},
		ProposalID: custodiatest.SequenceID(1),
	}}
	executeTx := &custodiatest.Tx{Msg: &ExecuteMsg{
		Metadata:   &custodia.Metadata{Schema: 1},
		ProposalID: custodiatest.SequenceID(1),
	}}

	cases := map[string]struct {
		Requests  []Request
		AfterTest func(t *testing.T, db custodia.KVStore)
	}{
		"passed member change is applied on execution": {
			Requests: []Request{
				{
					Now:        now,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         newProposalTx(ActionAddMember, 0, strangerCond.Address()),
				},
				{
					Now:        now + 1,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         voteTx(true),
				},
				{
					Now:        now + 2,
					Conditions: []custodia.Condition{bobCond},
					Tx:         voteTx(true),
				},
				{
					// Voting is still open.
					Now:        now + 3,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         tallyTx,
					WantErr:    ErrVotingClosed,
				},
				{
					Now:        now.Add(2 * time.Hour),
					Conditions: []custodia.Condition{strangerCond},
					Tx:         tallyTx,
				},
				{
					Now:        now.Add(2 * time.Hour),
					Conditions: []custodia.Condition{aliceCond},
					Tx:         executeTx,
				},
			},
			AfterTest: func(t *testing.T, db custodia.KVStore) {
				conf, err := loadConfig(db)
				if err != nil {
					t.Fatalf("cannot load configuration: %s", err)
				}
				if !conf.IsMember(strangerCond.Address()) {
					t.Fatal("new member must be in the electorate")
				}
				var proposal Proposal
				if err := NewProposalBucket().One(db, custodiatest.SequenceID(1), &proposal); err != nil {
					t.Fatalf("cannot get proposal: %s", err)
				}
				if proposal.Status != StatusExecuted {
					t.Fatalf("want executed status, got %s", proposal.Status)
				}
			},
		},
		"tied vote rejects": {
			Requests: []Request{
				{
					Now:        now,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         newProposalTx(ActionGeneral, 0, nil),
				},
				{
					Now:        now + 1,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         voteTx(true),
				},
				{
					Now:        now + 2,
					Conditions: []custodia.Condition{bobCond},
					Tx:         voteTx(false),
				},
				{
					Now:        now.Add(2 * time.Hour),
					Conditions: []custodia.Condition{aliceCond},
					Tx:         tallyTx,
				},
				{
					Now:        now.Add(2 * time.Hour),
					Conditions: []custodia.Condition{aliceCond},
					Tx:         executeTx,
					WantErr:    errors.ErrState,
				},
			},
			AfterTest: func(t *testing.T, db custodia.KVStore) {
				var proposal Proposal
				if err := NewProposalBucket().One(db, custodiatest.SequenceID(1), &proposal); err != nil {
					t.Fatalf("cannot get proposal: %s", err)
				}
				if proposal.Status != StatusRejected {
					t.Fatalf("want rejected status, got %s", proposal.Status)
				}
			},
		},
		"quorum not reached rejects": {
			Requests: []Request{
				{
					Now:        now,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         newProposalTx(ActionGeneral, 0, nil),
				},
				{
					// A single vote of three members is below the 66% quorum.
					Now:        now + 1,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         voteTx(true),
				},
				{
					Now:        now.Add(2 * time.Hour),
					Conditions: []custodia.Condition{aliceCond},
					Tx:         tallyTx,
				},
			},
			AfterTest: func(t *testing.T, db custodia.KVStore) {
				var proposal Proposal
				if err := NewProposalBucket().One(db, custodiatest.SequenceID(1), &proposal); err != nil {
					t.Fatalf("cannot get proposal: %s", err)
				}
				if proposal.Status != StatusRejected {
					t.Fatalf("want rejected status, got %s", proposal.Status)
				}
			},
		},
		"proposal with no votes expires": {
			Requests: []Request{
				{
					Now:        now,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         newProposalTx(ActionGeneral, 0, nil),
				},
				{
					Now:        now.Add(2 * time.Hour),
					Conditions: []custodia.Condition{aliceCond},
					Tx:         tallyTx,
				},
			},
			AfterTest: func(t *testing.T, db custodia.KVStore) {
				var proposal Proposal
				if err := NewProposalBucket().One(db, custodiatest.SequenceID(1), &proposal); err != nil {
					t.Fatalf("cannot get proposal: %s", err)
				}
				if proposal.Status != StatusExpired {
					t.Fatalf("want expired status, got %s", proposal.Status)
				}
			},
		},
		"member cannot vote twice": {
			Requests: []Request{
				{
					Now:        now,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         newProposalTx(ActionGeneral, 0, nil),
				},
				{
					Now:        now + 1,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         voteTx(true),
				},
				{
					Now:        now + 2,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         voteTx(false),
					WantErr:    ErrAlreadyVoted,
				},
			},
		},
		"voting after the period is closed": {
			Requests: []Request{
				{
					Now:        now,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         newProposalTx(ActionGeneral, 0, nil),
				},
				{
					Now:        now.Add(2 * time.Hour),
					Conditions: []custodia.Condition{aliceCond},
					Tx:         voteTx(true),
					WantErr:    ErrVotingClosed,
				},
			},
		},
		"only members can propose and vote": {
			Requests: []Request{
				{
					Now:        now,
					Conditions: []custodia.Condition{strangerCond},
					Tx:         newProposalTx(ActionGeneral, 0, nil),
					WantErr:    errors.ErrUnauthorized,
				},
				{
					Now:        now + 1,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         newProposalTx(ActionGeneral, 0, nil),
				},
				{
					Now:        now + 2,
					Conditions: []custodia.Condition{strangerCond},
					Tx:         voteTx(true),
					WantErr:    errors.ErrUnauthorized,
				},
			},
		},
		"passed quorum change is applied on execution": {
			Requests: []Request{
				{
					Now:        now,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         newProposalTx(ActionSetQuorum, 51, nil),
				},
				{
					Now:        now + 1,
					Conditions: []custodia.Condition{aliceCond},
					Tx:         voteTx(true),
				},
				{
					Now:        now + 2,
					Conditions: []custodia.Condition{bobCond},
					Tx:         voteTx(true),
				},
				{
					Now:        now.Add(2 * time.Hour),
					Conditions: []custodia.Condition{aliceCond},
					Tx:         tallyTx,
				},
				{
					// Neither the admin nor the proposer signed.
					Now:        now.Add(2 * time.Hour),
					Conditions: []custodia.Condition{bobCond},
					Tx:         executeTx,
					WantErr:    errors.ErrUnauthorized,
				},
				{
					Now:        now.Add(2 * time.Hour),
					Conditions: []custodia.Condition{adminCond},
					Tx:         executeTx,
				},
			},
			AfterTest: func(t *testing.T, db custodia.KVStore) {
				conf, err := loadConfig(db)
				if err != nil {
					t.Fatalf("cannot load configuration: %s", err)
				}
				if conf.Quorum != 51 {
					t.Fatalf("want quorum 51, got %d", conf.Quorum)
				}
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "gov")

			rt := app.NewRouter()
			auth := &custodiatest.CtxAuth{Key: "auth"}
			RegisterRoutes(rt, auth, nil)

			config := Config{
				Metadata: &custodia.Metadata{Schema: 1},
				Admin:    adminCond.Address(),
				Members: []custodia.Address{
					aliceCond.Address(),
					bobCond.Address(),
					charlieCond.Address(),
				},
				Quorum:       66,
				VotingPeriod: votingPeriod,
			}
			if err := gconf.Save(db, "gov", &config); err != nil {
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
