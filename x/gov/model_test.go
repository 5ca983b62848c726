package gov

import (
	"testing"

	"github.com/iov-one/custodia/custodiatest"
)

func TestProposalTally(t *testing.T) {
	cases := map[string]struct {
		VotesFor     uint32
		VotesAgainst uint32
		MemberCount  int
		Quorum       uint32
		WantStatus   Status
	}{
		"no votes expires": {
			MemberCount: 5,
			Quorum:      50,
			WantStatus:  StatusExpired,
		},
		"majority with quorum passes": {
			VotesFor:     3,
			VotesAgainst: 1,
			MemberCount:  5,
			Quorum:       50,
			WantStatus:   StatusPassed,
		},
		"tie rejects even with full participation": {
			VotesFor:     2,
			VotesAgainst: 2,
			MemberCount:  4,
			Quorum:       50,
			WantStatus:   StatusRejected,
		},
		"majority below quorum rejects": {
			VotesFor:     1,
			VotesAgainst: 0,
			MemberCount:  10,
			Quorum:       50,
			WantStatus:   StatusRejected,
		},
		"participation exactly at quorum counts": {
			VotesFor:     2,
			VotesAgainst: 0,
			MemberCount:  4,
			Quorum:       50,
			WantStatus:   StatusPassed,
		},
		"against majority rejects": {
			VotesFor:     1,
			VotesAgainst: 3,
			MemberCount:  4,
			Quorum:       50,
			WantStatus:   StatusRejected,
		},
		"single member electorate": {
			VotesFor:    1,
			MemberCount: 1,
			Quorum:      100,
			WantStatus:  StatusPassed,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			p := Proposal{
				Status:       StatusActive,
				VotesFor:     tc.VotesFor,
				VotesAgainst: tc.VotesAgainst,
			}
			p.Tally(tc.MemberCount, tc.Quorum)
			if p.Status != tc.WantStatus {
				t.Fatalf("want %s, got %s", tc.WantStatus, p.Status)
			}
		})
	}
}

func TestProposalVote(t *testing.T) {
	var p Proposal

	alice := custodiatest.NewCondition().Address()
	bob := custodiatest.NewCondition().Address()

	p.Vote(alice, true)
	p.Vote(bob, false)

	if p.VotesFor != 1 || p.VotesAgainst != 1 {
		t.Fatalf("unexpected tally: %d/%d", p.VotesFor, p.VotesAgainst)
	}
	if !p.HasVoted(alice) || !p.HasVoted(bob) {
		t.Fatal("both voters must be recorded")
	}
}
