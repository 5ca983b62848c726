package gov

import (
	"fmt"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
)

// Action describes what happens when a proposal is executed.
type Action int32

const (
	ActionInvalid Action = 0
	// ActionAddMember extends the electorate with the proposal target.
	ActionAddMember Action = 1
	// ActionRemoveMember removes the proposal target from the
	// electorate.
	ActionRemoveMember Action = 2
	// ActionSetQuorum applies the proposal amount as the new quorum
	// percentage.
	ActionSetQuorum Action = 3
	// ActionFunding asks for funds, recorded for external movers.
	ActionFunding Action = 4
	// ActionGeneral is a signalling proposal with no on-ledger effect.
	ActionGeneral Action = 5
)

var actionName = map[Action]string{
	ActionInvalid:      "invalid",
	ActionAddMember:    "add_member",
	ActionRemoveMember: "remove_member",
	ActionSetQuorum:    "set_quorum",
	ActionFunding:      "funding",
	ActionGeneral:      "general",
}

func (a Action) String() string {
	if name, ok := actionName[a]; ok {
		return name
	}
	return fmt.Sprintf("action:%d", int32(a))
}

// Validate returns an error unless this is one of the declared actions.
func (a Action) Validate() error {
	if a < ActionAddMember || a > ActionGeneral {
		return errors.Wrapf(errors.ErrInput, "unknown action %d", int32(a))
	}
	return nil
}

// NeedsTarget returns true when executing the action requires a target
// address.
func (a Action) NeedsTarget() bool {
	return a == ActionAddMember || a == ActionRemoveMember
}

// Status is the lifecycle state of a proposal. Transitions are monotone:
// an active proposal can become passed, rejected or expired, and only a
// passed proposal can become executed.
type Status int32

const (
	StatusInvalid  Status = 0
	StatusActive   Status = 1
	StatusPassed   Status = 2
	StatusRejected Status = 3
	StatusExecuted Status = 4
	StatusExpired  Status = 5
)

var statusName = map[Status]string{
	StatusInvalid:  "invalid",
	StatusActive:   "active",
	StatusPassed:   "passed",
	StatusRejected: "rejected",
	StatusExecuted: "executed",
	StatusExpired:  "expired",
}

func (s Status) String() string {
	if name, ok := statusName[s]; ok {
		return name
	}
	return fmt.Sprintf("status:%d", int32(s))
}

// Config holds the governance settings: the electorate, the quorum
// percentage and the voting period applied to new proposals.
type Config struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Admin    custodia.Address   `protobuf:"bytes,2,opt,name=admin,proto3,casttype=github.com/iov-one/custodia.Address" json:"admin,omitempty"`
	Members  []custodia.Address `protobuf:"bytes,3,rep,name=members,proto3,casttype=github.com/iov-one/custodia.Address" json:"members,omitempty"`
	// Quorum is the minimal participation in percent of the electorate
	// for a tally to pass a proposal.
	Quorum uint32 `protobuf:"varint,4,opt,name=quorum,proto3" json:"quorum,omitempty"`
	// VotingPeriod is how long a proposal accepts votes.
	VotingPeriod custodia.UnixDuration `protobuf:"varint,5,opt,name=voting_period,json=votingPeriod,proto3,casttype=github.com/iov-one/custodia.UnixDuration" json:"voting_period,omitempty"`
}

func (c *Config) Reset()         { *c = Config{} }
func (c *Config) String() string { return fmt.Sprintf("Config<%d members, quorum %d%%>", len(c.Members), c.Quorum) }
func (*Config) ProtoMessage()    {}

func (c *Config) GetMetadata() *custodia.Metadata {
	if c == nil {
		return nil
	}
	return c.Metadata
}

// Proposal is a single governance proposal with its running tally.
type Proposal struct {
	Metadata    *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Title       string             `protobuf:"bytes,2,opt,name=title,proto3" json:"title,omitempty"`
	Description string             `protobuf:"bytes,3,opt,name=description,proto3" json:"description,omitempty"`
	Action      Action             `protobuf:"varint,4,opt,name=action,proto3,enum=gov.Action" json:"action,omitempty"`
	// Amount is the funding amount or, for set_quorum actions, the new
	// quorum percentage.
	Amount int64 `protobuf:"varint,5,opt,name=amount,proto3" json:"amount,omitempty"`
	// Target is the account a member change applies to.
	Target   custodia.Address `protobuf:"bytes,6,opt,name=target,proto3,casttype=github.com/iov-one/custodia.Address" json:"target,omitempty"`
	Proposer custodia.Address `protobuf:"bytes,7,opt,name=proposer,proto3,casttype=github.com/iov-one/custodia.Address" json:"proposer,omitempty"`

	VotesFor     uint32 `protobuf:"varint,8,opt,name=votes_for,json=votesFor,proto3" json:"votes_for,omitempty"`
	VotesAgainst uint32 `protobuf:"varint,9,opt,name=votes_against,json=votesAgainst,proto3" json:"votes_against,omitempty"`
	// Voters is the set of members that cast a vote.
	Voters []custodia.Address `protobuf:"bytes,10,rep,name=voters,proto3,casttype=github.com/iov-one/custodia.Address" json:"voters,omitempty"`

	Status    Status            `protobuf:"varint,11,opt,name=status,proto3,enum=gov.Status" json:"status,omitempty"`
	CreatedAt custodia.UnixTime `protobuf:"varint,12,opt,name=created_at,json=createdAt,proto3,casttype=github.com/iov-one/custodia.UnixTime" json:"created_at,omitempty"`
	VotingEnd custodia.UnixTime `protobuf:"varint,13,opt,name=voting_end,json=votingEnd,proto3,casttype=github.com/iov-one/custodia.UnixTime" json:"voting_end,omitempty"`
}

func (p *Proposal) Reset()         { *p = Proposal{} }
func (p *Proposal) String() string { return fmt.Sprintf("Proposal<%q %s>", p.Title, p.Status) }
func (*Proposal) ProtoMessage()    {}

func (p *Proposal) GetMetadata() *custodia.Metadata {
	if p == nil {
		return nil
	}
	return p.Metadata
}
