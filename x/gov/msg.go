package gov

import (
	"fmt"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/migration"
)

func init() {
	migration.MustRegister(1, &InitMsg{}, migration.NoModification)
	migration.MustRegister(1, &CreateProposalMsg{}, migration.NoModification)
	migration.MustRegister(1, &VoteMsg{}, migration.NoModification)
	migration.MustRegister(1, &TallyMsg{}, migration.NoModification)
	migration.MustRegister(1, &ExecuteMsg{}, migration.NoModification)
	migration.MustRegister(1, &SetQuorumMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateAdminMsg{}, migration.NoModification)
}

// InitMsg creates the governance configuration. It can be executed only
// once.
type InitMsg struct {
	Metadata     *custodia.Metadata    `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Admin        custodia.Address      `protobuf:"bytes,2,opt,name=admin,proto3,casttype=github.com/iov-one/custodia.Address" json:"admin,omitempty"`
	Members      []custodia.Address    `protobuf:"bytes,3,rep,name=members,proto3,casttype=github.com/iov-one/custodia.Address" json:"members,omitempty"`
	Quorum       uint32                `protobuf:"varint,4,opt,name=quorum,proto3" json:"quorum,omitempty"`
	VotingPeriod custodia.UnixDuration `protobuf:"varint,5,opt,name=voting_period,json=votingPeriod,proto3,casttype=github.com/iov-one/custodia.UnixDuration" json:"voting_period,omitempty"`
}

var _ custodia.Msg = (*InitMsg)(nil)

func (m *InitMsg) Reset()         { *m = InitMsg{} }
func (m *InitMsg) String() string { return fmt.Sprintf("InitMsg<%d members>", len(m.Members)) }
func (*InitMsg) ProtoMessage()    {}

func (m *InitMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (InitMsg) Path() string {
	return "gov/init"
}

func (m *InitMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(m.Admin.Validate(), "admin"))
	errs = errors.Append(errs, validateQuorum(m.Quorum))
	if m.VotingPeriod <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "voting period must be positive"))
	}
	errs = errors.Append(errs, validateMembers(m.Members))
	return errs
}

// CreateProposalMsg opens a proposal for voting. Members only.
type CreateProposalMsg struct {
	Metadata    *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Title       string             `protobuf:"bytes,2,opt,name=title,proto3" json:"title,omitempty"`
	Description string             `protobuf:"bytes,3,opt,name=description,proto3" json:"description,omitempty"`
	Action      Action             `protobuf:"varint,4,opt,name=action,proto3,enum=gov.Action" json:"action,omitempty"`
	Amount      int64              `protobuf:"varint,5,opt,name=amount,proto3" json:"amount,omitempty"`
	Target      custodia.Address   `protobuf:"bytes,6,opt,name=target,proto3,casttype=github.com/iov-one/custodia.Address" json:"target,omitempty"`
}

var _ custodia.Msg = (*CreateProposalMsg)(nil)

func (m *CreateProposalMsg) Reset()         { *m = CreateProposalMsg{} }
func (m *CreateProposalMsg) String() string { return fmt.Sprintf("CreateProposalMsg<%q>", m.Title) }
func (*CreateProposalMsg) ProtoMessage()    {}

func (m *CreateProposalMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (CreateProposalMsg) Path() string {
	return "gov/create_proposal"
}

func (m *CreateProposalMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	if m.Title == "" {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "title"))
	}
	if len(m.Title) > maxTitleSize {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "title too long"))
	}
	if m.Description == "" {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "description"))
	}
	if len(m.Description) > maxDescriptionSize {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "description too long"))
	}
	errs = errors.Append(errs, errors.Wrap(m.Action.Validate(), "action"))
	if m.Amount < 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount cannot be negative"))
	}
	if m.Action.NeedsTarget() {
		errs = errors.Append(errs, errors.Wrap(m.Target.Validate(), "target"))
	}
	return errs
}

// VoteMsg casts a member vote on an active proposal.
type VoteMsg struct {
	Metadata   *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	ProposalID []byte             `protobuf:"bytes,2,opt,name=proposal_id,json=proposalId,proto3" json:"proposal_id,omitempty"`
	// VoteFor is true to support the proposal.
	VoteFor bool `protobuf:"varint,3,opt,name=vote_for,json=voteFor,proto3" json:"vote_for,omitempty"`
}

var _ custodia.Msg = (*VoteMsg)(nil)

func (m *VoteMsg) Reset()         { *m = VoteMsg{} }
func (m *VoteMsg) String() string { return fmt.Sprintf("VoteMsg<%X %t>", m.ProposalID, m.VoteFor) }
func (*VoteMsg) ProtoMessage()    {}

func (m *VoteMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (VoteMsg) Path() string {
	return "gov/vote"
}

func (m *VoteMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, validateProposalID(m.ProposalID))
	return errs
}

// TallyMsg finalizes the vote of a proposal whose voting period is over.
// Anyone can tally.
type TallyMsg struct {
	Metadata   *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	ProposalID []byte             `protobuf:"bytes,2,opt,name=proposal_id,json=proposalId,proto3" json:"proposal_id,omitempty"`
}

var _ custodia.Msg = (*TallyMsg)(nil)

func (m *TallyMsg) Reset()         { *m = TallyMsg{} }
func (m *TallyMsg) String() string { return fmt.Sprintf("TallyMsg<%X>", m.ProposalID) }
func (*TallyMsg) ProtoMessage()    {}

func (m *TallyMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (TallyMsg) Path() string {
	return "gov/tally"
}

func (m *TallyMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, validateProposalID(m.ProposalID))
	return errs
}

// ExecuteMsg applies the action of a passed proposal. Admin or proposer
// only.
type ExecuteMsg struct {
	Metadata   *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	ProposalID []byte             `protobuf:"bytes,2,opt,name=proposal_id,json=proposalId,proto3" json:"proposal_id,omitempty"`
}

var _ custodia.Msg = (*ExecuteMsg)(nil)

func (m *ExecuteMsg) Reset()         { *m = ExecuteMsg{} }
func (m *ExecuteMsg) String() string { return fmt.Sprintf("ExecuteMsg<%X>", m.ProposalID) }
func (*ExecuteMsg) ProtoMessage()    {}

func (m *ExecuteMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (ExecuteMsg) Path() string {
	return "gov/execute"
}

func (m *ExecuteMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, validateProposalID(m.ProposalID))
	return errs
}

// SetQuorumMsg changes the quorum percentage directly. Admin only.
type SetQuorumMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Quorum   uint32             `protobuf:"varint,2,opt,name=quorum,proto3" json:"quorum,omitempty"`
}

var _ custodia.Msg = (*SetQuorumMsg)(nil)

func (m *SetQuorumMsg) Reset()         { *m = SetQuorumMsg{} }
func (m *SetQuorumMsg) String() string { return fmt.Sprintf("SetQuorumMsg<%d%%>", m.Quorum) }
func (*SetQuorumMsg) ProtoMessage()    {}

func (m *SetQuorumMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (SetQuorumMsg) Path() string {
	return "gov/set_quorum"
}

func (m *SetQuorumMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, validateQuorum(m.Quorum))
	return errs
}

// UpdateAdminMsg hands governance administration over to another account.
// Admin only.
type UpdateAdminMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	NewAdmin custodia.Address   `protobuf:"bytes,2,opt,name=new_admin,json=newAdmin,proto3,casttype=github.com/iov-one/custodia.Address" json:"new_admin,omitempty"`
}

var _ custodia.Msg = (*UpdateAdminMsg)(nil)

func (m *UpdateAdminMsg) Reset()         { *m = UpdateAdminMsg{} }
func (m *UpdateAdminMsg) String() string { return fmt.Sprintf("UpdateAdminMsg<%s>", m.NewAdmin) }
func (*UpdateAdminMsg) ProtoMessage()    {}

func (m *UpdateAdminMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (UpdateAdminMsg) Path() string {
	return "gov/update_admin"
}

func (m *UpdateAdminMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(m.NewAdmin.Validate(), "new admin"))
	return errs
}

// validateProposalID ensures the id is an 8 byte sequence value.
func validateProposalID(id []byte) error {
	if len(id) != 8 {
		return errors.Wrap(errors.ErrInput, "invalid proposal id")
	}
	return nil
}
