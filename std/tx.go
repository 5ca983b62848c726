package std

import (
	"github.com/gogo/protobuf/proto"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/x/gov"
	"github.com/iov-one/custodia/x/roles"
	"github.com/iov-one/custodia/x/sigs"
	"github.com/iov-one/custodia/x/treasury"
	"github.com/iov-one/custodia/x/vault"
)

// Tx is the transaction envelope understood by the standard application.
// It carries exactly one message together with any number of signatures.
//
// Exactly one of the message fields must be set. Message fields start at
// field number 51 to leave room for more envelope level data.
type Tx struct {
	Signatures []*sigs.StdSignature `protobuf:"bytes,1,rep,name=signatures,proto3" json:"signatures,omitempty"`

	RolesInitMsg         *roles.InitMsg              `protobuf:"bytes,51,opt,name=roles_init_msg,json=rolesInitMsg,proto3" json:"roles_init_msg,omitempty"`
	AssignRoleMsg        *roles.AssignRoleMsg        `protobuf:"bytes,52,opt,name=assign_role_msg,json=assignRoleMsg,proto3" json:"assign_role_msg,omitempty"`
	RevokeRoleMsg        *roles.RevokeRoleMsg        `protobuf:"bytes,53,opt,name=revoke_role_msg,json=revokeRoleMsg,proto3" json:"revoke_role_msg,omitempty"`
	TransferOwnershipMsg *roles.TransferOwnershipMsg `protobuf:"bytes,54,opt,name=transfer_ownership_msg,json=transferOwnershipMsg,proto3" json:"transfer_ownership_msg,omitempty"`

	TreasuryInitMsg        *treasury.InitMsg              `protobuf:"bytes,55,opt,name=treasury_init_msg,json=treasuryInitMsg,proto3" json:"treasury_init_msg,omitempty"`
	DepositMsg             *treasury.DepositMsg           `protobuf:"bytes,56,opt,name=deposit_msg,json=depositMsg,proto3" json:"deposit_msg,omitempty"`
	ProposeWithdrawalMsg   *treasury.ProposeWithdrawalMsg `protobuf:"bytes,57,opt,name=propose_withdrawal_msg,json=proposeWithdrawalMsg,proto3" json:"propose_withdrawal_msg,omitempty"`
	ApproveWithdrawalMsg   *treasury.ApproveMsg           `protobuf:"bytes,58,opt,name=approve_withdrawal_msg,json=approveWithdrawalMsg,proto3" json:"approve_withdrawal_msg,omitempty"`
	ExecuteWithdrawalMsg   *treasury.ExecuteMsg           `protobuf:"bytes,59,opt,name=execute_withdrawal_msg,json=executeWithdrawalMsg,proto3" json:"execute_withdrawal_msg,omitempty"`
	AddSignerMsg           *treasury.AddSignerMsg         `protobuf:"bytes,60,opt,name=add_signer_msg,json=addSignerMsg,proto3" json:"add_signer_msg,omitempty"`
	RemoveSignerMsg        *treasury.RemoveSignerMsg      `protobuf:"bytes,61,opt,name=remove_signer_msg,json=removeSignerMsg,proto3" json:"remove_signer_msg,omitempty"`
	SetThresholdMsg        *treasury.SetThresholdMsg      `protobuf:"bytes,62,opt,name=set_threshold_msg,json=setThresholdMsg,proto3" json:"set_threshold_msg,omitempty"`
	TreasuryUpdateAdminMsg *treasury.UpdateAdminMsg       `protobuf:"bytes,63,opt,name=treasury_update_admin_msg,json=treasuryUpdateAdminMsg,proto3" json:"treasury_update_admin_msg,omitempty"`

	GovInitMsg         *gov.InitMsg           `protobuf:"bytes,64,opt,name=gov_init_msg,json=govInitMsg,proto3" json:"gov_init_msg,omitempty"`
	CreateProposalMsg  *gov.CreateProposalMsg `protobuf:"bytes,65,opt,name=create_proposal_msg,json=createProposalMsg,proto3" json:"create_proposal_msg,omitempty"`
	VoteMsg            *gov.VoteMsg           `protobuf:"bytes,66,opt,name=vote_msg,json=voteMsg,proto3" json:"vote_msg,omitempty"`
	TallyMsg           *gov.TallyMsg          `protobuf:"bytes,67,opt,name=tally_msg,json=tallyMsg,proto3" json:"tally_msg,omitempty"`
	ExecuteProposalMsg *gov.ExecuteMsg        `protobuf:"bytes,68,opt,name=execute_proposal_msg,json=executeProposalMsg,proto3" json:"execute_proposal_msg,omitempty"`
	SetQuorumMsg       *gov.SetQuorumMsg      `protobuf:"bytes,69,opt,name=set_quorum_msg,json=setQuorumMsg,proto3" json:"set_quorum_msg,omitempty"`
	GovUpdateAdminMsg  *gov.UpdateAdminMsg    `protobuf:"bytes,70,opt,name=gov_update_admin_msg,json=govUpdateAdminMsg,proto3" json:"gov_update_admin_msg,omitempty"`

	VaultInitMsg        *vault.InitMsg             `protobuf:"bytes,71,opt,name=vault_init_msg,json=vaultInitMsg,proto3" json:"vault_init_msg,omitempty"`
	CreateLockMsg       *vault.CreateLockMsg       `protobuf:"bytes,72,opt,name=create_lock_msg,json=createLockMsg,proto3" json:"create_lock_msg,omitempty"`
	ReleaseMsg          *vault.ReleaseMsg          `protobuf:"bytes,73,opt,name=release_msg,json=releaseMsg,proto3" json:"release_msg,omitempty"`
	ApproveEmergencyMsg *vault.ApproveEmergencyMsg `protobuf:"bytes,74,opt,name=approve_emergency_msg,json=approveEmergencyMsg,proto3" json:"approve_emergency_msg,omitempty"`
	EmergencyReleaseMsg *vault.EmergencyReleaseMsg `protobuf:"bytes,75,opt,name=emergency_release_msg,json=emergencyReleaseMsg,proto3" json:"emergency_release_msg,omitempty"`
	CreateVestingMsg    *vault.CreateVestingMsg    `protobuf:"bytes,76,opt,name=create_vesting_msg,json=createVestingMsg,proto3" json:"create_vesting_msg,omitempty"`
	ClaimVestedMsg      *vault.ClaimVestedMsg      `protobuf:"bytes,77,opt,name=claim_vested_msg,json=claimVestedMsg,proto3" json:"claim_vested_msg,omitempty"`

	BumpSequenceMsg *sigs.BumpSequenceMsg `protobuf:"bytes,78,opt,name=bump_sequence_msg,json=bumpSequenceMsg,proto3" json:"bump_sequence_msg,omitempty"`
}

var (
	_ custodia.Tx   = (*Tx)(nil)
	_ sigs.SignedTx = (*Tx)(nil)
	_ proto.Message = (*Tx)(nil)
)

func (tx *Tx) Reset()         { *tx = Tx{} }
func (tx *Tx) String() string { return "Tx{" + custodia.GetPath(tx) + "}" }
func (*Tx) ProtoMessage()     {}

// GetMsg returns the message carried by this transaction. Make sure to
// cover every message field declared above.
func (tx *Tx) GetMsg() (custodia.Msg, error) {
	switch {
	case tx.RolesInitMsg != nil:
		return tx.RolesInitMsg, nil
	case tx.AssignRoleMsg != nil:
		return tx.AssignRoleMsg, nil
	case tx.RevokeRoleMsg != nil:
		return tx.RevokeRoleMsg, nil
	case tx.TransferOwnershipMsg != nil:
		return tx.TransferOwnershipMsg, nil
	case tx.TreasuryInitMsg != nil:
		return tx.TreasuryInitMsg, nil
	case tx.DepositMsg != nil:
		return tx.DepositMsg, nil
	case tx.ProposeWithdrawalMsg != nil:
		return tx.ProposeWithdrawalMsg, nil
	case tx.ApproveWithdrawalMsg != nil:
		return tx.ApproveWithdrawalMsg, nil
	case tx.ExecuteWithdrawalMsg != nil:
		return tx.ExecuteWithdrawalMsg, nil
	case tx.AddSignerMsg != nil:
		return tx.AddSignerMsg, nil
	case tx.RemoveSignerMsg != nil:
		return tx.RemoveSignerMsg, nil
	case tx.SetThresholdMsg != nil:
		return tx.SetThresholdMsg, nil
	case tx.TreasuryUpdateAdminMsg != nil:
		return tx.TreasuryUpdateAdminMsg, nil
	case tx.GovInitMsg != nil:
		return tx.GovInitMsg, nil
	case tx.CreateProposalMsg != nil:
		return tx.CreateProposalMsg, nil
	case tx.VoteMsg != nil:
		return tx.VoteMsg, nil
	case tx.TallyMsg != nil:
		return tx.TallyMsg, nil
	case tx.ExecuteProposalMsg != nil:
		return tx.ExecuteProposalMsg, nil
	case tx.SetQuorumMsg != nil:
		return tx.SetQuorumMsg, nil
	case tx.GovUpdateAdminMsg != nil:
		return tx.GovUpdateAdminMsg, nil
	case tx.VaultInitMsg != nil:
		return tx.VaultInitMsg, nil
	case tx.CreateLockMsg != nil:
		return tx.CreateLockMsg, nil
	case tx.ReleaseMsg != nil:
		return tx.ReleaseMsg, nil
	case tx.ApproveEmergencyMsg != nil:
		return tx.ApproveEmergencyMsg, nil
	case tx.EmergencyReleaseMsg != nil:
		return tx.EmergencyReleaseMsg, nil
	case tx.CreateVestingMsg != nil:
		return tx.CreateVestingMsg, nil
	case tx.ClaimVestedMsg != nil:
		return tx.ClaimVestedMsg, nil
	case tx.BumpSequenceMsg != nil:
		return tx.BumpSequenceMsg, nil
	}
	return nil, errors.Wrap(errors.ErrMsg, "transaction without a message")
}

// GetSignBytes returns the bytes to sign. The signatures are temporarily
// unset, as the sign bytes must only cover the data itself, not previous
// signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	s := tx.Signatures
	tx.Signatures = nil
	defer func() { tx.Signatures = s }()
	return proto.Marshal(tx)
}

// GetSignatures returns the signatures attached to this transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// TxDecoder parses raw transaction bytes delivered by the consensus
// engine.
func TxDecoder(bz []byte) (custodia.Tx, error) {
	tx := new(Tx)
	if err := proto.Unmarshal(bz, tx); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return tx, nil
}
