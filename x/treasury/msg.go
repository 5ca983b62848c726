package treasury

import (
	"fmt"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/migration"
)

func init() {
	migration.MustRegister(1, &InitMsg{}, migration.NoModification)
	migration.MustRegister(1, &DepositMsg{}, migration.NoModification)
	migration.MustRegister(1, &ProposeWithdrawalMsg{}, migration.NoModification)
	migration.MustRegister(1, &ApproveMsg{}, migration.NoModification)
	migration.MustRegister(1, &ExecuteMsg{}, migration.NoModification)
	migration.MustRegister(1, &AddSignerMsg{}, migration.NoModification)
	migration.MustRegister(1, &RemoveSignerMsg{}, migration.NoModification)
	migration.MustRegister(1, &SetThresholdMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateAdminMsg{}, migration.NoModification)
}

// InitMsg creates the treasury configuration. It can be executed only once.
type InitMsg struct {
	Metadata  *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Admin     custodia.Address   `protobuf:"bytes,2,opt,name=admin,proto3,casttype=github.com/iov-one/custodia.Address" json:"admin,omitempty"`
	Threshold uint32             `protobuf:"varint,3,opt,name=threshold,proto3" json:"threshold,omitempty"`
	Signers   []custodia.Address `protobuf:"bytes,4,rep,name=signers,proto3,casttype=github.com/iov-one/custodia.Address" json:"signers,omitempty"`
}

var _ custodia.Msg = (*InitMsg)(nil)

func (m *InitMsg) Reset()         { *m = InitMsg{} }
func (m *InitMsg) String() string { return fmt.Sprintf("InitMsg<%d of %d>", m.Threshold, len(m.Signers)) }
func (*InitMsg) ProtoMessage()    {}

func (m *InitMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (InitMsg) Path() string {
	return "treasury/init"
}

func (m *InitMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(m.Admin.Validate(), "admin"))
	errs = errors.Append(errs, validatePolicy(m.Threshold, m.Signers))
	return errs
}

// DepositMsg adds funds to the pool. Any account can deposit but the
// source of the funds must have signed the transaction.
type DepositMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	// From is the account funding the deposit. When empty the main
	// transaction signer is used.
	From   custodia.Address `protobuf:"bytes,2,opt,name=from,proto3,casttype=github.com/iov-one/custodia.Address" json:"from,omitempty"`
	Amount int64            `protobuf:"varint,3,opt,name=amount,proto3" json:"amount,omitempty"`
}

var _ custodia.Msg = (*DepositMsg)(nil)

func (m *DepositMsg) Reset()         { *m = DepositMsg{} }
func (m *DepositMsg) String() string { return fmt.Sprintf("DepositMsg<%d>", m.Amount) }
func (*DepositMsg) ProtoMessage()    {}

func (m *DepositMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (DepositMsg) Path() string {
	return "treasury/deposit"
}

func (m *DepositMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	if len(m.From) != 0 {
		errs = errors.Append(errs, errors.Wrap(m.From.Validate(), "from"))
	}
	if m.Amount <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount must be positive"))
	}
	return errs
}

// ProposeWithdrawalMsg opens a withdrawal proposal that signers can
// approve. Approvals start empty, the proposer must approve explicitly.
type ProposeWithdrawalMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	To       custodia.Address   `protobuf:"bytes,2,opt,name=to,proto3,casttype=github.com/iov-one/custodia.Address" json:"to,omitempty"`
	Amount   int64              `protobuf:"varint,3,opt,name=amount,proto3" json:"amount,omitempty"`
	Memo     string             `protobuf:"bytes,4,opt,name=memo,proto3" json:"memo,omitempty"`
}

var _ custodia.Msg = (*ProposeWithdrawalMsg)(nil)

func (m *ProposeWithdrawalMsg) Reset()         { *m = ProposeWithdrawalMsg{} }
func (m *ProposeWithdrawalMsg) String() string { return fmt.Sprintf("ProposeWithdrawalMsg<%d to %s>", m.Amount, m.To) }
func (*ProposeWithdrawalMsg) ProtoMessage()    {}

func (m *ProposeWithdrawalMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (ProposeWithdrawalMsg) Path() string {
	return "treasury/propose"
}

func (m *ProposeWithdrawalMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(m.To.Validate(), "to"))
	if m.Amount <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount must be positive"))
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "memo too long"))
	}
	return errs
}

// ApproveMsg records the signer's approval on a pending withdrawal.
type ApproveMsg struct {
	Metadata      *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	TransactionID []byte             `protobuf:"bytes,2,opt,name=transaction_id,json=transactionId,proto3" json:"transaction_id,omitempty"`
}

var _ custodia.Msg = (*ApproveMsg)(nil)

func (m *ApproveMsg) Reset()         { *m = ApproveMsg{} }
func (m *ApproveMsg) String() string { return fmt.Sprintf("ApproveMsg<%X>", m.TransactionID) }
func (*ApproveMsg) ProtoMessage()    {}

func (m *ApproveMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (ApproveMsg) Path() string {
	return "treasury/approve"
}

func (m *ApproveMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, validateSequenceID(m.TransactionID))
	return errs
}

// ExecuteMsg pays out an approved withdrawal.
type ExecuteMsg struct {
	Metadata      *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	TransactionID []byte             `protobuf:"bytes,2,opt,name=transaction_id,json=transactionId,proto3" json:"transaction_id,omitempty"`
}

var _ custodia.Msg = (*ExecuteMsg)(nil)

func (m *ExecuteMsg) Reset()         { *m = ExecuteMsg{} }
func (m *ExecuteMsg) String() string { return fmt.Sprintf("ExecuteMsg<%X>", m.TransactionID) }
func (*ExecuteMsg) ProtoMessage()    {}

func (m *ExecuteMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (ExecuteMsg) Path() string {
	return "treasury/execute"
}

func (m *ExecuteMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, validateSequenceID(m.TransactionID))
	return errs
}

// AddSignerMsg extends the signer set. Admin only.
type AddSignerMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Signer   custodia.Address   `protobuf:"bytes,2,opt,name=signer,proto3,casttype=github.com/iov-one/custodia.Address" json:"signer,omitempty"`
}

var _ custodia.Msg = (*AddSignerMsg)(nil)

func (m *AddSignerMsg) Reset()         { *m = AddSignerMsg{} }
func (m *AddSignerMsg) String() string { return fmt.Sprintf("AddSignerMsg<%s>", m.Signer) }
func (*AddSignerMsg) ProtoMessage()    {}

func (m *AddSignerMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (AddSignerMsg) Path() string {
	return "treasury/add_signer"
}

func (m *AddSignerMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(m.Signer.Validate(), "signer"))
	return errs
}

// RemoveSignerMsg shrinks the signer set. Admin only. The threshold must
// remain satisfiable.
type RemoveSignerMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Signer   custodia.Address   `protobuf:"bytes,2,opt,name=signer,proto3,casttype=github.com/iov-one/custodia.Address" json:"signer,omitempty"`
}

var _ custodia.Msg = (*RemoveSignerMsg)(nil)

func (m *RemoveSignerMsg) Reset()         { *m = RemoveSignerMsg{} }
func (m *RemoveSignerMsg) String() string { return fmt.Sprintf("RemoveSignerMsg<%s>", m.Signer) }
func (*RemoveSignerMsg) ProtoMessage()    {}

func (m *RemoveSignerMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (RemoveSignerMsg) Path() string {
	return "treasury/remove_signer"
}

func (m *RemoveSignerMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(m.Signer.Validate(), "signer"))
	return errs
}

// SetThresholdMsg changes the approval threshold. Admin only.
type SetThresholdMsg struct {
	Metadata  *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Threshold uint32             `protobuf:"varint,2,opt,name=threshold,proto3" json:"threshold,omitempty"`
}

var _ custodia.Msg = (*SetThresholdMsg)(nil)

func (m *SetThresholdMsg) Reset()         { *m = SetThresholdMsg{} }
func (m *SetThresholdMsg) String() string { return fmt.Sprintf("SetThresholdMsg<%d>", m.Threshold) }
func (*SetThresholdMsg) ProtoMessage()    {}

func (m *SetThresholdMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (SetThresholdMsg) Path() string {
	return "treasury/set_threshold"
}

func (m *SetThresholdMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	if m.Threshold == 0 {
		errs = errors.Append(errs, errors.Wrap(ErrInvalidThreshold, "threshold is zero"))
	}
	return errs
}

// UpdateAdminMsg hands treasury administration over to another account.
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
	return "treasury/update_admin"
}

func (m *UpdateAdminMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(m.NewAdmin.Validate(), "new admin"))
	return errs
}

// validateSequenceID ensures the id is an 8 byte sequence value.
func validateSequenceID(id []byte) error {
	if len(id) != 8 {
		return errors.Wrap(errors.ErrInput, "invalid transaction id")
	}
	return nil
}
