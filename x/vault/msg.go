package vault

import (
	"fmt"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/migration"
)

func init() {
	migration.MustRegister(1, &InitMsg{}, migration.NoModification)
	migration.MustRegister(1, &CreateLockMsg{}, migration.NoModification)
	migration.MustRegister(1, &ReleaseMsg{}, migration.NoModification)
	migration.MustRegister(1, &ApproveEmergencyMsg{}, migration.NoModification)
	migration.MustRegister(1, &EmergencyReleaseMsg{}, migration.NoModification)
	migration.MustRegister(1, &CreateVestingMsg{}, migration.NoModification)
	migration.MustRegister(1, &ClaimVestedMsg{}, migration.NoModification)
}

// InitMsg creates the vault configuration. It can be executed only once.
type InitMsg struct {
	Metadata           *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Admin              custodia.Address   `protobuf:"bytes,2,opt,name=admin,proto3,casttype=github.com/iov-one/custodia.Address" json:"admin,omitempty"`
	EmergencySigners   []custodia.Address `protobuf:"bytes,3,rep,name=emergency_signers,json=emergencySigners,proto3,casttype=github.com/iov-one/custodia.Address" json:"emergency_signers,omitempty"`
	EmergencyThreshold uint32             `protobuf:"varint,4,opt,name=emergency_threshold,json=emergencyThreshold,proto3" json:"emergency_threshold,omitempty"`
}

var _ custodia.Msg = (*InitMsg)(nil)

func (m *InitMsg) Reset() { *m = InitMsg{} }
func (m *InitMsg) String() string {
	return fmt.Sprintf("InitMsg<%d of %d>", m.EmergencyThreshold, len(m.EmergencySigners))
}
func (*InitMsg) ProtoMessage() {}

func (m *InitMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (InitMsg) Path() string {
	return "vault/init"
}

func (m *InitMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(m.Admin.Validate(), "admin"))
	errs = errors.Append(errs, validatePolicy(m.EmergencyThreshold, m.EmergencySigners))
	return errs
}

// CreateLockMsg locks funds of the main signer until the given duration
// passed.
type CreateLockMsg struct {
	Metadata *custodia.Metadata    `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Amount   int64                 `protobuf:"varint,2,opt,name=amount,proto3" json:"amount,omitempty"`
	Duration custodia.UnixDuration `protobuf:"varint,3,opt,name=duration,proto3,casttype=github.com/iov-one/custodia.UnixDuration" json:"duration,omitempty"`
	Memo     string                `protobuf:"bytes,4,opt,name=memo,proto3" json:"memo,omitempty"`
}

var _ custodia.Msg = (*CreateLockMsg)(nil)

func (m *CreateLockMsg) Reset()         { *m = CreateLockMsg{} }
func (m *CreateLockMsg) String() string { return fmt.Sprintf("CreateLockMsg<%d for %s>", m.Amount, m.Duration) }
func (*CreateLockMsg) ProtoMessage()    {}

func (m *CreateLockMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (CreateLockMsg) Path() string {
	return "vault/create_lock"
}

func (m *CreateLockMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	if m.Amount <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount must be positive"))
	}
	if m.Duration <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "duration must be positive"))
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "memo too long"))
	}
	return errs
}

// ReleaseMsg claims a lock back once its release time passed. Owner only.
type ReleaseMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	LockID   []byte             `protobuf:"bytes,2,opt,name=lock_id,json=lockId,proto3" json:"lock_id,omitempty"`
}

var _ custodia.Msg = (*ReleaseMsg)(nil)

func (m *ReleaseMsg) Reset()         { *m = ReleaseMsg{} }
func (m *ReleaseMsg) String() string { return fmt.Sprintf("ReleaseMsg<%X>", m.LockID) }
func (*ReleaseMsg) ProtoMessage()    {}

func (m *ReleaseMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (ReleaseMsg) Path() string {
	return "vault/release"
}

func (m *ReleaseMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, validateLockID(m.LockID))
	return errs
}

// ApproveEmergencyMsg records an emergency signer approval for an early
// release of a lock.
type ApproveEmergencyMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	LockID   []byte             `protobuf:"bytes,2,opt,name=lock_id,json=lockId,proto3" json:"lock_id,omitempty"`
}

var _ custodia.Msg = (*ApproveEmergencyMsg)(nil)

func (m *ApproveEmergencyMsg) Reset()         { *m = ApproveEmergencyMsg{} }
func (m *ApproveEmergencyMsg) String() string { return fmt.Sprintf("ApproveEmergencyMsg<%X>", m.LockID) }
func (*ApproveEmergencyMsg) ProtoMessage()    {}

func (m *ApproveEmergencyMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (ApproveEmergencyMsg) Path() string {
	return "vault/approve_emergency"
}

func (m *ApproveEmergencyMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, validateLockID(m.LockID))
	return errs
}

// EmergencyReleaseMsg releases a lock before its time. It requires at
// least the emergency threshold of approvals and pays out to the lock
// owner.
type EmergencyReleaseMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	LockID   []byte             `protobuf:"bytes,2,opt,name=lock_id,json=lockId,proto3" json:"lock_id,omitempty"`
}

var _ custodia.Msg = (*EmergencyReleaseMsg)(nil)

func (m *EmergencyReleaseMsg) Reset()         { *m = EmergencyReleaseMsg{} }
func (m *EmergencyReleaseMsg) String() string { return fmt.Sprintf("EmergencyReleaseMsg<%X>", m.LockID) }
func (*EmergencyReleaseMsg) ProtoMessage()    {}

func (m *EmergencyReleaseMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (EmergencyReleaseMsg) Path() string {
	return "vault/emergency_release"
}

func (m *EmergencyReleaseMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, validateLockID(m.LockID))
	return errs
}

// CreateVestingMsg sets up a vesting schedule for a beneficiary. Admin
// only.
type CreateVestingMsg struct {
	Metadata    *custodia.Metadata    `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Beneficiary custodia.Address      `protobuf:"bytes,2,opt,name=beneficiary,proto3,casttype=github.com/iov-one/custodia.Address" json:"beneficiary,omitempty"`
	Total       int64                 `protobuf:"varint,3,opt,name=total,proto3" json:"total,omitempty"`
	Duration    custodia.UnixDuration `protobuf:"varint,4,opt,name=duration,proto3,casttype=github.com/iov-one/custodia.UnixDuration" json:"duration,omitempty"`
	Cliff       custodia.UnixDuration `protobuf:"varint,5,opt,name=cliff,proto3,casttype=github.com/iov-one/custodia.UnixDuration" json:"cliff,omitempty"`
}

var _ custodia.Msg = (*CreateVestingMsg)(nil)

func (m *CreateVestingMsg) Reset() { *m = CreateVestingMsg{} }
func (m *CreateVestingMsg) String() string {
	return fmt.Sprintf("CreateVestingMsg<%s %d>", m.Beneficiary, m.Total)
}
func (*CreateVestingMsg) ProtoMessage() {}

func (m *CreateVestingMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (CreateVestingMsg) Path() string {
	return "vault/create_vesting"
}

func (m *CreateVestingMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(m.Beneficiary.Validate(), "beneficiary"))
	if m.Total <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "total must be positive"))
	}
	if m.Duration <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "duration must be positive"))
	}
	if m.Cliff < 0 || m.Cliff > m.Duration {
		errs = errors.Append(errs, errors.Wrap(ErrInvalidCliff, "cliff out of range"))
	}
	return errs
}

// ClaimVestedMsg releases the vested amount that was not claimed yet.
// Beneficiary only.
type ClaimVestedMsg struct {
	Metadata  *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	VestingID []byte             `protobuf:"bytes,2,opt,name=vesting_id,json=vestingId,proto3" json:"vesting_id,omitempty"`
}

var _ custodia.Msg = (*ClaimVestedMsg)(nil)

func (m *ClaimVestedMsg) Reset()         { *m = ClaimVestedMsg{} }
func (m *ClaimVestedMsg) String() string { return fmt.Sprintf("ClaimVestedMsg<%X>", m.VestingID) }
func (*ClaimVestedMsg) ProtoMessage()    {}

func (m *ClaimVestedMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (ClaimVestedMsg) Path() string {
	return "vault/claim_vested"
}

func (m *ClaimVestedMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	if len(m.VestingID) != 8 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "invalid vesting id"))
	}
	return errs
}

// validateLockID ensures the id is an 8 byte sequence value.
func validateLockID(id []byte) error {
	if len(id) != 8 {
		return errors.Wrap(errors.ErrInput, "invalid lock id")
	}
	return nil
}
