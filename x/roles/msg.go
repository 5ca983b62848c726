package roles

import (
	"fmt"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/migration"
)

func init() {
	migration.MustRegister(1, &InitMsg{}, migration.NoModification)
	migration.MustRegister(1, &AssignRoleMsg{}, migration.NoModification)
	migration.MustRegister(1, &RevokeRoleMsg{}, migration.NoModification)
	migration.MustRegister(1, &TransferOwnershipMsg{}, migration.NoModification)
}

// InitMsg creates the extension configuration and grants the Owner role.
// It can be executed only once.
type InitMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Owner    custodia.Address   `protobuf:"bytes,2,opt,name=owner,proto3,casttype=github.com/iov-one/custodia.Address" json:"owner,omitempty"`
}

var _ custodia.Msg = (*InitMsg)(nil)

func (m *InitMsg) Reset()         { *m = InitMsg{} }
func (m *InitMsg) String() string { return fmt.Sprintf("InitMsg<%s>", m.Owner) }
func (*InitMsg) ProtoMessage()    {}

func (m *InitMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (InitMsg) Path() string {
	return "roles/init"
}

func (m *InitMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(m.Owner.Validate(), "owner"))
	return errs
}

// AssignRoleMsg grants a role to the target account. The signer's own role
// must strictly outrank the granted one.
type AssignRoleMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Target   custodia.Address   `protobuf:"bytes,2,opt,name=target,proto3,casttype=github.com/iov-one/custodia.Address" json:"target,omitempty"`
	Role     Role               `protobuf:"varint,3,opt,name=role,proto3,enum=roles.Role" json:"role,omitempty"`
}

var _ custodia.Msg = (*AssignRoleMsg)(nil)

func (m *AssignRoleMsg) Reset()         { *m = AssignRoleMsg{} }
func (m *AssignRoleMsg) String() string { return fmt.Sprintf("AssignRoleMsg<%s %s>", m.Target, m.Role) }
func (*AssignRoleMsg) ProtoMessage()    {}

func (m *AssignRoleMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (AssignRoleMsg) Path() string {
	return "roles/assign_role"
}

func (m *AssignRoleMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(m.Target.Validate(), "target"))
	errs = errors.Append(errs, errors.Wrap(m.Role.Validate(), "role"))
	if m.Role == RoleOwner {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "owner role can only be transferred"))
	}
	return errs
}

// RevokeRoleMsg removes the role record of the target account. The signer
// must outrank the target.
type RevokeRoleMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Target   custodia.Address   `protobuf:"bytes,2,opt,name=target,proto3,casttype=github.com/iov-one/custodia.Address" json:"target,omitempty"`
}

var _ custodia.Msg = (*RevokeRoleMsg)(nil)

func (m *RevokeRoleMsg) Reset()         { *m = RevokeRoleMsg{} }
func (m *RevokeRoleMsg) String() string { return fmt.Sprintf("RevokeRoleMsg<%s>", m.Target) }
func (*RevokeRoleMsg) ProtoMessage()    {}

func (m *RevokeRoleMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (RevokeRoleMsg) Path() string {
	return "roles/revoke_role"
}

func (m *RevokeRoleMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(m.Target.Validate(), "target"))
	return errs
}

// TransferOwnershipMsg hands the Owner role over to another account. The
// previous owner is demoted to Admin so the ledger keeps exactly one owner.
type TransferOwnershipMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	NewOwner custodia.Address   `protobuf:"bytes,2,opt,name=new_owner,json=newOwner,proto3,casttype=github.com/iov-one/custodia.Address" json:"new_owner,omitempty"`
}

var _ custodia.Msg = (*TransferOwnershipMsg)(nil)

func (m *TransferOwnershipMsg) Reset()         { *m = TransferOwnershipMsg{} }
func (m *TransferOwnershipMsg) String() string { return fmt.Sprintf("TransferOwnershipMsg<%s>", m.NewOwner) }
func (*TransferOwnershipMsg) ProtoMessage()    {}

func (m *TransferOwnershipMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

func (TransferOwnershipMsg) Path() string {
	return "roles/transfer_ownership"
}

func (m *TransferOwnershipMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(m.NewOwner.Validate(), "new owner"))
	return errs
}
