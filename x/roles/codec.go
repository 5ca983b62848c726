package roles

import (
	"fmt"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
)

// Role is the rank of an account within the access control hierarchy.
// Roles are strictly ordered and a higher role always includes the
// permissions of the lower ones.
type Role int32

const (
	RoleInvalid Role = 0
	RoleViewer  Role = 1
	RoleMember  Role = 2
	RoleAdmin   Role = 3
	RoleOwner   Role = 4
)

var roleName = map[Role]string{
	RoleInvalid: "invalid",
	RoleViewer:  "viewer",
	RoleMember:  "member",
	RoleAdmin:   "admin",
	RoleOwner:   "owner",
}

func (r Role) String() string {
	if name, ok := roleName[r]; ok {
		return name
	}
	return fmt.Sprintf("role:%d", int32(r))
}

// Validate returns an error unless this is one of the declared roles.
func (r Role) Validate() error {
	if r < RoleViewer || r > RoleOwner {
		return errors.Wrapf(errors.ErrInput, "unknown role %d", int32(r))
	}
	return nil
}

// Covers returns true if holding this role grants the permissions of the
// other role.
func (r Role) Covers(min Role) bool {
	return r >= min
}

// UserRole is the role record of a single account. The bucket is keyed by
// the account address so there is at most one record per account.
type UserRole struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	// Address of the account that holds the role.
	Address custodia.Address `protobuf:"bytes,2,opt,name=address,proto3,casttype=github.com/iov-one/custodia.Address" json:"address,omitempty"`
	Role    Role             `protobuf:"varint,3,opt,name=role,proto3,enum=roles.Role" json:"role,omitempty"`
	// AssignedAt is the block time of the latest assignment.
	AssignedAt custodia.UnixTime `protobuf:"varint,4,opt,name=assigned_at,json=assignedAt,proto3,casttype=github.com/iov-one/custodia.UnixTime" json:"assigned_at,omitempty"`
	// AssignedBy is the account that granted the role.
	AssignedBy custodia.Address `protobuf:"bytes,5,opt,name=assigned_by,json=assignedBy,proto3,casttype=github.com/iov-one/custodia.Address" json:"assigned_by,omitempty"`
}

func (m *UserRole) Reset()         { *m = UserRole{} }
func (m *UserRole) String() string { return fmt.Sprintf("UserRole<%s %s>", m.Address, m.Role) }
func (*UserRole) ProtoMessage()    {}

func (m *UserRole) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}

// Config holds the extension configuration. Its existence marks the
// extension as initialized.
type Config struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	// Owner is the single account holding the Owner role.
	Owner custodia.Address `protobuf:"bytes,2,opt,name=owner,proto3,casttype=github.com/iov-one/custodia.Address" json:"owner,omitempty"`
}

func (c *Config) Reset()         { *c = Config{} }
func (c *Config) String() string { return fmt.Sprintf("Config<owner=%s>", c.Owner) }
func (*Config) ProtoMessage()    {}

func (c *Config) GetMetadata() *custodia.Metadata {
	if c == nil {
		return nil
	}
	return c.Metadata
}

// Validate ensures the configuration can be stored.
func (c *Config) Validate() error {
	var errs error
	errs = errors.Append(errs, c.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(c.Owner.Validate(), "owner"))
	return errs
}
