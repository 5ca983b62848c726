package roles

import (
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/gconf"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/orm"
)

func init() {
	migration.MustRegister(1, &UserRole{}, migration.NoModification)
}

var _ orm.Model = (*UserRole)(nil)

// Validate ensures the role record can be stored.
func (m *UserRole) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(m.Address.Validate(), "address"))
	errs = errors.Append(errs, errors.Wrap(m.Role.Validate(), "role"))
	errs = errors.Append(errs, errors.Wrap(m.AssignedBy.Validate(), "assigned by"))
	return errs
}

// NewUserRoleBucket returns a bucket for keeping role records, keyed by the
// account address.
func NewUserRoleBucket() orm.ModelBucket {
	b := orm.NewModelBucket("roles", &UserRole{})
	return migration.NewModelBucket("roles", b)
}

// Authority answers whether an account holds at least a given role. Other
// extensions should depend on this interface instead of the bucket, so
// tests can provide a canned implementation.
type Authority interface {
	HasPermission(db custodia.ReadOnlyKVStore, addr custodia.Address, min Role) (bool, error)
}

// BucketAuthority is the ledger backed Authority implementation.
type BucketAuthority struct {
	bucket orm.ModelBucket
}

var _ Authority = BucketAuthority{}

// NewAuthority returns an Authority reading from the role bucket.
func NewAuthority() BucketAuthority {
	return BucketAuthority{bucket: NewUserRoleBucket()}
}

// HasPermission returns true if the account holds a role that covers the
// given one. A missing role record means no permission, never an error.
func (a BucketAuthority) HasPermission(db custodia.ReadOnlyKVStore, addr custodia.Address, min Role) (bool, error) {
	var ur UserRole
	switch err := a.bucket.One(db, addr, &ur); {
	case err == nil:
		return ur.Role.Covers(min), nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, errors.Wrap(err, "load role")
	}
}

// HasPermission returns true if the account holds a role covering min.
func HasPermission(db custodia.ReadOnlyKVStore, addr custodia.Address, min Role) (bool, error) {
	return NewAuthority().HasPermission(db, addr, min)
}

// IsOwner returns true if the account holds the Owner role.
func IsOwner(db custodia.ReadOnlyKVStore, addr custodia.Address) (bool, error) {
	return HasPermission(db, addr, RoleOwner)
}

// IsAdminOrAbove returns true if the account holds Admin or Owner role.
func IsAdminOrAbove(db custodia.ReadOnlyKVStore, addr custodia.Address) (bool, error) {
	return HasPermission(db, addr, RoleAdmin)
}

// IsMemberOrAbove returns true if the account holds Member or better role.
func IsMemberOrAbove(db custodia.ReadOnlyKVStore, addr custodia.Address) (bool, error) {
	return HasPermission(db, addr, RoleMember)
}

// loadConfig returns the extension configuration, failing with
// ErrNotInitialized when the extension was never set up.
func loadConfig(db custodia.ReadOnlyKVStore) (*Config, error) {
	var conf Config
	switch err := gconf.Load(db, "roles", &conf); {
	case err == nil:
		return &conf, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrap(ErrNotInitialized, "no configuration")
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
}
