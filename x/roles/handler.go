package roles

import (
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/gconf"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/orm"
	"github.com/iov-one/custodia/x"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	initCost   int64 = 1
	assignCost int64 = 1
)

const (
	tagAction = "roles-action"
	tagTarget = "target"
	tagRole   = "role"
	tagOwner  = "owner"
)

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r custodia.Registry, auth x.Authenticator) {
	r = migration.SchemaMigratingRegistry("roles", r)
	bucket := NewUserRoleBucket()

	r.Handle(&InitMsg{}, &initHandler{auth: auth, bucket: bucket})
	r.Handle(&AssignRoleMsg{}, &assignRoleHandler{auth: auth, bucket: bucket})
	r.Handle(&RevokeRoleMsg{}, &revokeRoleHandler{auth: auth, bucket: bucket})
	r.Handle(&TransferOwnershipMsg{}, &transferOwnershipHandler{auth: auth, bucket: bucket})
}

type initHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

func (h *initHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: initCost}, nil
}

func (h *initHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custodia.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}

	conf := Config{
		Metadata: &custodia.Metadata{Schema: 1},
		Owner:    msg.Owner,
	}
	if err := gconf.Save(db, "roles", &conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}
	owner := UserRole{
		Metadata:   &custodia.Metadata{Schema: 1},
		Address:    msg.Owner,
		Role:       RoleOwner,
		AssignedAt: now,
		AssignedBy: msg.Owner,
	}
	if _, err := h.bucket.Put(db, msg.Owner, &owner); err != nil {
		return nil, errors.Wrap(err, "store owner role")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("init")},
			{Key: []byte(tagOwner), Value: []byte(msg.Owner.String())},
		},
	}
	return &res, nil
}

func (h *initHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*InitMsg, error) {
	var msg InitMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	var conf Config
	switch err := gconf.Load(db, "roles", &conf); {
	case err == nil:
		return nil, errors.Wrap(ErrAlreadyInitialized, "configuration exists")
	case errors.ErrNotFound.Is(err):
		// Expected, first initialization.
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}
	return &msg, nil
}

type assignRoleHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

func (h *assignRoleHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: assignCost}, nil
}

func (h *assignRoleHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, signer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custodia.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}

	role := UserRole{
		Metadata:   &custodia.Metadata{Schema: 1},
		Address:    msg.Target,
		Role:       msg.Role,
		AssignedAt: now,
		AssignedBy: signer,
	}
	if _, err := h.bucket.Put(db, msg.Target, &role); err != nil {
		return nil, errors.Wrap(err, "store role")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("assign")},
			{Key: []byte(tagTarget), Value: []byte(msg.Target.String())},
			{Key: []byte(tagRole), Value: []byte(msg.Role.String())},
		},
	}
	return &res, nil
}

func (h *assignRoleHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*AssignRoleMsg, custodia.Address, error) {
	var msg AssignRoleMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if _, err := loadConfig(db); err != nil {
		return nil, nil, err
	}
	signer, signerRole, err := signerWithRole(ctx, db, h.auth, h.bucket)
	if err != nil {
		return nil, nil, err
	}
	// Granting a role requires a strictly higher rank than the grant.
	if signerRole <= msg.Role {
		return nil, nil, errors.Wrapf(ErrInsufficientRole, "%s cannot grant %s", signerRole, msg.Role)
	}
	return &msg, signer, nil
}

type revokeRoleHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

func (h *revokeRoleHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: assignCost}, nil
}

func (h *revokeRoleHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Delete(db, msg.Target); err != nil {
		return nil, errors.Wrap(err, "delete role")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("revoke")},
			{Key: []byte(tagTarget), Value: []byte(msg.Target.String())},
		},
	}
	return &res, nil
}

func (h *revokeRoleHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*RevokeRoleMsg, error) {
	var msg RevokeRoleMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := loadConfig(db); err != nil {
		return nil, err
	}
	_, signerRole, err := signerWithRole(ctx, db, h.auth, h.bucket)
	if err != nil {
		return nil, err
	}
	var target UserRole
	if err := h.bucket.One(db, msg.Target, &target); err != nil {
		return nil, errors.Wrap(err, "load target role")
	}
	if target.Role == RoleOwner {
		return nil, errors.Wrap(errors.ErrState, "owner role cannot be revoked")
	}
	if signerRole <= target.Role {
		return nil, errors.Wrapf(ErrInsufficientRole, "%s cannot revoke %s", signerRole, target.Role)
	}
	return &msg, nil
}

type transferOwnershipHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

func (h *transferOwnershipHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: assignCost}, nil
}

func (h *transferOwnershipHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custodia.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}

	oldOwner := conf.Owner

	// The previous owner keeps administrating the ledger.
	demoted := UserRole{
		Metadata:   &custodia.Metadata{Schema: 1},
		Address:    oldOwner,
		Role:       RoleAdmin,
		AssignedAt: now,
		AssignedBy: oldOwner,
	}
	if _, err := h.bucket.Put(db, oldOwner, &demoted); err != nil {
		return nil, errors.Wrap(err, "demote old owner")
	}
	promoted := UserRole{
		Metadata:   &custodia.Metadata{Schema: 1},
		Address:    msg.NewOwner,
		Role:       RoleOwner,
		AssignedAt: now,
		AssignedBy: oldOwner,
	}
	if _, err := h.bucket.Put(db, msg.NewOwner, &promoted); err != nil {
		return nil, errors.Wrap(err, "promote new owner")
	}

	conf.Owner = msg.NewOwner
	if err := gconf.Save(db, "roles", conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("owner")},
			{Key: []byte(tagOwner), Value: []byte(msg.NewOwner.String())},
		},
	}
	return &res, nil
}

func (h *transferOwnershipHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*TransferOwnershipMsg, *Config, error) {
	var msg TransferOwnershipMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}
	if msg.NewOwner.Equals(conf.Owner) {
		return nil, nil, errors.Wrap(errors.ErrInput, "already the owner")
	}
	return &msg, conf, nil
}

// signerWithRole returns the main signer of the transaction together with
// its stored role. Accounts without a role record are rejected.
func signerWithRole(ctx custodia.Context, db custodia.ReadOnlyKVStore, auth x.Authenticator, bucket orm.ModelBucket) (custodia.Address, Role, error) {
	signer := x.MainSigner(ctx, auth)
	if signer == nil {
		return nil, RoleInvalid, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	addr := signer.Address()
	var ur UserRole
	switch err := bucket.One(db, addr, &ur); {
	case err == nil:
		return addr, ur.Role, nil
	case errors.ErrNotFound.Is(err):
		return nil, RoleInvalid, errors.Wrap(ErrInsufficientRole, "signer has no role")
	default:
		return nil, RoleInvalid, errors.Wrap(err, "load signer role")
	}
}
