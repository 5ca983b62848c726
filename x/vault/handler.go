package vault

import (
	"encoding/binary"
	"strconv"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/gconf"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/orm"
	"github.com/iov-one/custodia/x"
	"github.com/iov-one/custodia/x/roles"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	initCost    int64 = 1
	lockCost    int64 = 2
	releaseCost int64 = 1
	approveCost int64 = 1
	vestCost    int64 = 2
	claimCost   int64 = 1
)

const (
	tagAction    = "vault-action"
	tagLockID    = "lock-id"
	tagVestingID = "vesting-id"
	tagAmount    = "amount"
	tagApprovals = "approvals"
	tagOwner     = "owner"
)

// RegisterRoutes will instantiate and register all handlers in this
// package. The authority is optional. When provided, accounts holding at
// least the Admin role may create vesting schedules next to the stored
// admin.
func RegisterRoutes(r custodia.Registry, auth x.Authenticator, authority roles.Authority) {
	r = migration.SchemaMigratingRegistry("vault", r)
	locks := NewLockBucket()
	vestings := NewVestingBucket()

	r.Handle(&InitMsg{}, &initHandler{auth: auth})
	r.Handle(&CreateLockMsg{}, &createLockHandler{auth: auth, locks: locks})
	r.Handle(&ReleaseMsg{}, &releaseHandler{auth: auth, locks: locks})
	r.Handle(&ApproveEmergencyMsg{}, &approveEmergencyHandler{auth: auth, locks: locks})
	r.Handle(&EmergencyReleaseMsg{}, &emergencyReleaseHandler{auth: auth, locks: locks})
	r.Handle(&CreateVestingMsg{}, &createVestingHandler{auth: auth, authority: authority, vestings: vestings})
	r.Handle(&ClaimVestedMsg{}, &claimVestedHandler{auth: auth, vestings: vestings})
}

type initHandler struct {
	auth x.Authenticator
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

	conf := Config{
		Metadata:           &custodia.Metadata{Schema: 1},
		Admin:              msg.Admin,
		EmergencySigners:   msg.EmergencySigners,
		EmergencyThreshold: msg.EmergencyThreshold,
	}
	if err := gconf.Save(db, "vault", &conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("init")},
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
	switch err := gconf.Load(db, "vault", &conf); {
	case err == nil:
		return nil, errors.Wrap(ErrAlreadyInitialized, "configuration exists")
	case errors.ErrNotFound.Is(err):
		// Expected, first initialization.
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
	if !h.auth.HasAddress(ctx, msg.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	return &msg, nil
}

type createLockHandler struct {
	auth  x.Authenticator
	locks orm.ModelBucket
}

func (h *createLockHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: lockCost}, nil
}

func (h *createLockHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, owner, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custodia.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}

	lock := Lock{
		Metadata: &custodia.Metadata{Schema: 1},
		Owner:    owner,
		Amount:   msg.Amount,
		Memo:     msg.Memo,
		LockedAt: now,
		UnlockAt: now.Add(msg.Duration.Duration()),
	}
	id, err := h.locks.Put(db, nil, &lock)
	if err != nil {
		return nil, errors.Wrap(err, "store lock")
	}

	res := custodia.DeliverResult{
		Data: id,
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("lock")},
			{Key: []byte(tagLockID), Value: []byte(strconv.FormatUint(uint64FromID(id), 10))},
			{Key: []byte(tagAmount), Value: []byte(strconv.FormatInt(msg.Amount, 10))},
		},
	}
	return &res, nil
}

func (h *createLockHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*CreateLockMsg, custodia.Address, error) {
	var msg CreateLockMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if _, err := loadConfig(db); err != nil {
		return nil, nil, err
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	return &msg, signer.Address(), nil
}

type releaseHandler struct {
	auth  x.Authenticator
	locks orm.ModelBucket
}

func (h *releaseHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: releaseCost}, nil
}

func (h *releaseHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, lock, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	lock.Claimed = true
	if _, err := h.locks.Put(db, msg.LockID, lock); err != nil {
		return nil, errors.Wrap(err, "store lock")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("claim")},
			{Key: []byte(tagLockID), Value: []byte(strconv.FormatUint(uint64FromID(msg.LockID), 10))},
			{Key: []byte(tagAmount), Value: []byte(strconv.FormatInt(lock.Amount, 10))},
		},
	}
	return &res, nil
}

func (h *releaseHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*ReleaseMsg, *Lock, error) {
	var msg ReleaseMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if _, err := loadConfig(db); err != nil {
		return nil, nil, err
	}
	var lock Lock
	if err := h.locks.One(db, msg.LockID, &lock); err != nil {
		return nil, nil, errors.Wrap(err, "load lock")
	}
	if !h.auth.HasAddress(ctx, lock.Owner) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}
	if lock.Claimed {
		return nil, nil, errors.Wrap(ErrAlreadyClaimed, "cannot release twice")
	}
	now, err := custodia.BlockUnixTime(ctx)
	if err != nil {
		return nil, nil, err
	}
	if now < lock.UnlockAt {
		return nil, nil, errors.Wrapf(ErrNotYetUnlockable, "unlocks at %s", lock.UnlockAt)
	}
	return &msg, &lock, nil
}

type approveEmergencyHandler struct {
	auth  x.Authenticator
	locks orm.ModelBucket
}

func (h *approveEmergencyHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: approveCost}, nil
}

func (h *approveEmergencyHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, lock, signer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	lock.EmergencyApprovals = append(lock.EmergencyApprovals, signer)
	if _, err := h.locks.Put(db, msg.LockID, lock); err != nil {
		return nil, errors.Wrap(err, "store lock")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("emrg_ap")},
			{Key: []byte(tagLockID), Value: []byte(strconv.FormatUint(uint64FromID(msg.LockID), 10))},
			{Key: []byte(tagApprovals), Value: []byte(strconv.Itoa(len(lock.EmergencyApprovals)))},
		},
	}
	return &res, nil
}

func (h *approveEmergencyHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*ApproveEmergencyMsg, *Lock, custodia.Address, error) {
	var msg ApproveEmergencyMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, nil, err
	}
	signer := emergencySigner(ctx, h.auth, conf)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "emergency signer required")
	}
	var lock Lock
	if err := h.locks.One(db, msg.LockID, &lock); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load lock")
	}
	if lock.Claimed {
		return nil, nil, nil, errors.Wrap(ErrAlreadyClaimed, "cannot approve")
	}
	if lock.HasApproval(signer) {
		return nil, nil, nil, errors.Wrapf(ErrAlreadyApproved, "signer %s", signer)
	}
	return &msg, &lock, signer, nil
}

type emergencyReleaseHandler struct {
	auth  x.Authenticator
	locks orm.ModelBucket
}

func (h *emergencyReleaseHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: releaseCost}, nil
}

func (h *emergencyReleaseHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, lock, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	lock.Claimed = true
	if _, err := h.locks.Put(db, msg.LockID, lock); err != nil {
		return nil, errors.Wrap(err, "store lock")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("emrg_ex")},
			{Key: []byte(tagLockID), Value: []byte(strconv.FormatUint(uint64FromID(msg.LockID), 10))},
			{Key: []byte(tagAmount), Value: []byte(strconv.FormatInt(lock.Amount, 10))},
			{Key: []byte(tagOwner), Value: []byte(lock.Owner.String())},
		},
	}
	return &res, nil
}

func (h *emergencyReleaseHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*EmergencyReleaseMsg, *Lock, error) {
	var msg EmergencyReleaseMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, err
	}
	if emergencySigner(ctx, h.auth, conf) == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "emergency signer required")
	}
	var lock Lock
	if err := h.locks.One(db, msg.LockID, &lock); err != nil {
		return nil, nil, errors.Wrap(err, "load lock")
	}
	if lock.Claimed {
		return nil, nil, errors.Wrap(ErrAlreadyClaimed, "cannot release twice")
	}
	if len(lock.EmergencyApprovals) < int(conf.EmergencyThreshold) {
		return nil, nil, errors.Wrapf(ErrInsufficientApprovals, "%d of %d", len(lock.EmergencyApprovals), conf.EmergencyThreshold)
	}
	return &msg, &lock, nil
}

type createVestingHandler struct {
	auth      x.Authenticator
	authority roles.Authority
	vestings  orm.ModelBucket
}

func (h *createVestingHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: vestCost}, nil
}

func (h *createVestingHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custodia.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}

	vesting := Vesting{
		Metadata:    &custodia.Metadata{Schema: 1},
		Beneficiary: msg.Beneficiary,
		TotalAmount: msg.Total,
		StartTime:   now,
		Duration:    msg.Duration,
		Cliff:       msg.Cliff,
	}
	id, err := h.vestings.Put(db, nil, &vesting)
	if err != nil {
		return nil, errors.Wrap(err, "store vesting")
	}

	res := custodia.DeliverResult{
		Data: id,
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("vest")},
			{Key: []byte(tagVestingID), Value: []byte(strconv.FormatUint(uint64FromID(id), 10))},
			{Key: []byte(tagAmount), Value: []byte(strconv.FormatInt(msg.Total, 10))},
		},
	}
	return &res, nil
}

func (h *createVestingHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*CreateVestingMsg, error) {
	var msg CreateVestingMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, err
	}
	if err := isAdmin(ctx, db, h.auth, h.authority, conf); err != nil {
		return nil, err
	}
	return &msg, nil
}

type claimVestedHandler struct {
	auth     x.Authenticator
	vestings orm.ModelBucket
}

func (h *claimVestedHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: claimCost}, nil
}

func (h *claimVestedHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, vesting, claimable, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	vesting.ClaimedAmount += claimable
	if _, err := h.vestings.Put(db, msg.VestingID, vesting); err != nil {
		return nil, errors.Wrap(err, "store vesting")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("v_claim")},
			{Key: []byte(tagVestingID), Value: []byte(strconv.FormatUint(uint64FromID(msg.VestingID), 10))},
			{Key: []byte(tagAmount), Value: []byte(strconv.FormatInt(claimable, 10))},
		},
	}
	return &res, nil
}

func (h *claimVestedHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*ClaimVestedMsg, *Vesting, int64, error) {
	var msg ClaimVestedMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, 0, errors.Wrap(err, "load msg")
	}
	if _, err := loadConfig(db); err != nil {
		return nil, nil, 0, err
	}
	var vesting Vesting
	if err := h.vestings.One(db, msg.VestingID, &vesting); err != nil {
		return nil, nil, 0, errors.Wrap(err, "load vesting")
	}
	if !h.auth.HasAddress(ctx, vesting.Beneficiary) {
		return nil, nil, 0, errors.Wrap(errors.ErrUnauthorized, "beneficiary signature required")
	}
	now, err := custodia.BlockUnixTime(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	claimable := vesting.ClaimableAt(now)
	if claimable <= 0 {
		return nil, nil, 0, errors.Wrapf(ErrNothingToClaim, "claimed %d of %d", vesting.ClaimedAmount, vesting.TotalAmount)
	}
	return &msg, &vesting, claimable, nil
}

// emergencySigner returns the first member of the emergency signer set
// whose signature is on the transaction, or nil.
func emergencySigner(ctx custodia.Context, auth x.Authenticator, conf *Config) custodia.Address {
	for _, s := range conf.EmergencySigners {
		if auth.HasAddress(ctx, s) {
			return s
		}
	}
	return nil
}

// isAdmin ensures the transaction was authorized by the stored admin or,
// when an authority is configured, by an account holding at least the
// Admin role.
func isAdmin(ctx custodia.Context, db custodia.ReadOnlyKVStore, auth x.Authenticator, authority roles.Authority, conf *Config) error {
	if auth.HasAddress(ctx, conf.Admin) {
		return nil
	}
	if authority != nil {
		for _, addr := range x.GetAddresses(ctx, auth) {
			ok, err := authority.HasPermission(db, addr, roles.RoleAdmin)
			if err != nil {
				return errors.Wrap(err, "authority")
			}
			if ok {
				return nil
			}
		}
	}
	return errors.Wrap(errors.ErrUnauthorized, "admin signature required")
}

// uint64FromID decodes an 8 byte sequence id for tag rendering.
func uint64FromID(id []byte) uint64 {
	if len(id) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(id)
}
