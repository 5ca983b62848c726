package treasury

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
	depositCost int64 = 1
	proposeCost int64 = 2
	approveCost int64 = 1
	executeCost int64 = 2
	updateCost  int64 = 1
)

const (
	tagAction    = "treasury-action"
	tagTxID      = "tx-id"
	tagAmount    = "amount"
	tagBalance   = "balance"
	tagApprovals = "approvals"
)

// RegisterRoutes will instantiate and register all handlers in this
// package. The authority is optional. When provided, accounts holding at
// least the Admin role may manage the treasury next to the stored admin.
func RegisterRoutes(r custodia.Registry, auth x.Authenticator, authority roles.Authority) {
	r = migration.SchemaMigratingRegistry("treasury", r)
	txs := NewTransactionBucket()
	pool := NewBalanceBucket()

	r.Handle(&InitMsg{}, &initHandler{auth: auth})
	r.Handle(&DepositMsg{}, &depositHandler{auth: auth, pool: pool})
	r.Handle(&ProposeWithdrawalMsg{}, &proposeWithdrawalHandler{auth: auth, txs: txs, pool: pool})
	r.Handle(&ApproveMsg{}, &approveHandler{auth: auth, txs: txs})
	r.Handle(&ExecuteMsg{}, &executeHandler{auth: auth, txs: txs, pool: pool})
	r.Handle(&AddSignerMsg{}, &addSignerHandler{auth: auth, authority: authority})
	r.Handle(&RemoveSignerMsg{}, &removeSignerHandler{auth: auth, authority: authority})
	r.Handle(&SetThresholdMsg{}, &setThresholdHandler{auth: auth, authority: authority})
	r.Handle(&UpdateAdminMsg{}, &updateAdminHandler{auth: auth, authority: authority})
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
		Metadata:  &custodia.Metadata{Schema: 1},
		Admin:     msg.Admin,
		Threshold: msg.Threshold,
		Signers:   msg.Signers,
	}
	if err := gconf.Save(db, "treasury", &conf); err != nil {
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
	switch err := gconf.Load(db, "treasury", &conf); {
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

type depositHandler struct {
	auth x.Authenticator
	pool orm.ModelBucket
}

func (h *depositHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: depositCost}, nil
}

func (h *depositHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, _, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	balance, err := loadBalance(db, h.pool)
	if err != nil {
		return nil, err
	}
	if balance.Total+msg.Amount < balance.Total {
		return nil, errors.Wrap(errors.ErrOverflow, "balance")
	}
	balance.Total += msg.Amount
	if _, err := h.pool.Put(db, balanceKey, balance); err != nil {
		return nil, errors.Wrap(err, "store balance")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("deposit")},
			{Key: []byte(tagAmount), Value: []byte(strconv.FormatInt(msg.Amount, 10))},
			{Key: []byte(tagBalance), Value: []byte(strconv.FormatInt(balance.Total, 10))},
		},
	}
	return &res, nil
}

func (h *depositHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*DepositMsg, custodia.Address, error) {
	var msg DepositMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if _, err := loadConfig(db); err != nil {
		return nil, nil, err
	}
	from := msg.From
	if len(from) == 0 {
		signer := x.MainSigner(ctx, h.auth)
		if signer == nil {
			return nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
		}
		from = signer.Address()
	}
	// Funds can only be moved with the consent of their owner.
	if !h.auth.HasAddress(ctx, from) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "from did not sign")
	}
	return &msg, from, nil
}

type proposeWithdrawalHandler struct {
	auth x.Authenticator
	txs  orm.ModelBucket
	pool orm.ModelBucket
}

func (h *proposeWithdrawalHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: proposeCost}, nil
}

func (h *proposeWithdrawalHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, proposer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custodia.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}

	withdrawal := Transaction{
		Metadata:  &custodia.Metadata{Schema: 1},
		To:        msg.To,
		Amount:    msg.Amount,
		Memo:      msg.Memo,
		CreatedAt: now,
		Proposer:  proposer,
	}
	id, err := h.txs.Put(db, nil, &withdrawal)
	if err != nil {
		return nil, errors.Wrap(err, "store withdrawal")
	}

	res := custodia.DeliverResult{
		Data: id,
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("propose")},
			{Key: []byte(tagTxID), Value: []byte(strconv.FormatUint(uint64FromID(id), 10))},
			{Key: []byte(tagAmount), Value: []byte(strconv.FormatInt(msg.Amount, 10))},
		},
	}
	return &res, nil
}

func (h *proposeWithdrawalHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*ProposeWithdrawalMsg, custodia.Address, error) {
	var msg ProposeWithdrawalMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, err
	}
	proposer := authorizedSigner(ctx, h.auth, conf)
	if proposer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "signer set membership required")
	}
	balance, err := loadBalance(db, h.pool)
	if err != nil {
		return nil, nil, err
	}
	if msg.Amount > balance.Total {
		return nil, nil, errors.Wrapf(ErrInsufficientFunds, "balance %d", balance.Total)
	}
	return &msg, proposer, nil
}

type approveHandler struct {
	auth x.Authenticator
	txs  orm.ModelBucket
}

func (h *approveHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: approveCost}, nil
}

func (h *approveHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, withdrawal, signer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	withdrawal.Approvals = append(withdrawal.Approvals, signer)
	if _, err := h.txs.Put(db, msg.TransactionID, withdrawal); err != nil {
		return nil, errors.Wrap(err, "store withdrawal")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("approve")},
			{Key: []byte(tagTxID), Value: []byte(strconv.FormatUint(uint64FromID(msg.TransactionID), 10))},
			{Key: []byte(tagApprovals), Value: []byte(strconv.Itoa(len(withdrawal.Approvals)))},
		},
	}
	return &res, nil
}

func (h *approveHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*ApproveMsg, *Transaction, custodia.Address, error) {
	var msg ApproveMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, nil, err
	}
	signer := authorizedSigner(ctx, h.auth, conf)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "signer set membership required")
	}
	var withdrawal Transaction
	if err := h.txs.One(db, msg.TransactionID, &withdrawal); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load withdrawal")
	}
	if withdrawal.Executed {
		return nil, nil, nil, errors.Wrap(ErrAlreadyExecuted, "cannot approve")
	}
	if withdrawal.HasApproval(signer) {
		return nil, nil, nil, errors.Wrapf(ErrAlreadyApproved, "signer %s", signer)
	}
	return &msg, &withdrawal, signer, nil
}

type executeHandler struct {
	auth x.Authenticator
	txs  orm.ModelBucket
	pool orm.ModelBucket
}

func (h *executeHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: executeCost}, nil
}

func (h *executeHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, withdrawal, balance, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	balance.Total -= withdrawal.Amount
	if _, err := h.pool.Put(db, balanceKey, balance); err != nil {
		return nil, errors.Wrap(err, "store balance")
	}
	withdrawal.Executed = true
	if _, err := h.txs.Put(db, msg.TransactionID, withdrawal); err != nil {
		return nil, errors.Wrap(err, "store withdrawal")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("execute")},
			{Key: []byte(tagTxID), Value: []byte(strconv.FormatUint(uint64FromID(msg.TransactionID), 10))},
			{Key: []byte(tagAmount), Value: []byte(strconv.FormatInt(withdrawal.Amount, 10))},
			{Key: []byte(tagBalance), Value: []byte(strconv.FormatInt(balance.Total, 10))},
		},
	}
	return &res, nil
}

func (h *executeHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*ExecuteMsg, *Transaction, *Balance, error) {
	var msg ExecuteMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, nil, err
	}
	if authorizedSigner(ctx, h.auth, conf) == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "signer set membership required")
	}
	var withdrawal Transaction
	if err := h.txs.One(db, msg.TransactionID, &withdrawal); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load withdrawal")
	}
	if withdrawal.Executed {
		return nil, nil, nil, errors.Wrap(ErrAlreadyExecuted, "cannot execute twice")
	}
	if len(withdrawal.Approvals) < int(conf.Threshold) {
		return nil, nil, nil, errors.Wrapf(ErrInsufficientApprovals, "%d of %d", len(withdrawal.Approvals), conf.Threshold)
	}
	// The balance could have shrunk since the proposal was approved.
	balance, err := loadBalance(db, h.pool)
	if err != nil {
		return nil, nil, nil, err
	}
	if withdrawal.Amount > balance.Total {
		return nil, nil, nil, errors.Wrapf(ErrInsufficientFunds, "balance %d", balance.Total)
	}
	return &msg, &withdrawal, balance, nil
}

type addSignerHandler struct {
	auth      x.Authenticator
	authority roles.Authority
}

func (h *addSignerHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: updateCost}, nil
}

func (h *addSignerHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	conf.Signers = append(conf.Signers, msg.Signer)
	if err := gconf.Save(db, "treasury", conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("signers")},
		},
	}
	return &res, nil
}

func (h *addSignerHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*AddSignerMsg, *Config, error) {
	var msg AddSignerMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, err
	}
	if err := isAdmin(ctx, db, h.auth, h.authority, conf); err != nil {
		return nil, nil, err
	}
	if conf.IsSigner(msg.Signer) {
		return nil, nil, errors.Wrapf(errors.ErrDuplicate, "signer %s", msg.Signer)
	}
	return &msg, conf, nil
}

type removeSignerHandler struct {
	auth      x.Authenticator
	authority roles.Authority
}

func (h *removeSignerHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: updateCost}, nil
}

func (h *removeSignerHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	signers := make([]custodia.Address, 0, len(conf.Signers)-1)
	for _, s := range conf.Signers {
		if !s.Equals(msg.Signer) {
			signers = append(signers, s)
		}
	}
	conf.Signers = signers
	if err := gconf.Save(db, "treasury", conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("signers")},
		},
	}
	return &res, nil
}

func (h *removeSignerHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*RemoveSignerMsg, *Config, error) {
	var msg RemoveSignerMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, err
	}
	if err := isAdmin(ctx, db, h.auth, h.authority, conf); err != nil {
		return nil, nil, err
	}
	if !conf.IsSigner(msg.Signer) {
		return nil, nil, errors.Wrapf(errors.ErrNotFound, "signer %s", msg.Signer)
	}
	// The remaining signers must still be able to reach the threshold.
	if int(conf.Threshold) > len(conf.Signers)-1 {
		return nil, nil, errors.Wrapf(ErrInvalidThreshold, "threshold %d above %d signers", conf.Threshold, len(conf.Signers)-1)
	}
	return &msg, conf, nil
}

type setThresholdHandler struct {
	auth      x.Authenticator
	authority roles.Authority
}

func (h *setThresholdHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: updateCost}, nil
}

func (h *setThresholdHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	conf.Threshold = msg.Threshold
	if err := gconf.Save(db, "treasury", conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("threshold")},
		},
	}
	return &res, nil
}

func (h *setThresholdHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*SetThresholdMsg, *Config, error) {
	var msg SetThresholdMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, err
	}
	if err := isAdmin(ctx, db, h.auth, h.authority, conf); err != nil {
		return nil, nil, err
	}
	if err := validatePolicy(msg.Threshold, conf.Signers); err != nil {
		return nil, nil, err
	}
	return &msg, conf, nil
}

type updateAdminHandler struct {
	auth      x.Authenticator
	authority roles.Authority
}

func (h *updateAdminHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: updateCost}, nil
}

func (h *updateAdminHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	conf.Admin = msg.NewAdmin
	if err := gconf.Save(db, "treasury", conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("admin")},
		},
	}
	return &res, nil
}

func (h *updateAdminHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*UpdateAdminMsg, *Config, error) {
	var msg UpdateAdminMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, err
	}
	if err := isAdmin(ctx, db, h.auth, h.authority, conf); err != nil {
		return nil, nil, err
	}
	return &msg, conf, nil
}

// authorizedSigner returns the first member of the signer set whose
// signature is on the transaction, or nil.
func authorizedSigner(ctx custodia.Context, auth x.Authenticator, conf *Config) custodia.Address {
	for _, s := range conf.Signers {
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
