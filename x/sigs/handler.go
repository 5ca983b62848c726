package sigs

import (
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/orm"
	"github.com/iov-one/custodia/x"
)

const bumpCost int64 = 1

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r custodia.Registry, auth x.Authenticator) {
	r = migration.SchemaMigratingRegistry("sigs", r)
	r.Handle(&BumpSequenceMsg{}, &bumpSequenceHandler{
		auth:  auth,
		users: NewUserBucket(),
	})
}

type bumpSequenceHandler struct {
	auth  x.Authenticator
	users orm.ModelBucket
}

func (h *bumpSequenceHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: bumpCost}, nil
}

func (h *bumpSequenceHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	user, msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	// Each transaction processing bumps the sequence by one. Increment
	// must represent the total increment value.
	incr := int64(msg.Increment) - 1
	if incr == 0 {
		// Zero increment requires no modification.
		return &custodia.DeliverResult{}, nil
	}
	user.Sequence += incr
	if _, err := h.users.Put(db, user.Pubkey.Address(), user); err != nil {
		return nil, errors.Wrap(err, "cannot save user")
	}
	return &custodia.DeliverResult{}, nil
}

func (h *bumpSequenceHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*UserData, *BumpSequenceMsg, error) {
	var msg BumpSequenceMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	var user UserData
	if err := h.users.One(db, signer.Address(), &user); err != nil {
		return nil, nil, errors.Wrap(err, "no sequence")
	}

	if user.Sequence+int64(msg.Increment) < user.Sequence {
		return nil, nil, errors.Wrap(errors.ErrOverflow, "user sequence")
	}
	return &user, &msg, nil
}
