package migration

import (
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/gconf"
	"github.com/iov-one/custodia/x"
)

// RegisterRoutes registers handlers for the schema upgrade message.
func RegisterRoutes(r custodia.Registry, auth x.Authenticator) {
	bucket := NewSchemaBucket()
	r.Handle(&UpgradeSchemaMsg{}, &upgradeSchemaHandler{
		bucket: bucket,
		auth:   auth,
	})
}

type upgradeSchemaHandler struct {
	bucket *SchemaBucket
	auth   x.Authenticator
}

func (h *upgradeSchemaHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{}, nil
}

func (h *upgradeSchemaHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	schema := Schema{
		Metadata: &custodia.Metadata{Schema: 1},
		Pkg:      msg.Pkg,
		Version:  msg.ToVersion,
	}
	if err := h.bucket.Create(db, &schema); err != nil {
		return nil, errors.Wrap(err, "cannot create schema version")
	}
	return &custodia.DeliverResult{}, nil
}

func (h *upgradeSchemaHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*UpgradeSchemaMsg, error) {
	var msg UpgradeSchemaMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}

	var conf Configuration
	if err := gconf.Load(db, "migration", &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	if !h.auth.HasAddress(ctx, conf.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	return &msg, nil
}

// SchemaMigratingRegistry decorates given registry to always wrap
// registered handlers with a schema migrating handler of given package.
func SchemaMigratingRegistry(packageName string, r custodia.Registry) custodia.Registry {
	return &schemaMigratingRegistry{
		pkg: packageName,
		reg: r,
	}
}

type schemaMigratingRegistry struct {
	pkg string
	reg custodia.Registry
}

func (r *schemaMigratingRegistry) Handle(msg custodia.Msg, h custodia.Handler) {
	r.reg.Handle(msg, SchemaMigratingHandler(r.pkg, h))
}

// SchemaMigratingHandler returns a handler that ensures that the message
// is migrated to the current schema version of the package before being
// passed to the wrapped handler.
func SchemaMigratingHandler(packageName string, h custodia.Handler) custodia.Handler {
	return &schemaMigratingHandler{
		handler: h,
		pkg:     packageName,
		schema:  NewSchemaBucket(),
	}
}

type schemaMigratingHandler struct {
	handler custodia.Handler
	pkg     string
	schema  *SchemaBucket
}

func (h *schemaMigratingHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if err := h.migrate(db, tx); err != nil {
		return nil, errors.Wrap(err, "migration")
	}
	return h.handler.Check(ctx, db, tx)
}

func (h *schemaMigratingHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	if err := h.migrate(db, tx); err != nil {
		return nil, errors.Wrap(err, "migration")
	}
	return h.handler.Deliver(ctx, db, tx)
}

func (h *schemaMigratingHandler) migrate(db custodia.ReadOnlyKVStore, tx custodia.Tx) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "get msg")
	}
	m, ok := msg.(Migratable)
	if !ok {
		return errors.Wrapf(errors.ErrMsg, "message %T cannot be migrated", msg)
	}
	currSchemaVer, err := h.schema.CurrentSchema(db, h.pkg)
	if err != nil {
		return errors.Wrapf(err, "current schema of %q", h.pkg)
	}
	// Migration is applied in place on the message.
	return reg.Apply(db, m, currSchemaVer)
}
