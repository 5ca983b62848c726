package migration

import (
	"fmt"
	"reflect"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
)

// Migratable is implemented by both messages and models that support schema
// versioning.
type Migratable interface {
	// GetMetadata returns the metadata of the entity. Metadata must
	// carry the schema version that the entity was created with.
	GetMetadata() *custodia.Metadata

	// Validate returns an error if the entity state is not valid.
	Validate() error
}

// Migrator is a function that migrates an entity in place from the schema
// version one less than the registered one to the registered version.
type Migrator func(db custodia.ReadOnlyKVStore, msgOrModel Migratable) error

// NoModification is a migration function that migrates data that requires
// no change. It should be used to register migrations that do not require
// any modifications.
func NoModification(db custodia.ReadOnlyKVStore, msgOrModel Migratable) error {
	return nil
}

type payloadVersion struct {
	payload reflect.Type
	version uint32
}

type register struct {
	migrations map[payloadVersion]Migrator
}

func newRegister() *register {
	return &register{
		migrations: make(map[payloadVersion]Migrator),
	}
}

// reg is a globally available register instance. Migrations are declared in
// package init functions, just like gob or sql driver registrations.
var reg = newRegister()

func (r *register) MustRegister(migrationTo uint32, msgOrModel Migratable, fn Migrator) {
	if migrationTo < 1 {
		panic("schema migration versions start with 1")
	}
	tp := reflect.TypeOf(msgOrModel)
	if tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}
	pv := payloadVersion{
		payload: tp,
		version: migrationTo,
	}
	if _, ok := r.migrations[pv]; ok {
		panic(fmt.Sprintf("migration of %s.%s to version %d already registered",
			tp.PkgPath(), tp.Name(), migrationTo))
	}
	if migrationTo > 1 {
		prev := payloadVersion{payload: tp, version: migrationTo - 1}
		if _, ok := r.migrations[prev]; !ok {
			panic(fmt.Sprintf("missing %s.%s migration to version %d",
				tp.PkgPath(), tp.Name(), migrationTo-1))
		}
	}
	r.migrations[pv] = fn
}

// Apply updates an entity in place, applying all migrations between the
// entity current schema version and the requested destination version. The
// metadata schema is updated with every successful migration step, and the
// final state is validated.
func (r *register) Apply(db custodia.ReadOnlyKVStore, msgOrModel Migratable, migrateTo uint32) error {
	meta := msgOrModel.GetMetadata()
	if meta == nil {
		return errors.Wrapf(errors.ErrMetadata, "%T metadata is required", msgOrModel)
	}
	if meta.Schema == 0 {
		return errors.Wrap(errors.ErrMetadata, "schema version is zero")
	}
	if meta.Schema > migrateTo {
		return errors.Wrapf(errors.ErrState, "cannot migrate to version %d: %T already at %d",
			migrateTo, msgOrModel, meta.Schema)
	}

	tp := reflect.TypeOf(msgOrModel)
	if tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}
	for v := meta.Schema + 1; v <= migrateTo; v++ {
		fn, ok := r.migrations[payloadVersion{payload: tp, version: v}]
		if !ok {
			return errors.Wrapf(errors.ErrState, "no %s.%s migration to version %d",
				tp.PkgPath(), tp.Name(), v)
		}
		if err := fn(db, msgOrModel); err != nil {
			return errors.Wrapf(err, "migration to version %d", v)
		}
		meta.Schema = v
	}
	if err := msgOrModel.Validate(); err != nil {
		return errors.Wrap(err, "validation after migration")
	}
	return nil
}

// MustRegister registers a migration function for the given entity and
// version. Migrations must be registered without gaps, starting with
// version 1 for the initial schema. Use NoModification for steps that do
// not modify the given entity.
func MustRegister(migrationTo uint32, msgOrModel Migratable, fn Migrator) {
	reg.MustRegister(migrationTo, msgOrModel, fn)
}
