package migration

import (
	"encoding/binary"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/orm"
)

func init() {
	MustRegister(1, &Schema{}, NoModification)
}

var _ orm.Model = (*Schema)(nil)

func (s *Schema) Validate() error {
	if err := s.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if !isPkgName(s.Pkg) {
		return errors.Wrap(errors.ErrModel, "invalid package name")
	}
	if s.Version < 1 {
		return errors.Wrap(errors.ErrModel, "version must be greater than zero")
	}
	return nil
}

// SchemaBucket is a storage for package schema versions. There is one
// entity per package and version. The bucket key guarantees that the
// highest version is the last entry of the package prefix.
type SchemaBucket struct {
	b orm.ModelBucket
}

func NewSchemaBucket() *SchemaBucket {
	return &SchemaBucket{
		b: orm.NewModelBucket("schema", &Schema{}),
	}
}

// schemaID returns the storage key of a schema entity.
func schemaID(pkg string, version uint32) []byte {
	raw := make([]byte, 0, len(pkg)+5)
	raw = append(raw, pkg...)
	raw = append(raw, '/')
	raw = appendVersion(raw, version)
	return raw
}

func appendVersion(raw []byte, version uint32) []byte {
	enc := make([]byte, 4)
	binary.BigEndian.PutUint32(enc, version)
	return append(raw, enc...)
}

// CurrentSchema returns the highest version of the schema that the given
// package was migrated to. It returns ErrNotFound if the package was never
// initialized.
func (b *SchemaBucket) CurrentSchema(db custodia.ReadOnlyKVStore, packageName string) (uint32, error) {
	iter, err := b.b.Iter(db, append([]byte(packageName), '/'))
	if err != nil {
		return 0, err
	}
	defer iter.Release()

	var best uint32
	for {
		var s Schema
		switch _, err := iter.LoadNext(&s); {
		case err == nil:
			best = s.Version
		case errors.ErrIteratorDone.Is(err):
			if best == 0 {
				return 0, errors.Wrapf(errors.ErrNotFound, "package %q schema not initialized", packageName)
			}
			return best, nil
		default:
			return 0, err
		}
	}
}

// Create adds a schema version declaration to the storage. Schema versions
// must be created in order, without gaps.
func (b *SchemaBucket) Create(db custodia.KVStore, s *Schema) error {
	cur, err := b.CurrentSchema(db, s.Pkg)
	switch {
	case err == nil:
		// continue below
	case errors.ErrNotFound.Is(err):
		cur = 0
	default:
		return err
	}
	if s.Version != cur+1 {
		return errors.Wrapf(errors.ErrInput, "current schema version of %q is %d", s.Pkg, cur)
	}
	_, err = b.b.Put(db, schemaID(s.Pkg, s.Version), s)
	return err
}

// MustInitPkg initializes schema versioning for given packages, setting the
// schema version to 1. It is a noop for packages that are already
// initialized. This function panics on failure, it is meant to be used
// during genesis initialization.
func MustInitPkg(db custodia.KVStore, packageNames ...string) {
	b := NewSchemaBucket()
	for _, name := range packageNames {
		_, err := b.CurrentSchema(db, name)
		if err == nil {
			continue
		}
		if !errors.ErrNotFound.Is(err) {
			panic(err)
		}
		err = b.Create(db, &Schema{
			Metadata: &custodia.Metadata{Schema: 1},
			Pkg:      name,
			Version:  1,
		})
		if err != nil {
			panic(err)
		}
	}
}
