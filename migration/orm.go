package migration

import (
	"reflect"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/orm"
)

// NewModelBucket returns a ModelBucket instance that ensures that all
// entities read from the database are migrated to the current schema
// version of the package, and that entities written are migrated as well.
//
// This bucket does not write the migrated state back on read. Migration is
// applied in memory each time, old versions stay on disk until the entity
// is saved again.
func NewModelBucket(packageName string, b orm.ModelBucket) orm.ModelBucket {
	return &modelBucket{
		db:     b,
		pkg:    packageName,
		schema: NewSchemaBucket(),
	}
}

type modelBucket struct {
	db     orm.ModelBucket
	pkg    string
	schema *SchemaBucket
}

var _ orm.ModelBucket = (*modelBucket)(nil)

func (b *modelBucket) useMigration(db custodia.ReadOnlyKVStore, m Migratable) error {
	ver, err := b.schema.CurrentSchema(db, b.pkg)
	if err != nil {
		return errors.Wrapf(err, "current schema of %q", b.pkg)
	}
	return reg.Apply(db, m, ver)
}

func (b *modelBucket) One(db custodia.ReadOnlyKVStore, key []byte, dest orm.Model) error {
	if err := b.db.One(db, key, dest); err != nil {
		return err
	}
	m, ok := dest.(Migratable)
	if !ok {
		return errors.Wrapf(errors.ErrModel, "%T cannot be migrated", dest)
	}
	return b.useMigration(db, m)
}

func (b *modelBucket) ByIndex(db custodia.ReadOnlyKVStore, indexName string, key []byte, dest orm.ModelSlicePtr) ([][]byte, error) {
	keys, err := b.db.ByIndex(db, indexName, key, dest)
	if err != nil {
		return nil, err
	}

	slice := reflect.ValueOf(dest).Elem()
	for i := 0; i < slice.Len(); i++ {
		item := slice.Index(i)
		if item.Kind() != reflect.Ptr {
			item = item.Addr()
		}
		m, ok := item.Interface().(Migratable)
		if !ok {
			return nil, errors.Wrapf(errors.ErrModel, "%T cannot be migrated", item.Interface())
		}
		if err := b.useMigration(db, m); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func (b *modelBucket) Put(db custodia.KVStore, key []byte, m orm.Model) ([]byte, error) {
	mig, ok := m.(Migratable)
	if !ok {
		return nil, errors.Wrapf(errors.ErrModel, "%T cannot be migrated", m)
	}
	if err := b.useMigration(db, mig); err != nil {
		return nil, err
	}
	return b.db.Put(db, key, m)
}

func (b *modelBucket) Delete(db custodia.KVStore, key []byte) error {
	return b.db.Delete(db, key)
}

func (b *modelBucket) Has(db custodia.ReadOnlyKVStore, key []byte) error {
	return b.db.Has(db, key)
}

func (b *modelBucket) Iter(db custodia.ReadOnlyKVStore, prefix []byte) (orm.ModelIterator, error) {
	iter, err := b.db.Iter(db, prefix)
	if err != nil {
		return nil, err
	}
	return &migrationIterator{iter: iter, bucket: b, db: db}, nil
}

type migrationIterator struct {
	iter   orm.ModelIterator
	bucket *modelBucket
	db     custodia.ReadOnlyKVStore
}

func (it *migrationIterator) LoadNext(dest orm.Model) ([]byte, error) {
	key, err := it.iter.LoadNext(dest)
	if err != nil {
		return nil, err
	}
	m, ok := dest.(Migratable)
	if !ok {
		return nil, errors.Wrapf(errors.ErrModel, "%T cannot be migrated", dest)
	}
	if err := it.bucket.useMigration(it.db, m); err != nil {
		return nil, err
	}
	return key, nil
}

func (it *migrationIterator) Release() {
	it.iter.Release()
}
