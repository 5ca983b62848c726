package orm

import (
	"reflect"
	"regexp"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
)

// isBucketName ensures each bucket gets a unique prefix that cannot
// collide with other buckets or with the sequence namespace.
var isBucketName = regexp.MustCompile(`^[a-z_]{3,12}$`).MatchString

// ModelBucket is implemented by buckets that operate on Models rather than
// raw bytes.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in
	// the database.
	// If the object loaded from the database cannot be represented by
	// the destination model, ErrType is returned.
	One(db custodia.ReadOnlyKVStore, key []byte, dest Model) error

	// ByIndex returns all objects that secondary index with given name
	// and given key. Main index keys of all matching entities are
	// returned, and the destination, which must be a pointer to a slice
	// of models, is filled with the entities.
	ByIndex(db custodia.ReadOnlyKVStore, indexName string, key []byte, dest ModelSlicePtr) ([][]byte, error)

	// Put saves given model in the database. Before inserting into
	// database, model is validated using its Validate method.
	// If the key is nil or zero length then a sequence generator is used
	// to create a unique key value.
	// Using a key that already exists in the database causes the value
	// to be overwritten.
	Put(db custodia.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes an entity with given primary key from the
	// database. It does not fail if the entity does not exist.
	Delete(db custodia.KVStore, key []byte) error

	// Has returns nil if an entity with given primary key value exists,
	// and ErrNotFound if it does not.
	Has(db custodia.ReadOnlyKVStore, key []byte) error

	// Iter returns an iterator over all entities in this bucket whose
	// primary key starts with the given prefix, in ascending key order.
	// Use a nil prefix to walk the whole bucket.
	Iter(db custodia.ReadOnlyKVStore, prefix []byte) (ModelIterator, error)
}

// ModelSlicePtr represents a pointer to a slice of models. Think of it as
// *[]Model Because of Go type system, using []Model would not work for us.
// Instead we use a placeholder type and the validation is done during the
// runtime.
type ModelSlicePtr interface{}

// ModelIterator walks the entities of a single bucket.
type ModelIterator interface {
	// LoadNext loads the next entity into dest and returns its primary
	// key. It returns ErrIteratorDone when the range is exhausted.
	LoadNext(dest Model) ([]byte, error)

	// Release the iterator and any resources held by it.
	Release()
}

// Indexer returns the secondary index key of a model. Returning a nil key
// means the model is not indexed.
type Indexer func(Model) ([]byte, error)

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(b *modelBucket)

// WithIDSequence configures the bucket to use given sequence instance for
// generating a unique key for entities persisted with an empty key.
func WithIDSequence(s Sequence) ModelBucketOption {
	return func(b *modelBucket) {
		b.idSeq = &s
	}
}

// WithIndex configures a secondary index on the bucket. Entities can be
// looked up by the index value using the ByIndex method.
func WithIndex(name string, indexer Indexer) ModelBucketOption {
	return func(b *modelBucket) {
		b.indexes = append(b.indexes, bucketIndex{
			name:    name,
			prefix:  []byte("_i." + b.name + ":" + name + ":"),
			indexer: indexer,
		})
	}
}

// NewModelBucket returns a ModelBucket instance. This implementation relies
// on a proto model. The nil instance of the model is used to determine the
// type of all entities stored and loaded by this bucket.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic("invalid bucket name: " + name)
	}
	tp := reflect.TypeOf(m)
	if tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}
	b := &modelBucket{
		name:   name,
		prefix: []byte(name + ":"),
		model:  tp,
	}
	for _, fn := range opts {
		fn(b)
	}
	return b
}

type bucketIndex struct {
	name    string
	prefix  []byte
	indexer Indexer
}

// dbKey returns the database key of an index entry. The index value is
// length prefixed so that one value being the prefix of another cannot
// produce colliding entries.
func (ix bucketIndex) dbKey(indexValue, refKey []byte) ([]byte, error) {
	if len(indexValue) > 255 {
		return nil, errors.Wrapf(errors.ErrInput, "index %q value too long", ix.name)
	}
	raw := make([]byte, 0, len(ix.prefix)+1+len(indexValue)+len(refKey))
	raw = append(raw, ix.prefix...)
	raw = append(raw, byte(len(indexValue)))
	raw = append(raw, indexValue...)
	raw = append(raw, refKey...)
	return raw, nil
}

// scanPrefix returns the iteration prefix for all entries of one index
// value.
func (ix bucketIndex) scanPrefix(indexValue []byte) ([]byte, error) {
	if len(indexValue) > 255 {
		return nil, errors.Wrapf(errors.ErrInput, "index %q value too long", ix.name)
	}
	raw := make([]byte, 0, len(ix.prefix)+1+len(indexValue))
	raw = append(raw, ix.prefix...)
	raw = append(raw, byte(len(indexValue)))
	raw = append(raw, indexValue...)
	return raw, nil
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	idSeq   *Sequence
	indexes []bucketIndex
}

var _ ModelBucket = (*modelBucket)(nil)

func (b *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte{}, b.prefix...), key...)
}

func (b *modelBucket) One(db custodia.ReadOnlyKVStore, key []byte, dest Model) error {
	if err := b.assertModelType(dest); err != nil {
		return err
	}
	raw, err := db.Get(b.dbKey(key))
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s not found: %X", b.name, key)
	}
	if err := proto.Unmarshal(raw, dest); err != nil {
		return errors.Wrap(err, "cannot unmarshal model")
	}
	return nil
}

func (b *modelBucket) ByIndex(db custodia.ReadOnlyKVStore, indexName string, key []byte, dest ModelSlicePtr) ([][]byte, error) {
	var idx *bucketIndex
	for i := range b.indexes {
		if b.indexes[i].name == indexName {
			idx = &b.indexes[i]
			break
		}
	}
	if idx == nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "no index with name %q", indexName)
	}

	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.Elem().Kind() != reflect.Slice {
		return nil, errors.Wrap(errors.ErrType, "destination must be a pointer to slice of models")
	}
	slice := dv.Elem()
	elemTp := slice.Type().Elem()
	sliceOfPointers := elemTp.Kind() == reflect.Ptr
	if sliceOfPointers {
		elemTp = elemTp.Elem()
	}
	if elemTp != b.model {
		return nil, errors.Wrapf(errors.ErrType, "this bucket operates on %s model and cannot return %s", b.model, elemTp)
	}

	prefix, err := idx.scanPrefix(key)
	if err != nil {
		return nil, err
	}
	start, end := prefixRange(prefix)
	iter, err := db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer iter.Release()

	var keys [][]byte
	for {
		ixKey, _, err := iter.Next()
		switch {
		case err == nil:
			// continue below
		case errors.ErrIteratorDone.Is(err):
			return keys, nil
		default:
			return nil, err
		}

		ref := ixKey[len(prefix):]
		item := reflect.New(b.model)
		if err := b.One(db, ref, item.Interface().(Model)); err != nil {
			return nil, errors.Wrapf(err, "index %q entry %X", indexName, ref)
		}
		if !sliceOfPointers {
			item = item.Elem()
		}
		slice.Set(reflect.Append(slice, item))
		keys = append(keys, ref)
	}
}

func (b *modelBucket) Put(db custodia.KVStore, key []byte, m Model) ([]byte, error) {
	if err := b.assertModelType(m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}

	if len(key) == 0 {
		if b.idSeq == nil {
			return nil, errors.Wrap(errors.ErrInput, "no key provided and no sequence configured")
		}
		var err error
		key, err = b.idSeq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "ID sequence")
		}
	}

	if err := b.unindex(db, key); err != nil {
		return nil, err
	}

	raw, err := proto.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal model")
	}
	if err := db.Set(b.dbKey(key), raw); err != nil {
		return nil, err
	}

	for _, ix := range b.indexes {
		idxValue, err := ix.indexer(m)
		if err != nil {
			return nil, errors.Wrapf(err, "index %q", ix.name)
		}
		if idxValue == nil {
			continue
		}
		ixKey, err := ix.dbKey(idxValue, key)
		if err != nil {
			return nil, err
		}
		// the value is not used for lookups, store the primary key
		// so that raw dumps are readable
		if err := db.Set(ixKey, key); err != nil {
			return nil, err
		}
	}
	return key, nil
}

func (b *modelBucket) Delete(db custodia.KVStore, key []byte) error {
	if err := b.unindex(db, key); err != nil {
		return err
	}
	return db.Delete(b.dbKey(key))
}

// unindex drops all secondary index entries of the entity currently stored
// under the key. It is a noop when the entity does not exist or the bucket
// carries no indexes.
func (b *modelBucket) unindex(db custodia.KVStore, key []byte) error {
	if len(b.indexes) == 0 {
		return nil
	}
	raw, err := db.Get(b.dbKey(key))
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	old := reflect.New(b.model).Interface().(Model)
	if err := proto.Unmarshal(raw, old); err != nil {
		return errors.Wrap(err, "cannot unmarshal stored model")
	}
	for _, ix := range b.indexes {
		idxValue, err := ix.indexer(old)
		if err != nil {
			return errors.Wrapf(err, "index %q", ix.name)
		}
		if idxValue == nil {
			continue
		}
		ixKey, err := ix.dbKey(idxValue, key)
		if err != nil {
			return err
		}
		if err := db.Delete(ixKey); err != nil {
			return err
		}
	}
	return nil
}

func (b *modelBucket) Has(db custodia.ReadOnlyKVStore, key []byte) error {
	if len(key) == 0 {
		// nil key is a special case that would match the whole prefix
		return errors.Wrap(errors.ErrNotFound, "nil key")
	}
	ok, err := db.Has(b.dbKey(key))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s not found: %X", b.name, key)
	}
	return nil
}

func (b *modelBucket) Iter(db custodia.ReadOnlyKVStore, prefix []byte) (ModelIterator, error) {
	full := append(append([]byte{}, b.prefix...), prefix...)
	start, end := prefixRange(full)
	iter, err := db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return &modelIterator{
		iter:      iter,
		trimmed:   len(b.prefix),
		modelType: b.model,
	}, nil
}

func (b *modelBucket) assertModelType(m Model) error {
	tp := reflect.TypeOf(m)
	if tp.Kind() != reflect.Ptr {
		return errors.Wrapf(errors.ErrType, "%T cannot be used as model destination", m)
	}
	if tp.Elem() != b.model {
		return errors.Wrapf(errors.ErrType, "this bucket operates on %s model and cannot process %s", b.model, tp.Elem())
	}
	return nil
}

type modelIterator struct {
	iter      custodia.Iterator
	trimmed   int
	modelType reflect.Type
}

func (it *modelIterator) LoadNext(dest Model) ([]byte, error) {
	key, value, err := it.iter.Next()
	if err != nil {
		return nil, err
	}
	if err := proto.Unmarshal(value, dest); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal model")
	}
	return key[it.trimmed:], nil
}

func (it *modelIterator) Release() {
	it.iter.Release()
}

// prefixRange turns a prefix into the lowest inclusive and highest
// exclusive key of an iteration. A nil end means iterate until the end of
// the database keyspace.
func prefixRange(prefix []byte) (start, end []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}
	end = make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return prefix, end[:i+1]
		}
	}
	return prefix, nil
}
