package orm

import (
	"fmt"
	"testing"

	"github.com/iov-one/custodia/custodiatest/assert"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/store"
)

// badger is a minimal model implementation for bucket tests.
type badger struct {
	Size  int64  `protobuf:"varint,1,opt,name=size,proto3" json:"size,omitempty"`
	Owner []byte `protobuf:"bytes,2,opt,name=owner,proto3" json:"owner,omitempty"`
}

func (b *badger) Reset()         { *b = badger{} }
func (b *badger) String() string { return fmt.Sprintf("badger of size %d", b.Size) }
func (*badger) ProtoMessage()    {}

func (b *badger) Validate() error {
	if b.Size < 0 {
		return errors.Wrap(errors.ErrModel, "negative size")
	}
	return nil
}

func ownerIndexer(m Model) ([]byte, error) {
	b, ok := m.(*badger)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "expected badger, got %T", m)
	}
	return b.Owner, nil
}

func TestModelBucketPutSequence(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("badgers", &badger{},
		WithIDSequence(NewSequence("badgers", "id")))

	k1, err := b.Put(db, nil, &badger{Size: 1})
	assert.Nil(t, err)
	k2, err := b.Put(db, nil, &badger{Size: 2})
	assert.Nil(t, err)
	assert.Equal(t, EncodeSequence(1), k1)
	assert.Equal(t, EncodeSequence(2), k2)

	var got badger
	assert.Nil(t, b.One(db, k2, &got))
	assert.Equal(t, int64(2), got.Size)
}

func TestModelBucketPutGetDelete(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("badgers", &badger{})

	key := []byte("bob")
	_, err := b.Put(db, key, &badger{Size: 7})
	assert.Nil(t, err)

	var got badger
	assert.Nil(t, b.One(db, key, &got))
	assert.Equal(t, int64(7), got.Size)
	assert.Nil(t, b.Has(db, key))

	// overwriting is allowed
	_, err = b.Put(db, key, &badger{Size: 8})
	assert.Nil(t, err)
	assert.Nil(t, b.One(db, key, &got))
	assert.Equal(t, int64(8), got.Size)

	assert.Nil(t, b.Delete(db, key))
	if err := b.One(db, key, &got); !errors.ErrNotFound.Is(err) {
		t.Fatalf("expected not found, got %+v", err)
	}
	if err := b.Has(db, key); !errors.ErrNotFound.Is(err) {
		t.Fatalf("expected not found, got %+v", err)
	}

	// deleting a missing entity is a noop
	assert.Nil(t, b.Delete(db, []byte("whatever")))
}

func TestModelBucketPutInvalid(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("badgers", &badger{})

	_, err := b.Put(db, []byte("bob"), &badger{Size: -1})
	if !errors.ErrModel.Is(err) {
		t.Fatalf("expected model error, got %+v", err)
	}
	// without a sequence a key must be given
	_, err = b.Put(db, nil, &badger{Size: 1})
	if !errors.ErrInput.Is(err) {
		t.Fatalf("expected input error, got %+v", err)
	}
}

func TestModelBucketWrongModelType(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("badgers", &badger{})

	type other struct{ badger }
	if _, err := b.Put(db, []byte("k"), &other{}); !errors.ErrType.Is(err) {
		t.Fatalf("expected type error, got %+v", err)
	}
}

func TestModelBucketByIndex(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("badgers", &badger{},
		WithIDSequence(NewSequence("badgers", "id")),
		WithIndex("owner", ownerIndexer))

	alice := []byte("alice---------------")
	bob := []byte("bob-----------------")

	k1, err := b.Put(db, nil, &badger{Size: 1, Owner: alice})
	assert.Nil(t, err)
	_, err = b.Put(db, nil, &badger{Size: 2, Owner: bob})
	assert.Nil(t, err)
	k3, err := b.Put(db, nil, &badger{Size: 3, Owner: alice})
	assert.Nil(t, err)

	var res []*badger
	keys, err := b.ByIndex(db, "owner", alice, &res)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(res))
	assert.Equal(t, [][]byte{k1, k3}, keys)
	assert.Equal(t, int64(1), res[0].Size)
	assert.Equal(t, int64(3), res[1].Size)

	// index entries follow the entity on update
	_, err = b.Put(db, k1, &badger{Size: 1, Owner: bob})
	assert.Nil(t, err)
	res = nil
	keys, err = b.ByIndex(db, "owner", alice, &res)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, [][]byte{k3}, keys)

	// and are dropped on delete
	assert.Nil(t, b.Delete(db, k3))
	res = nil
	keys, err = b.ByIndex(db, "owner", alice, &res)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(res))
	assert.Equal(t, 0, len(keys))

	// unknown index name is refused
	if _, err := b.ByIndex(db, "color", alice, &res); !errors.ErrDatabase.Is(err) {
		t.Fatalf("expected database error, got %+v", err)
	}
}

func TestModelBucketIter(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("badgers", &badger{})

	_, err := b.Put(db, []byte("aa"), &badger{Size: 1})
	assert.Nil(t, err)
	_, err = b.Put(db, []byte("ab"), &badger{Size: 2})
	assert.Nil(t, err)
	_, err = b.Put(db, []byte("ba"), &badger{Size: 3})
	assert.Nil(t, err)

	// walk a primary key prefix
	iter, err := b.Iter(db, []byte("a"))
	assert.Nil(t, err)
	defer iter.Release()

	var seen []int64
	for {
		var m badger
		key, err := iter.LoadNext(&m)
		if errors.ErrIteratorDone.Is(err) {
			break
		}
		assert.Nil(t, err)
		if len(key) != 2 {
			t.Fatalf("unexpected key: %q", key)
		}
		seen = append(seen, m.Size)
	}
	assert.Equal(t, []int64{1, 2}, seen)
}
