package migration

import (
	"fmt"
	"testing"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/store"
)

type versionedEntity struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Value    int64              `protobuf:"varint,2,opt,name=value,proto3" json:"value,omitempty"`
}

func (e *versionedEntity) Reset()         { *e = versionedEntity{} }
func (e *versionedEntity) String() string { return fmt.Sprintf("versionedEntity<%d>", e.Value) }
func (*versionedEntity) ProtoMessage()    {}

func (e *versionedEntity) GetMetadata() *custodia.Metadata {
	return e.Metadata
}

func (e *versionedEntity) Validate() error {
	if e.Value < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

func TestRegisterApply(t *testing.T) {
	reg := newRegister()
	reg.MustRegister(1, &versionedEntity{}, NoModification)
	reg.MustRegister(2, &versionedEntity{}, func(db custodia.ReadOnlyKVStore, m Migratable) error {
		m.(*versionedEntity).Value += 100
		return nil
	})

	db := store.MemStore()

	e := versionedEntity{Metadata: &custodia.Metadata{Schema: 1}, Value: 1}
	if err := reg.Apply(db, &e, 2); err != nil {
		t.Fatalf("cannot apply: %+v", err)
	}
	if e.Value != 101 {
		t.Fatalf("migration must update the value, got %d", e.Value)
	}
	if e.Metadata.Schema != 2 {
		t.Fatalf("migration must update the schema, got %d", e.Metadata.Schema)
	}

	// Applying to the current version is a noop.
	if err := reg.Apply(db, &e, 2); err != nil {
		t.Fatalf("noop apply: %+v", err)
	}
	if e.Value != 101 {
		t.Fatalf("noop apply must not modify, got %d", e.Value)
	}
}

func TestRegisterApplyRefusesDowngrade(t *testing.T) {
	reg := newRegister()
	reg.MustRegister(1, &versionedEntity{}, NoModification)

	db := store.MemStore()
	e := versionedEntity{Metadata: &custodia.Metadata{Schema: 2}, Value: 1}
	if err := reg.Apply(db, &e, 1); !errors.ErrState.Is(err) {
		t.Fatalf("want state error, got %+v", err)
	}
}

func TestRegisterApplyRequiresMetadata(t *testing.T) {
	reg := newRegister()
	reg.MustRegister(1, &versionedEntity{}, NoModification)

	db := store.MemStore()
	var e versionedEntity
	if err := reg.Apply(db, &e, 1); !errors.ErrMetadata.Is(err) {
		t.Fatalf("want metadata error, got %+v", err)
	}
}

func TestMustRegisterRejectsGaps(t *testing.T) {
	reg := newRegister()
	reg.MustRegister(1, &versionedEntity{}, NoModification)

	defer func() {
		if recover() == nil {
			t.Fatal("registration with a version gap must panic")
		}
	}()
	reg.MustRegister(3, &versionedEntity{}, NoModification)
}
