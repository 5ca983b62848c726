package migration

import (
	"testing"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/store"
)

func TestSchemaVersionsAreSequential(t *testing.T) {
	db := store.MemStore()
	b := NewSchemaBucket()

	if _, err := b.CurrentSchema(db, "mypkg"); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found for uninitialized package, got %+v", err)
	}

	if err := b.Create(db, &Schema{
		Metadata: &custodia.Metadata{Schema: 1},
		Pkg:      "mypkg",
		Version:  1,
	}); err != nil {
		t.Fatalf("cannot create version 1: %+v", err)
	}

	// Version 3 would leave a gap.
	if err := b.Create(db, &Schema{
		Metadata: &custodia.Metadata{Schema: 1},
		Pkg:      "mypkg",
		Version:  3,
	}); !errors.ErrInput.Is(err) {
		t.Fatalf("want input error for a version gap, got %+v", err)
	}

	if err := b.Create(db, &Schema{
		Metadata: &custodia.Metadata{Schema: 1},
		Pkg:      "mypkg",
		Version:  2,
	}); err != nil {
		t.Fatalf("cannot create version 2: %+v", err)
	}

	ver, err := b.CurrentSchema(db, "mypkg")
	if err != nil {
		t.Fatalf("cannot get current schema: %+v", err)
	}
	if ver != 2 {
		t.Fatalf("want version 2, got %d", ver)
	}
}

func TestMustInitPkgIsIdempotent(t *testing.T) {
	db := store.MemStore()

	MustInitPkg(db, "one", "two")
	MustInitPkg(db, "one", "two")

	b := NewSchemaBucket()
	for _, pkg := range []string{"one", "two"} {
		ver, err := b.CurrentSchema(db, pkg)
		if err != nil {
			t.Fatalf("cannot get %q schema: %+v", pkg, err)
		}
		if ver != 1 {
			t.Fatalf("want %q at version 1, got %d", pkg, ver)
		}
	}
}
