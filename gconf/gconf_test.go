package gconf

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/store"
)

type testConfig struct {
	Name    string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Counter int64  `protobuf:"varint,2,opt,name=counter,proto3" json:"counter,omitempty"`
}

func (c *testConfig) Reset()         { *c = testConfig{} }
func (c *testConfig) String() string { return fmt.Sprintf("testConfig<%s>", c.Name) }
func (*testConfig) ProtoMessage()    {}

func (c *testConfig) Validate() error {
	if c.Name == "" {
		return errors.Wrap(errors.ErrEmpty, "name")
	}
	return nil
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := store.MemStore()

	src := testConfig{Name: "alice", Counter: 42}
	if err := Save(db, "testpkg", &src); err != nil {
		t.Fatalf("cannot save: %+v", err)
	}

	var dst testConfig
	if err := Load(db, "testpkg", &dst); err != nil {
		t.Fatalf("cannot load: %+v", err)
	}
	if dst.Name != src.Name || dst.Counter != src.Counter {
		t.Fatalf("want %+v, got %+v", src, dst)
	}

	// Saving again overwrites the previous configuration.
	src.Counter = 43
	if err := Save(db, "testpkg", &src); err != nil {
		t.Fatalf("cannot overwrite: %+v", err)
	}
	if err := Load(db, "testpkg", &dst); err != nil {
		t.Fatalf("cannot load: %+v", err)
	}
	if dst.Counter != 43 {
		t.Fatalf("want counter 43, got %d", dst.Counter)
	}
}

func TestSaveValidates(t *testing.T) {
	db := store.MemStore()
	if err := Save(db, "testpkg", &testConfig{}); !errors.ErrEmpty.Is(err) {
		t.Fatalf("want validation error, got %+v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	db := store.MemStore()
	var dst testConfig
	if err := Load(db, "does-not-exist", &dst); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}
}

func TestInitConfig(t *testing.T) {
	db := store.MemStore()

	opts := custodia.Options{
		"conf": json.RawMessage(`{"testpkg": {"name": "bob", "counter": 7}}`),
	}
	var conf testConfig
	if err := InitConfig(db, opts, "testpkg", &conf); err != nil {
		t.Fatalf("cannot init: %+v", err)
	}

	var loaded testConfig
	if err := Load(db, "testpkg", &loaded); err != nil {
		t.Fatalf("cannot load: %+v", err)
	}
	if loaded.Name != "bob" || loaded.Counter != 7 {
		t.Fatalf("unexpected configuration: %+v", loaded)
	}
}

func TestInitConfigMissingGenesisEntry(t *testing.T) {
	db := store.MemStore()

	opts := custodia.Options{
		"conf": json.RawMessage(`{"otherpkg": {"name": "bob"}}`),
	}
	var conf testConfig
	if err := InitConfig(db, opts, "testpkg", &conf); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}
}
