package migration

import (
	"fmt"

	"github.com/iov-one/custodia"
)

// Schema declares the maximum supported schema version of a single package.
// There is one entity per package and past versions are kept for the
// record.
type Schema struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	// Pkg holds the name of the package that this migration is declared
	// for.
	Pkg string `protobuf:"bytes,2,opt,name=pkg,proto3" json:"pkg,omitempty"`
	// Version is the highest schema version that entities of the package
	// can be migrated to.
	Version uint32 `protobuf:"varint,3,opt,name=version,proto3" json:"version,omitempty"`
}

func (s *Schema) Reset()         { *s = Schema{} }
func (s *Schema) String() string { return fmt.Sprintf("Schema<%s@%d>", s.Pkg, s.Version) }
func (*Schema) ProtoMessage()    {}

func (s *Schema) GetMetadata() *custodia.Metadata {
	if s == nil {
		return nil
	}
	return s.Metadata
}

// Configuration is the migration package settings. Only the admin is
// allowed to upgrade schema versions.
type Configuration struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	// Admin holds the address of the party that is allowed to run schema
	// upgrades.
	Admin custodia.Address `protobuf:"bytes,2,opt,name=admin,proto3,casttype=github.com/iov-one/custodia.Address" json:"admin,omitempty"`
}

func (c *Configuration) Reset()         { *c = Configuration{} }
func (c *Configuration) String() string { return fmt.Sprintf("Configuration<admin=%s>", c.Admin) }
func (*Configuration) ProtoMessage()    {}

func (c *Configuration) GetMetadata() *custodia.Metadata {
	if c == nil {
		return nil
	}
	return c.Metadata
}

// UpgradeSchemaMsg is a request to bump the schema version of a package by
// one.
type UpgradeSchemaMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	// Name of the package that the migration shall be run for.
	Pkg string `protobuf:"bytes,2,opt,name=pkg,proto3" json:"pkg,omitempty"`
	// ToVersion is the schema version the package is upgraded to.
	ToVersion uint32 `protobuf:"varint,3,opt,name=to_version,json=toVersion,proto3" json:"to_version,omitempty"`
}

func (m *UpgradeSchemaMsg) Reset()         { *m = UpgradeSchemaMsg{} }
func (m *UpgradeSchemaMsg) String() string { return fmt.Sprintf("UpgradeSchemaMsg<%s@%d>", m.Pkg, m.ToVersion) }
func (*UpgradeSchemaMsg) ProtoMessage()    {}

func (m *UpgradeSchemaMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}
