package custodia

import (
	"fmt"

	"github.com/iov-one/custodia/errors"
)

// Metadata is attached to each persistent entity and each message. It
// declares which schema version the payload was created with, so that the
// migration framework can upgrade data on the fly.
type Metadata struct {
	Schema uint32 `protobuf:"varint,1,opt,name=schema,proto3" json:"schema,omitempty"`
}

var _ fmt.Stringer = (*Metadata)(nil)

func (m *Metadata) Reset()         { *m = Metadata{} }
func (m *Metadata) String() string { return fmt.Sprintf("Metadata{Schema: %d}", m.Schema) }
func (*Metadata) ProtoMessage()    {}

// Validate returns an error if the metadata content is not valid. Schema
// version must be greater than zero.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrMetadata, "missing metadata")
	}
	if m.Schema < 1 {
		return errors.Wrap(errors.ErrMetadata, "schema must be greater than zero")
	}
	return nil
}

// Copy returns a deep copy of this metadata.
func (m *Metadata) Copy() *Metadata {
	if m == nil {
		return nil
	}
	return &Metadata{Schema: m.Schema}
}
