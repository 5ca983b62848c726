package orm

import (
	"github.com/gogo/protobuf/proto"
)

// Model is implemented by any entity that can be stored using ModelBucket.
// Serialization is done with the protobuf reflection over the declared
// struct tags, so a Model must not provide its own Marshal method.
type Model interface {
	proto.Message

	// Validate returns an error if the model is not in a valid state to
	// save to the db (eg. field missing, out of range, ...)
	Validate() error
}
