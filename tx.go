package custodia

import (
	"reflect"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custodia/errors"
)

// Msg is a message within a transaction. It is a single operation request
// that the application state machine can process.
type Msg interface {
	proto.Message

	// Path returns the routing path for this message, in the form of
	// "<extension>/<type>". The router dispatches to handlers based on
	// this value.
	Path() string

	// Validate performs a stateless check of the message content. It
	// must not access any state. A message failing validation must never
	// reach a handler.
	Validate() error
}

// Tx represents the entry into the application. The transaction carries
// exactly one message to process along with authentication information.
type Tx interface {
	// GetMsg returns the action we wish to communicate
	GetMsg() (Msg, error)
}

// GetPath returns the path of the message inside the transaction, or
// (missing) if no message is contained.
func GetPath(tx Tx) string {
	msg, err := tx.GetMsg()
	if err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg extracts the message from the transaction, ensures it is of the
// expected type and that its content is valid. The result is written into
// the destination, which must be a non-nil pointer to the expected message
// type.
// TxDecoder can parse bytes into a Tx. It is used by the application to
// process raw transaction payloads delivered by the consensus engine.
type TxDecoder func(txBytes []byte) (Tx, error)

func LoadMsg(tx Tx, destination Msg) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get message")
	}

	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr {
		return errors.Wrap(errors.ErrType, "destination must be a pointer")
	}
	val := reflect.ValueOf(msg)
	if got, want := val.Type(), dest.Type(); got != want {
		return errors.Wrapf(errors.ErrType, "want %s message, got %s", want, got)
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	dest.Elem().Set(val.Elem())
	return nil
}
