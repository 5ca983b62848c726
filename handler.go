package custodia

import (
	"encoding/json"

	"github.com/iov-one/custodia/errors"
)

// Checker is a subset of Handler to verify the validity of a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Handler is a combination of Checker and Deliverer and can route one
// message type to its proper processing logic.
type Handler interface {
	Checker
	Deliverer
}

// Registry is an interface to register your handler,
// the setup side of a Router
type Registry interface {
	// Handle assigns given handler to handle processing of every message
	// of provided type.
	// Using a message with an invalid path panics.
	// Registering a handler for a message more than ones panics.
	Handle(msg Msg, h Handler)
}

// Decorator wraps a Handler to provide common functionality
// like authentication, or fee-handling, to many Handlers
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Options are the app options.
// Each extension can look up its key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg, obj); err != nil {
		return errors.Wrap(err, string(msg))
	}
	return nil
}

// Stream expects an array of json elements and allows to process them
// sequentially, avoiding the need to load the whole dataset into memory.
// Returns errors.ErrEmpty when there is no more data to process.
func (o Options) Stream(key string) func(obj interface{}) error {
	var msgs []json.RawMessage
	err := o.ReadOptions(key, &msgs)
	pos := 0
	return func(obj interface{}) error {
		if err != nil {
			return err
		}
		if pos >= len(msgs) {
			return errors.Wrap(errors.ErrEmpty, "stream depleted")
		}
		msg := msgs[pos]
		pos++
		if err := json.Unmarshal(msg, obj); err != nil {
			return errors.Wrap(err, string(msg))
		}
		return nil
	}
}

// Initializer implementations are used to initialize
// the blockchain state at genesis
type Initializer interface {
	FromGenesis(opts Options, params GenesisParams, kv KVStore) error
}

// GenesisParams represents parameters set in genesis that could be useful
// for some of the extensions.
type GenesisParams struct {
	ChainID string
}
