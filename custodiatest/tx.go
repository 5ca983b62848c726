package custodiatest

import (
	"fmt"

	"github.com/iov-one/custodia"
)

// Tx represents a transaction carrying a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg custodia.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ custodia.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (custodia.Msg, error) {
	return tx.Msg, tx.Err
}

// Msg is a mock implementation of the custodia.Msg interface.
type Msg struct {
	// RoutePath is returned by the Path method, consumed by the router.
	RoutePath string
	// Err if set is returned by Validate.
	Err error
}

var _ custodia.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}

func (m *Msg) Reset()         { *m = Msg{} }
func (m *Msg) String() string { return fmt.Sprintf("Msg{%s}", m.RoutePath) }
func (*Msg) ProtoMessage()    {}
