package custodiatest

import (
	"encoding/binary"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/crypto"
)

// NewKey returns a random private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the condition of a newly generated key.
func NewCondition() custodia.Condition {
	return NewKey().PublicKey().Condition()
}

// SequenceID returns the big endian binary representation of an identifier
// as produced by the orm sequence counter.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
