package sigs

import (
	"fmt"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/crypto"
)

// UserData is the account state kept per public key. The sequence is the
// nonce that every signature of this key must carry.
type UserData struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Pubkey   *crypto.PublicKey  `protobuf:"bytes,2,opt,name=pubkey,proto3" json:"pubkey,omitempty"`
	Sequence int64              `protobuf:"varint,3,opt,name=sequence,proto3" json:"sequence,omitempty"`
}

func (u *UserData) Reset()         { *u = UserData{} }
func (u *UserData) String() string { return fmt.Sprintf("UserData<seq=%d>", u.Sequence) }
func (*UserData) ProtoMessage()    {}

func (u *UserData) GetMetadata() *custodia.Metadata {
	if u == nil {
		return nil
	}
	return u.Metadata
}

// StdSignature represents the signature, the identity of the signer (the
// public key) and a nonce to prevent replay attacks.
//
// A signature is rejected unless its sequence matches the value currently
// stored for that key. Processing a transaction increments the sequence.
type StdSignature struct {
	Sequence  int64             `protobuf:"varint,1,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Pubkey    *crypto.PublicKey `protobuf:"bytes,2,opt,name=pubkey,proto3" json:"pubkey,omitempty"`
	Signature *crypto.Signature `protobuf:"bytes,3,opt,name=signature,proto3" json:"signature,omitempty"`
}

func (s *StdSignature) Reset()         { *s = StdSignature{} }
func (s *StdSignature) String() string { return fmt.Sprintf("StdSignature<seq=%d>", s.Sequence) }
func (*StdSignature) ProtoMessage()    {}

func (s *StdSignature) GetSequence() int64 {
	if s == nil {
		return 0
	}
	return s.Sequence
}

// BumpSequenceMsg increments the sequence of the signer by the given
// amount, invalidating any transaction signed with a lower nonce.
type BumpSequenceMsg struct {
	Metadata *custodia.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	// Increment is the total sequence increase this message causes,
	// including the usual increment of one per processed transaction.
	Increment uint32 `protobuf:"varint,2,opt,name=increment,proto3" json:"increment,omitempty"`
}

func (m *BumpSequenceMsg) Reset()         { *m = BumpSequenceMsg{} }
func (m *BumpSequenceMsg) String() string { return fmt.Sprintf("BumpSequenceMsg<%d>", m.Increment) }
func (*BumpSequenceMsg) ProtoMessage()    {}

func (m *BumpSequenceMsg) GetMetadata() *custodia.Metadata {
	if m == nil {
		return nil
	}
	return m.Metadata
}
