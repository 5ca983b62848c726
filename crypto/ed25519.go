package crypto

import (
	fmt "fmt"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"golang.org/x/crypto/ed25519"
)

// ExtensionName is used for the conditions we get from signatures
const ExtensionName = "sigs"

// PublicKey is an ed25519 public key.
type PublicKey struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

func (m *PublicKey) Reset()         { *m = PublicKey{} }
func (m *PublicKey) String() string { return fmt.Sprintf("PublicKey{%X}", m.Ed25519) }
func (*PublicKey) ProtoMessage()    {}

// Validate ensures the key has the expected raw key size.
func (m *PublicKey) Validate() error {
	if len(m.Ed25519) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInput, "invalid public key size: %d", len(m.Ed25519))
	}
	return nil
}

// Verify verifies the signature was created with this message and public key
func (m *PublicKey) Verify(message []byte, sig *Signature) bool {
	if sig == nil || len(sig.Ed25519) == 0 {
		return false
	}
	publicKey := ed25519.PublicKey(m.Ed25519)
	return ed25519.Verify(publicKey, message, sig.Ed25519)
}

// Condition encodes the public key into a condition. Its address is what
// handlers authenticate against.
//
//	pub.Condition().Address()
func (m *PublicKey) Condition() custodia.Condition {
	if len(m.Ed25519) == 0 {
		return nil
	}
	return custodia.NewCondition(ExtensionName, "ed25519", m.Ed25519)
}

// Address is a shortcut for Condition().Address()
func (m *PublicKey) Address() custodia.Address {
	return m.Condition().Address()
}

// PrivateKey is an ed25519 private key.
//
// No serialization of the signing operation itself is assumed, so hardware
// backed implementations can provide the same surface.
type PrivateKey struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

func (m *PrivateKey) Reset()         { *m = PrivateKey{} }
func (m *PrivateKey) String() string { return "PrivateKey{...}" }
func (*PrivateKey) ProtoMessage()    {}

// Sign returns a matching signature for this private key
func (m *PrivateKey) Sign(message []byte) (*Signature, error) {
	if len(m.Ed25519) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "invalid private key size: %d", len(m.Ed25519))
	}
	privateKey := ed25519.PrivateKey(m.Ed25519)
	bz := ed25519.Sign(privateKey, message)
	return &Signature{Ed25519: bz}, nil
}

// PublicKey returns the corresponding PublicKey
func (m *PrivateKey) PublicKey() *PublicKey {
	privateKey := ed25519.PrivateKey(m.Ed25519)
	pub := privateKey.Public().(ed25519.PublicKey)
	return &PublicKey{Ed25519: pub}
}

// Signature is a raw ed25519 signature.
type Signature struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

func (m *Signature) Reset()         { *m = Signature{} }
func (m *Signature) String() string { return fmt.Sprintf("Signature{%X}", m.Ed25519) }
func (*Signature) ProtoMessage()    {}

// GenPrivKeyEd25519 returns a random new private key
// (TODO: look at sources of randomness, other than default crypto/rand)
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	priv := ed25519.NewKeyFromSeed(seed)
	return &PrivateKey{Ed25519: priv}
}
