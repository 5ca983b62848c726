package sigs

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/crypto"
	"github.com/iov-one/custodia/errors"
)

// signCodeV1 is the current way to prefix the bytes we use to build a
// signature.
var signCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// Signer produces signatures for arbitrary payloads. It is implemented by
// crypto.PrivateKey and can be backed by an external key store as well.
type Signer interface {
	Sign(message []byte) (*crypto.Signature, error)
	PublicKey() *crypto.PublicKey
}

// VerifyTxSignatures checks all the signatures on the tx, which may be
// empty. It returns the conditions of all signers, or an error if any
// signature is invalid.
func VerifyTxSignatures(db custodia.KVStore, tx SignedTx, chainID string) ([]custodia.Condition, error) {
	bz, err := tx.GetSignBytes()
	if err != nil {
		return nil, errors.Wrap(err, "cannot get sign bytes")
	}
	sigs := tx.GetSignatures()

	signers := make([]custodia.Condition, 0, len(sigs))
	for _, sig := range sigs {
		signer, err := VerifySignature(db, sig, bz, chainID)
		if err != nil {
			return nil, err
		}
		signers = append(signers, signer)
	}
	return signers, nil
}

// VerifySignature checks one signature against the sign bytes, verifies
// the nonce and updates the account state in the store.
func VerifySignature(db custodia.KVStore, sig *StdSignature, signBytes []byte, chainID string) (custodia.Condition, error) {
	// This guarantees the sequence makes sense and a pubkey is present.
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	bucket := NewUserBucket()
	user, err := loadOrCreateUser(db, bucket, sig.Pubkey)
	if err != nil {
		return nil, err
	}

	toSign, err := BuildSignBytes(signBytes, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}

	if !user.Pubkey.Verify(toSign, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}

	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if _, err := bucket.Put(db, user.Pubkey.Address(), user); err != nil {
		return nil, errors.Wrap(err, "cannot save user")
	}
	return user.Pubkey.Condition(), nil
}

/*
BuildSignBytes combines all info on the actual tx before signing.

The format is:

	version | len(chainID) | chainID      | nonce             | signBytes
	4bytes  | uint8        | ascii string | int64 (bigendian) | serialized transaction

This is then prehashed with sha512 before being fed into the public key
signing and verification step, so we have a constant length payload that
hardware signers can support as well.
*/
func BuildSignBytes(signBytes []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !custodia.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}

	// Encode the nonce as 8 byte, big-endian.
	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, uint64(seq))

	output := make([]byte, 0, len(signCodeV1)+1+len(chainID)+8+len(signBytes))
	output = append(output, signCodeV1...)
	output = append(output, uint8(len(chainID)))
	output = append(output, []byte(chainID)...)
	output = append(output, nonce...)
	output = append(output, signBytes...)

	hashed := sha512.Sum512(output)
	return hashed[:], nil
}

// BuildSignBytesTx calculates the sign bytes given a tx.
func BuildSignBytesTx(tx SignedTx, chainID string, seq int64) ([]byte, error) {
	signBytes, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	return BuildSignBytes(signBytes, chainID, seq)
}

// SignTx creates a signature for the given tx.
func SignTx(signer Signer, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	signBytes, err := BuildSignBytesTx(tx, chainID, seq)
	if err != nil {
		return nil, err
	}

	sig, err := signer.Sign(signBytes)
	if err != nil {
		return nil, err
	}

	return &StdSignature{
		Pubkey:    signer.PublicKey(),
		Signature: sig,
		Sequence:  seq,
	}, nil
}
