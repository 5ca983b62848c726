package sigs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/crypto"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/store"
)

// sigTx is a transaction carrying a raw payload and its signatures.
type sigTx struct {
	payload []byte
	sigs    []*StdSignature
}

var (
	_ custodia.Tx = (*sigTx)(nil)
	_ SignedTx    = (*sigTx)(nil)
)

func (tx *sigTx) GetMsg() (custodia.Msg, error) {
	return nil, errors.Wrap(errors.ErrHuman, "no message in a test tx")
}

func (tx *sigTx) GetSignBytes() ([]byte, error) {
	return tx.payload, nil
}

func (tx *sigTx) GetSignatures() []*StdSignature {
	return tx.sigs
}

func TestSignBytes(t *testing.T) {
	bz := []byte("foobar")
	tx := &sigTx{payload: bz}

	// The sign bytes are a fixed size digest over payload, chain and
	// nonce, so any of them changing must change the result.
	chainID := "test-sign-bytes"
	c1, err := BuildSignBytesTx(tx, chainID, 17)
	require.NoError(t, err)
	assert.Len(t, c1, 64)
	assert.NotEqual(t, bz, c1)

	ct, err := BuildSignBytes([]byte("blast"), chainID, 17)
	require.NoError(t, err)
	assert.NotEqual(t, c1, ct)
	c2, err := BuildSignBytes(bz, chainID+"2", 17)
	require.NoError(t, err)
	assert.NotEqual(t, c1, c2)
	c3, err := BuildSignBytes(bz, chainID, 18)
	require.NoError(t, err)
	assert.NotEqual(t, c1, c3)

	_, err = BuildSignBytes(bz, chainID, -1)
	assert.True(t, ErrInvalidSequence.Is(err))
	_, err = BuildSignBytes(bz, "no", 17)
	assert.True(t, errors.ErrInput.Is(err))
}

func TestSignAndVerify(t *testing.T) {
	const chainID = "sigs-chain-124"

	db := store.MemStore()
	migration.MustInitPkg(db, "sigs")

	priv := crypto.GenPrivKeyEd25519()
	tx := &sigTx{payload: []byte("foobar")}

	// Until signed, there is nothing to authenticate with.
	signers, err := VerifyTxSignatures(db, tx, chainID)
	require.NoError(t, err)
	assert.Empty(t, signers)

	sig, err := SignTx(priv, tx, chainID, 0)
	require.NoError(t, err)
	tx.sigs = []*StdSignature{sig}

	signers, err = VerifyTxSignatures(db, tx, chainID)
	require.NoError(t, err)
	require.Len(t, signers, 1)
	assert.Equal(t, priv.PublicKey().Condition(), signers[0])

	// Replaying the same nonce must fail.
	_, err = VerifyTxSignatures(db, tx, chainID)
	assert.True(t, ErrInvalidSequence.Is(err))

	// The next nonce is accepted.
	sig, err = SignTx(priv, tx, chainID, 1)
	require.NoError(t, err)
	tx.sigs = []*StdSignature{sig}
	_, err = VerifyTxSignatures(db, tx, chainID)
	require.NoError(t, err)

	nonce, err := NextNonce(db, priv.PublicKey().Address())
	require.NoError(t, err)
	assert.Equal(t, int64(2), nonce)
}

func TestVerifyRejectsWrongChain(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "sigs")

	priv := crypto.GenPrivKeyEd25519()
	tx := &sigTx{payload: []byte("foobar")}

	sig, err := SignTx(priv, tx, "chain-proper", 0)
	require.NoError(t, err)
	tx.sigs = []*StdSignature{sig}

	// The chain id is part of the signed payload, so the same signature
	// is invalid anywhere else.
	_, err = VerifyTxSignatures(db, tx, "chain-hijack")
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestVerifyRejectsFutureNonce(t *testing.T) {
	const chainID = "sigs-chain-124"

	db := store.MemStore()
	migration.MustInitPkg(db, "sigs")

	priv := crypto.GenPrivKeyEd25519()
	tx := &sigTx{payload: []byte("foobar")}

	// A valid signature over a nonce the account did not reach yet must
	// not be accepted early.
	sig, err := SignTx(priv, tx, chainID, 42)
	require.NoError(t, err)
	tx.sigs = []*StdSignature{sig}

	_, err = VerifyTxSignatures(db, tx, chainID)
	assert.True(t, ErrInvalidSequence.Is(err))
}
