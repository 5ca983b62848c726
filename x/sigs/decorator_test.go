package sigs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/crypto"
	"github.com/iov-one/custodia/custodiatest"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/store"
)

// signerCapture records what the authenticator reveals to the handler
// below the decorator.
type signerCapture struct {
	Conditions []custodia.Condition
}

func (h *signerCapture) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	h.Conditions = Authenticate{}.GetConditions(ctx)
	return &custodia.CheckResult{}, nil
}

func (h *signerCapture) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	h.Conditions = Authenticate{}.GetConditions(ctx)
	return &custodia.DeliverResult{}, nil
}

func TestDecorator(t *testing.T) {
	const chainID = "sigs-chain-124"

	db := store.MemStore()
	migration.MustInitPkg(db, "sigs")
	ctx := custodia.WithChainID(context.Background(), chainID)

	priv := crypto.GenPrivKeyEd25519()
	tx := &sigTx{payload: []byte("art")}
	sig, err := SignTx(priv, tx, chainID, 0)
	require.NoError(t, err)
	tx.sigs = []*StdSignature{sig}

	d := NewDecorator()
	capture := &signerCapture{}

	res, err := d.Check(ctx, db, tx, capture)
	require.NoError(t, err)
	assert.Equal(t, int64(signatureVerifyCost), res.GasPayment)
	require.Len(t, capture.Conditions, 1)
	assert.Equal(t, priv.PublicKey().Condition(), capture.Conditions[0])
	assert.True(t, Authenticate{}.HasAddress(
		withSigners(ctx, capture.Conditions), priv.PublicKey().Address()))

	// The check above consumed nonce 0.
	sig, err = SignTx(priv, tx, chainID, 1)
	require.NoError(t, err)
	tx.sigs = []*StdSignature{sig}

	capture.Conditions = nil
	_, err = d.Deliver(ctx, db, tx, capture)
	require.NoError(t, err)
	assert.Len(t, capture.Conditions, 1)
}

func TestDecoratorRequiresSignature(t *testing.T) {
	const chainID = "sigs-chain-124"

	db := store.MemStore()
	migration.MustInitPkg(db, "sigs")
	ctx := custodia.WithChainID(context.Background(), chainID)

	tx := &sigTx{payload: []byte("art")}
	capture := &signerCapture{}

	_, err := NewDecorator().Check(ctx, db, tx, capture)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// Relaxed configuration lets unsigned transactions through with no
	// conditions set.
	res, err := NewDecorator().AllowMissingSigs().Check(ctx, db, tx, capture)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.GasPayment)
	assert.Empty(t, capture.Conditions)
}

func TestDecoratorIgnoresUnsignedTxTypes(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "sigs")
	ctx := custodia.WithChainID(context.Background(), "sigs-chain-124")

	// A transaction that cannot carry signatures is passed through
	// untouched.
	tx := &custodiatest.Tx{Msg: &custodiatest.Msg{RoutePath: "test/any"}}
	capture := &signerCapture{}
	_, err := NewDecorator().Check(ctx, db, tx, capture)
	require.NoError(t, err)
	assert.Empty(t, capture.Conditions)
}
