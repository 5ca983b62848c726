package std

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/crypto"
	"github.com/iov-one/custodia/store"
	"github.com/iov-one/custodia/x/roles"
	"github.com/iov-one/custodia/x/sigs"
	"github.com/iov-one/custodia/x/treasury"
)

func TestStandardStack(t *testing.T) {
	const chainID = "custodia-std-1"

	adminKey := crypto.GenPrivKeyEd25519()
	admin := adminKey.PublicKey().Address()

	db := store.MemStore()
	raw, err := GenInitOptions([]string{hex.EncodeToString(admin)})
	require.NoError(t, err)
	var opts custodia.Options
	require.NoError(t, json.Unmarshal(raw, &opts))
	params := custodia.GenesisParams{ChainID: chainID}
	require.NoError(t, Initializers().FromGenesis(opts, params, db))

	h := Stack()
	ctx := custodia.WithChainID(context.Background(), chainID)
	ctx = custodia.WithHeight(ctx, 5)
	ctx = custodia.WithBlockTime(ctx, time.Now())

	sign := func(tx *Tx, nonce int64) *Tx {
		sig, err := sigs.SignTx(adminKey, tx, chainID, nonce)
		require.NoError(t, err)
		tx.Signatures = []*sigs.StdSignature{sig}
		return tx
	}

	// A deposit goes through the full chain: signature verification,
	// savepoint, router.
	deposit := sign(&Tx{DepositMsg: &treasury.DepositMsg{
		Metadata: &custodia.Metadata{Schema: 1},
		Amount:   1000,
	}}, 0)

	cache := db.CacheWrap()
	res, err := h.Check(ctx, cache, deposit)
	require.NoError(t, err)
	assert.True(t, res.GasPayment >= 500, "signature verification must be paid for")
	cache.Discard()

	dres, err := h.Deliver(ctx, db, deposit)
	require.NoError(t, err)
	assert.NotEmpty(t, dres.Tags)

	nonce, err := sigs.NextNonce(db, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), nonce)

	// The genesis owner can grow the role hierarchy.
	operator := crypto.GenPrivKeyEd25519().PublicKey().Address()
	grant := sign(&Tx{AssignRoleMsg: &roles.AssignRoleMsg{
		Metadata: &custodia.Metadata{Schema: 1},
		Target:   operator,
		Role:     roles.RoleAdmin,
	}}, 1)
	_, err = h.Deliver(ctx, db, grant)
	require.NoError(t, err)

	ok, err := roles.NewAuthority().HasPermission(db, operator, roles.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	// An unsigned transaction must never reach a handler.
	unsigned := &Tx{DepositMsg: &treasury.DepositMsg{
		Metadata: &custodia.Metadata{Schema: 1},
		Amount:   1,
	}}
	_, err = h.Deliver(ctx, db, unsigned)
	require.Error(t, err)
}

func TestGenInitOptionsRejectsBadAddress(t *testing.T) {
	_, err := GenInitOptions([]string{"not-hex"})
	require.Error(t, err)
}
