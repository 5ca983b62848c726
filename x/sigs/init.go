package sigs

import (
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/migration"
)

// Initializer fulfils the Initializer interface to prepare the schema
// registry on genesis.
type Initializer struct{}

var _ custodia.Initializer = (*Initializer)(nil)

// FromGenesis initializes the package schema. There is no genesis
// configuration, accounts are created lazily on first use.
func (*Initializer) FromGenesis(opts custodia.Options, params custodia.GenesisParams, kv custodia.KVStore) error {
	migration.MustInitPkg(kv, "sigs")
	return nil
}
