package migration

import (
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/gconf"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file
type Initializer struct{}

var _ custodia.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial account info from genesis and save it to
// the database
func (*Initializer) FromGenesis(opts custodia.Options, params custodia.GenesisParams, db custodia.KVStore) error {
	if err := gconf.InitConfig(db, opts, "migration", &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}
	// The migration package must be initialized before any other
	// can have its schema registered.
	MustInitPkg(db, "migration")
	return nil
}
