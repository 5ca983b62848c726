package gov

import (
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/gconf"
	"github.com/iov-one/custodia/migration"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file
type Initializer struct{}

var _ custodia.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial configuration from genesis and store it.
// The configuration is optional, the extension can also be initialized
// later with an InitMsg.
func (*Initializer) FromGenesis(opts custodia.Options, params custodia.GenesisParams, kv custodia.KVStore) error {
	migration.MustInitPkg(kv, "gov")

	var conf Config
	switch err := gconf.InitConfig(kv, opts, "gov", &conf); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		return nil
	default:
		return errors.Wrap(err, "init config")
	}
	return nil
}
