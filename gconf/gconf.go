package gconf

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
)

// Configuration is implemented by any package configuration entity.
type Configuration interface {
	proto.Message

	// Validate returns an error if the configuration is not in a valid
	// state to be stored.
	Validate() error
}

// Save stores the given configuration as the active one for the package.
// The previous configuration is overwritten.
func Save(db custodia.KVStore, pkg string, src Configuration) error {
	key := dbKey(pkg)
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "configuration %q", key)
	}
	raw, err := proto.Marshal(src)
	if err != nil {
		return errors.Wrapf(err, "cannot marshal configuration %q", key)
	}
	return db.Set(key, raw)
}

// Load copies the currently active configuration of the package into dst.
func Load(db custodia.ReadOnlyKVStore, pkg string, dst proto.Message) error {
	key := dbKey(pkg)
	raw, err := db.Get(key)
	if err != nil {
		return errors.Wrapf(err, "cannot load configuration %q", key)
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "configuration %q", key)
	}
	if err := proto.Unmarshal(raw, dst); err != nil {
		return errors.Wrapf(err, "cannot unmarshal configuration %q", key)
	}
	return nil
}

func dbKey(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// InitConfig loads the configuration of the package from the genesis
// options and stores it in the database. Genesis declares configurations
// under the "conf" key, one entry per package:
//
//	{
//	  "conf": {
//	    "mypkg": { ... }
//	  }
//	}
func InitConfig(db custodia.KVStore, opts custodia.Options, pkg string, conf Configuration) error {
	var confOptions custodia.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(err, "read conf options")
	}
	raw, ok := confOptions[pkg]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "no configuration for %q", pkg)
	}
	if err := confOptions.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(err, "cannot parse configuration %s", raw)
	}
	if err := Save(db, pkg, conf); err != nil {
		return errors.Wrapf(err, "cannot store %q configuration", pkg)
	}
	return nil
}
