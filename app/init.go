package app

import (
	"github.com/iov-one/custodia"
)

// ChainInitializers lets you initialize many extensions with one function.
func ChainInitializers(inits ...custodia.Initializer) custodia.Initializer {
	return chainInitializer{inits: inits}
}

type chainInitializer struct {
	inits []custodia.Initializer
}

// FromGenesis will pass opts to all initializers in the chain, breaking at
// the first error.
func (c chainInitializer) FromGenesis(opts custodia.Options, params custodia.GenesisParams, kv custodia.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, params, kv); err != nil {
			return err
		}
	}
	return nil
}
