package std

import (
	"encoding/json"
	"time"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/app"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/x/gov"
	"github.com/iov-one/custodia/x/roles"
	"github.com/iov-one/custodia/x/sigs"
	"github.com/iov-one/custodia/x/treasury"
	"github.com/iov-one/custodia/x/vault"
)

// Initializers returns the chain of genesis initializers for the standard
// application. The migration package must come first so every other
// extension can register its schema.
func Initializers() custodia.Initializer {
	return app.ChainInitializers(
		&migration.Initializer{},
		&sigs.Initializer{},
		&roles.Initializer{},
		&treasury.Initializer{},
		&gov.Initializer{},
		&vault.Initializer{},
	)
}

// GenInitOptions produces a basic genesis app state for dev mode. The
// first argument, when given, is the hex address that is installed as
// owner, treasury signer and governance member. All four extensions are
// configured so the chain is usable right away.
func GenInitOptions(args []string) (json.RawMessage, error) {
	addr := "0102030405060708090021222324252627282930"
	if len(args) > 0 {
		addr = args[0]
	}
	admin, err := custodia.ParseAddress(addr)
	if err != nil {
		return nil, errors.Wrap(err, "admin address")
	}

	meta := &custodia.Metadata{Schema: 1}
	state := map[string]interface{}{
		"conf": map[string]interface{}{
			"migration": migration.Configuration{
				Metadata: meta,
				Admin:    admin,
			},
			"roles": roles.Config{
				Metadata: meta,
				Owner:    admin,
			},
			"treasury": treasury.Config{
				Metadata:  meta,
				Admin:     admin,
				Threshold: 1,
				Signers:   []custodia.Address{admin},
			},
			"gov": gov.Config{
				Metadata:     meta,
				Admin:        admin,
				Members:      []custodia.Address{admin},
				Quorum:       50,
				VotingPeriod: custodia.AsUnixDuration(24 * time.Hour),
			},
			"vault": vault.Config{
				Metadata:           meta,
				Admin:              admin,
				EmergencySigners:   []custodia.Address{admin},
				EmergencyThreshold: 1,
			},
		},
	}
	return json.Marshal(state)
}
