/*
Package std wires the framework and all extensions into a standard
application. It is a good place to see how the components fit together,
and the default answer for a node embedding the state machines. Replace
individual pieces with custom implementations as your project grows.
*/
package std

import (
	"context"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/app"
	"github.com/iov-one/custodia/store/iavl"
	"github.com/iov-one/custodia/x"
	"github.com/iov-one/custodia/x/gov"
	"github.com/iov-one/custodia/x/roles"
	"github.com/iov-one/custodia/x/sigs"
	"github.com/iov-one/custodia/x/treasury"
	"github.com/iov-one/custodia/x/vault"
)

// Authenticator returns the standard authentication, backed by the
// transaction signatures the sigs decorator verified.
func Authenticator() x.Authenticator {
	return sigs.Authenticate{}
}

// Chain returns the standard decorator chain: logging, panic recovery,
// signature verification and savepoints so a failed check never touches
// state.
func Chain() app.Decorators {
	return app.ChainDecorators(
		app.NewLogging(),
		app.NewRecovery(),
		// on CheckTx, bad tx don't affect state
		app.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, bad tx will still increment the nonce
		app.NewSavepoint().OnDeliver(),
	)
}

// Router returns the standard router with every extension registered.
// Role holders act as the shared admin authority for the other
// extensions.
func Router(auth x.Authenticator) *app.Router {
	r := app.NewRouter()
	authority := roles.NewAuthority()
	roles.RegisterRoutes(r, auth)
	treasury.RegisterRoutes(r, auth, authority)
	gov.RegisterRoutes(r, auth, authority)
	vault.RegisterRoutes(r, auth, authority)
	sigs.RegisterRoutes(r, auth)
	return r
}

// Stack wires up the standard router with the standard decorator chain.
// This can be passed into BaseApp.
func Stack() custodia.Handler {
	return Chain().WithHandler(Router(Authenticator()))
}

// CommitKVStore loads the iavl-backed durable store from the given
// directory.
func CommitKVStore(dbPath string) custodia.CommitKVStore {
	return iavl.NewCommitStore(dbPath, "custodia")
}

// Application constructs a basic ABCI application with the given
// arguments. If you are not sure what to use for the Handler, just use
// Stack().
func Application(name string, h custodia.Handler, tx custodia.TxDecoder, dbPath string) (app.BaseApp, error) {
	kv := CommitKVStore(dbPath)
	store := app.NewStoreApp(name, kv, context.Background())
	store = store.WithInit(Initializers())
	return app.NewBaseApp(store, tx, h, false), nil
}
