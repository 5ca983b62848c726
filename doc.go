/*
Package custodia defines all common interfaces that tie together the
custody ledger: a multi-signature treasury, a quorum governance process, a
time-lock vault and a role registry. Each of those lives in its own
extension package under x/ and is driven exclusively through messages
handled within atomic ledger transactions.

The root package contains only contracts and small value types:

  - storage: KVStore and friends, implemented under store/
  - processing: Msg, Tx, Handler, Decorator, Registry
  - identity: Address and Condition
  - time: UnixTime and UnixDuration, read from the transaction context

We pass context through context.Context between the application,
middleware and handlers. There exist two functions for every value of
type T supported in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

The consensus engine hosting these state machines is responsible for
ordering transactions, committing or discarding the store and publishing
the result tags; nothing in this repository spawns background work or
keeps state outside of the KVStore. See the std package for the standard
way to wire the extensions, the signature middleware and the durable
store into one application.
*/
package custodia
