/*

Package migration provides tooling necessary for working with schema versioned
entities. Functionality provided here can be applied both to messages and
models.


Global preparation.

1. update application genesis to provide "migration" configuration. You can
find documented configuration declaration in the protobuf declaration file,

2. register migration message handlers using the `RegisterRoutes` function


Extension integration.


1. update all entity declarations that are to be schema versioned. First
attribute must be metadata. For example:

    message MyMessage {
      custodia.Metadata metadata = 1;
      ...
    }

Make sure that whenever you create a new entity, metadata attribute is provided
as `nil` metadata value is not valid.

2. register your migrations functions in package `init`. Schema version is
declared per package not per entity so each upgrade must provide migration
function for all entities. Use `migration.NoModification` for those entities
that require no change. For example:

    func init() {
        migration.MustRegister(1, &MyModel{}, migration.NoModification)
        migration.MustRegister(1, &MyMessage{}, migration.NoModification)
    }

3. wrap your bucket with `migration.NewModelBucket` instead of using
`orm.NewModelBucket` directly,

4. wrap your handler registration with `migration.SchemaMigratingRegistry`
to ensure all messages are always migrated to the latest schema before
being passed to the handler,

5. make sure `.Metadata.Schema` attribute of newly created messages is set.
This is not necessary for models as it will default to the current schema
version.

*/
package migration
