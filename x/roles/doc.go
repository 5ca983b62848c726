/*
Package roles implements a hierarchical access control extension.

Every account can hold at most one role. Roles are strictly ordered,
Viewer < Member < Admin < Owner, and a higher role always includes the
permissions of the lower ones. Exactly one account holds the Owner role
and ownership can change hands only through an explicit transfer, which
demotes the previous owner to Admin.

Other extensions should depend on the small Authority interface instead
of this package's buckets, so permission checks stay mockable.
*/
package roles
