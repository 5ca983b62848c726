/*

Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each package declares its own configuration entity. The configuration is
initialized from the genesis file and stored in the database under a key
private to the package. Configuration is versioned the same way models
are, via the metadata schema attribute.

*/
package gconf
