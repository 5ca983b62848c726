/*
Package errors implements custom error interfaces for custodia.

Error declarations should be generic and cover broad range of cases. Each
returned error instance can wrap a generic error declaration to add context.
Each extension that needs error kinds of its own registers them with a
unique code, so that a client can always tell failures apart by code
without parsing the description.
*/
package errors
