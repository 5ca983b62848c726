/*
Package custodiatest provides mocks and helpers for testing extensions
without running a full application. Use store.MemStore for the state and
the Auth or CtxAuth mocks in place of signature verification.
*/
package custodiatest
