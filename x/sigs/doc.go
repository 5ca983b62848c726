/*
Package sigs provides basic authentication middleware to verify the
signatures on a transaction, and maintains nonces for replay
protection.
*/
package sigs
