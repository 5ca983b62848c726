/*
Package treasury implements a multi-signature spending ledger.

A pool of funds is administered by a fixed set of signers. Anyone whose
signature is on the transaction can deposit, but moving funds out takes a
withdrawal proposal approved by at least a threshold of distinct signers
before any signer executes it. Signer set and threshold updates are admin
operations.
*/
package treasury
