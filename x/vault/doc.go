/*
Package vault implements time locked deposits and linear vesting.

Funds can be locked until a release time and claimed back by their owner
afterwards. A configured set of emergency signers can release a lock
early once enough of them approved. Vesting schedules pay out linearly
over a duration, with an optional cliff before which nothing is
claimable, and are created by the admin for a beneficiary.
*/
package vault
