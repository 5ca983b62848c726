/*
Package gov implements a quorum based governance extension.

A fixed electorate of members votes on proposals during a voting period.
Once the period is over anyone can tally: a proposal passes when enough
members participated to reach the quorum and strictly more votes were
cast for than against. Passed proposals are executed by the admin or the
proposer and can change the electorate or the voting policy itself.
*/
package gov
