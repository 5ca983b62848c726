package gov

import "github.com/iov-one/custodia/errors"

var (
	// ErrAlreadyInitialized is returned when initializing an extension
	// that was configured before.
	ErrAlreadyInitialized = errors.Register(1120, "already initialized")

	// ErrNotInitialized is returned when an operation requires a
	// configuration that was never created.
	ErrNotInitialized = errors.Register(1121, "not initialized")

	// ErrInvalidQuorum is returned when a quorum is zero or above one
	// hundred percent.
	ErrInvalidQuorum = errors.Register(1122, "invalid quorum")

	// ErrVotingClosed is returned when voting on a proposal outside of
	// its voting period or tallying one that is still open.
	ErrVotingClosed = errors.Register(1123, "voting closed")

	// ErrAlreadyVoted is returned when a member votes on the same
	// proposal twice.
	ErrAlreadyVoted = errors.Register(1124, "already voted")
)
