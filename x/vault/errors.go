package vault

import "github.com/iov-one/custodia/errors"

var (
	// ErrAlreadyInitialized is returned when initializing an extension
	// that was configured before.
	ErrAlreadyInitialized = errors.Register(1140, "already initialized")

	// ErrNotInitialized is returned when an operation requires a
	// configuration that was never created.
	ErrNotInitialized = errors.Register(1141, "not initialized")

	// ErrInvalidThreshold is returned when an emergency threshold is
	// zero, exceeds the signer count or the signer set contains
	// duplicates.
	ErrInvalidThreshold = errors.Register(1142, "invalid threshold")

	// ErrNotYetUnlockable is returned when claiming a lock before its
	// release time.
	ErrNotYetUnlockable = errors.Register(1143, "not yet unlockable")

	// ErrAlreadyClaimed is returned when operating on a lock that was
	// released before.
	ErrAlreadyClaimed = errors.Register(1144, "already claimed")

	// ErrAlreadyApproved is returned when an emergency signer approves
	// the same lock twice.
	ErrAlreadyApproved = errors.Register(1145, "already approved")

	// ErrInsufficientApprovals is returned when an emergency release has
	// not reached the approval threshold.
	ErrInsufficientApprovals = errors.Register(1146, "insufficient approvals")

	// ErrNothingToClaim is returned when a vesting claim would release a
	// zero amount.
	ErrNothingToClaim = errors.Register(1147, "nothing to claim")

	// ErrInvalidCliff is returned when a vesting cliff is negative or
	// longer than the vesting duration.
	ErrInvalidCliff = errors.Register(1148, "invalid cliff")
)
