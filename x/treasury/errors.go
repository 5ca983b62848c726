package treasury

import "github.com/iov-one/custodia/errors"

var (
	// ErrAlreadyInitialized is returned when initializing an extension
	// that was configured before.
	ErrAlreadyInitialized = errors.Register(1100, "already initialized")

	// ErrNotInitialized is returned when an operation requires a
	// configuration that was never created.
	ErrNotInitialized = errors.Register(1101, "not initialized")

	// ErrInvalidThreshold is returned when an approval threshold is zero,
	// exceeds the signer count or the signer set contains duplicates.
	ErrInvalidThreshold = errors.Register(1102, "invalid threshold")

	// ErrInsufficientFunds is returned when a withdrawal asks for more
	// than the pool balance.
	ErrInsufficientFunds = errors.Register(1103, "insufficient funds")

	// ErrAlreadyExecuted is returned when approving or executing a
	// withdrawal that was paid out before.
	ErrAlreadyExecuted = errors.Register(1104, "already executed")

	// ErrAlreadyApproved is returned when a signer approves the same
	// withdrawal twice.
	ErrAlreadyApproved = errors.Register(1105, "already approved")

	// ErrInsufficientApprovals is returned when executing a withdrawal
	// that has not reached the approval threshold.
	ErrInsufficientApprovals = errors.Register(1106, "insufficient approvals")
)
