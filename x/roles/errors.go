package roles

import "github.com/iov-one/custodia/errors"

var (
	// ErrAlreadyInitialized is returned when initializing an extension
	// that was configured before.
	ErrAlreadyInitialized = errors.Register(1160, "already initialized")

	// ErrNotInitialized is returned when an operation requires a
	// configuration that was never created.
	ErrNotInitialized = errors.Register(1161, "not initialized")

	// ErrInsufficientRole is returned when the signer's role does not
	// cover the requested operation.
	ErrInsufficientRole = errors.Register(1162, "insufficient role")
)
