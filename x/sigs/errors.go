package sigs

import "github.com/iov-one/custodia/errors"

var (
	// ErrInvalidSequence is returned when a signature carries a sequence
	// number that does not match the stored account state.
	ErrInvalidSequence = errors.Register(1180, "invalid sequence")
)
