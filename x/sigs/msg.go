package sigs

import (
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/migration"
)

func init() {
	migration.MustRegister(1, &BumpSequenceMsg{}, migration.NoModification)
}

const (
	maxSequenceIncrement = 1000
	minSequenceIncrement = 1
)

var _ custodia.Msg = (*BumpSequenceMsg)(nil)

func (BumpSequenceMsg) Path() string {
	return "sigs/bump_sequence"
}

func (m *BumpSequenceMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, m.Metadata.Validate())
	if m.Increment < minSequenceIncrement {
		errs = errors.Append(errs,
			errors.Wrapf(errors.ErrMsg, "increment must be at least %d", minSequenceIncrement))
	}
	if m.Increment > maxSequenceIncrement {
		errs = errors.Append(errs,
			errors.Wrapf(errors.ErrMsg, "increment must not be greater than %d", maxSequenceIncrement))
	}
	return errs
}
