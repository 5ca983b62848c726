package migration

import (
	"regexp"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
)

var isPkgName = regexp.MustCompile(`^[a-z]{3,20}$`).MatchString

func init() {
	MustRegister(1, &UpgradeSchemaMsg{}, NoModification)
}

var _ custodia.Msg = (*UpgradeSchemaMsg)(nil)

func (m *UpgradeSchemaMsg) Path() string {
	return "migration/upgrade_schema"
}

func (m *UpgradeSchemaMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if !isPkgName(m.Pkg) {
		return errors.Wrap(errors.ErrMsg, "invalid package name")
	}
	if m.ToVersion < 1 {
		return errors.Wrap(errors.ErrMsg, "to version must be greater than zero")
	}
	return nil
}
