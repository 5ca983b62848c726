package migration

import (
	"github.com/iov-one/custodia/errors"
)

func init() {
	MustRegister(1, &Configuration{}, NoModification)
}

func (c *Configuration) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := c.Admin.Validate(); err != nil {
		return errors.Wrap(err, "admin")
	}
	return nil
}
