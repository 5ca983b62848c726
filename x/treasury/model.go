package treasury

import (
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/gconf"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/orm"
)

func init() {
	migration.MustRegister(1, &Balance{}, migration.NoModification)
	migration.MustRegister(1, &Transaction{}, migration.NoModification)
}

const maxMemoSize = 128

// balanceKey is the fixed key of the singleton pool balance.
var balanceKey = []byte("treasury")

var _ orm.Model = (*Balance)(nil)
var _ orm.Model = (*Transaction)(nil)

// Validate ensures the configuration can be stored.
func (c *Config) Validate() error {
	var errs error
	errs = errors.Append(errs, c.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(c.Admin.Validate(), "admin"))
	errs = errors.Append(errs, validatePolicy(c.Threshold, c.Signers))
	return errs
}

// validatePolicy ensures a threshold and signer set describe a usable
// multi-signature policy.
func validatePolicy(threshold uint32, signers []custodia.Address) error {
	if threshold == 0 {
		return errors.Wrap(ErrInvalidThreshold, "threshold is zero")
	}
	if int(threshold) > len(signers) {
		return errors.Wrapf(ErrInvalidThreshold, "threshold %d above %d signers", threshold, len(signers))
	}
	seen := make(map[string]struct{}, len(signers))
	for i, s := range signers {
		if err := s.Validate(); err != nil {
			return errors.Wrapf(err, "signer #%d", i)
		}
		if _, ok := seen[string(s)]; ok {
			return errors.Wrapf(ErrInvalidThreshold, "duplicate signer %s", s)
		}
		seen[string(s)] = struct{}{}
	}
	return nil
}

// IsSigner returns true if the address belongs to the signer set.
func (c *Config) IsSigner(addr custodia.Address) bool {
	for _, s := range c.Signers {
		if addr.Equals(s) {
			return true
		}
	}
	return false
}

func (b *Balance) Validate() error {
	var errs error
	errs = errors.Append(errs, b.Metadata.Validate())
	if b.Total < 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "negative balance"))
	}
	return errs
}

func (t *Transaction) Validate() error {
	var errs error
	errs = errors.Append(errs, t.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(t.To.Validate(), "to"))
	errs = errors.Append(errs, errors.Wrap(t.Proposer.Validate(), "proposer"))
	if t.Amount <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount must be positive"))
	}
	if len(t.Memo) > maxMemoSize {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "memo too long"))
	}
	for i, a := range t.Approvals {
		errs = errors.Append(errs, errors.Wrapf(a.Validate(), "approval #%d", i))
	}
	return errs
}

// HasApproval returns true if the given signer already approved this
// withdrawal.
func (t *Transaction) HasApproval(addr custodia.Address) bool {
	for _, a := range t.Approvals {
		if addr.Equals(a) {
			return true
		}
	}
	return false
}

// NewTransactionBucket returns a bucket for keeping withdrawal proposals
// with ids assigned by a monotone sequence.
func NewTransactionBucket() orm.ModelBucket {
	b := orm.NewModelBucket("wdraw", &Transaction{},
		orm.WithIDSequence(orm.NewSequence("wdraw", "id")),
	)
	return migration.NewModelBucket("treasury", b)
}

// NewBalanceBucket returns a bucket holding the singleton pool balance.
func NewBalanceBucket() orm.ModelBucket {
	b := orm.NewModelBucket("pool", &Balance{})
	return migration.NewModelBucket("treasury", b)
}

// loadBalance returns the current pool balance, zero if never stored.
func loadBalance(db custodia.ReadOnlyKVStore, bucket orm.ModelBucket) (*Balance, error) {
	var b Balance
	switch err := bucket.One(db, balanceKey, &b); {
	case err == nil:
		return &b, nil
	case errors.ErrNotFound.Is(err):
		return &Balance{Metadata: &custodia.Metadata{Schema: 1}}, nil
	default:
		return nil, errors.Wrap(err, "load balance")
	}
}

// loadConfig returns the treasury configuration, failing with
// ErrNotInitialized when the extension was never set up.
func loadConfig(db custodia.ReadOnlyKVStore) (*Config, error) {
	var conf Config
	switch err := gconf.Load(db, "treasury", &conf); {
	case err == nil:
		return &conf, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrap(ErrNotInitialized, "no configuration")
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
}
