package vault

import (
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/gconf"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/orm"
)

func init() {
	migration.MustRegister(1, &Lock{}, migration.NoModification)
	migration.MustRegister(1, &Vesting{}, migration.NoModification)
}

const maxMemoSize = 128

var _ orm.Model = (*Lock)(nil)
var _ orm.Model = (*Vesting)(nil)

// Validate ensures the configuration can be stored.
func (c *Config) Validate() error {
	var errs error
	errs = errors.Append(errs, c.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(c.Admin.Validate(), "admin"))
	errs = errors.Append(errs, validatePolicy(c.EmergencyThreshold, c.EmergencySigners))
	return errs
}

// validatePolicy ensures a threshold and signer set describe a usable
// emergency release policy.
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

// IsEmergencySigner returns true if the address belongs to the emergency
// signer set.
func (c *Config) IsEmergencySigner(addr custodia.Address) bool {
	for _, s := range c.EmergencySigners {
		if addr.Equals(s) {
			return true
		}
	}
	return false
}

func (l *Lock) Validate() error {
	var errs error
	errs = errors.Append(errs, l.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(l.Owner.Validate(), "owner"))
	if l.Amount <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount must be positive"))
	}
	if len(l.Memo) > maxMemoSize {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "memo too long"))
	}
	if l.UnlockAt <= l.LockedAt {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "unlock must be after lock time"))
	}
	for i, a := range l.EmergencyApprovals {
		errs = errors.Append(errs, errors.Wrapf(a.Validate(), "approval #%d", i))
	}
	return errs
}

// HasApproval returns true if the given emergency signer already approved
// an early release of this lock.
func (l *Lock) HasApproval(addr custodia.Address) bool {
	for _, a := range l.EmergencyApprovals {
		if addr.Equals(a) {
			return true
		}
	}
	return false
}

func (v *Vesting) Validate() error {
	var errs error
	errs = errors.Append(errs, v.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(v.Beneficiary.Validate(), "beneficiary"))
	if v.TotalAmount <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "total must be positive"))
	}
	if v.ClaimedAmount < 0 || v.ClaimedAmount > v.TotalAmount {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "claimed out of range"))
	}
	if v.Duration <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "duration must be positive"))
	}
	if v.Cliff < 0 || v.Cliff > v.Duration {
		errs = errors.Append(errs, errors.Wrap(ErrInvalidCliff, "cliff out of range"))
	}
	return errs
}

// VestedAt returns how much of the total is vested at the given time.
// Nothing vests before the cliff, everything after the full duration, and
// the amount grows linearly with elapsed time in between.
func (v *Vesting) VestedAt(now custodia.UnixTime) int64 {
	if now < v.StartTime.Add(v.Cliff.Duration()) {
		return 0
	}
	elapsed := int64(now) - int64(v.StartTime)
	if elapsed >= int64(v.Duration) {
		return v.TotalAmount
	}
	return v.TotalAmount * elapsed / int64(v.Duration)
}

// ClaimableAt returns how much the beneficiary can claim at the given
// time, the vested amount minus what was claimed before.
func (v *Vesting) ClaimableAt(now custodia.UnixTime) int64 {
	return v.VestedAt(now) - v.ClaimedAmount
}

// NewLockBucket returns a bucket for keeping time locked deposits with
// ids assigned by a monotone sequence.
func NewLockBucket() orm.ModelBucket {
	b := orm.NewModelBucket("lock", &Lock{},
		orm.WithIDSequence(orm.NewSequence("lock", "id")),
	)
	return migration.NewModelBucket("vault", b)
}

// NewVestingBucket returns a bucket for keeping vesting schedules with
// ids assigned by a monotone sequence.
func NewVestingBucket() orm.ModelBucket {
	b := orm.NewModelBucket("vesting", &Vesting{},
		orm.WithIDSequence(orm.NewSequence("vesting", "id")),
	)
	return migration.NewModelBucket("vault", b)
}

// loadConfig returns the vault configuration, failing with
// ErrNotInitialized when the extension was never set up.
func loadConfig(db custodia.ReadOnlyKVStore) (*Config, error) {
	var conf Config
	switch err := gconf.Load(db, "vault", &conf); {
	case err == nil:
		return &conf, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrap(ErrNotInitialized, "no configuration")
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
}
