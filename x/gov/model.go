package gov

import (
	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/gconf"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/orm"
)

func init() {
	migration.MustRegister(1, &Proposal{}, migration.NoModification)
}

const (
	maxTitleSize       = 128
	maxDescriptionSize = 5000
)

var _ orm.Model = (*Proposal)(nil)

// Validate ensures the configuration can be stored.
func (c *Config) Validate() error {
	var errs error
	errs = errors.Append(errs, c.Metadata.Validate())
	errs = errors.Append(errs, errors.Wrap(c.Admin.Validate(), "admin"))
	errs = errors.Append(errs, validateQuorum(c.Quorum))
	if c.VotingPeriod <= 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "voting period must be positive"))
	}
	errs = errors.Append(errs, validateMembers(c.Members))
	return errs
}

func validateQuorum(quorum uint32) error {
	if quorum == 0 || quorum > 100 {
		return errors.Wrapf(ErrInvalidQuorum, "%d%%", quorum)
	}
	return nil
}

func validateMembers(members []custodia.Address) error {
	if len(members) == 0 {
		return errors.Wrap(errors.ErrEmpty, "members")
	}
	seen := make(map[string]struct{}, len(members))
	for i, m := range members {
		if err := m.Validate(); err != nil {
			return errors.Wrapf(err, "member #%d", i)
		}
		if _, ok := seen[string(m)]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "member %s", m)
		}
		seen[string(m)] = struct{}{}
	}
	return nil
}

// IsMember returns true if the address belongs to the electorate.
func (c *Config) IsMember(addr custodia.Address) bool {
	for _, m := range c.Members {
		if addr.Equals(m) {
			return true
		}
	}
	return false
}

func (p *Proposal) Validate() error {
	var errs error
	errs = errors.Append(errs, p.Metadata.Validate())
	if p.Title == "" {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "title"))
	}
	if len(p.Title) > maxTitleSize {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "title too long"))
	}
	if p.Description == "" {
		errs = errors.Append(errs, errors.Wrap(errors.ErrEmpty, "description"))
	}
	if len(p.Description) > maxDescriptionSize {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "description too long"))
	}
	errs = errors.Append(errs, errors.Wrap(p.Action.Validate(), "action"))
	if p.Amount < 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "amount cannot be negative"))
	}
	if p.Action.NeedsTarget() {
		errs = errors.Append(errs, errors.Wrap(p.Target.Validate(), "target"))
	}
	errs = errors.Append(errs, errors.Wrap(p.Proposer.Validate(), "proposer"))
	if p.Status == StatusInvalid {
		errs = errors.Append(errs, errors.Wrap(errors.ErrState, "no status"))
	}
	return errs
}

// HasVoted returns true if the member already cast a vote.
func (p *Proposal) HasVoted(addr custodia.Address) bool {
	for _, v := range p.Voters {
		if addr.Equals(v) {
			return true
		}
	}
	return false
}

// Vote records a single member vote. The caller must ensure the voting
// period is open and the member did not vote before.
func (p *Proposal) Vote(voter custodia.Address, voteFor bool) {
	if voteFor {
		p.VotesFor++
	} else {
		p.VotesAgainst++
	}
	p.Voters = append(p.Voters, voter)
}

// Tally finalizes the vote result. A proposal with no votes at all
// expires. Otherwise it passes only when participation reaches the quorum
// and strictly more votes were for than against, so ties reject.
func (p *Proposal) Tally(memberCount int, quorum uint32) {
	total := uint64(p.VotesFor) + uint64(p.VotesAgainst)
	if total == 0 {
		p.Status = StatusExpired
		return
	}
	reached := total*100 >= uint64(quorum)*uint64(memberCount)
	if reached && p.VotesFor > p.VotesAgainst {
		p.Status = StatusPassed
	} else {
		p.Status = StatusRejected
	}
}

// NewProposalBucket returns a bucket for keeping proposals with ids
// assigned by a monotone sequence.
func NewProposalBucket() orm.ModelBucket {
	b := orm.NewModelBucket("proposal", &Proposal{},
		orm.WithIDSequence(orm.NewSequence("proposal", "id")),
	)
	return migration.NewModelBucket("gov", b)
}

// loadConfig returns the governance configuration, failing with
// ErrNotInitialized when the extension was never set up.
func loadConfig(db custodia.ReadOnlyKVStore) (*Config, error) {
	var conf Config
	switch err := gconf.Load(db, "gov", &conf); {
	case err == nil:
		return &conf, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrap(ErrNotInitialized, "no configuration")
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
}
