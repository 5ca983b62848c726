package gov

import (
	"encoding/binary"
	"strconv"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/gconf"
	"github.com/iov-one/custodia/migration"
	"github.com/iov-one/custodia/orm"
	"github.com/iov-one/custodia/x"
	"github.com/iov-one/custodia/x/roles"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	initCost    int64 = 1
	proposeCost int64 = 2
	voteCost    int64 = 1
	tallyCost   int64 = 2
	executeCost int64 = 2
	updateCost  int64 = 1
)

const (
	tagAction     = "gov-action"
	tagProposalID = "proposal-id"
	tagVotes      = "votes"
	tagStatus     = "status"
	tagTarget     = "target"
	tagAmount     = "amount"
)

// RegisterRoutes will instantiate and register all handlers in this
// package. The authority is optional. When provided, accounts holding at
// least the Admin role may manage the governance settings next to the
// stored admin.
func RegisterRoutes(r custodia.Registry, auth x.Authenticator, authority roles.Authority) {
	r = migration.SchemaMigratingRegistry("gov", r)
	proposals := NewProposalBucket()

	r.Handle(&InitMsg{}, &initHandler{auth: auth})
	r.Handle(&CreateProposalMsg{}, &createProposalHandler{auth: auth, proposals: proposals})
	r.Handle(&VoteMsg{}, &voteHandler{auth: auth, proposals: proposals})
	r.Handle(&TallyMsg{}, &tallyHandler{auth: auth, proposals: proposals})
	r.Handle(&ExecuteMsg{}, &executeHandler{auth: auth, authority: authority, proposals: proposals})
	r.Handle(&SetQuorumMsg{}, &setQuorumHandler{auth: auth, authority: authority})
	r.Handle(&UpdateAdminMsg{}, &updateAdminHandler{auth: auth, authority: authority})
}

type initHandler struct {
	auth x.Authenticator
}

func (h *initHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: initCost}, nil
}

func (h *initHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	conf := Config{
		Metadata:     &custodia.Metadata{Schema: 1},
		Admin:        msg.Admin,
		Members:      msg.Members,
		Quorum:       msg.Quorum,
		VotingPeriod: msg.VotingPeriod,
	}
	if err := gconf.Save(db, "gov", &conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("init")},
		},
	}
	return &res, nil
}

func (h *initHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*InitMsg, error) {
	var msg InitMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	var conf Config
	switch err := gconf.Load(db, "gov", &conf); {
	case err == nil:
		return nil, errors.Wrap(ErrAlreadyInitialized, "configuration exists")
	case errors.ErrNotFound.Is(err):
		// Expected, first initialization.
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
	if !h.auth.HasAddress(ctx, msg.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	return &msg, nil
}

type createProposalHandler struct {
	auth      x.Authenticator
	proposals orm.ModelBucket
}

func (h *createProposalHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: proposeCost}, nil
}

func (h *createProposalHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, conf, proposer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := custodia.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}

	proposal := Proposal{
		Metadata:    &custodia.Metadata{Schema: 1},
		Title:       msg.Title,
		Description: msg.Description,
		Action:      msg.Action,
		Amount:      msg.Amount,
		Target:      msg.Target,
		Proposer:    proposer,
		Status:      StatusActive,
		CreatedAt:   now,
		VotingEnd:   now.Add(conf.VotingPeriod.Duration()),
	}
	id, err := h.proposals.Put(db, nil, &proposal)
	if err != nil {
		return nil, errors.Wrap(err, "store proposal")
	}

	res := custodia.DeliverResult{
		Data: id,
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("propose")},
			{Key: []byte(tagProposalID), Value: []byte(strconv.FormatUint(uint64FromID(id), 10))},
		},
	}
	return &res, nil
}

func (h *createProposalHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*CreateProposalMsg, *Config, custodia.Address, error) {
	var msg CreateProposalMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, nil, err
	}
	proposer := memberSigner(ctx, h.auth, conf)
	if proposer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "electorate membership required")
	}
	if msg.Action == ActionSetQuorum {
		if msg.Amount < 0 || msg.Amount > 100 {
			return nil, nil, nil, errors.Wrapf(ErrInvalidQuorum, "%d%%", msg.Amount)
		}
		if err := validateQuorum(uint32(msg.Amount)); err != nil {
			return nil, nil, nil, err
		}
	}
	return &msg, conf, proposer, nil
}

type voteHandler struct {
	auth      x.Authenticator
	proposals orm.ModelBucket
}

func (h *voteHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: voteCost}, nil
}

func (h *voteHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, proposal, voter, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	proposal.Vote(voter, msg.VoteFor)
	if _, err := h.proposals.Put(db, msg.ProposalID, proposal); err != nil {
		return nil, errors.Wrap(err, "store proposal")
	}

	votes := strconv.FormatUint(uint64(proposal.VotesFor), 10) + "/" + strconv.FormatUint(uint64(proposal.VotesAgainst), 10)
	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("vote")},
			{Key: []byte(tagProposalID), Value: []byte(strconv.FormatUint(uint64FromID(msg.ProposalID), 10))},
			{Key: []byte(tagVotes), Value: []byte(votes)},
		},
	}
	return &res, nil
}

func (h *voteHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*VoteMsg, *Proposal, custodia.Address, error) {
	var msg VoteMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, nil, err
	}
	voter := memberSigner(ctx, h.auth, conf)
	if voter == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "electorate membership required")
	}
	var proposal Proposal
	if err := h.proposals.One(db, msg.ProposalID, &proposal); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load proposal")
	}
	if proposal.Status != StatusActive {
		return nil, nil, nil, errors.Wrapf(ErrVotingClosed, "status %s", proposal.Status)
	}
	now, err := custodia.BlockUnixTime(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if now >= proposal.VotingEnd {
		return nil, nil, nil, errors.Wrap(ErrVotingClosed, "voting period over")
	}
	if proposal.HasVoted(voter) {
		return nil, nil, nil, errors.Wrapf(ErrAlreadyVoted, "voter %s", voter)
	}
	return &msg, &proposal, voter, nil
}

type tallyHandler struct {
	auth      x.Authenticator
	proposals orm.ModelBucket
}

func (h *tallyHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: tallyCost}, nil
}

func (h *tallyHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, conf, proposal, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	proposal.Tally(len(conf.Members), conf.Quorum)
	if _, err := h.proposals.Put(db, msg.ProposalID, proposal); err != nil {
		return nil, errors.Wrap(err, "store proposal")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("tally")},
			{Key: []byte(tagProposalID), Value: []byte(strconv.FormatUint(uint64FromID(msg.ProposalID), 10))},
			{Key: []byte(tagStatus), Value: []byte(proposal.Status.String())},
		},
	}
	return &res, nil
}

// validate does not require any authorization. Once the voting period is
// over, any account can finalize the result.
func (h *tallyHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*TallyMsg, *Config, *Proposal, error) {
	var msg TallyMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, nil, err
	}
	var proposal Proposal
	if err := h.proposals.One(db, msg.ProposalID, &proposal); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load proposal")
	}
	if proposal.Status != StatusActive {
		return nil, nil, nil, errors.Wrapf(errors.ErrState, "already tallied, status %s", proposal.Status)
	}
	now, err := custodia.BlockUnixTime(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if now < proposal.VotingEnd {
		return nil, nil, nil, errors.Wrap(ErrVotingClosed, "voting period still open")
	}
	return &msg, conf, &proposal, nil
}

type executeHandler struct {
	auth      x.Authenticator
	authority roles.Authority
	proposals orm.ModelBucket
}

func (h *executeHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: executeCost}, nil
}

func (h *executeHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, conf, proposal, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	tags := []common.KVPair{
		{Key: []byte(tagAction), Value: []byte("execute")},
		{Key: []byte(tagProposalID), Value: []byte(strconv.FormatUint(uint64FromID(msg.ProposalID), 10))},
	}

	switch proposal.Action {
	case ActionAddMember:
		if conf.IsMember(proposal.Target) {
			return nil, errors.Wrapf(errors.ErrDuplicate, "member %s", proposal.Target)
		}
		conf.Members = append(conf.Members, proposal.Target)
		if err := gconf.Save(db, "gov", conf); err != nil {
			return nil, errors.Wrap(err, "save configuration")
		}
		tags = append(tags, common.KVPair{Key: []byte(tagTarget), Value: []byte(proposal.Target.String())})
	case ActionRemoveMember:
		if !conf.IsMember(proposal.Target) {
			return nil, errors.Wrapf(errors.ErrNotFound, "member %s", proposal.Target)
		}
		if len(conf.Members) == 1 {
			return nil, errors.Wrap(errors.ErrState, "electorate cannot be emptied")
		}
		members := make([]custodia.Address, 0, len(conf.Members)-1)
		for _, m := range conf.Members {
			if !m.Equals(proposal.Target) {
				members = append(members, m)
			}
		}
		conf.Members = members
		if err := gconf.Save(db, "gov", conf); err != nil {
			return nil, errors.Wrap(err, "save configuration")
		}
		tags = append(tags, common.KVPair{Key: []byte(tagTarget), Value: []byte(proposal.Target.String())})
	case ActionSetQuorum:
		if err := validateQuorum(uint32(proposal.Amount)); err != nil {
			return nil, err
		}
		conf.Quorum = uint32(proposal.Amount)
		if err := gconf.Save(db, "gov", conf); err != nil {
			return nil, errors.Wrap(err, "save configuration")
		}
		tags = append(tags, common.KVPair{Key: []byte(tagAmount), Value: []byte(strconv.FormatInt(proposal.Amount, 10))})
	case ActionFunding:
		// Funding is recorded only. Moving the funds is up to the
		// treasury signers.
		tags = append(tags, common.KVPair{Key: []byte(tagAmount), Value: []byte(strconv.FormatInt(proposal.Amount, 10))})
	case ActionGeneral:
		// Signalling only, nothing to apply.
	}

	proposal.Status = StatusExecuted
	if _, err := h.proposals.Put(db, msg.ProposalID, proposal); err != nil {
		return nil, errors.Wrap(err, "store proposal")
	}

	return &custodia.DeliverResult{Tags: tags}, nil
}

func (h *executeHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*ExecuteMsg, *Config, *Proposal, error) {
	var msg ExecuteMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, nil, err
	}
	var proposal Proposal
	if err := h.proposals.One(db, msg.ProposalID, &proposal); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load proposal")
	}
	if proposal.Status != StatusPassed {
		return nil, nil, nil, errors.Wrapf(errors.ErrState, "cannot execute, status %s", proposal.Status)
	}
	// The proposer may execute their own passed proposal.
	if !h.auth.HasAddress(ctx, proposal.Proposer) {
		if err := isAdmin(ctx, db, h.auth, h.authority, conf); err != nil {
			return nil, nil, nil, err
		}
	}
	return &msg, conf, &proposal, nil
}

type setQuorumHandler struct {
	auth      x.Authenticator
	authority roles.Authority
}

func (h *setQuorumHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: updateCost}, nil
}

func (h *setQuorumHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	conf.Quorum = msg.Quorum
	if err := gconf.Save(db, "gov", conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("quorum")},
		},
	}
	return &res, nil
}

func (h *setQuorumHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*SetQuorumMsg, *Config, error) {
	var msg SetQuorumMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, err
	}
	if err := isAdmin(ctx, db, h.auth, h.authority, conf); err != nil {
		return nil, nil, err
	}
	return &msg, conf, nil
}

type updateAdminHandler struct {
	auth      x.Authenticator
	authority roles.Authority
}

func (h *updateAdminHandler) Check(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custodia.CheckResult{GasAllocated: updateCost}, nil
}

func (h *updateAdminHandler) Deliver(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*custodia.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	conf.Admin = msg.NewAdmin
	if err := gconf.Save(db, "gov", conf); err != nil {
		return nil, errors.Wrap(err, "save configuration")
	}

	res := custodia.DeliverResult{
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("admin")},
		},
	}
	return &res, nil
}

func (h *updateAdminHandler) validate(ctx custodia.Context, db custodia.KVStore, tx custodia.Tx) (*UpdateAdminMsg, *Config, error) {
	var msg UpdateAdminMsg
	if err := custodia.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConfig(db)
	if err != nil {
		return nil, nil, err
	}
	if err := isAdmin(ctx, db, h.auth, h.authority, conf); err != nil {
		return nil, nil, err
	}
	return &msg, conf, nil
}

// memberSigner returns the first member of the electorate whose signature
// is on the transaction, or nil.
func memberSigner(ctx custodia.Context, auth x.Authenticator, conf *Config) custodia.Address {
	for _, m := range conf.Members {
		if auth.HasAddress(ctx, m) {
			return m
		}
	}
	return nil
}

// isAdmin ensures the transaction was authorized by the stored admin or,
// when an authority is configured, by an account holding at least the
// Admin role.
func isAdmin(ctx custodia.Context, db custodia.ReadOnlyKVStore, auth x.Authenticator, authority roles.Authority, conf *Config) error {
	if auth.HasAddress(ctx, conf.Admin) {
		return nil
	}
	if authority != nil {
		for _, addr := range x.GetAddresses(ctx, auth) {
			ok, err := authority.HasPermission(db, addr, roles.RoleAdmin)
			if err != nil {
				return errors.Wrap(err, "authority")
			}
			if ok {
				return nil
			}
		}
	}
	return errors.Wrap(errors.ErrUnauthorized, "admin signature required")
}

// uint64FromID decodes an 8 byte sequence id for tag rendering.
func uint64FromID(id []byte) uint64 {
	if len(id) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(id)
}
