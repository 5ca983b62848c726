package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp contains a data store and all info needed
// to perform queries and handshakes.
//
// It should be embedded in another struct for CheckTx,
// DeliverTx and initializing state from the genesis.
type StoreApp struct {
	logger log.Logger

	// name is the name of this application
	name string

	// Database state (committed, check, deliver....)
	store *CommitStore

	// chainID is loaded from db in initialization
	// saved once in InitChain
	chainID string

	// initializer sets up the database on first InitChain
	initializer custodia.Initializer

	// baseContext contains context info that is valid for
	// lifetime of this app (eg. chainID)
	baseContext custodia.Context

	// blockContext contains context info that is valid for the
	// current block (eg. height, header), reset on BeginBlock
	blockContext custodia.Context
}

// NewStoreApp initializes this app into a ready state with some defaults
//
// panics if unable to properly load the state from the given store
// TODO: is this correct? nothing else to do really....
func NewStoreApp(name string, store custodia.CommitKVStore, baseContext custodia.Context) *StoreApp {
	s := &StoreApp{
		name: name,
		// note: panics if trouble initializing from store
		store:       NewCommitStore(store),
		baseContext: baseContext,
	}
	s = s.WithLogger(log.NewNopLogger())

	// load the chainID from the db
	s.chainID = mustLoadChainID(s.DeliverStore())
	if s.chainID != "" {
		s.baseContext = custodia.WithChainID(s.baseContext, s.chainID)
	}

	// get the most recent height
	info, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}
	s.blockContext = custodia.WithHeight(s.baseContext, info.Version)
	return s
}

// WithInit is used to set the init function we call
func (s *StoreApp) WithInit(init custodia.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// parseAppState is called from InitChain, the first time the chain
// starts, and not on restarts. It uses the initializer to load the
// initial state from the genesis app state.
func (s *StoreApp) parseAppState(data []byte, params custodia.GenesisParams, chainID string, init custodia.Initializer) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "appState previously loaded for chain: %s", s.chainID)
	}

	var opts custodia.Options
	if len(data) > 0 {
		if err := json.Unmarshal(data, &opts); err != nil {
			return errors.Wrap(err, "parse app state")
		}
	}

	if err := s.storeChainID(chainID); err != nil {
		return err
	}

	if init == nil {
		return nil
	}
	return init.FromGenesis(opts, params, s.DeliverStore())
}

// storeChainID maintains a valid chain id in the database and caches it
func (s *StoreApp) storeChainID(chainID string) error {
	if err := saveChainID(s.DeliverStore(), chainID); err != nil {
		return err
	}
	s.chainID = chainID
	s.baseContext = custodia.WithChainID(s.baseContext, s.chainID)
	return nil
}

// GetChainID returns the current chainID
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithLogger sets the logger on the StoreApp and returns it,
// to make it easy to chain in initialization
//
// also sets baseContext logger
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.baseContext = custodia.WithLogger(s.baseContext, logger)
	s.logger = logger
	return s
}

// Logger returns the application base logger
func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// BlockContext returns the block context for public use
func (s *StoreApp) BlockContext() custodia.Context {
	return s.blockContext
}

// DeliverStore returns the current DeliverTx cache for methods
func (s *StoreApp) DeliverStore() custodia.CacheableKVStore {
	return s.store.DeliverStore()
}

// CheckStore returns the current CheckTx cache for methods
func (s *StoreApp) CheckStore() custodia.CacheableKVStore {
	return s.store.CheckStore()
}

//----------------------- ABCI ---------------------

// Info implements abci.Application. It returns the height and hash,
// as well as the abci name and version.
//
// The height is the block that holds the transactions, not the apphash
// itself.
func (s *StoreApp) Info(req abci.RequestInfo) abci.ResponseInfo {
	info, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}

	s.logger.Info("Info synced",
		"height", info.Version,
		"hash", fmt.Sprintf("%X", info.Hash))

	return abci.ResponseInfo{
		Data:             s.name,
		LastBlockHeight:  info.Version,
		LastBlockAppHash: info.Hash,
	}
}

// SetOption implements abci.Application
func (s *StoreApp) SetOption(res abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "Not Implemented"}
}

// Query implements abci.Application. It only supports direct key lookup
// against the latest committed state:
//
//   path "/key", data is the raw key to look up
func (s *StoreApp) Query(reqQuery abci.RequestQuery) (resQuery abci.ResponseQuery) {
	if reqQuery.Height != 0 {
		resQuery.Code = errors.Code(errors.ErrInput)
		resQuery.Log = "can only query latest height"
		return resQuery
	}
	if reqQuery.Path != "/key" {
		resQuery.Code = errors.Code(errors.ErrNotFound)
		resQuery.Log = fmt.Sprintf("unexpected query path: %v", reqQuery.Path)
		return resQuery
	}

	info, err := s.store.CommitInfo()
	if err != nil {
		return queryError(err)
	}
	value, err := s.store.committed.Get(reqQuery.Data)
	if err != nil {
		return queryError(err)
	}

	resQuery.Key = reqQuery.Data
	resQuery.Value = value
	resQuery.Height = info.Version
	return resQuery
}

func queryError(err error) abci.ResponseQuery {
	clean := errors.Redact(err)
	return abci.ResponseQuery{
		Code: errors.Code(clean),
		Log:  clean.Error(),
	}
}

// Commit implements abci.Application
func (s *StoreApp) Commit() (res abci.ResponseCommit) {
	commitID, err := s.store.Commit()
	if err != nil {
		panic(err)
	}

	s.logger.Debug("Commit synced",
		"height", commitID.Version,
		"hash", fmt.Sprintf("%X", commitID.Hash),
	)

	return abci.ResponseCommit{Data: commitID.Hash}
}

// InitChain implements ABCI. It loads the initial state from the
// genesis app state exactly once, on first boot of the chain.
func (s *StoreApp) InitChain(req abci.RequestInitChain) (res abci.ResponseInitChain) {
	params := custodia.GenesisParams{ChainID: req.ChainId}
	err := s.parseAppState(req.AppStateBytes, params, req.ChainId, s.initializer)
	if err != nil {
		// tendermint ignores error codes here, so we must panic to
		// refuse to start on a broken genesis
		panic(err)
	}

	return abci.ResponseInitChain{}
}

// BeginBlock implements abci.Application. It sets the block context used
// by all transactions in this block: the height, and the header time.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) (res abci.ResponseBeginBlock) {
	ctx := custodia.WithHeight(s.baseContext, req.Header.GetHeight())
	ctx = custodia.WithBlockTime(ctx, req.Header.Time)
	s.blockContext = ctx
	return abci.ResponseBeginBlock{}
}

// EndBlock implements abci.Application
func (s *StoreApp) EndBlock(_ abci.RequestEndBlock) (res abci.ResponseEndBlock) {
	return abci.ResponseEndBlock{}
}

// blockCtx is a short-cut so handlers do not get a nil context even when
// running outside of a block (eg. in tests)
func (s *StoreApp) blockCtx() custodia.Context {
	if s.blockContext != nil {
		return s.blockContext
	}
	return context.Background()
}
