package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp is the state half of an ABCI application: it owns the stores,
// loads the genesis, answers queries and commits blocks. BaseApp embeds
// it and adds transaction processing.
//
// Info, InitChain, BeginBlock, EndBlock and Commit have no way to report
// a failure, so a failure there panics and stops the node.
type StoreApp struct {
	mu sync.Mutex

	name        string
	logger      log.Logger
	store       *CommitStore
	initializer weave.Initializer
	queryRouter weave.QueryRouter

	// chainID is empty until InitChain ran.
	chainID string

	// baseContext lives as long as the app, blockContext is rebuilt on
	// every BeginBlock.
	baseContext  weave.Context
	blockContext weave.Context
}

// NewStoreApp opens store and restores the chain ID and height of the
// last commit. It panics if store cannot be loaded.
func NewStoreApp(name string, store weave.CommitKVStore, queryRouter weave.QueryRouter, baseContext weave.Context) *StoreApp {
	s := &StoreApp{
		name:        name,
		store:       NewCommitStore(store),
		queryRouter: queryRouter,
		baseContext: baseContext,
	}
	s.WithLogger(log.NewNopLogger())

	if id := mustLoadChainID(s.DeliverStore()); id != "" {
		s.setChainID(id)
	}
	last, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}
	s.blockContext = weave.WithHeight(s.baseContext, last.Version)
	return s
}

// GetChainID returns the chain ID, or an empty string before InitChain.
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

func (s *StoreApp) setChainID(id string) {
	s.chainID = id
	s.baseContext = weave.WithChainID(s.baseContext, id)
}

// WithInit sets the initializer run against the genesis app state.
func (s *StoreApp) WithInit(init weave.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithLogger sets the application logger, which handlers also receive
// through their context.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.logger = logger
	s.baseContext = weave.WithLogger(s.baseContext, logger)
	return s
}

// BlockContext is the context of the block being processed.
func (s *StoreApp) BlockContext() weave.Context {
	return s.blockContext
}

func (s *StoreApp) DeliverStore() weave.CacheableKVStore {
	return s.store.DeliverStore()
}

func (s *StoreApp) CheckStore() weave.CacheableKVStore {
	return s.store.CheckStore()
}

// loadGenesis stores the chain ID and hands the app state to the
// initializer. It runs once in the life of a chain.
func (s *StoreApp) loadGenesis(chainID string, raw []byte) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "genesis already loaded for chain %s", s.chainID)
	}
	if len(raw) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state missing from genesis")
	}
	var state weave.Options
	if err := json.Unmarshal(raw, &state); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := saveChainID(s.DeliverStore(), chainID); err != nil {
		return err
	}
	s.setChainID(chainID)
	if s.initializer == nil {
		return nil
	}
	return s.initializer.FromGenesis(state, s.DeliverStore())
}

// Info reports the last committed height and app hash so that the node
// can replay the missing blocks.
func (s *StoreApp) Info(abci.RequestInfo) abci.ResponseInfo {
	last, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}
	s.logger.Info("Info synced", "height", last.Version, "hash", fmt.Sprintf("%X", last.Hash))
	return abci.ResponseInfo{
		Data:             s.name,
		Version:          weave.Version(),
		LastBlockHeight:  last.Version,
		LastBlockAppHash: last.Hash,
	}
}

// SetOption is not supported.
func (s *StoreApp) SetOption(abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "Not Implemented"}
}

// Query reads the last committed state. Path selects the handler, for
// example "/pools" or "/pools/sender", and an optional "?prefix" turns the
// lookup into a prefix scan. Height is ignored. Key and Value of the
// response are ResultSets of the same length.
func (s *StoreApp) Query(req abci.RequestQuery) abci.ResponseQuery {
	s.mu.Lock()
	defer s.mu.Unlock()

	qh, mod := s.queryRouter.Route(req.Path)
	if qh == nil {
		return queryError(errors.Wrapf(errors.ErrNotFound, "unexpected query path %q, known paths: %s",
			req.Path, strings.Join(s.queryRouter.Paths(), ", ")))
	}
	last, err := s.store.CommitInfo()
	if err != nil {
		return queryError(err)
	}
	db := s.store.committed.CacheWrap()
	defer db.Discard()

	models, err := qh.Query(db, mod, req.Data)
	if err != nil {
		return queryError(err)
	}
	res := abci.ResponseQuery{Height: last.Version}
	if res.Key, err = ResultsFromKeys(models).Marshal(); err != nil {
		return queryError(err)
	}
	if res.Value, err = ResultsFromValues(models).Marshal(); err != nil {
		return queryError(err)
	}
	return res
}

func queryError(err error) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, false)
	return abci.ResponseQuery{Code: code, Log: log}
}

// Commit persists the delivered block.
func (s *StoreApp) Commit() abci.ResponseCommit {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.store.Commit()
	if err != nil {
		panic(err)
	}
	s.logger.Debug("Commit synced", "height", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return abci.ResponseCommit{Data: id.Hash}
}

// InitChain stores the chain ID and loads the genesis app state.
func (s *StoreApp) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadGenesis(req.ChainId, req.AppStateBytes); err != nil {
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock records the height and time every handler of the block sees.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	ctx := weave.WithHeight(s.baseContext, req.Header.Height)
	s.blockContext = weave.WithBlockTime(ctx, req.Header.Time)
	return abci.ResponseBeginBlock{}
}

// EndBlock never changes the validator set.
func (s *StoreApp) EndBlock(abci.RequestEndBlock) abci.ResponseEndBlock {
	return abci.ResponseEndBlock{}
}
