package app

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/calehh/agro-gov/config"
	"github.com/calehh/agro-gov/state"
	"github.com/calehh/agro-gov/tx"
	"github.com/calehh/agro-gov/tx/handler"
	"github.com/calehh/agro-gov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cometbft/cometbft/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
)

var ErrNoGenesisOwner = errors.New("genesis app state has no owner and no validator to derive one from")

type finalizeBlock struct {
	Height uint64
	Hash   common.Hash
}

func (b *finalizeBlock) Set(blk *abcitypes.RequestFinalizeBlock) {
	b.Height = uint64(blk.Height)
	b.Hash = common.BytesToHash(blk.Hash)
}

var _ abcitypes.Application = &AgroApp{}

type AgroApp struct {
	cfg    *config.AppConfig
	logger cmtlog.Logger

	db       *state.StateDB
	lastBlk  finalizeBlock
	txHdlrs  map[tx.AgroTxType]handler.TxHandler
	queriers map[string]Querier
	metrics  *Metrics

	// block state between FinalizeBlock and Commit
	st *state.State
}

func NewAgroApp(cfg *config.AppConfig, logger cmtlog.Logger) (app *AgroApp, err error) {
	dir := cfg.Home + "/data"
	db, err := state.NewStateDB(dir, logger)
	if err != nil {
		return nil, err
	}
	return NewAgroAppWithDB(cfg, db, prometheus.DefaultRegisterer, logger), nil
}

// NewAgroAppWithDB builds the app over an opened state database. A nil
// registerer leaves the metrics unregistered.
func NewAgroAppWithDB(cfg *config.AppConfig, db *state.StateDB, reg prometheus.Registerer, logger cmtlog.Logger) *AgroApp {
	logger = logger.With("module", "app")
	app := &AgroApp{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		txHdlrs:  handler.NewTxHandlers(logger),
		queriers: make(map[string]Querier),
		metrics:  NewMetrics(reg),
	}
	app.registerQuerier()
	return app
}

func (app *AgroApp) Start(bs *store.BlockStore) {
	height := app.db.Header().Height
	if height > 0 {
		blk := bs.LoadBlock(int64(height))
		if blk == nil {
			panic("unexpected BlockStore")
		}
		app.lastBlk.Height = height
		app.lastBlk.Hash = common.BytesToHash(blk.Hash())
	}
	app.metrics.Height.Set(float64(height))
}

func (app *AgroApp) Stop() {
	err := app.db.Close()
	if err != nil {
		app.logger.Error("close db fail", "err", err)
	}
	app.logger.Info("agro app stopped")
}

func (app *AgroApp) registerQuerier() {
	app.queriers["/accounts/"] = NewAccountQuerier(app.db, app.logger)
	app.queriers["/rules/"] = newStateQuerier(app.db, app.logger, queryRules)
	app.queriers["/params/"] = newStateQuerier(app.db, app.logger, queryParams)
	app.queriers["/admins/"] = newStateQuerier(app.db, app.logger, queryAdmins)
	app.queriers["/stakes/"] = newStateQuerier(app.db, app.logger, queryStake)
	app.queriers["/proposals/"] = newStateQuerier(app.db, app.logger, queryProposal)
	app.queriers["/proposal_state/"] = newStateQuerier(app.db, app.logger, queryProposalState)
	app.queriers["/votes/"] = newStateQuerier(app.db, app.logger, queryVote)
	app.queriers["/scores/"] = newStateQuerier(app.db, app.logger, queryScore)
	app.queriers["/history/"] = newStateQuerier(app.db, app.logger, queryHistory)
	app.queriers["/archive/"] = newStateQuerier(app.db, app.logger, queryArchive)
	app.queriers["/weights/"] = newStateQuerier(app.db, app.logger, queryWeights)
	app.queriers["/logs/"] = newStateQuerier(app.db, app.logger, queryLogs)
}

// genesisAppState decodes the app_state of genesis.json. Without an owner the
// first genesis validator becomes the owner and first admin.
func genesisAppState(chain *abcitypes.RequestInitChain) (appState types.AppState, err error) {
	appState = types.DefaultAppState("")
	if len(chain.AppStateBytes) > 0 {
		if err = json.Unmarshal(chain.AppStateBytes, &appState); err != nil {
			return
		}
	}
	if appState.Owner == "" {
		if len(chain.Validators) == 0 {
			return appState, ErrNoGenesisOwner
		}
		appState.Owner = state.AddressOf(chain.Validators[0].PubKey.GetEd25519())
	}
	err = appState.Validate()
	return
}

func (app *AgroApp) InitChain(_ context.Context, chain *abcitypes.RequestInitChain) (res *abcitypes.ResponseInitChain, err error) {
	appState, err := genesisAppState(chain)
	if err != nil {
		app.logger.Error("InitChain invalid app state", "err", err)
		return nil, err
	}
	st := app.db.NewState()
	st.SetChainId(chain.ChainId)
	st.SetOwner(appState.Owner)
	if err = st.SetAdmins([]string{appState.Owner}); err != nil {
		return nil, err
	}
	if err = st.SetRules(appState.Rules); err != nil {
		return nil, err
	}
	if err = st.SetVotingParams(appState.VotingParams); err != nil {
		return nil, err
	}
	if err = st.SetComplianceParams(appState.ComplianceParams); err != nil {
		return nil, err
	}
	var h common.Hash
	_, err = app.db.Flush(st)
	if err != nil {
		app.logger.Error("InitChain update state fail", "err", err)
		return nil, err
	}
	h, err = app.db.SetState(st)
	if err != nil {
		app.logger.Error("InitChain apply state fail", "err", err)
		return nil, err
	}
	app.logger.Info("chain initialized", "chainId", chain.ChainId, "owner", appState.Owner)
	return &abcitypes.ResponseInitChain{
		AppHash: h.Bytes(),
	}, nil
}

func (app *AgroApp) Info(ctx context.Context, info *abcitypes.RequestInfo) (*abcitypes.ResponseInfo, error) {
	header := app.db.Header()
	return &abcitypes.ResponseInfo{
		Version:          Version,
		LastBlockHeight:  int64(header.Height),
		LastBlockAppHash: header.Hash,
	}, nil
}

func (app *AgroApp) ExtendVote(_ context.Context, extend *abcitypes.RequestExtendVote) (*abcitypes.ResponseExtendVote, error) {
	return &abcitypes.ResponseExtendVote{}, nil
}

func (app *AgroApp) VerifyVoteExtension(_ context.Context, verify *abcitypes.RequestVerifyVoteExtension) (*abcitypes.ResponseVerifyVoteExtension, error) {
	return &abcitypes.ResponseVerifyVoteExtension{Status: abcitypes.ResponseVerifyVoteExtension_ACCEPT}, nil
}

func (app *AgroApp) ApplySnapshotChunk(context.Context, *abcitypes.RequestApplySnapshotChunk) (*abcitypes.ResponseApplySnapshotChunk, error) {
	return &abcitypes.ResponseApplySnapshotChunk{}, nil
}

func (app *AgroApp) ListSnapshots(context.Context, *abcitypes.RequestListSnapshots) (*abcitypes.ResponseListSnapshots, error) {
	return &abcitypes.ResponseListSnapshots{}, nil
}

func (app *AgroApp) LoadSnapshotChunk(context.Context, *abcitypes.RequestLoadSnapshotChunk) (*abcitypes.ResponseLoadSnapshotChunk, error) {
	return &abcitypes.ResponseLoadSnapshotChunk{}, nil
}

func (app *AgroApp) OfferSnapshot(context.Context, *abcitypes.RequestOfferSnapshot) (*abcitypes.ResponseOfferSnapshot, error) {
	return &abcitypes.ResponseOfferSnapshot{}, nil
}
