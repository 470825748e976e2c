package app

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/calehh/agro-gov/state"
	"github.com/calehh/agro-gov/tx/handler"
	"github.com/calehh/agro-gov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

const (
	CodeQueryNotFound uint32 = 404
	CodeQueryInvalid  uint32 = 400
)

// QueryRequest is the JSON body of every ABCI query. Each path reads only the
// fields it needs.
type QueryRequest struct {
	Account  string   `json:"account,omitempty"`
	Proposal uint64   `json:"proposal,omitempty"`
	FarmID   uint64   `json:"farmId,omitempty"`
	Period   uint64   `json:"period,omitempty"`
	Periods  []uint64 `json:"periods,omitempty"`
	Version  string   `json:"version,omitempty"`
	Start    int64    `json:"start,omitempty"`
	End      int64    `json:"end,omitempty"`
}

type VoteRecord struct {
	Proposal uint64 `json:"proposal"`
	Account  string `json:"account"`
	Voted    bool   `json:"voted"`
	Support  bool   `json:"support"`
}

type ProposalStateRecord struct {
	Proposal uint64 `json:"proposal"`
	State    string `json:"state"`
}

type ParamsRecord struct {
	Voting     types.VotingParams     `json:"voting"`
	Compliance types.ComplianceParams `json:"compliance"`
}

func (app *AgroApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &abcitypes.ResponseQuery{}
		res.Code = CodeQueryNotFound
		return
	}
	res, err = q.Query(ctx, req)
	return
}

type Querier interface {
	Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)
}

type AccountQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewAccountQuerier(db *state.StateDB, logger cmtlog.Logger) (q *AccountQuerier) {
	q = &AccountQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *AccountQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	var qr QueryRequest
	if err1 := json.Unmarshal(req.Data, &qr); err1 != nil || qr.Account == "" {
		res.Code = CodeQueryInvalid
		return
	}
	var a *state.Account
	height, err1 := q.db.View(func(st *state.State) (err error) {
		a, err = st.GetAccount(qr.Account)
		return
	})
	if err1 != nil {
		res.Code = handler.CodeUnknown
		res.Log = err1.Error()
		return
	}
	if a == nil {
		res.Code = CodeQueryNotFound
		return
	}
	res.Value, _ = json.Marshal(a)
	res.Height = int64(height)
	return
}

type queryFunc func(eng *handler.Engines, st *state.State, req *QueryRequest) (any, error)

// stateQuerier answers a query from the engines bound to the committed state.
type stateQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
	fn     queryFunc
}

func newStateQuerier(db *state.StateDB, logger cmtlog.Logger, fn queryFunc) *stateQuerier {
	return &stateQuerier{db: db, logger: logger, fn: fn}
}

func (q *stateQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	qr := new(QueryRequest)
	if len(req.Data) > 0 {
		if err1 := json.Unmarshal(req.Data, qr); err1 != nil {
			res.Code = CodeQueryInvalid
			res.Log = err1.Error()
			return
		}
	}
	var val any
	height, err1 := q.db.View(func(st *state.State) (err error) {
		val, err = q.fn(handler.NewEngines(st, q.logger), st, qr)
		return
	})
	res.Height = int64(height)
	if err1 != nil {
		res.Codespace, res.Code = handler.Code(err1)
		res.Log = err1.Error()
		return
	}
	if val == nil {
		res.Code = CodeQueryNotFound
		return
	}
	res.Value, err1 = json.Marshal(val)
	if err1 != nil {
		q.logger.Error("marshal query result fail", "path", req.Path, "err", err1)
		res.Code = handler.CodeUnknown
	}
	return
}

func queryRules(eng *handler.Engines, _ *state.State, _ *QueryRequest) (any, error) {
	return eng.Gov.CurrentRules(), nil
}

func queryParams(eng *handler.Engines, _ *state.State, _ *QueryRequest) (any, error) {
	voting, err := eng.Gov.Params()
	if err != nil {
		return nil, err
	}
	compliance, err := eng.Compliance.Params()
	if err != nil {
		return nil, err
	}
	return &ParamsRecord{Voting: voting, Compliance: compliance}, nil
}

func queryAdmins(eng *handler.Engines, _ *state.State, _ *QueryRequest) (any, error) {
	return eng.Gov.Admins()
}

func queryStake(eng *handler.Engines, _ *state.State, req *QueryRequest) (any, error) {
	stake, err := eng.Gov.GetStake(req.Account)
	if err != nil || stake == nil {
		return nil, err
	}
	return stake, nil
}

func queryProposal(eng *handler.Engines, _ *state.State, req *QueryRequest) (any, error) {
	return eng.Gov.Proposal(req.Proposal)
}

func queryProposalState(eng *handler.Engines, _ *state.State, req *QueryRequest) (any, error) {
	s, err := eng.Gov.ProposalState(req.Proposal)
	if err != nil {
		return nil, err
	}
	return &ProposalStateRecord{Proposal: req.Proposal, State: s.String()}, nil
}

func queryVote(eng *handler.Engines, _ *state.State, req *QueryRequest) (any, error) {
	voted, support, err := eng.Gov.HasVoted(req.Proposal, req.Account)
	if err != nil {
		return nil, err
	}
	return &VoteRecord{Proposal: req.Proposal, Account: req.Account, Voted: voted, Support: support}, nil
}

func queryScore(eng *handler.Engines, _ *state.State, req *QueryRequest) (any, error) {
	score, err := eng.Compliance.Score(req.FarmID, req.Period)
	if err != nil || score == nil {
		return nil, err
	}
	return score, nil
}

func queryHistory(eng *handler.Engines, _ *state.State, req *QueryRequest) (any, error) {
	return eng.Compliance.ComplianceHistory(req.FarmID, req.Periods)
}

func queryArchive(eng *handler.Engines, _ *state.State, req *QueryRequest) (any, error) {
	score, err := eng.Compliance.HistoricalScore(req.FarmID, req.Period, req.Version)
	if err != nil || score == nil {
		return nil, err
	}
	return score, nil
}

func queryWeights(eng *handler.Engines, _ *state.State, req *QueryRequest) (any, error) {
	weights, err := eng.Compliance.FarmWeights(req.FarmID)
	if err != nil || weights == nil {
		return nil, err
	}
	return weights, nil
}

func queryLogs(_ *handler.Engines, st *state.State, req *QueryRequest) (any, error) {
	logs, err := st.LogsForPeriod(req.FarmID, req.Start, req.End)
	if err != nil || logs == nil {
		return nil, err
	}
	return logs, nil
}
