package handler

import (
	"context"

	"github.com/calehh/agro-gov/compliance"
	"github.com/calehh/agro-gov/governance"
	"github.com/calehh/agro-gov/state"
	"github.com/calehh/agro-gov/tx"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type TxHandler interface {
	Check(ctx context.Context, st *state.State, btx *tx.AgroTx) (res *abcitypes.ResponseCheckTx, err error)
	Process(ctx context.Context, st *state.State, btx *tx.AgroTx) (res *abcitypes.ExecTxResult, err error)
}

// Engines binds both engines to one state. The compliance engine reads the
// rule set through the governance engine and usage logs from the state.
type Engines struct {
	Gov        *governance.Engine
	Compliance *compliance.Engine
}

func NewEngines(st *state.State, logger cmtlog.Logger) *Engines {
	gov := governance.NewEngine(st, logger)
	return &Engines{
		Gov:        gov,
		Compliance: compliance.NewEngine(st, gov, st, logger),
	}
}

type execFunc[T any] func(eng *Engines, caller string, payload *T) (abcitypes.Event, error)

// txHandler runs one tx type against a branch of the given state. The branch
// is merged only when the engine call succeeds, so a failed tx leaves no
// writes behind.
type txHandler[T any] struct {
	logger cmtlog.Logger
	exec   execFunc[T]
}

func newTxHandler[T any](logger cmtlog.Logger, name string, exec func(eng *Engines, caller string, payload *T) (abcitypes.Event, error)) *txHandler[T] {
	return &txHandler[T]{
		logger: logger.With("module", name+"Tx"),
		exec:   exec,
	}
}

func (h *txHandler[T]) run(st *state.State, btx *tx.AgroTx) (event abcitypes.Event, branch *state.State, err error) {
	payload, ok := btx.Tx.(*T)
	if !ok {
		return event, nil, tx.ErrInvalidTx
	}
	branch = st.Branch()
	event, err = h.exec(NewEngines(branch, h.logger), state.AddressOf(btx.PubKey), payload)
	return
}

func (h *txHandler[T]) Check(ctx context.Context, st *state.State, btx *tx.AgroTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	_, _, err1 := h.run(st, btx)
	if err1 != nil {
		h.logger.Info("CheckTx fail", "type", btx.Type, "err", err1)
		res.Codespace, res.Code = Code(err1)
		res.Log = err1.Error()
	}
	return
}

func (h *txHandler[T]) Process(ctx context.Context, st *state.State, btx *tx.AgroTx) (res *abcitypes.ExecTxResult, err error) {
	res = &abcitypes.ExecTxResult{}
	event, branch, err1 := h.run(st, btx)
	if err1 != nil {
		h.logger.Info("tx rejected", "type", btx.Type, "err", err1)
		res.Codespace, res.Code = Code(err1)
		res.Log = err1.Error()
		return
	}
	branch.Write()
	res.Events = append(res.Events, event)
	return
}

// NewTxHandlers returns the handler of every supported tx type.
func NewTxHandlers(logger cmtlog.Logger) map[tx.AgroTxType]TxHandler {
	return map[tx.AgroTxType]TxHandler{
		tx.AgroTxTypeStake:               NewStakeTxHandler(logger),
		tx.AgroTxTypeUnstake:             NewUnstakeTxHandler(logger),
		tx.AgroTxTypeProposeRule:         NewProposeRuleTxHandler(logger),
		tx.AgroTxTypeVote:                NewVoteTxHandler(logger),
		tx.AgroTxTypeExecuteProposal:     NewExecuteProposalTxHandler(logger),
		tx.AgroTxTypeCancelProposal:      NewCancelProposalTxHandler(logger),
		tx.AgroTxTypeAddAdmin:            NewAddAdminTxHandler(logger),
		tx.AgroTxTypeSetVotingParams:     NewSetVotingParamsTxHandler(logger),
		tx.AgroTxTypeCheckCompliance:     NewCheckComplianceTxHandler(logger),
		tx.AgroTxTypeSetScoreThreshold:   NewSetScoreThresholdTxHandler(logger),
		tx.AgroTxTypeSetViolationPenalty: NewSetViolationPenaltyTxHandler(logger),
		tx.AgroTxTypeSetFarmWeights:      NewSetFarmWeightsTxHandler(logger),
		tx.AgroTxTypeArchiveScore:        NewArchiveScoreTxHandler(logger),
		tx.AgroTxTypeReportUsage:         NewReportUsageTxHandler(logger),
	}
}
