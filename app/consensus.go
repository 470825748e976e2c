package app

import (
	"context"
	"errors"

	"github.com/calehh/agro-gov/state"
	"github.com/calehh/agro-gov/tx"
	"github.com/calehh/agro-gov/tx/handler"
	"github.com/calehh/agro-gov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
)

var ErrUnexpectedTxProcess = errors.New("unexpected tx process")

// parseTx decodes raw and verifies nonce and signature against st.
func (app *AgroApp) parseTx(st *state.State, txDat []byte, allowNonceGap bool) (btx *tx.AgroTx, acnt *state.Account, err error) {
	btx, err = tx.UnmarshalAgroTx(txDat)
	if err != nil {
		return
	}
	if _, ok := app.txHdlrs[btx.Type]; !ok {
		return nil, nil, tx.ErrUnsupportedTxType
	}
	acnt, err = st.Verify(btx, allowNonceGap)
	return
}

// CheckTx runs a tx against the committed state as if it were included in the
// next block.
func (app *AgroApp) CheckTx(ctx context.Context, check *abcitypes.RequestCheckTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	_, _ = app.db.View(func(st *state.State) error {
		st.SetHeight(st.Height() + 1)
		btx, _, err := app.parseTx(st, check.Tx, true)
		if err != nil {
			app.logger.Debug("parse tx fail", "err", err)
			res.Codespace, res.Code = handler.Code(err)
			res.Log = err.Error()
			return nil
		}
		res, err = app.txHdlrs[btx.Type].Check(ctx, st, btx)
		if err != nil {
			app.logger.Error("check tx fail", "err", err)
			res = &abcitypes.ResponseCheckTx{Code: handler.CodeUnknown, Log: err.Error()}
		}
		return nil
	})
	return
}

// PrepareProposal drops txs that would not verify in block order and keeps
// the block under MaxTxBytes.
func (app *AgroApp) PrepareProposal(ctx context.Context, proposal *abcitypes.RequestPrepareProposal) (res *abcitypes.ResponsePrepareProposal, err error) {
	st := app.db.NewState()
	txs := make([][]byte, 0, len(proposal.Txs))
	var size int64
	for _, stx := range proposal.Txs {
		if size+int64(len(stx)) > proposal.MaxTxBytes {
			break
		}
		_, acnt, err := app.parseTx(st, stx, false)
		if err != nil {
			app.logger.Debug("drop tx from proposal", "err", err)
			continue
		}
		if err = st.IncNonce(acnt); err != nil {
			app.logger.Error("prepare tx nonce fail", "err", err)
			continue
		}
		size += int64(len(stx))
		txs = append(txs, stx)
	}
	return &abcitypes.ResponsePrepareProposal{Txs: txs}, nil
}

func (app *AgroApp) ProcessProposal(ctx context.Context, proposal *abcitypes.RequestProcessProposal) (res *abcitypes.ResponseProcessProposal, err error) {
	res = &abcitypes.ResponseProcessProposal{Status: abcitypes.ResponseProcessProposal_REJECT}
	st := app.db.NewState()
	for _, stx := range proposal.Txs {
		_, acnt, err := app.parseTx(st, stx, false)
		if err != nil {
			app.logger.Info("reject proposal", "height", proposal.Height, "err", err)
			return res, nil
		}
		if err = st.IncNonce(acnt); err != nil {
			return res, nil
		}
	}
	res.Status = abcitypes.ResponseProcessProposal_ACCEPT
	return res, nil
}

// deliverTx runs one tx on the block state. The nonce is consumed even when
// the tx itself fails.
func (app *AgroApp) deliverTx(ctx context.Context, st *state.State, txDat []byte) (res *abcitypes.ExecTxResult) {
	btx, acnt, err := app.parseTx(st, txDat, false)
	if err != nil {
		res = &abcitypes.ExecTxResult{Log: err.Error()}
		res.Codespace, res.Code = handler.Code(err)
		app.metrics.observeTx(tx.AgroTxTypeUnknown.String(), res.Code)
		return
	}
	if err = st.IncNonce(acnt); err != nil {
		app.logger.Error("inc nonce fail", "err", err)
		res = &abcitypes.ExecTxResult{Code: handler.CodeUnknown, Log: err.Error()}
		app.metrics.observeTx(btx.Type.String(), res.Code)
		return
	}
	res, err = app.txHdlrs[btx.Type].Process(ctx, st, btx)
	if err != nil {
		app.logger.Error("process tx fail", "type", btx.Type, "err", err)
		res = &abcitypes.ExecTxResult{Code: handler.CodeUnknown, Log: ErrUnexpectedTxProcess.Error()}
	}
	app.metrics.observeTx(btx.Type.String(), res.Code)
	if res.Code == 0 {
		app.observeEvents(res.Events)
	}
	return
}

func (app *AgroApp) observeEvents(events []abcitypes.Event) {
	for _, ev := range events {
		switch ev.Type {
		case types.EventExecuteProposalType:
			app.metrics.ExecutedProposals.Inc()
		case types.EventComplianceType:
			if c := types.DecodeEventCompliance(ev); c != nil {
				app.metrics.observeCompliance(c.Compliant)
			}
		}
	}
}

func (app *AgroApp) FinalizeBlock(ctx context.Context, req *abcitypes.RequestFinalizeBlock) (*abcitypes.ResponseFinalizeBlock, error) {
	app.logger.Debug("FinalizeBlock", "height", req.Height, "txs", len(req.Txs))
	app.lastBlk.Set(req)
	st := app.db.NewState()
	st.SetHeight(uint64(req.Height))
	res := make([]*abcitypes.ExecTxResult, len(req.Txs))
	for i, stx := range req.Txs {
		res[i] = app.deliverTx(ctx, st, stx)
	}
	h, err := app.db.Flush(st)
	if err != nil {
		app.logger.Error("state update fail", "height", req.Height, "err", err)
		return nil, err
	}
	app.st = st
	return &abcitypes.ResponseFinalizeBlock{
		TxResults: res,
		AppHash:   h.Bytes(),
	}, nil
}

func (app *AgroApp) Commit(ctx context.Context, commit *abcitypes.RequestCommit) (*abcitypes.ResponseCommit, error) {
	if app.st == nil {
		return &abcitypes.ResponseCommit{}, nil
	}
	_, err := app.db.SetState(app.st)
	if err != nil {
		return nil, err
	}
	app.metrics.Height.Set(float64(app.st.Height()))
	app.logger.Info("Commit", "height", app.st.Height())
	app.st = nil
	return &abcitypes.ResponseCommit{}, nil
}
