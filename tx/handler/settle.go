package handler

import (
	"github.com/calehh/agro-gov/tx"
	"github.com/calehh/agro-gov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

func NewExecuteProposalTxHandler(logger cmtlog.Logger) TxHandler {
	return newTxHandler(logger, "executeProposal", func(eng *Engines, caller string, stx *tx.ExecuteProposalTx) (ev abcitypes.Event, err error) {
		event, err := eng.Gov.ExecuteProposal(caller, stx.Proposal)
		if err != nil {
			return
		}
		return types.EncodeEventExecuteProposal(event), nil
	})
}

func NewCancelProposalTxHandler(logger cmtlog.Logger) TxHandler {
	return newTxHandler(logger, "cancelProposal", func(eng *Engines, caller string, stx *tx.CancelProposalTx) (ev abcitypes.Event, err error) {
		event, err := eng.Gov.CancelProposal(caller, stx.Proposal)
		if err != nil {
			return
		}
		return types.EncodeEventCancelProposal(event), nil
	})
}
