package handler

import (
	"github.com/calehh/agro-gov/tx"
	"github.com/calehh/agro-gov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

func NewAddAdminTxHandler(logger cmtlog.Logger) TxHandler {
	return newTxHandler(logger, "addAdmin", func(eng *Engines, caller string, atx *tx.AddAdminTx) (ev abcitypes.Event, err error) {
		event, err := eng.Gov.AddAdmin(caller, atx.Account)
		if err != nil {
			return
		}
		return types.EncodeEventAddAdmin(event), nil
	})
}

func NewSetVotingParamsTxHandler(logger cmtlog.Logger) TxHandler {
	return newTxHandler(logger, "votingParams", func(eng *Engines, caller string, ptx *tx.SetVotingParamsTx) (ev abcitypes.Event, err error) {
		event, err := eng.Gov.SetVotingParams(caller, ptx.VotingDelay, ptx.VotingPeriod, ptx.ProposalThreshold, ptx.QuorumPercent)
		if err != nil {
			return
		}
		return types.EncodeEventVotingParams(event), nil
	})
}

func NewSetScoreThresholdTxHandler(logger cmtlog.Logger) TxHandler {
	return newTxHandler(logger, "scoreThreshold", func(eng *Engines, caller string, ptx *tx.SetScoreThresholdTx) (ev abcitypes.Event, err error) {
		event, err := eng.Compliance.SetScoreThreshold(caller, ptx.Threshold)
		if err != nil {
			return
		}
		return types.EncodeEventComplianceParam(event), nil
	})
}

func NewSetViolationPenaltyTxHandler(logger cmtlog.Logger) TxHandler {
	return newTxHandler(logger, "violationPenalty", func(eng *Engines, caller string, ptx *tx.SetViolationPenaltyTx) (ev abcitypes.Event, err error) {
		event, err := eng.Compliance.SetViolationPenalty(caller, ptx.Penalty)
		if err != nil {
			return
		}
		return types.EncodeEventComplianceParam(event), nil
	})
}

func NewSetFarmWeightsTxHandler(logger cmtlog.Logger) TxHandler {
	return newTxHandler(logger, "farmWeights", func(eng *Engines, caller string, wtx *tx.SetFarmWeightsTx) (ev abcitypes.Event, err error) {
		event, err := eng.Compliance.SetFarmWeights(caller, wtx.FarmID, wtx.PrimaryWeight, wtx.SecondaryWeight)
		if err != nil {
			return
		}
		return types.EncodeEventFarmWeights(event), nil
	})
}
