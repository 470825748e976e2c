package handler

import (
	"github.com/calehh/agro-gov/tx"
	"github.com/calehh/agro-gov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

func NewProposeRuleTxHandler(logger cmtlog.Logger) TxHandler {
	return newTxHandler(logger, "proposal", func(eng *Engines, caller string, ptx *tx.ProposeRuleTx) (ev abcitypes.Event, err error) {
		event, err := eng.Gov.ProposeRule(caller, ptx.Description, ptx.MaxPrimaryLimit, ptx.MaxSecondaryLimit, ptx.ReviewPeriod)
		if err != nil {
			return
		}
		return types.EncodeEventProposal(event), nil
	})
}

func NewVoteTxHandler(logger cmtlog.Logger) TxHandler {
	return newTxHandler(logger, "vote", func(eng *Engines, caller string, vtx *tx.VoteTx) (ev abcitypes.Event, err error) {
		event, err := eng.Gov.Vote(caller, vtx.Proposal, vtx.Support)
		if err != nil {
			return
		}
		return types.EncodeEventVote(event), nil
	})
}
