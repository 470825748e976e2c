package handler

import (
	"github.com/calehh/agro-gov/tx"
	"github.com/calehh/agro-gov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

func NewStakeTxHandler(logger cmtlog.Logger) TxHandler {
	return newTxHandler(logger, "stake", func(eng *Engines, caller string, stx *tx.StakeTx) (ev abcitypes.Event, err error) {
		event, err := eng.Gov.Stake(caller, stx.Amount)
		if err != nil {
			return
		}
		return types.EncodeEventStake(event), nil
	})
}

func NewUnstakeTxHandler(logger cmtlog.Logger) TxHandler {
	return newTxHandler(logger, "unstake", func(eng *Engines, caller string, utx *tx.UnstakeTx) (ev abcitypes.Event, err error) {
		event, err := eng.Gov.Unstake(caller, utx.Amount)
		if err != nil {
			return
		}
		return types.EncodeEventUnStake(event), nil
	})
}
