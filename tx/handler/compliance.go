package handler

import (
	"github.com/calehh/agro-gov/tx"
	"github.com/calehh/agro-gov/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

func NewCheckComplianceTxHandler(logger cmtlog.Logger) TxHandler {
	return newTxHandler(logger, "compliance", func(eng *Engines, caller string, chk *tx.CheckComplianceTx) (ev abcitypes.Event, err error) {
		event, err := eng.Compliance.CheckCompliance(caller, chk.FarmID, chk.Start, chk.End)
		if err != nil {
			return
		}
		return types.EncodeEventCompliance(event), nil
	})
}

func NewArchiveScoreTxHandler(logger cmtlog.Logger) TxHandler {
	return newTxHandler(logger, "archiveScore", func(eng *Engines, caller string, atx *tx.ArchiveScoreTx) (ev abcitypes.Event, err error) {
		event, err := eng.Compliance.ArchiveScore(caller, atx.FarmID, atx.Period, atx.Version)
		if err != nil {
			return
		}
		return types.EncodeEventArchiveScore(event), nil
	})
}

func NewReportUsageTxHandler(logger cmtlog.Logger) TxHandler {
	return newTxHandler(logger, "usage", func(eng *Engines, caller string, utx *tx.ReportUsageTx) (ev abcitypes.Event, err error) {
		event, err := eng.Compliance.ReportUsage(caller, utx.FarmID, utx.Category, utx.Amount, utx.Timestamp)
		if err != nil {
			return
		}
		return types.EncodeEventUsageReport(event), nil
	})
}
