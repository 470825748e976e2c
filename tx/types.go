package tx

import (
	"errors"
)

type AgroTxType uint8

const (
	AgroTxTypeUnknown             AgroTxType = 0
	AgroTxTypeStake               AgroTxType = 1
	AgroTxTypeUnstake             AgroTxType = 2
	AgroTxTypeProposeRule         AgroTxType = 3
	AgroTxTypeVote                AgroTxType = 4
	AgroTxTypeExecuteProposal     AgroTxType = 5
	AgroTxTypeCancelProposal      AgroTxType = 6
	AgroTxTypeAddAdmin            AgroTxType = 7
	AgroTxTypeSetVotingParams     AgroTxType = 8
	AgroTxTypeCheckCompliance     AgroTxType = 9
	AgroTxTypeSetScoreThreshold   AgroTxType = 10
	AgroTxTypeSetViolationPenalty AgroTxType = 11
	AgroTxTypeSetFarmWeights      AgroTxType = 12
	AgroTxTypeArchiveScore        AgroTxType = 13
	AgroTxTypeReportUsage         AgroTxType = 14
)

var txTypeNames = map[AgroTxType]string{
	AgroTxTypeStake:               "stake",
	AgroTxTypeUnstake:             "unstake",
	AgroTxTypeProposeRule:         "propose_rule",
	AgroTxTypeVote:                "vote",
	AgroTxTypeExecuteProposal:     "execute_proposal",
	AgroTxTypeCancelProposal:      "cancel_proposal",
	AgroTxTypeAddAdmin:            "add_admin",
	AgroTxTypeSetVotingParams:     "set_voting_params",
	AgroTxTypeCheckCompliance:     "check_compliance",
	AgroTxTypeSetScoreThreshold:   "set_score_threshold",
	AgroTxTypeSetViolationPenalty: "set_violation_penalty",
	AgroTxTypeSetFarmWeights:      "set_farm_weights",
	AgroTxTypeArchiveScore:        "archive_score",
	AgroTxTypeReportUsage:         "report_usage",
}

func (t AgroTxType) String() string {
	if name, ok := txTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

const (
	AgroTxVersion0 uint8 = 0
	AgroTxVersion1 uint8 = 1
)

var (
	ErrInvalidTx            = errors.New("invalid tx")
	ErrUnsupportedTxType    = errors.New("unsupported tx type")
	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
)
