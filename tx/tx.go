package tx

import (
	"encoding/json"

	"github.com/calehh/agro-gov/types"
)

// AgroTx is the signed envelope of every transaction. Tx holds a pointer to
// the payload struct matching Type.
type AgroTx struct {
	Version uint8      `json:"version"`
	Type    AgroTxType `json:"type"`
	Nonce   uint64     `json:"nonce"`
	PubKey  []byte     `json:"pubKey"`
	Tx      any        `json:"tx"`
	Sig     [][]byte   `json:"sig"`
}

type StakeTx struct {
	Amount uint64 `json:"amount"`
}

type UnstakeTx struct {
	Amount uint64 `json:"amount"`
}

type ProposeRuleTx struct {
	Description       string `json:"description"`
	MaxPrimaryLimit   uint64 `json:"maxPrimaryLimit"`
	MaxSecondaryLimit uint64 `json:"maxSecondaryLimit"`
	ReviewPeriod      uint64 `json:"reviewPeriod"`
}

type VoteTx struct {
	Proposal uint64 `json:"proposal"`
	Support  bool   `json:"support"`
}

type ExecuteProposalTx struct {
	Proposal uint64 `json:"proposal"`
}

type CancelProposalTx struct {
	Proposal uint64 `json:"proposal"`
}

type AddAdminTx struct {
	Account string `json:"account"`
}

type SetVotingParamsTx struct {
	VotingDelay       uint64 `json:"votingDelay"`
	VotingPeriod      uint64 `json:"votingPeriod"`
	ProposalThreshold uint64 `json:"proposalThreshold"`
	QuorumPercent     uint64 `json:"quorumPercent"`
}

type CheckComplianceTx struct {
	FarmID uint64 `json:"farmId"`
	Start  int64  `json:"start"`
	End    int64  `json:"end"`
}

type SetScoreThresholdTx struct {
	Threshold uint64 `json:"threshold"`
}

type SetViolationPenaltyTx struct {
	Penalty uint64 `json:"penalty"`
}

type SetFarmWeightsTx struct {
	FarmID          uint64 `json:"farmId"`
	PrimaryWeight   uint64 `json:"primaryWeight"`
	SecondaryWeight uint64 `json:"secondaryWeight"`
}

type ArchiveScoreTx struct {
	FarmID  uint64 `json:"farmId"`
	Period  uint64 `json:"period"`
	Version string `json:"version"`
}

type ReportUsageTx struct {
	FarmID    uint64              `json:"farmId"`
	Category  types.UsageCategory `json:"category"`
	Amount    uint64              `json:"amount"`
	Timestamp int64               `json:"timestamp"`
}

type agroTxTmpl[Tx any] struct {
	Version uint8      `json:"version"`
	Type    AgroTxType `json:"type"`
	Nonce   uint64     `json:"nonce"`
	PubKey  []byte     `json:"pubKey"`
	Tx      Tx         `json:"tx"`
	Sig     [][]byte   `json:"sig"`
}

// SigData returns the bytes a signer signs: the envelope with ext in place of
// the signatures. ext is the chain id so a signature cannot be replayed on
// another chain.
func (tx *AgroTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = [][]byte{ext}
	dat, err = json.Marshal(ntx)
	return
}

func parseAgroTxType(dat []byte) AgroTxType {
	var tx struct {
		Type AgroTxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return AgroTxTypeUnknown
	}
	return tx.Type
}

func unmarshalAgroTx[Tx any](dat []byte) (btx *AgroTx, err error) {
	var txt agroTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	if txt.Version > AgroTxVersion1 {
		return nil, ErrUnsupportedTxVersion
	}
	btx = new(AgroTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Nonce = txt.Nonce
	btx.PubKey = txt.PubKey
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalAgroTx(dat []byte) (btx *AgroTx, err error) {
	tp := parseAgroTxType(dat)
	switch tp {
	case AgroTxTypeStake:
		return unmarshalAgroTx[StakeTx](dat)
	case AgroTxTypeUnstake:
		return unmarshalAgroTx[UnstakeTx](dat)
	case AgroTxTypeProposeRule:
		return unmarshalAgroTx[ProposeRuleTx](dat)
	case AgroTxTypeVote:
		return unmarshalAgroTx[VoteTx](dat)
	case AgroTxTypeExecuteProposal:
		return unmarshalAgroTx[ExecuteProposalTx](dat)
	case AgroTxTypeCancelProposal:
		return unmarshalAgroTx[CancelProposalTx](dat)
	case AgroTxTypeAddAdmin:
		return unmarshalAgroTx[AddAdminTx](dat)
	case AgroTxTypeSetVotingParams:
		return unmarshalAgroTx[SetVotingParamsTx](dat)
	case AgroTxTypeCheckCompliance:
		return unmarshalAgroTx[CheckComplianceTx](dat)
	case AgroTxTypeSetScoreThreshold:
		return unmarshalAgroTx[SetScoreThresholdTx](dat)
	case AgroTxTypeSetViolationPenalty:
		return unmarshalAgroTx[SetViolationPenaltyTx](dat)
	case AgroTxTypeSetFarmWeights:
		return unmarshalAgroTx[SetFarmWeightsTx](dat)
	case AgroTxTypeArchiveScore:
		return unmarshalAgroTx[ArchiveScoreTx](dat)
	case AgroTxTypeReportUsage:
		return unmarshalAgroTx[ReportUsageTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalAgroTx(btx *AgroTx) (dat []byte, err error) {
	return json.Marshal(btx)
}

// PayloadType maps a payload struct to its tx type.
func PayloadType(payload any) AgroTxType {
	switch payload.(type) {
	case *StakeTx:
		return AgroTxTypeStake
	case *UnstakeTx:
		return AgroTxTypeUnstake
	case *ProposeRuleTx:
		return AgroTxTypeProposeRule
	case *VoteTx:
		return AgroTxTypeVote
	case *ExecuteProposalTx:
		return AgroTxTypeExecuteProposal
	case *CancelProposalTx:
		return AgroTxTypeCancelProposal
	case *AddAdminTx:
		return AgroTxTypeAddAdmin
	case *SetVotingParamsTx:
		return AgroTxTypeSetVotingParams
	case *CheckComplianceTx:
		return AgroTxTypeCheckCompliance
	case *SetScoreThresholdTx:
		return AgroTxTypeSetScoreThreshold
	case *SetViolationPenaltyTx:
		return AgroTxTypeSetViolationPenalty
	case *SetFarmWeightsTx:
		return AgroTxTypeSetFarmWeights
	case *ArchiveScoreTx:
		return AgroTxTypeArchiveScore
	case *ReportUsageTx:
		return AgroTxTypeReportUsage
	}
	return AgroTxTypeUnknown
}
