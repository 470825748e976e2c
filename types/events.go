package types

import (
	"fmt"
	"strconv"

	abci "github.com/cometbft/cometbft/abci/types"
)

const (
	EventStakeType                  = "stake"
	EventUnStakeType                = "unstake"
	EventProposalType               = "proposal"
	EventVoteType                   = "vote"
	EventExecuteProposalType        = "execute_proposal"
	EventCancelProposalType         = "cancel_proposal"
	EventAddAdminType               = "add_admin"
	EventVotingParamsType           = "voting_params"
	EventComplianceType             = "compliance"
	EventArchiveScoreType           = "archive_score"
	EventComplianceParamType        = "compliance_param"
	EventFarmWeightsType            = "farm_weights"
	EventUsageReportType            = "usage_report"
	ComplianceParamScoreThreshold   = "score_threshold"
	ComplianceParamViolationPenalty = "violation_penalty"
)

type EventStake struct {
	Account     string `json:"account"`
	Amount      uint64 `json:"amount"`
	Total       uint64 `json:"total"`
	LockedUntil uint64 `json:"lockedUntil"`
}

func EncodeEventStake(event *EventStake) abci.Event {
	return abci.Event{
		Type: EventStakeType,
		Attributes: []abci.EventAttribute{
			{Key: "account", Value: event.Account, Index: true},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
			{Key: "total", Value: fmt.Sprintf("%v", event.Total), Index: false},
			{Key: "lockedUntil", Value: fmt.Sprintf("%v", event.LockedUntil), Index: false},
		},
	}
}

func DecodeEventStake(originEvent abci.Event) *EventStake {
	event := &EventStake{}
	for _, v := range originEvent.Attributes {
		var err error
		switch v.Key {
		case "account":
			event.Account = v.Value
		case "amount":
			event.Amount, err = strconv.ParseUint(v.Value, 10, 64)
		case "total":
			event.Total, err = strconv.ParseUint(v.Value, 10, 64)
		case "lockedUntil":
			event.LockedUntil, err = strconv.ParseUint(v.Value, 10, 64)
		}
		if err != nil {
			return nil
		}
	}
	return event
}

// EventUnStake.LockedUntil is zero once nothing remains staked.
type EventUnStake struct {
	Account     string `json:"account"`
	Amount      uint64 `json:"amount"`
	Remaining   uint64 `json:"remaining"`
	LockedUntil uint64 `json:"lockedUntil"`
}

func EncodeEventUnStake(event *EventUnStake) abci.Event {
	return abci.Event{
		Type: EventUnStakeType,
		Attributes: []abci.EventAttribute{
			{Key: "account", Value: event.Account, Index: true},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
			{Key: "remaining", Value: fmt.Sprintf("%v", event.Remaining), Index: false},
			{Key: "lockedUntil", Value: fmt.Sprintf("%v", event.LockedUntil), Index: false},
		},
	}
}

func DecodeEventUnStake(originEvent abci.Event) *EventUnStake {
	event := &EventUnStake{}
	for _, v := range originEvent.Attributes {
		var err error
		switch v.Key {
		case "account":
			event.Account = v.Value
		case "amount":
			event.Amount, err = strconv.ParseUint(v.Value, 10, 64)
		case "remaining":
			event.Remaining, err = strconv.ParseUint(v.Value, 10, 64)
		case "lockedUntil":
			event.LockedUntil, err = strconv.ParseUint(v.Value, 10, 64)
		}
		if err != nil {
			return nil
		}
	}
	return event
}

type EventProposal struct {
	ProposalID  uint64  `json:"proposalId"`
	Proposer    string  `json:"proposer"`
	Description string  `json:"description"`
	RuleChange  RuleSet `json:"ruleChange"`
	StartBlock  uint64  `json:"startBlock"`
	EndBlock    uint64  `json:"endBlock"`
}

func EncodeEventProposal(event *EventProposal) abci.Event {
	return abci.Event{
		Type: EventProposalType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.ProposalID), Index: true},
			{Key: "proposer", Value: event.Proposer, Index: true},
			{Key: "description", Value: event.Description, Index: false},
			{Key: "maxPrimary", Value: fmt.Sprintf("%v", event.RuleChange.MaxPrimaryLimit), Index: false},
			{Key: "maxSecondary", Value: fmt.Sprintf("%v", event.RuleChange.MaxSecondaryLimit), Index: false},
			{Key: "reviewPeriod", Value: fmt.Sprintf("%v", event.RuleChange.ReviewPeriod), Index: false},
			{Key: "startBlock", Value: fmt.Sprintf("%v", event.StartBlock), Index: false},
			{Key: "endBlock", Value: fmt.Sprintf("%v", event.EndBlock), Index: false},
		},
	}
}

func DecodeEventProposal(originEvent abci.Event) *EventProposal {
	event := &EventProposal{}
	for _, v := range originEvent.Attributes {
		var err error
		switch v.Key {
		case "proposal":
			event.ProposalID, err = strconv.ParseUint(v.Value, 10, 64)
		case "proposer":
			event.Proposer = v.Value
		case "description":
			event.Description = v.Value
		case "maxPrimary":
			event.RuleChange.MaxPrimaryLimit, err = strconv.ParseUint(v.Value, 10, 64)
		case "maxSecondary":
			event.RuleChange.MaxSecondaryLimit, err = strconv.ParseUint(v.Value, 10, 64)
		case "reviewPeriod":
			event.RuleChange.ReviewPeriod, err = strconv.ParseUint(v.Value, 10, 64)
		case "startBlock":
			event.StartBlock, err = strconv.ParseUint(v.Value, 10, 64)
		case "endBlock":
			event.EndBlock, err = strconv.ParseUint(v.Value, 10, 64)
		}
		if err != nil {
			return nil
		}
	}
	return event
}

type EventVote struct {
	ProposalID uint64 `json:"proposalId"`
	Voter      string `json:"voter"`
	Support    bool   `json:"support"`
	Weight     uint64 `json:"weight"`
}

func EncodeEventVote(event *EventVote) abci.Event {
	return abci.Event{
		Type: EventVoteType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.ProposalID), Index: true},
			{Key: "voter", Value: event.Voter, Index: true},
			{Key: "support", Value: fmt.Sprintf("%v", event.Support), Index: false},
			{Key: "weight", Value: fmt.Sprintf("%v", event.Weight), Index: false},
		},
	}
}

func DecodeEventVote(originEvent abci.Event) *EventVote {
	event := &EventVote{}
	for _, v := range originEvent.Attributes {
		var err error
		switch v.Key {
		case "proposal":
			event.ProposalID, err = strconv.ParseUint(v.Value, 10, 64)
		case "voter":
			event.Voter = v.Value
		case "support":
			event.Support, err = strconv.ParseBool(v.Value)
		case "weight":
			event.Weight, err = strconv.ParseUint(v.Value, 10, 64)
		}
		if err != nil {
			return nil
		}
	}
	return event
}

// EventSettleProposal is emitted both for executions and cancellations; the
// event type tells them apart.
type EventSettleProposal struct {
	ProposalID uint64  `json:"proposalId"`
	Caller     string  `json:"caller"`
	Rules      RuleSet `json:"rules"`
}

func EncodeEventExecuteProposal(event *EventSettleProposal) abci.Event {
	return abci.Event{
		Type: EventExecuteProposalType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.ProposalID), Index: true},
			{Key: "caller", Value: event.Caller, Index: false},
			{Key: "maxPrimary", Value: fmt.Sprintf("%v", event.Rules.MaxPrimaryLimit), Index: false},
			{Key: "maxSecondary", Value: fmt.Sprintf("%v", event.Rules.MaxSecondaryLimit), Index: false},
			{Key: "reviewPeriod", Value: fmt.Sprintf("%v", event.Rules.ReviewPeriod), Index: false},
		},
	}
}

func EncodeEventCancelProposal(event *EventSettleProposal) abci.Event {
	return abci.Event{
		Type: EventCancelProposalType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.ProposalID), Index: true},
			{Key: "caller", Value: event.Caller, Index: false},
		},
	}
}

func DecodeEventSettleProposal(originEvent abci.Event) *EventSettleProposal {
	event := &EventSettleProposal{}
	for _, v := range originEvent.Attributes {
		var err error
		switch v.Key {
		case "proposal":
			event.ProposalID, err = strconv.ParseUint(v.Value, 10, 64)
		case "caller":
			event.Caller = v.Value
		case "maxPrimary":
			event.Rules.MaxPrimaryLimit, err = strconv.ParseUint(v.Value, 10, 64)
		case "maxSecondary":
			event.Rules.MaxSecondaryLimit, err = strconv.ParseUint(v.Value, 10, 64)
		case "reviewPeriod":
			event.Rules.ReviewPeriod, err = strconv.ParseUint(v.Value, 10, 64)
		}
		if err != nil {
			return nil
		}
	}
	return event
}

type EventAddAdmin struct {
	Admin string `json:"admin"`
	By    string `json:"by"`
}

func EncodeEventAddAdmin(event *EventAddAdmin) abci.Event {
	return abci.Event{
		Type: EventAddAdminType,
		Attributes: []abci.EventAttribute{
			{Key: "admin", Value: event.Admin, Index: true},
			{Key: "by", Value: event.By, Index: false},
		},
	}
}

type EventVotingParams struct {
	By     string       `json:"by"`
	Params VotingParams `json:"params"`
}

func EncodeEventVotingParams(event *EventVotingParams) abci.Event {
	return abci.Event{
		Type: EventVotingParamsType,
		Attributes: []abci.EventAttribute{
			{Key: "by", Value: event.By, Index: false},
			{Key: "votingDelay", Value: fmt.Sprintf("%v", event.Params.VotingDelay), Index: false},
			{Key: "votingPeriod", Value: fmt.Sprintf("%v", event.Params.VotingPeriod), Index: false},
			{Key: "proposalThreshold", Value: fmt.Sprintf("%v", event.Params.ProposalThreshold), Index: false},
			{Key: "quorumPercent", Value: fmt.Sprintf("%v", event.Params.QuorumPercent), Index: false},
		},
	}
}

type EventCompliance struct {
	FarmID       uint64 `json:"farmId"`
	Period       uint64 `json:"period"`
	Compliant    bool   `json:"compliant"`
	Score        uint64 `json:"score"`
	Violations   uint64 `json:"violations"`
	TotalApplied uint64 `json:"totalApplied"`
}

func EncodeEventCompliance(event *EventCompliance) abci.Event {
	return abci.Event{
		Type: EventComplianceType,
		Attributes: []abci.EventAttribute{
			{Key: "farm", Value: fmt.Sprintf("%v", event.FarmID), Index: true},
			{Key: "period", Value: fmt.Sprintf("%v", event.Period), Index: true},
			{Key: "compliant", Value: fmt.Sprintf("%v", event.Compliant), Index: false},
			{Key: "score", Value: fmt.Sprintf("%v", event.Score), Index: false},
			{Key: "violations", Value: fmt.Sprintf("%v", event.Violations), Index: false},
			{Key: "totalApplied", Value: fmt.Sprintf("%v", event.TotalApplied), Index: false},
		},
	}
}

func DecodeEventCompliance(originEvent abci.Event) *EventCompliance {
	event := &EventCompliance{}
	for _, v := range originEvent.Attributes {
		var err error
		switch v.Key {
		case "farm":
			event.FarmID, err = strconv.ParseUint(v.Value, 10, 64)
		case "period":
			event.Period, err = strconv.ParseUint(v.Value, 10, 64)
		case "compliant":
			event.Compliant, err = strconv.ParseBool(v.Value)
		case "score":
			event.Score, err = strconv.ParseUint(v.Value, 10, 64)
		case "violations":
			event.Violations, err = strconv.ParseUint(v.Value, 10, 64)
		case "totalApplied":
			event.TotalApplied, err = strconv.ParseUint(v.Value, 10, 64)
		}
		if err != nil {
			return nil
		}
	}
	return event
}

type EventArchiveScore struct {
	FarmID  uint64 `json:"farmId"`
	Period  uint64 `json:"period"`
	Version string `json:"version"`
}

func EncodeEventArchiveScore(event *EventArchiveScore) abci.Event {
	return abci.Event{
		Type: EventArchiveScoreType,
		Attributes: []abci.EventAttribute{
			{Key: "farm", Value: fmt.Sprintf("%v", event.FarmID), Index: true},
			{Key: "period", Value: fmt.Sprintf("%v", event.Period), Index: true},
			{Key: "version", Value: event.Version, Index: false},
		},
	}
}

func DecodeEventArchiveScore(originEvent abci.Event) *EventArchiveScore {
	event := &EventArchiveScore{}
	for _, v := range originEvent.Attributes {
		var err error
		switch v.Key {
		case "farm":
			event.FarmID, err = strconv.ParseUint(v.Value, 10, 64)
		case "period":
			event.Period, err = strconv.ParseUint(v.Value, 10, 64)
		case "version":
			event.Version = v.Value
		}
		if err != nil {
			return nil
		}
	}
	return event
}

type EventComplianceParam struct {
	Param string `json:"param"`
	Value uint64 `json:"value"`
}

func EncodeEventComplianceParam(event *EventComplianceParam) abci.Event {
	return abci.Event{
		Type: EventComplianceParamType,
		Attributes: []abci.EventAttribute{
			{Key: "param", Value: event.Param, Index: true},
			{Key: "value", Value: fmt.Sprintf("%v", event.Value), Index: false},
		},
	}
}

type EventFarmWeights struct {
	FarmID  uint64      `json:"farmId"`
	Weights FarmWeights `json:"weights"`
}

func EncodeEventFarmWeights(event *EventFarmWeights) abci.Event {
	return abci.Event{
		Type: EventFarmWeightsType,
		Attributes: []abci.EventAttribute{
			{Key: "farm", Value: fmt.Sprintf("%v", event.FarmID), Index: true},
			{Key: "primaryWeight", Value: fmt.Sprintf("%v", event.Weights.PrimaryWeight), Index: false},
			{Key: "secondaryWeight", Value: fmt.Sprintf("%v", event.Weights.SecondaryWeight), Index: false},
		},
	}
}

type EventUsageReport struct {
	Index uint64   `json:"index"`
	Log   UsageLog `json:"log"`
}

func EncodeEventUsageReport(event *EventUsageReport) abci.Event {
	return abci.Event{
		Type: EventUsageReportType,
		Attributes: []abci.EventAttribute{
			{Key: "farm", Value: fmt.Sprintf("%v", event.Log.FarmID), Index: true},
			{Key: "index", Value: fmt.Sprintf("%v", event.Index), Index: false},
			{Key: "category", Value: event.Log.Category.String(), Index: false},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Log.Amount), Index: false},
			{Key: "timestamp", Value: fmt.Sprintf("%v", event.Log.Timestamp), Index: false},
		},
	}
}
