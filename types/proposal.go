package types

// RuleSet is the active pair of usage ceilings plus the review period.
// A zero ReviewPeriod marks a rule set that was never initialized.
type RuleSet struct {
	MaxPrimaryLimit   uint64 `json:"max_primary_limit"`
	MaxSecondaryLimit uint64 `json:"max_secondary_limit"`
	ReviewPeriod      uint64 `json:"review_period"`
}

func (r RuleSet) Initialized() bool {
	return r.ReviewPeriod > 0
}

type Stake struct {
	Account      string `json:"account"`
	StakedAmount uint64 `json:"staked_amount"`
	LockedUntil  uint64 `json:"locked_until"`
}

type Proposal struct {
	ID          uint64  `json:"id"`
	Description string  `json:"description"`
	RuleChange  RuleSet `json:"rule_change"`
	YesVotes    uint64  `json:"yes_votes"`
	NoVotes     uint64  `json:"no_votes"`
	StartBlock  uint64  `json:"start_block"`
	EndBlock    uint64  `json:"end_block"`
	Executed    bool    `json:"executed"`
	Canceled    bool    `json:"canceled"`
	Proposer    string  `json:"proposer"`
}

type ProposalState uint64

const (
	ProposalStatePending   ProposalState = 1
	ProposalStateActive    ProposalState = 2
	ProposalStateCanceled  ProposalState = 3
	ProposalStateDefeated  ProposalState = 4
	ProposalStateSucceeded ProposalState = 5
	ProposalStateExecuted  ProposalState = 6
)

func (s ProposalState) String() string {
	switch s {
	case ProposalStatePending:
		return "pending"
	case ProposalStateActive:
		return "active"
	case ProposalStateCanceled:
		return "canceled"
	case ProposalStateDefeated:
		return "defeated"
	case ProposalStateSucceeded:
		return "succeeded"
	case ProposalStateExecuted:
		return "executed"
	default:
		return "unknown"
	}
}

// VotingParams are the admin tunable governance parameters. Block counts are
// measured on the logical clock (block height).
type VotingParams struct {
	VotingDelay       uint64 `json:"voting_delay"`
	VotingPeriod      uint64 `json:"voting_period"`
	ProposalThreshold uint64 `json:"proposal_threshold"`
	QuorumPercent     uint64 `json:"quorum_percent"`
	MaxProposals      uint64 `json:"max_proposals"`
}

const (
	DefaultVotingDelay       = 1
	DefaultVotingPeriod      = 100
	DefaultProposalThreshold = 100
	DefaultQuorumPercent     = 10
	DefaultMaxProposals      = 1000

	MaxAdmins = 25
)

func DefaultVotingParams() VotingParams {
	return VotingParams{
		VotingDelay:       DefaultVotingDelay,
		VotingPeriod:      DefaultVotingPeriod,
		ProposalThreshold: DefaultProposalThreshold,
		QuorumPercent:     DefaultQuorumPercent,
		MaxProposals:      DefaultMaxProposals,
	}
}
