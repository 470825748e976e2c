package agent

// sqlite models

type Height struct {
	Id     uint64 `gorm:"primary_key" json:"id"`
	Height uint64 `json:"height"`
}

// Proposal ids start at 0 on chain, which gorm treats as a blank key, so the
// chain id lives in its own column.
type Proposal struct {
	Id                uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"-"`
	ProposalID        uint64 `gorm:"unique_index" json:"id"`
	Proposer          string `gorm:"index" json:"proposer"`
	Description       string `json:"description"`
	MaxPrimaryLimit   uint64 `json:"max_primary_limit"`
	MaxSecondaryLimit uint64 `json:"max_secondary_limit"`
	ReviewPeriod      uint64 `json:"review_period"`
	StartBlock        uint64 `json:"start_block"`
	EndBlock          uint64 `json:"end_block"`
	YesVotes          uint64 `json:"yes_votes"`
	NoVotes           uint64 `json:"no_votes"`
	Status            uint64 `json:"status"`
	NewHeight         uint64 `json:"new_height"`
	SettleHeight      uint64 `json:"settle_height"`
}

type ProposalVote struct {
	Id       uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Proposal uint64 `gorm:"index" json:"proposal"`
	Voter    string `gorm:"index" json:"voter"`
	Support  bool   `json:"support"`
	Weight   uint64 `json:"weight"`
	Height   uint64 `json:"height"`
}

type Stake struct {
	Account     string `gorm:"primary_key" json:"account"`
	Staked      uint64 `json:"staked"`
	LockedUntil uint64 `json:"locked_until"`
	Height      uint64 `json:"height"`
}

type Score struct {
	Id           uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	FarmID       uint64 `gorm:"index" json:"farm_id"`
	Period       uint64 `json:"period"`
	Compliant    bool   `json:"compliant"`
	Score        uint64 `json:"score"`
	Violations   uint64 `json:"violations"`
	TotalApplied uint64 `json:"total_applied"`
	Height       uint64 `json:"height"`
	Version      string `json:"version"`
}
