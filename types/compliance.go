package types

import "fmt"

// PeriodLength is the width of a compliance period bucket in the time unit of
// usage timestamps (30 days of seconds).
const PeriodLength = 2592000

func PeriodOf(ts int64) uint64 {
	return uint64(ts / PeriodLength)
}

type UsageCategory uint8

const (
	UsagePrimary   UsageCategory = 1
	UsageSecondary UsageCategory = 2
)

func (c UsageCategory) Valid() bool {
	return c == UsagePrimary || c == UsageSecondary
}

func (c UsageCategory) String() string {
	switch c {
	case UsagePrimary:
		return "primary"
	case UsageSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

func ParseUsageCategory(s string) (UsageCategory, error) {
	switch s {
	case "primary", "1":
		return UsagePrimary, nil
	case "secondary", "2":
		return UsageSecondary, nil
	}
	return 0, fmt.Errorf("unknown usage category %q", s)
}

type UsageLog struct {
	FarmID    uint64        `json:"farm_id"`
	Category  UsageCategory `json:"category"`
	Amount    uint64        `json:"amount"`
	Timestamp int64         `json:"timestamp"`
}

type ComplianceScore struct {
	FarmID       uint64 `json:"farm_id"`
	Period       uint64 `json:"period"`
	Compliant    bool   `json:"compliant"`
	Score        uint64 `json:"score"`
	Violations   uint64 `json:"violations"`
	TotalApplied uint64 `json:"total_applied"`
	ComputedAt   uint64 `json:"computed_at"`
}

type HistoricalScore struct {
	ComplianceScore
	Version string `json:"version"`
}

type FarmWeights struct {
	PrimaryWeight   uint64 `json:"primary_weight"`
	SecondaryWeight uint64 `json:"secondary_weight"`
}

type ComplianceParams struct {
	ScoreThreshold   uint64 `json:"score_threshold"`
	ViolationPenalty uint64 `json:"violation_penalty"`
}

const (
	DefaultScoreThreshold   = 80
	DefaultViolationPenalty = 20
)

func DefaultComplianceParams() ComplianceParams {
	return ComplianceParams{
		ScoreThreshold:   DefaultScoreThreshold,
		ViolationPenalty: DefaultViolationPenalty,
	}
}

type ComplianceHistory struct {
	FarmID          uint64            `json:"farm_id"`
	Scores          []ComplianceScore `json:"scores"`
	TotalViolations uint64            `json:"total_violations"`
}
