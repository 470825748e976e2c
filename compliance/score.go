package compliance

import (
	"math"

	"github.com/calehh/agro-gov/types"
	"github.com/holiman/uint256"
)

const (
	MaxScore = 100

	// The usage intensity deduction is floor(totalApplied * intensityNum / intensityDen).
	intensityNum = 10
	intensityDen = 10000
)

type Result struct {
	PrimaryTotal   uint64
	SecondaryTotal uint64
	TotalApplied   uint64
	Violations     uint64
	Score          uint64
	Compliant      bool
}

// clamp reports x, or math.MaxUint64 when x does not fit in 64 bits.
func clamp(x *uint256.Int) uint64 {
	if !x.IsUint64() {
		return math.MaxUint64
	}
	return x.Uint64()
}

// Evaluate scores usage entries against rules. A category counts as one
// violation when its total exceeds the ceiling, whatever the excess. Totals
// are summed at full width and reported clamped to 64 bits.
func Evaluate(rules types.RuleSet, params types.ComplianceParams, logs []types.UsageLog) Result {
	primary, secondary := new(uint256.Int), new(uint256.Int)
	for _, l := range logs {
		switch l.Category {
		case types.UsagePrimary:
			primary.Add(primary, uint256.NewInt(l.Amount))
		case types.UsageSecondary:
			secondary.Add(secondary, uint256.NewInt(l.Amount))
		}
	}
	total := new(uint256.Int).Add(primary, secondary)

	var r Result
	r.PrimaryTotal = clamp(primary)
	r.SecondaryTotal = clamp(secondary)
	r.TotalApplied = clamp(total)
	if primary.GtUint64(rules.MaxPrimaryLimit) {
		r.Violations++
	}
	if secondary.GtUint64(rules.MaxSecondaryLimit) {
		r.Violations++
	}

	deduction := new(uint256.Int).Mul(uint256.NewInt(r.Violations), uint256.NewInt(params.ViolationPenalty))
	intensity := new(uint256.Int).Mul(total, uint256.NewInt(intensityNum))
	intensity.Div(intensity, uint256.NewInt(intensityDen))
	deduction.Add(deduction, intensity)
	if deduction.LtUint64(MaxScore) {
		r.Score = MaxScore - deduction.Uint64()
	}
	r.Compliant = r.Score >= params.ScoreThreshold
	return r
}
