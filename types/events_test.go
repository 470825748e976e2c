package types

import (
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/stretchr/testify/assert"
)

func TestDecodeEventCompliance(t *testing.T) {
	ev := &EventCompliance{FarmID: 3, Period: 7, Compliant: true, Score: 90, Violations: 1, TotalApplied: 1234}
	assert.Equal(t, ev, DecodeEventCompliance(EncodeEventCompliance(ev)))

	bad := abci.Event{Type: EventComplianceType, Attributes: []abci.EventAttribute{{Key: "score", Value: "-1"}}}
	assert.Nil(t, DecodeEventCompliance(bad))
}

func TestDecodeEventProposal(t *testing.T) {
	ev := &EventProposal{
		ProposalID:  4,
		Proposer:    "ABCD",
		Description: "lower the primary ceiling",
		RuleChange:  RuleSet{MaxPrimaryLimit: 1, MaxSecondaryLimit: 2, ReviewPeriod: 3},
		StartBlock:  10,
		EndBlock:    110,
	}
	assert.Equal(t, ev, DecodeEventProposal(EncodeEventProposal(ev)))
}

func TestDecodeEventUnStake(t *testing.T) {
	ev := &EventUnStake{Account: "ABCD", Amount: 30, Remaining: 70, LockedUntil: 104}
	assert.Equal(t, ev, DecodeEventUnStake(EncodeEventUnStake(ev)))
}

func TestPeriodOf(t *testing.T) {
	assert.EqualValues(t, 0, PeriodOf(0))
	assert.EqualValues(t, 0, PeriodOf(PeriodLength-1))
	assert.EqualValues(t, 1, PeriodOf(PeriodLength))
}

func TestAppStateValidate(t *testing.T) {
	s := DefaultAppState("OWNER")
	assert.NoError(t, s.Validate())

	s.Rules.ReviewPeriod = 0
	assert.Error(t, s.Validate())

	s = DefaultAppState("")
	assert.Error(t, s.Validate())

	s = DefaultAppState("OWNER")
	s.ComplianceParams.ScoreThreshold = 49
	assert.Error(t, s.Validate())
}
