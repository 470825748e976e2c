package compliance

import (
	"testing"

	"github.com/calehh/agro-gov/state"
	"github.com/calehh/agro-gov/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "OWNER"

type staticRules struct {
	rules types.RuleSet
}

func (r *staticRules) CurrentRules() types.RuleSet {
	return r.rules
}

func newTestEngine(t *testing.T, rules types.RuleSet) (*state.State, *staticRules, *Engine) {
	t.Helper()
	db, err := state.NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	st := db.NewState()
	st.SetHeight(1)
	st.SetOwner(owner)
	provider := &staticRules{rules: rules}
	return st, provider, NewEngine(st, provider, st, cmtlog.NewNopLogger())
}

func report(t *testing.T, eng *Engine, farmID uint64, primary, secondary uint64, ts int64) {
	t.Helper()
	_, err := eng.ReportUsage(owner, farmID, types.UsagePrimary, primary, ts)
	require.NoError(t, err)
	_, err = eng.ReportUsage(owner, farmID, types.UsageSecondary, secondary, ts+1)
	require.NoError(t, err)
}

func TestCheckCompliance(t *testing.T) {
	_, _, eng := newTestEngine(t, types.RuleSet{MaxPrimaryLimit: 100, MaxSecondaryLimit: 200, ReviewPeriod: 30})
	report(t, eng, 1, 50, 100, 10)

	ev, err := eng.CheckCompliance("anyone", 1, 0, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 100, ev.Score)
	assert.True(t, ev.Compliant)
	assert.EqualValues(t, 0, ev.Period)
	assert.EqualValues(t, 150, ev.TotalApplied)

	score, err := eng.Score(1, 0)
	require.NoError(t, err)
	require.NotNil(t, score)
	assert.EqualValues(t, 100, score.Score)
	assert.EqualValues(t, 1, score.ComputedAt)

	_, err = eng.CheckCompliance("anyone", 1, 0, 100)
	require.ErrorIs(t, err, ErrComplianceAlreadyComputed)
}

func TestCheckComplianceViolations(t *testing.T) {
	_, _, eng := newTestEngine(t, types.RuleSet{MaxPrimaryLimit: 10, MaxSecondaryLimit: 50, ReviewPeriod: 30})
	report(t, eng, 7, 50, 100, types.PeriodLength*3)

	ev, err := eng.CheckCompliance("anyone", 7, types.PeriodLength*3, types.PeriodLength*4-1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, ev.Period)
	assert.EqualValues(t, 60, ev.Score)
	assert.EqualValues(t, 2, ev.Violations)
	assert.False(t, ev.Compliant)
}

func TestCheckComplianceInput(t *testing.T) {
	_, provider, eng := newTestEngine(t, types.RuleSet{})

	tests := []struct {
		name       string
		farm       uint64
		start, end int64
		err        error
	}{
		{"zero farm", 0, 0, 10, ErrInvalidFarm},
		{"negative start", 1, -1, 10, ErrInvalidTimestamp},
		{"negative end", 1, 0, -1, ErrInvalidTimestamp},
		{"empty range", 1, 10, 10, ErrInvalidTimeRange},
		{"reversed range", 1, 10, 5, ErrInvalidTimeRange},
		{"rules not loaded", 1, 0, 10, ErrRulesNotLoaded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.CheckCompliance("anyone", tt.farm, tt.start, tt.end)
			require.ErrorIs(t, err, tt.err)
		})
	}

	provider.rules = types.RuleSet{MaxPrimaryLimit: 1, MaxSecondaryLimit: 1, ReviewPeriod: 1}
	_, err := eng.CheckCompliance("anyone", 1, 0, 10)
	require.ErrorIs(t, err, ErrLogNotFound)

	report(t, eng, 1, 1, 1, 20)
	_, err = eng.CheckCompliance("anyone", 1, 0, 10)
	require.ErrorIs(t, err, ErrLogNotFound, "reports outside the range do not count")
}

func TestCachedRulesSurviveReset(t *testing.T) {
	st, provider, eng := newTestEngine(t, types.RuleSet{MaxPrimaryLimit: 100, MaxSecondaryLimit: 200, ReviewPeriod: 30})
	report(t, eng, 1, 50, 100, 10)
	report(t, eng, 2, 50, 100, 10)

	_, err := eng.CheckCompliance("anyone", 1, 0, 100)
	require.NoError(t, err)

	provider.rules = types.RuleSet{}
	ev, err := eng.CheckCompliance("anyone", 2, 0, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 100, ev.Score)

	cached, loaded, err := st.CachedRules()
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.EqualValues(t, 100, cached.MaxPrimaryLimit)
}

func TestArchiveAndRecompute(t *testing.T) {
	st, provider, eng := newTestEngine(t, types.RuleSet{MaxPrimaryLimit: 100, MaxSecondaryLimit: 150, ReviewPeriod: 30})
	report(t, eng, 1, 50, 200, 10)

	_, err := eng.ArchiveScore("anyone", 1, 0, "v1")
	require.ErrorIs(t, err, ErrInvalidPeriod)

	st.SetHeight(7)
	_, err = eng.CheckCompliance("anyone", 1, 0, 100)
	require.NoError(t, err)
	first, err := eng.Score(1, 0)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.EqualValues(t, 7, first.ComputedAt)
	assert.EqualValues(t, 1, first.Violations)
	st.SetHeight(8)

	_, err = eng.ArchiveScore("anyone", 1, 0, "")
	require.ErrorIs(t, err, ErrInvalidVersion)

	ev, err := eng.ArchiveScore("anyone", 1, 0, "v1")
	require.NoError(t, err)
	assert.Equal(t, "v1", ev.Version)

	current, err := eng.Score(1, 0)
	require.NoError(t, err)
	assert.Nil(t, current)

	archived, err := eng.HistoricalScore(1, 0, "v1")
	require.NoError(t, err)
	require.NotNil(t, archived)
	assert.Equal(t, "v1", archived.Version)
	assert.Equal(t, *first, archived.ComplianceScore)

	provider.rules = types.RuleSet{MaxPrimaryLimit: 10, MaxSecondaryLimit: 50, ReviewPeriod: 30}
	second, err := eng.CheckCompliance("anyone", 1, 0, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 60, second.Score)

	_, err = eng.ArchiveScore("anyone", 1, 0, "v1")
	require.ErrorIs(t, err, ErrInvalidVersion)

	archived, err = eng.HistoricalScore(1, 0, "v1")
	require.NoError(t, err)
	assert.Equal(t, *first, archived.ComplianceScore, "a used version is never overwritten")
}

func TestComplianceHistory(t *testing.T) {
	_, _, eng := newTestEngine(t, types.RuleSet{MaxPrimaryLimit: 10, MaxSecondaryLimit: 500, ReviewPeriod: 30})
	report(t, eng, 1, 50, 100, 10)
	report(t, eng, 1, 50, 100, types.PeriodLength*2)

	_, err := eng.CheckCompliance("anyone", 1, 0, 100)
	require.NoError(t, err)
	_, err = eng.CheckCompliance("anyone", 1, types.PeriodLength*2, types.PeriodLength*2+100)
	require.NoError(t, err)

	h, err := eng.ComplianceHistory(1, []uint64{0, 1, 2})
	require.NoError(t, err)
	require.Len(t, h.Scores, 2)
	assert.EqualValues(t, 0, h.Scores[0].Period)
	assert.EqualValues(t, 2, h.Scores[1].Period)
	assert.EqualValues(t, 2, h.TotalViolations)

	h, err = eng.ComplianceHistory(9, nil)
	require.NoError(t, err)
	assert.NotNil(t, h.Scores)
	assert.Empty(t, h.Scores)

	_, err = eng.ComplianceHistory(1, make([]uint64, MaxHistoryPeriods+1))
	require.ErrorIs(t, err, ErrTooManyPeriods)
}

func TestParamSetters(t *testing.T) {
	_, _, eng := newTestEngine(t, types.RuleSet{})

	_, err := eng.SetScoreThreshold("A", 60)
	require.ErrorIs(t, err, ErrUnauthorizedAdmin)
	_, err = eng.SetScoreThreshold(owner, MinScoreThreshold-1)
	require.ErrorIs(t, err, ErrInvalidThreshold)
	_, err = eng.SetScoreThreshold(owner, MaxScoreThreshold+1)
	require.ErrorIs(t, err, ErrInvalidThreshold)
	ev, err := eng.SetScoreThreshold(owner, MinScoreThreshold)
	require.NoError(t, err)
	assert.Equal(t, types.ComplianceParamScoreThreshold, ev.Param)

	_, err = eng.SetViolationPenalty("A", 10)
	require.ErrorIs(t, err, ErrUnauthorizedAdmin)
	_, err = eng.SetViolationPenalty(owner, MaxViolationPenalty+1)
	require.ErrorIs(t, err, ErrInvalidPenalty)
	_, err = eng.SetViolationPenalty(owner, 0)
	require.NoError(t, err)

	params, err := eng.Params()
	require.NoError(t, err)
	assert.Equal(t, types.ComplianceParams{ScoreThreshold: MinScoreThreshold, ViolationPenalty: 0}, params)
}

func TestSetFarmWeights(t *testing.T) {
	_, _, eng := newTestEngine(t, types.RuleSet{})

	_, err := eng.SetFarmWeights("A", 1, 10, 10)
	require.ErrorIs(t, err, ErrUnauthorizedAdmin)
	_, err = eng.SetFarmWeights(owner, 0, 10, 10)
	require.ErrorIs(t, err, ErrInvalidFarm)
	for _, w := range [][2]uint64{{0, 10}, {10, 0}, {101, 10}, {10, 101}} {
		_, err = eng.SetFarmWeights(owner, 1, w[0], w[1])
		require.ErrorIs(t, err, ErrInvalidWeight)
	}

	_, err = eng.SetFarmWeights(owner, 1, 30, 70)
	require.NoError(t, err)
	weights, err := eng.FarmWeights(1)
	require.NoError(t, err)
	require.NotNil(t, weights)
	assert.Equal(t, types.FarmWeights{PrimaryWeight: 30, SecondaryWeight: 70}, *weights)

	weights, err = eng.FarmWeights(2)
	require.NoError(t, err)
	assert.Nil(t, weights)
}

func TestReportUsage(t *testing.T) {
	_, _, eng := newTestEngine(t, types.RuleSet{})

	_, err := eng.ReportUsage("A", 1, types.UsagePrimary, 1, 0)
	require.ErrorIs(t, err, ErrUnauthorizedAdmin)
	_, err = eng.ReportUsage(owner, 0, types.UsagePrimary, 1, 0)
	require.ErrorIs(t, err, ErrInvalidFarm)
	_, err = eng.ReportUsage(owner, 1, types.UsageCategory(9), 1, 0)
	require.ErrorIs(t, err, ErrInvalidCategory)
	_, err = eng.ReportUsage(owner, 1, types.UsagePrimary, 0, 0)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = eng.ReportUsage(owner, 1, types.UsagePrimary, 1, -5)
	require.ErrorIs(t, err, ErrInvalidTimestamp)

	ev, err := eng.ReportUsage(owner, 1, types.UsagePrimary, 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, ev.Index)
	ev, err = eng.ReportUsage(owner, 1, types.UsageSecondary, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, ev.Index)
}
