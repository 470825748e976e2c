// Package compliance scores farms against the rule set chosen by governance.
//
// A score is written once per (farm, period). Recomputing a period requires
// archiving the current score under a version tag first.
package compliance

import (
	"github.com/calehh/agro-gov/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

const (
	MinScoreThreshold   = 50
	MaxScoreThreshold   = 100
	MaxViolationPenalty = 50
	MinFarmWeight       = 1
	MaxFarmWeight       = 100
	MaxHistoryPeriods   = 24
)

// RuleProvider is the read-only view of the governance rule set.
type RuleProvider interface {
	CurrentRules() types.RuleSet
}

// LogSource returns usage reports of a farm with start <= ts <= end, or nil.
type LogSource interface {
	LogsForPeriod(farmID uint64, start, end int64) ([]types.UsageLog, error)
}

type Store interface {
	Height() uint64
	Owner() (string, error)

	ComplianceParams() (types.ComplianceParams, error)
	SetComplianceParams(params types.ComplianceParams) error
	CachedRules() (rules types.RuleSet, loaded bool, err error)
	SetCachedRules(rules types.RuleSet) error

	InsertScore(score *types.ComplianceScore) (bool, error)
	GetScore(farmID, period uint64) (*types.ComplianceScore, error)
	DeleteScore(farmID, period uint64)
	InsertHistoricalScore(score *types.HistoricalScore) (bool, error)
	GetHistoricalScore(farmID, period uint64, version string) (*types.HistoricalScore, error)
	GetFarmWeights(farmID uint64) (*types.FarmWeights, error)
	SetFarmWeights(farmID uint64, weights types.FarmWeights) error
	AppendUsageLog(log types.UsageLog) (uint64, error)
}

type Engine struct {
	logger cmtlog.Logger
	store  Store
	rules  RuleProvider
	logs   LogSource
}

func NewEngine(store Store, rules RuleProvider, logs LogSource, logger cmtlog.Logger) *Engine {
	return &Engine{
		logger: logger.With("module", "compliance"),
		store:  store,
		rules:  rules,
		logs:   logs,
	}
}

// loadRules refreshes the cached rule set from the provider. The cache keeps
// the last initialized rule set when the provider has none.
func (e *Engine) loadRules() (types.RuleSet, error) {
	rules := e.rules.CurrentRules()
	if rules.Initialized() {
		cached, loaded, err := e.store.CachedRules()
		if err != nil {
			return rules, err
		}
		if !loaded || cached != rules {
			if err = e.store.SetCachedRules(rules); err != nil {
				return rules, err
			}
		}
		return rules, nil
	}
	cached, loaded, err := e.store.CachedRules()
	if err != nil {
		return cached, err
	}
	if !loaded {
		return cached, ErrRulesNotLoaded
	}
	return cached, nil
}

func (e *Engine) CheckCompliance(caller string, farmID uint64, start, end int64) (event *types.EventCompliance, err error) {
	if farmID == 0 {
		return nil, ErrInvalidFarm
	}
	if start < 0 || end < 0 {
		return nil, ErrInvalidTimestamp
	}
	if end <= start {
		return nil, ErrInvalidTimeRange
	}
	rules, err := e.loadRules()
	if err != nil {
		return nil, err
	}
	logs, err := e.logs.LogsForPeriod(farmID, start, end)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, ErrLogNotFound
	}
	params, err := e.store.ComplianceParams()
	if err != nil {
		return nil, err
	}
	res := Evaluate(rules, params, logs)
	score := &types.ComplianceScore{
		FarmID:       farmID,
		Period:       types.PeriodOf(start),
		Compliant:    res.Compliant,
		Score:        res.Score,
		Violations:   res.Violations,
		TotalApplied: res.TotalApplied,
		ComputedAt:   e.store.Height(),
	}
	inserted, err := e.store.InsertScore(score)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrComplianceAlreadyComputed
	}
	e.logger.Info("compliance computed", "farm", farmID, "period", score.Period, "score", score.Score, "compliant", score.Compliant, "caller", caller)
	return &types.EventCompliance{
		FarmID:       farmID,
		Period:       score.Period,
		Compliant:    score.Compliant,
		Score:        score.Score,
		Violations:   score.Violations,
		TotalApplied: score.TotalApplied,
	}, nil
}

// ArchiveScore moves the current score of a period into history under
// version, which frees the period for a new CheckCompliance.
func (e *Engine) ArchiveScore(caller string, farmID, period uint64, version string) (event *types.EventArchiveScore, err error) {
	current, err := e.store.GetScore(farmID, period)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrInvalidPeriod
	}
	if version == "" {
		return nil, ErrInvalidVersion
	}
	inserted, err := e.store.InsertHistoricalScore(&types.HistoricalScore{
		ComplianceScore: *current,
		Version:         version,
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrInvalidVersion
	}
	e.store.DeleteScore(farmID, period)
	e.logger.Info("score archived", "farm", farmID, "period", period, "version", version, "caller", caller)
	return &types.EventArchiveScore{FarmID: farmID, Period: period, Version: version}, nil
}

// ComplianceHistory collects the current scores of the given periods;
// periods without a score are skipped.
func (e *Engine) ComplianceHistory(farmID uint64, periods []uint64) (*types.ComplianceHistory, error) {
	if len(periods) > MaxHistoryPeriods {
		return nil, ErrTooManyPeriods
	}
	h := &types.ComplianceHistory{FarmID: farmID, Scores: []types.ComplianceScore{}}
	for _, p := range periods {
		score, err := e.store.GetScore(farmID, p)
		if err != nil {
			return nil, err
		}
		if score == nil {
			continue
		}
		h.Scores = append(h.Scores, *score)
		h.TotalViolations += score.Violations
	}
	return h, nil
}

func (e *Engine) Score(farmID, period uint64) (*types.ComplianceScore, error) {
	return e.store.GetScore(farmID, period)
}

func (e *Engine) HistoricalScore(farmID, period uint64, version string) (*types.HistoricalScore, error) {
	return e.store.GetHistoricalScore(farmID, period, version)
}
