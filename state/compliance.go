package state

import (
	"fmt"
	"slices"

	"github.com/calehh/agro-gov/types"
)

func (s *State) ComplianceParams() (params types.ComplianceParams, err error) {
	found, err := s.getJSON(KeyComplianceParams, &params)
	if err == nil && !found {
		params = types.DefaultComplianceParams()
	}
	return
}

func (s *State) SetComplianceParams(params types.ComplianceParams) error {
	return s.setJSON(KeyComplianceParams, params)
}

// CachedRules is the compliance side copy of the last rule set it loaded.
func (s *State) CachedRules() (rules types.RuleSet, loaded bool, err error) {
	loaded, err = s.getJSON(KeyCachedRules, &rules)
	return
}

func (s *State) SetCachedRules(rules types.RuleSet) error {
	return s.setJSON(KeyCachedRules, rules)
}

func (s *State) InsertScore(score *types.ComplianceScore) (bool, error) {
	return s.InsertIfAbsent(fmt.Sprintf(KeyScore, score.FarmID, score.Period), score)
}

func (s *State) GetScore(farmID, period uint64) (score *types.ComplianceScore, err error) {
	score = new(types.ComplianceScore)
	found, err := s.getJSON(fmt.Sprintf(KeyScore, farmID, period), score)
	if err != nil || !found {
		return nil, err
	}
	return score, nil
}

func (s *State) DeleteScore(farmID, period uint64) {
	s.remove(fmt.Sprintf(KeyScore, farmID, period))
}

func (s *State) InsertHistoricalScore(score *types.HistoricalScore) (bool, error) {
	return s.InsertIfAbsent(fmt.Sprintf(KeyHistoricalScore, score.FarmID, score.Period, score.Version), score)
}

func (s *State) GetHistoricalScore(farmID, period uint64, version string) (score *types.HistoricalScore, err error) {
	score = new(types.HistoricalScore)
	found, err := s.getJSON(fmt.Sprintf(KeyHistoricalScore, farmID, period, version), score)
	if err != nil || !found {
		return nil, err
	}
	return score, nil
}

func (s *State) GetFarmWeights(farmID uint64) (weights *types.FarmWeights, err error) {
	weights = new(types.FarmWeights)
	found, err := s.getJSON(fmt.Sprintf(KeyFarmWeights, farmID), weights)
	if err != nil || !found {
		return nil, err
	}
	return weights, nil
}

func (s *State) SetFarmWeights(farmID uint64, weights types.FarmWeights) error {
	return s.setJSON(fmt.Sprintf(KeyFarmWeights, farmID), weights)
}

// AppendUsageLog stores a usage report in the bucket of its period and
// returns its index within the farm.
func (s *State) AppendUsageLog(log types.UsageLog) (idx uint64, err error) {
	key := fmt.Sprintf(KeyUsageIndex, log.FarmID)
	idx, err = s.getCounter(key)
	if err != nil {
		return 0, err
	}
	period := types.PeriodOf(log.Timestamp)
	countKey := fmt.Sprintf(KeyUsageBucketCount, log.FarmID, period)
	slot, err := s.getCounter(countKey)
	if err != nil {
		return 0, err
	}
	if slot == 0 {
		if err = s.addUsageBucket(log.FarmID, period); err != nil {
			return 0, err
		}
	}
	if err = s.setJSON(fmt.Sprintf(KeyUsageBody, log.FarmID, period, slot), log); err != nil {
		return 0, err
	}
	if err = s.setCounter(countKey, slot+1); err != nil {
		return 0, err
	}
	err = s.setCounter(key, idx+1)
	return
}

// usageBuckets lists the periods of a farm that hold reports, ascending.
func (s *State) usageBuckets(farmID uint64) (periods []uint64, err error) {
	_, err = s.getJSON(fmt.Sprintf(KeyUsageBuckets, farmID), &periods)
	return
}

func (s *State) addUsageBucket(farmID, period uint64) error {
	periods, err := s.usageBuckets(farmID)
	if err != nil {
		return err
	}
	i, found := slices.BinarySearch(periods, period)
	if found {
		return nil
	}
	return s.setJSON(fmt.Sprintf(KeyUsageBuckets, farmID), slices.Insert(periods, i, period))
}

// LogsForPeriod returns the farm's usage reports with start <= ts <= end,
// ordered by period and by report order within a period, or nil when there
// are none. Only the buckets of periods overlapping the range are read.
func (s *State) LogsForPeriod(farmID uint64, start, end int64) (logs []types.UsageLog, err error) {
	if end < 0 || end < start {
		return nil, nil
	}
	if start < 0 {
		start = 0
	}
	periods, err := s.usageBuckets(farmID)
	if err != nil {
		return nil, err
	}
	first, last := types.PeriodOf(start), types.PeriodOf(end)
	i, _ := slices.BinarySearch(periods, first)
	for ; i < len(periods) && periods[i] <= last; i++ {
		period := periods[i]
		n, err := s.getCounter(fmt.Sprintf(KeyUsageBucketCount, farmID, period))
		if err != nil {
			return nil, err
		}
		for slot := uint64(0); slot < n; slot++ {
			var log types.UsageLog
			found, err := s.getJSON(fmt.Sprintf(KeyUsageBody, farmID, period, slot), &log)
			if err != nil {
				return nil, err
			}
			if found && log.Timestamp >= start && log.Timestamp <= end {
				logs = append(logs, log)
			}
		}
	}
	return logs, nil
}
