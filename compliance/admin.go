package compliance

import (
	"github.com/calehh/agro-gov/types"
)

func (e *Engine) requireOwner(caller string) error {
	owner, err := e.store.Owner()
	if err != nil {
		return err
	}
	if owner == "" || caller != owner {
		return ErrUnauthorizedAdmin
	}
	return nil
}

func (e *Engine) Params() (types.ComplianceParams, error) {
	return e.store.ComplianceParams()
}

func (e *Engine) SetScoreThreshold(caller string, threshold uint64) (event *types.EventComplianceParam, err error) {
	if err = e.requireOwner(caller); err != nil {
		return nil, err
	}
	if threshold < MinScoreThreshold || threshold > MaxScoreThreshold {
		return nil, ErrInvalidThreshold
	}
	params, err := e.store.ComplianceParams()
	if err != nil {
		return nil, err
	}
	params.ScoreThreshold = threshold
	if err = e.store.SetComplianceParams(params); err != nil {
		return nil, err
	}
	return &types.EventComplianceParam{Param: types.ComplianceParamScoreThreshold, Value: threshold}, nil
}

func (e *Engine) SetViolationPenalty(caller string, penalty uint64) (event *types.EventComplianceParam, err error) {
	if err = e.requireOwner(caller); err != nil {
		return nil, err
	}
	if penalty > MaxViolationPenalty {
		return nil, ErrInvalidPenalty
	}
	params, err := e.store.ComplianceParams()
	if err != nil {
		return nil, err
	}
	params.ViolationPenalty = penalty
	if err = e.store.SetComplianceParams(params); err != nil {
		return nil, err
	}
	return &types.EventComplianceParam{Param: types.ComplianceParamViolationPenalty, Value: penalty}, nil
}

// SetFarmWeights stores a per farm weighting. Evaluate does not read it.
func (e *Engine) SetFarmWeights(caller string, farmID, primaryWeight, secondaryWeight uint64) (event *types.EventFarmWeights, err error) {
	if err = e.requireOwner(caller); err != nil {
		return nil, err
	}
	if farmID == 0 {
		return nil, ErrInvalidFarm
	}
	if primaryWeight < MinFarmWeight || primaryWeight > MaxFarmWeight ||
		secondaryWeight < MinFarmWeight || secondaryWeight > MaxFarmWeight {
		return nil, ErrInvalidWeight
	}
	weights := types.FarmWeights{PrimaryWeight: primaryWeight, SecondaryWeight: secondaryWeight}
	if err = e.store.SetFarmWeights(farmID, weights); err != nil {
		return nil, err
	}
	return &types.EventFarmWeights{FarmID: farmID, Weights: weights}, nil
}

func (e *Engine) FarmWeights(farmID uint64) (*types.FarmWeights, error) {
	return e.store.GetFarmWeights(farmID)
}

// ReportUsage appends a usage entry on behalf of the owner, who acts as the
// sensor oracle.
func (e *Engine) ReportUsage(caller string, farmID uint64, category types.UsageCategory, amount uint64, timestamp int64) (event *types.EventUsageReport, err error) {
	if err = e.requireOwner(caller); err != nil {
		return nil, err
	}
	if farmID == 0 {
		return nil, ErrInvalidFarm
	}
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	if timestamp < 0 {
		return nil, ErrInvalidTimestamp
	}
	log := types.UsageLog{FarmID: farmID, Category: category, Amount: amount, Timestamp: timestamp}
	idx, err := e.store.AppendUsageLog(log)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("usage reported", "farm", farmID, "category", category, "amount", amount, "index", idx)
	return &types.EventUsageReport{Index: idx, Log: log}, nil
}
