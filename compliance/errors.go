package compliance

import "errors"

var (
	ErrInvalidFarm               = errors.New("invalid farm id")
	ErrInvalidTimestamp          = errors.New("invalid timestamp")
	ErrInvalidTimeRange          = errors.New("end time must be after start time")
	ErrRulesNotLoaded            = errors.New("rules not loaded")
	ErrLogNotFound               = errors.New("usage logs not found")
	ErrComplianceAlreadyComputed = errors.New("compliance already computed for period")
	ErrInvalidPeriod             = errors.New("no compliance score for period")
	ErrInvalidVersion            = errors.New("invalid archive version")
	ErrInvalidThreshold          = errors.New("score threshold out of range")
	ErrInvalidPenalty            = errors.New("violation penalty out of range")
	ErrInvalidWeight             = errors.New("farm weight out of range")
	ErrInvalidAmount             = errors.New("invalid usage amount")
	ErrInvalidCategory           = errors.New("invalid usage category")
	ErrTooManyPeriods            = errors.New("too many periods")
	ErrUnauthorizedAdmin         = errors.New("unauthorized admin")
)
