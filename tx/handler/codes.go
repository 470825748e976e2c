package handler

import (
	"errors"

	"github.com/calehh/agro-gov/compliance"
	"github.com/calehh/agro-gov/governance"
	"github.com/calehh/agro-gov/state"
	"github.com/calehh/agro-gov/tx"
)

const (
	CodespaceTx         = "tx"
	CodespaceGov        = "gov"
	CodespaceCompliance = "compliance"

	CodeUnknown uint32 = 1
)

type errCode struct {
	err   error
	space string
	code  uint32
}

// Codes are part of the client API and must never be renumbered.
var errCodes = []errCode{
	{tx.ErrInvalidTx, CodespaceTx, 2},
	{tx.ErrUnsupportedTxType, CodespaceTx, 3},
	{tx.ErrUnsupportedTxVersion, CodespaceTx, 4},
	{state.ErrTxNonceInvalid, CodespaceTx, 5},
	{state.ErrTxSigInvalid, CodespaceTx, 6},
	{state.ErrTxPubKeyEmpty, CodespaceTx, 7},

	{governance.ErrInsufficientStake, CodespaceGov, 100},
	{governance.ErrStakeOverflow, CodespaceGov, 101},
	{governance.ErrNotStaker, CodespaceGov, 102},
	{governance.ErrUnstakeLocked, CodespaceGov, 103},
	{governance.ErrMaxProposalsExceeded, CodespaceGov, 104},
	{governance.ErrInvalidProposalDescription, CodespaceGov, 105},
	{governance.ErrProposalNotFound, CodespaceGov, 106},
	{governance.ErrVotingClosed, CodespaceGov, 107},
	{governance.ErrAlreadyVoted, CodespaceGov, 108},
	{governance.ErrNotExecutable, CodespaceGov, 109},
	{governance.ErrInvalidThreshold, CodespaceGov, 110},
	{governance.ErrUnauthorizedAdmin, CodespaceGov, 111},
	{governance.ErrAdminListFull, CodespaceGov, 112},
	{governance.ErrAlreadyAdmin, CodespaceGov, 113},
	{governance.ErrInvalidAccount, CodespaceGov, 114},

	{compliance.ErrInvalidFarm, CodespaceCompliance, 200},
	{compliance.ErrInvalidTimestamp, CodespaceCompliance, 201},
	{compliance.ErrInvalidTimeRange, CodespaceCompliance, 202},
	{compliance.ErrRulesNotLoaded, CodespaceCompliance, 203},
	{compliance.ErrLogNotFound, CodespaceCompliance, 204},
	{compliance.ErrComplianceAlreadyComputed, CodespaceCompliance, 205},
	{compliance.ErrInvalidPeriod, CodespaceCompliance, 206},
	{compliance.ErrInvalidVersion, CodespaceCompliance, 207},
	{compliance.ErrInvalidThreshold, CodespaceCompliance, 208},
	{compliance.ErrInvalidPenalty, CodespaceCompliance, 209},
	{compliance.ErrInvalidWeight, CodespaceCompliance, 210},
	{compliance.ErrInvalidAmount, CodespaceCompliance, 211},
	{compliance.ErrInvalidCategory, CodespaceCompliance, 212},
	{compliance.ErrTooManyPeriods, CodespaceCompliance, 213},
	{compliance.ErrUnauthorizedAdmin, CodespaceCompliance, 214},
}

// Code maps an error to its ABCI codespace and code. Errors outside the known
// sets map to CodeUnknown with an empty codespace.
func Code(err error) (codespace string, code uint32) {
	if err == nil {
		return "", 0
	}
	for _, c := range errCodes {
		if errors.Is(err, c.err) {
			return c.space, c.code
		}
	}
	return "", CodeUnknown
}
