package governance

import "errors"

var (
	ErrInsufficientStake          = errors.New("insufficient stake")
	ErrStakeOverflow              = errors.New("stake overflow")
	ErrNotStaker                  = errors.New("not a staker")
	ErrUnstakeLocked              = errors.New("stake is locked")
	ErrMaxProposalsExceeded       = errors.New("max proposals exceeded")
	ErrInvalidProposalDescription = errors.New("invalid proposal description")
	ErrProposalNotFound           = errors.New("proposal not found")
	ErrVotingClosed               = errors.New("voting closed")
	ErrAlreadyVoted               = errors.New("already voted")
	ErrNotExecutable              = errors.New("proposal not executable")
	ErrInvalidThreshold           = errors.New("invalid voting params")
	ErrUnauthorizedAdmin          = errors.New("unauthorized admin")
	ErrAdminListFull              = errors.New("admin list full")
	ErrAlreadyAdmin               = errors.New("already admin")
	ErrInvalidAccount             = errors.New("invalid account")
)
