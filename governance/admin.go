package governance

import (
	"github.com/calehh/agro-gov/types"
)

func (e *Engine) IsAdmin(account string) (bool, error) {
	admins, err := e.store.Admins()
	if err != nil {
		return false, err
	}
	for _, a := range admins {
		if a == account {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) requireAdmin(caller string) error {
	ok, err := e.IsAdmin(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorizedAdmin
	}
	return nil
}

func (e *Engine) AddAdmin(caller, account string) (event *types.EventAddAdmin, err error) {
	if err = e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if account == "" {
		return nil, ErrInvalidAccount
	}
	admins, err := e.store.Admins()
	if err != nil {
		return nil, err
	}
	for _, a := range admins {
		if a == account {
			return nil, ErrAlreadyAdmin
		}
	}
	if len(admins) >= types.MaxAdmins {
		return nil, ErrAdminListFull
	}
	if err = e.store.SetAdmins(append(admins, account)); err != nil {
		return nil, err
	}
	e.logger.Info("admin added", "admin", account, "by", caller)
	return &types.EventAddAdmin{Admin: account, By: caller}, nil
}

// SetVotingParams replaces delay, period, threshold and quorum. MaxProposals
// is fixed at genesis.
func (e *Engine) SetVotingParams(caller string, delay, period, threshold, quorum uint64) (event *types.EventVotingParams, err error) {
	if err = e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if delay == 0 || period == 0 || threshold == 0 || quorum > 100 {
		return nil, ErrInvalidThreshold
	}
	params, err := e.store.VotingParams()
	if err != nil {
		return nil, err
	}
	params.VotingDelay = delay
	params.VotingPeriod = period
	params.ProposalThreshold = threshold
	params.QuorumPercent = quorum
	if err = e.store.SetVotingParams(params); err != nil {
		return nil, err
	}
	e.logger.Info("voting params updated", "params", params, "by", caller)
	return &types.EventVotingParams{By: caller, Params: params}, nil
}
