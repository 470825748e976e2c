package governance

import (
	"github.com/calehh/agro-gov/types"
)

// CurrentRules is the read side other components consume. It never fails:
// a store error yields the zero RuleSet, which reads as "not initialized".
func (e *Engine) CurrentRules() types.RuleSet {
	rules, err := e.store.Rules()
	if err != nil {
		e.logger.Error("read rules fail", "err", err)
		return types.RuleSet{}
	}
	return rules
}

func (e *Engine) Params() (types.VotingParams, error) {
	return e.store.VotingParams()
}

func (e *Engine) Admins() ([]string, error) {
	return e.store.Admins()
}

func (e *Engine) GetStake(account string) (*types.Stake, error) {
	return e.store.GetStake(account)
}

func (e *Engine) Proposal(id uint64) (*types.Proposal, error) {
	p, err := e.store.GetProposal(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProposalNotFound
	}
	return p, nil
}

func (e *Engine) ProposalState(id uint64) (types.ProposalState, error) {
	p, err := e.Proposal(id)
	if err != nil {
		return 0, err
	}
	return e.proposalState(p)
}

func (e *Engine) HasVoted(id uint64, account string) (voted bool, support bool, err error) {
	support, voted, err = e.store.GetVote(id, account)
	return
}

func (e *Engine) ProposalCount(account string) (uint64, error) {
	return e.store.ProposalCount(account)
}

func (e *Engine) NextProposalID() (uint64, error) {
	return e.store.NextProposalID()
}
