// Package governance implements stake weighted voting on the active rule set.
//
// Accounts lock stake to gain voting weight, propose a replacement RuleSet,
// vote during a window measured in blocks and, once the window closed with a
// quorum and a strict majority, execute the proposal. Execution is the only
// way the rule set ever changes.
package governance

import (
	"github.com/calehh/agro-gov/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/holiman/uint256"
)

const (
	MinDescriptionLen = 10
	MaxDescriptionLen = 256

	// quorumDivisor scales QuorumPercent against the votes cast:
	// required = total * QuorumPercent / quorumDivisor.
	quorumDivisor = 25
)

type Store interface {
	Height() uint64

	Rules() (types.RuleSet, error)
	SetRules(rules types.RuleSet) error
	VotingParams() (types.VotingParams, error)
	SetVotingParams(params types.VotingParams) error
	Admins() ([]string, error)
	SetAdmins(admins []string) error

	GetStake(account string) (*types.Stake, error)
	SetStake(stake *types.Stake) error
	DeleteStake(account string)

	NextProposalID() (uint64, error)
	SetNextProposalID(id uint64) error
	GetProposal(id uint64) (*types.Proposal, error)
	SetProposal(proposal *types.Proposal) error
	ProposalCount(proposer string) (uint64, error)
	IncProposalCount(proposer string) error
	InsertVote(proposalID uint64, voter string, support bool) (bool, error)
	GetVote(proposalID uint64, voter string) (support bool, voted bool, err error)
}

type Engine struct {
	logger cmtlog.Logger
	store  Store
}

func NewEngine(store Store, logger cmtlog.Logger) *Engine {
	return &Engine{
		logger: logger.With("module", "governance"),
		store:  store,
	}
}

func (e *Engine) Stake(caller string, amount uint64) (event *types.EventStake, err error) {
	if amount == 0 {
		return nil, ErrInsufficientStake
	}
	params, err := e.store.VotingParams()
	if err != nil {
		return nil, err
	}
	st, err := e.store.GetStake(caller)
	if err != nil {
		return nil, err
	}
	if st == nil {
		st = &types.Stake{Account: caller}
	}
	total, ok := addUint64(st.StakedAmount, amount)
	if !ok {
		return nil, ErrStakeOverflow
	}
	st.StakedAmount = total
	st.LockedUntil = e.store.Height() + params.VotingPeriod
	if err = e.store.SetStake(st); err != nil {
		return nil, err
	}
	e.logger.Debug("stake", "account", caller, "amount", amount, "total", total, "lockedUntil", st.LockedUntil)
	return &types.EventStake{
		Account:     caller,
		Amount:      amount,
		Total:       total,
		LockedUntil: st.LockedUntil,
	}, nil
}

func (e *Engine) Unstake(caller string, amount uint64) (event *types.EventUnStake, err error) {
	st, err := e.store.GetStake(caller)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNotStaker
	}
	now := e.store.Height()
	if now < st.LockedUntil {
		return nil, ErrUnstakeLocked
	}
	if amount == 0 || amount > st.StakedAmount {
		return nil, ErrInsufficientStake
	}
	st.StakedAmount -= amount
	var lockedUntil uint64
	if st.StakedAmount == 0 {
		e.store.DeleteStake(caller)
	} else {
		params, err := e.store.VotingParams()
		if err != nil {
			return nil, err
		}
		st.LockedUntil = now + params.VotingPeriod
		lockedUntil = st.LockedUntil
		if err = e.store.SetStake(st); err != nil {
			return nil, err
		}
	}
	e.logger.Debug("unstake", "account", caller, "amount", amount, "remaining", st.StakedAmount)
	return &types.EventUnStake{
		Account:     caller,
		Amount:      amount,
		Remaining:   st.StakedAmount,
		LockedUntil: lockedUntil,
	}, nil
}

// ProposeRule opens a proposal to replace the active rule set. A zero rule
// value is reported as ErrInvalidProposalDescription, like a bad description.
func (e *Engine) ProposeRule(caller, description string, newPrimary, newSecondary, newPeriod uint64) (event *types.EventProposal, err error) {
	params, err := e.store.VotingParams()
	if err != nil {
		return nil, err
	}
	id, err := e.store.NextProposalID()
	if err != nil {
		return nil, err
	}
	if id >= params.MaxProposals {
		return nil, ErrMaxProposalsExceeded
	}
	if len(description) <= MinDescriptionLen || len(description) > MaxDescriptionLen {
		return nil, ErrInvalidProposalDescription
	}
	if newPrimary == 0 || newSecondary == 0 || newPeriod == 0 {
		return nil, ErrInvalidProposalDescription
	}
	st, err := e.store.GetStake(caller)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNotStaker
	}
	if st.StakedAmount < params.ProposalThreshold {
		return nil, ErrInsufficientStake
	}

	start := e.store.Height() + params.VotingDelay
	proposal := &types.Proposal{
		ID:          id,
		Description: description,
		RuleChange: types.RuleSet{
			MaxPrimaryLimit:   newPrimary,
			MaxSecondaryLimit: newSecondary,
			ReviewPeriod:      newPeriod,
		},
		StartBlock: start,
		EndBlock:   start + params.VotingPeriod,
		Proposer:   caller,
	}
	if err = e.store.SetProposal(proposal); err != nil {
		return nil, err
	}
	if err = e.store.IncProposalCount(caller); err != nil {
		return nil, err
	}
	if err = e.store.SetNextProposalID(id + 1); err != nil {
		return nil, err
	}
	e.logger.Info("proposal created", "proposal", id, "proposer", caller, "start", proposal.StartBlock, "end", proposal.EndBlock)
	return &types.EventProposal{
		ProposalID:  id,
		Proposer:    caller,
		Description: description,
		RuleChange:  proposal.RuleChange,
		StartBlock:  proposal.StartBlock,
		EndBlock:    proposal.EndBlock,
	}, nil
}

// Vote adds the caller's whole current stake to one side. The weight is fixed
// when the vote is cast.
func (e *Engine) Vote(caller string, proposalID uint64, support bool) (event *types.EventVote, err error) {
	proposal, err := e.store.GetProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, ErrProposalNotFound
	}
	state, err := e.proposalState(proposal)
	if err != nil {
		return nil, err
	}
	if state != types.ProposalStateActive {
		return nil, ErrVotingClosed
	}
	if _, voted, err := e.store.GetVote(proposalID, caller); err != nil {
		return nil, err
	} else if voted {
		return nil, ErrAlreadyVoted
	}
	st, err := e.store.GetStake(caller)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNotStaker
	}
	weight := st.StakedAmount
	side := &proposal.NoVotes
	if support {
		side = &proposal.YesVotes
	}
	tally, ok := addUint64(*side, weight)
	if !ok {
		return nil, ErrStakeOverflow
	}
	*side = tally
	inserted, err := e.store.InsertVote(proposalID, caller, support)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrAlreadyVoted
	}
	if err = e.store.SetProposal(proposal); err != nil {
		return nil, err
	}
	e.logger.Debug("vote", "proposal", proposalID, "voter", caller, "support", support, "weight", weight)
	return &types.EventVote{
		ProposalID: proposalID,
		Voter:      caller,
		Support:    support,
		Weight:     weight,
	}, nil
}

// ExecuteProposal applies a proposal's rule change once voting ended with
// quorum and a strict majority. Any account may trigger it.
func (e *Engine) ExecuteProposal(caller string, proposalID uint64) (event *types.EventSettleProposal, err error) {
	proposal, err := e.store.GetProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, ErrProposalNotFound
	}
	if e.store.Height() < proposal.EndBlock || proposal.Executed || proposal.Canceled {
		return nil, ErrNotExecutable
	}
	params, err := e.store.VotingParams()
	if err != nil {
		return nil, err
	}
	if !Passed(proposal, params.QuorumPercent) {
		return nil, ErrVotingClosed
	}
	proposal.Executed = true
	if err = e.store.SetProposal(proposal); err != nil {
		return nil, err
	}
	if err = e.store.SetRules(proposal.RuleChange); err != nil {
		return nil, err
	}
	e.logger.Info("proposal executed", "proposal", proposalID, "rules", proposal.RuleChange)
	return &types.EventSettleProposal{
		ProposalID: proposalID,
		Caller:     caller,
		Rules:      proposal.RuleChange,
	}, nil
}

func (e *Engine) CancelProposal(caller string, proposalID uint64) (event *types.EventSettleProposal, err error) {
	proposal, err := e.store.GetProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, ErrProposalNotFound
	}
	if proposal.Proposer != caller || e.store.Height() >= proposal.EndBlock || proposal.Executed || proposal.Canceled {
		return nil, ErrNotExecutable
	}
	proposal.Canceled = true
	if err = e.store.SetProposal(proposal); err != nil {
		return nil, err
	}
	e.logger.Info("proposal canceled", "proposal", proposalID)
	return &types.EventSettleProposal{
		ProposalID: proposalID,
		Caller:     caller,
		Rules:      proposal.RuleChange,
	}, nil
}

// Passed reports whether the tally meets quorum and a strict majority. The
// quorum is taken over the full width of yes+no, which may exceed 64 bits.
func Passed(p *types.Proposal, quorumPercent uint64) bool {
	yes := uint256.NewInt(p.YesVotes)
	required := new(uint256.Int).Add(yes, uint256.NewInt(p.NoVotes))
	required.Mul(required, uint256.NewInt(quorumPercent))
	required.Div(required, uint256.NewInt(quorumDivisor))
	if yes.Lt(required) {
		return false
	}
	return p.YesVotes > p.NoVotes
}

// addUint64 returns a+b and whether the sum fits in 64 bits.
func addUint64(a, b uint64) (uint64, bool) {
	sum := new(uint256.Int).Add(uint256.NewInt(a), uint256.NewInt(b))
	return sum.Uint64(), sum.IsUint64()
}

func (e *Engine) proposalState(p *types.Proposal) (types.ProposalState, error) {
	now := e.store.Height()
	switch {
	case p.Executed:
		return types.ProposalStateExecuted, nil
	case p.Canceled:
		return types.ProposalStateCanceled, nil
	case now < p.StartBlock:
		return types.ProposalStatePending, nil
	case now < p.EndBlock:
		return types.ProposalStateActive, nil
	}
	params, err := e.store.VotingParams()
	if err != nil {
		return 0, err
	}
	if Passed(p, params.QuorumPercent) {
		return types.ProposalStateSucceeded, nil
	}
	return types.ProposalStateDefeated, nil
}
