package state

import (
	"fmt"

	"github.com/calehh/agro-gov/types"
)

func (s *State) Rules() (rules types.RuleSet, err error) {
	_, err = s.getJSON(KeyRules, &rules)
	return
}

func (s *State) SetRules(rules types.RuleSet) error {
	return s.setJSON(KeyRules, rules)
}

func (s *State) VotingParams() (params types.VotingParams, err error) {
	found, err := s.getJSON(KeyVotingParams, &params)
	if err == nil && !found {
		params = types.DefaultVotingParams()
	}
	return
}

func (s *State) SetVotingParams(params types.VotingParams) error {
	return s.setJSON(KeyVotingParams, params)
}

func (s *State) Owner() (owner string, err error) {
	val, err := s.get(KeyOwner)
	return string(val), err
}

func (s *State) SetOwner(owner string) {
	s.set(KeyOwner, []byte(owner))
}

func (s *State) Admins() (admins []string, err error) {
	_, err = s.getJSON(KeyAdmins, &admins)
	return
}

func (s *State) SetAdmins(admins []string) error {
	return s.setJSON(KeyAdmins, admins)
}

func (s *State) GetStake(account string) (stake *types.Stake, err error) {
	stake = new(types.Stake)
	found, err := s.getJSON(fmt.Sprintf(KeyStake, account), stake)
	if err != nil || !found {
		return nil, err
	}
	return stake, nil
}

func (s *State) SetStake(stake *types.Stake) error {
	return s.setJSON(fmt.Sprintf(KeyStake, stake.Account), stake)
}

func (s *State) DeleteStake(account string) {
	s.remove(fmt.Sprintf(KeyStake, account))
}

func (s *State) NextProposalID() (uint64, error) {
	return s.getCounter(KeyProposalIndex)
}

func (s *State) SetNextProposalID(id uint64) error {
	return s.setCounter(KeyProposalIndex, id)
}

func (s *State) GetProposal(id uint64) (proposal *types.Proposal, err error) {
	proposal = new(types.Proposal)
	found, err := s.getJSON(fmt.Sprintf(KeyProposalBody, id), proposal)
	if err != nil || !found {
		return nil, err
	}
	return proposal, nil
}

func (s *State) SetProposal(proposal *types.Proposal) error {
	return s.setJSON(fmt.Sprintf(KeyProposalBody, proposal.ID), proposal)
}

func (s *State) ProposalCount(proposer string) (uint64, error) {
	return s.getCounter(fmt.Sprintf(KeyProposerCount, proposer))
}

func (s *State) IncProposalCount(proposer string) error {
	key := fmt.Sprintf(KeyProposerCount, proposer)
	n, err := s.getCounter(key)
	if err != nil {
		return err
	}
	return s.setCounter(key, n+1)
}

// InsertVote records the vote unless voter already voted on the proposal.
func (s *State) InsertVote(proposalID uint64, voter string, support bool) (bool, error) {
	return s.InsertIfAbsent(fmt.Sprintf(KeyVote, proposalID, voter), support)
}

func (s *State) GetVote(proposalID uint64, voter string) (support bool, voted bool, err error) {
	voted, err = s.getJSON(fmt.Sprintf(KeyVote, proposalID, voter), &support)
	return
}
