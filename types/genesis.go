package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cometbft/cometbft/crypto"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	cmttypes "github.com/cometbft/cometbft/types"
)

type GenesisState map[string]json.RawMessage

type GenesisValidator struct {
	Address crypto.Address `json:"address"`
	PubKey  crypto.PubKey  `json:"pub_key"`
	Power   int64          `json:"power"`
	Name    string         `json:"name"`
}

// GenesisDoc defines the initial conditions for a CometBFT blockchain, in particular its validator set.
type GenesisDoc struct {
	GenesisTime     time.Time                 `json:"genesis_time"`
	ChainID         string                    `json:"chain_id"`
	InitialHeight   int64                     `json:"initial_height"`
	ConsensusParams *cmttypes.ConsensusParams `json:"consensus_params,omitempty"`
	Validators      []GenesisValidator        `json:"validators"`
	AppHash         []byte                    `json:"app_hash"`
	AppState        json.RawMessage           `json:"app_state"`
}

// SaveAs is a utility method for saving GenensisDoc as a JSON file.
func (genDoc *GenesisDoc) SaveAs(file string) error {
	genDocBytes, err := cmtjson.MarshalIndent(genDoc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, genDocBytes, 0o600)
}

func (ag *GenesisDoc) ValidateAndComplete() error {
	if ag.ChainID == "" {
		return errors.New("genesis doc must include non-empty chain_id")
	}

	if ag.InitialHeight < 0 {
		return fmt.Errorf("initial_height cannot be negative (got %v)", ag.InitialHeight)
	}

	if ag.InitialHeight == 0 {
		ag.InitialHeight = 1
	}

	if ag.GenesisTime.IsZero() {
		ag.GenesisTime = time.Now().Round(0).UTC()
	}

	return nil
}

func ExportGenesisFile(genesis *GenesisDoc, genFile string) error {
	if err := genesis.ValidateAndComplete(); err != nil {
		return err
	}
	return genesis.SaveAs(genFile)
}

// AppState is the application part of the genesis document.
type AppState struct {
	Owner            string           `json:"owner"`
	Rules            RuleSet          `json:"rules"`
	VotingParams     VotingParams     `json:"voting_params"`
	ComplianceParams ComplianceParams `json:"compliance_params"`
}

func DefaultAppState(owner string) AppState {
	return AppState{
		Owner: owner,
		Rules: RuleSet{
			MaxPrimaryLimit:   100,
			MaxSecondaryLimit: 200,
			ReviewPeriod:      PeriodLength,
		},
		VotingParams:     DefaultVotingParams(),
		ComplianceParams: DefaultComplianceParams(),
	}
}

func (s *AppState) Validate() error {
	if s.Owner == "" {
		return errors.New("genesis app_state must include an owner")
	}
	if s.Rules.MaxPrimaryLimit == 0 || s.Rules.MaxSecondaryLimit == 0 || !s.Rules.Initialized() {
		return fmt.Errorf("invalid genesis rules %+v", s.Rules)
	}
	p := s.VotingParams
	if p.VotingDelay == 0 || p.VotingPeriod == 0 || p.ProposalThreshold == 0 || p.QuorumPercent > 100 || p.MaxProposals == 0 {
		return fmt.Errorf("invalid genesis voting params %+v", p)
	}
	c := s.ComplianceParams
	if c.ScoreThreshold < 50 || c.ScoreThreshold > 100 || c.ViolationPenalty > 50 {
		return fmt.Errorf("invalid genesis compliance params %+v", c)
	}
	return nil
}

const ModuleName = "agro"
const DefaultPower = 1000
