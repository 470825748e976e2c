package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	app_config "github.com/calehh/agro-gov/config"
	"github.com/calehh/agro-gov/types"
	cmtos "github.com/cometbft/cometbft/libs/os"
	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/spf13/cobra"
)

type printInfo struct {
	Moniker    string          `json:"moniker" yaml:"moniker"`
	ChainID    string          `json:"chain_id" yaml:"chain_id"`
	NodeID     string          `json:"node_id" yaml:"node_id"`
	AppMessage json.RawMessage `json:"app_message" yaml:"app_message"`
}

func displayInfo(info printInfo) error {
	out, err := json.MarshalIndent(info, "", " ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(os.Stderr, "%s\n", out)

	return err
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize private validator, p2p, genesis, and application configuration files",
	Long:  `Initialize validators's and node's configuration files.`,
	Args:  cobra.NoArgs,
	RunE:  initRun,
}

func init() {
	initCmd.Flags().BoolP(types.FlagOverwrite, "o", false, "overwrite the genesis.json file")
	initCmd.Flags().String(types.FlagChainID, "", "genesis file chain-id, if left blank will be randomly created")
	initCmd.Flags().String(types.FlagOwner, "", "owner address, defaults to the validator address")
}

func initRun(cmd *cobra.Command, args []string) error {
	chainID, _ := cmd.Flags().GetString(types.FlagChainID)
	owner, _ := cmd.Flags().GetString(types.FlagOwner)
	overwrite, _ := cmd.Flags().GetBool(types.FlagOverwrite)
	if chainID == "" {
		chainID = fmt.Sprintf("agro-chain-%v", rand.Uint64())
	}

	appConfig := app_config.NewConfig(homeDir(cmd))
	nodeID, pk, err := app_config.InitializeNodeValidatorFiles(appConfig, nil)
	if err != nil {
		return err
	}
	if owner == "" {
		owner = pk.Address().String()
	}

	genFile := appConfig.GenesisFile()
	if cmtos.FileExists(genFile) && !overwrite {
		return fmt.Errorf("genesis file %v already exists, use --%s to replace it", genFile, types.FlagOverwrite)
	}
	appState := types.DefaultAppState(owner)
	if err = appState.Validate(); err != nil {
		return err
	}
	appStateBytes, err := json.MarshalIndent(appState, "", "  ")
	if err != nil {
		return err
	}
	appGenesis := &types.GenesisDoc{
		GenesisTime:     time.Now(),
		ChainID:         chainID,
		ConsensusParams: cmttypes.DefaultConsensusParams(),
		InitialHeight:   1,
		Validators: []types.GenesisValidator{
			{Address: pk.Address(), PubKey: pk, Power: types.DefaultPower},
		},
		AppState: appStateBytes,
	}
	if err = types.ExportGenesisFile(appGenesis, genFile); err != nil {
		return fmt.Errorf("failed to export genesis file: %w", err)
	}
	app_config.WriteConfigFile(filepath.Join(appConfig.RootDir, "config", "config.toml"), appConfig)
	return displayInfo(printInfo{
		Moniker:    appConfig.Moniker,
		ChainID:    chainID,
		NodeID:     nodeID,
		AppMessage: appGenesis.AppState,
	})
}
