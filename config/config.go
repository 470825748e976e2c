package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
)

const (
	DefaultIndexerListen   = "127.0.0.1:8081"
	DefaultIndexerDB       = "indexer.db"
	DefaultIndexerInterval = 2 * time.Second
)

type AppConfig struct {
	Home string `mapstructure:"-"`

	IndexerEnable   bool          `mapstructure:"indexer_enable"`
	IndexerListen   string        `mapstructure:"indexer_listen"`
	IndexerDB       string        `mapstructure:"indexer_db"`
	IndexerInterval time.Duration `mapstructure:"indexer_interval"`
}

func DefaultAppConfig(home string) *AppConfig {
	return &AppConfig{
		Home:            home,
		IndexerEnable:   true,
		IndexerListen:   DefaultIndexerListen,
		IndexerDB:       DefaultIndexerDB,
		IndexerInterval: DefaultIndexerInterval,
	}
}

// IndexerDBPath resolves IndexerDB against the home directory.
func (c *AppConfig) IndexerDBPath() string {
	if filepath.IsAbs(c.IndexerDB) {
		return c.IndexerDB
	}
	return filepath.Join(c.Home, "data", c.IndexerDB)
}

func (c *AppConfig) ValidateBasic() error {
	if c.IndexerEnable {
		if c.IndexerListen == "" {
			return fmt.Errorf("indexer_listen is empty")
		}
		if c.IndexerInterval <= 0 {
			return fmt.Errorf("indexer_interval must be positive")
		}
	}
	return nil
}

type Config struct {
	*config.Config `mapstructure:",squash"`

	App *AppConfig `mapstructure:"app"`
}

func DefaultHome() string {
	return os.ExpandEnv("$HOME/.agro")
}

func NewConfig(home string) *Config {
	if len(home) == 0 {
		home = DefaultHome()
	}
	_ = os.MkdirAll(home+"/config", 0755)
	config := &Config{
		DefaultCometConfig(),
		DefaultAppConfig(home),
	}
	config.SetRoot(home)
	return config
}

func (c *Config) ValidateBasic() error {
	if err := c.Config.ValidateBasic(); err != nil {
		return err
	}
	return c.App.ValidateBasic()
}

func InitializeNodeValidatorFiles(config *Config, privKey crypto.PrivKey) (nodeID string, pk crypto.PubKey, err error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile())
	if err != nil {
		return "", nil, err
	}
	nodeID = string(nodeKey.ID())

	pvKeyFile := config.PrivValidatorKeyFile()
	if err := os.MkdirAll(filepath.Dir(pvKeyFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvKeyFile), err)
	}

	pvStateFile := config.PrivValidatorStateFile()
	if err := os.MkdirAll(filepath.Dir(pvStateFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvStateFile), err)
	}

	var filePV *privval.FilePV
	if privKey == nil {
		filePV = privval.LoadOrGenFilePV(pvKeyFile, pvStateFile)
	} else {
		filePV = privval.NewFilePV(privKey, pvKeyFile, pvStateFile)
		filePV.Save()
	}
	pukey, err := filePV.GetPubKey()
	if err != nil {
		return "", nil, err
	}

	return nodeID, pukey, nil
}

// DefaultCometConfig shortens the consensus timeouts so blocks, and with them
// the governance clock, advance about once a second.
func DefaultCometConfig() *config.Config {
	cometConfig := config.DefaultConfig()
	cometConfig.Consensus.TimeoutPropose = time.Second * 3
	cometConfig.Consensus.TimeoutPrevote = time.Second * 1
	cometConfig.Consensus.TimeoutPrecommit = time.Second * 1
	cometConfig.Consensus.TimeoutCommit = time.Millisecond * 1000
	cometConfig.Instrumentation.Prometheus = true
	return cometConfig
}
