package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calehh/agro-gov/agent"
	"github.com/calehh/agro-gov/app"
	app_config "github.com/calehh/agro-gov/config"
	"github.com/calehh/agro-gov/types"
	cmtconfig "github.com/cometbft/cometbft/config"
	cmtflags "github.com/cometbft/cometbft/libs/cli/flags"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	nm "github.com/cometbft/cometbft/node"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
	"github.com/cometbft/cometbft/proxy"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agro",
	Short: "agro is a governance and farm compliance chain",
	Long: `Stake weighted governance of usage rules and compliance
scoring of farms, running as a CometBFT application.`,
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the node",
	Args:  cobra.NoArgs,
	RunE:  startRun,
}

func init() {
	rootCmd.PersistentFlags().String(types.FlagHome, "", "home directory (default $HOME/.agro)")
}

func homeDir(cmd *cobra.Command) string {
	home, _ := cmd.Flags().GetString(types.FlagHome)
	if home == "" {
		home = app_config.DefaultHome()
	}
	return home
}

func startRun(cmd *cobra.Command, args []string) error {
	appConfig, err := app_config.ReadConfigFile(homeDir(cmd))
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	pv := privval.LoadFilePV(
		appConfig.PrivValidatorKeyFile(),
		appConfig.PrivValidatorStateFile(),
	)

	nodeKey, err := p2p.LoadNodeKey(appConfig.NodeKeyFile())
	if err != nil {
		return fmt.Errorf("failed to load node's key: %w", err)
	}

	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stdout))
	logger, err = cmtflags.ParseLogLevel(appConfig.LogLevel, logger, cmtconfig.DefaultLogLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	agroApp, err := app.NewAgroApp(appConfig.App, logger)
	if err != nil {
		return fmt.Errorf("new App err: %w", err)
	}

	node, err := nm.NewNode(
		appConfig.Config,
		pv,
		nodeKey,
		proxy.NewLocalClientCreator(agroApp),
		nm.DefaultGenesisDocProviderFunc(appConfig.Config),
		cmtconfig.DefaultDBProvider,
		nm.DefaultMetricsProvider(appConfig.Instrumentation),
		logger,
	)
	if err != nil {
		return fmt.Errorf("creating node: %w", err)
	}

	agroApp.Start(node.BlockStore())
	if err = node.Start(); err != nil {
		return fmt.Errorf("start comet node err: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var service *agent.Service
	if appConfig.App.IndexerEnable {
		service, err = startIndexer(ctx, appConfig, logger)
		if err != nil {
			logger.Error("indexer disabled", "err", err)
		}
	}

	defer func() {
		log.Println("shut down...")
		cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			if service != nil {
				sctx, scancel := context.WithTimeout(context.Background(), 3*time.Second)
				_ = service.Stop(sctx)
				scancel()
			}
			if err := node.Stop(); err != nil {
				logger.Error("stop comet node err", "err", err)
			}
			node.Wait()
			agroApp.Stop()
		}()
		timer := time.NewTimer(time.Second * 10)
		select {
		case <-timer.C:
			os.Exit(1)
		case <-done:
			return
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	return nil
}

func startIndexer(ctx context.Context, appConfig *app_config.Config, logger cmtlog.Logger) (*agent.Service, error) {
	rpcUrl, err := url.Parse(appConfig.Config.RPC.ListenAddress)
	if err != nil {
		return nil, err
	}
	rpcUrl.Scheme = "http"
	indexer, err := agent.NewChainIndexer(logger, appConfig.App.IndexerDBPath(), rpcUrl.String(), appConfig.App.IndexerInterval)
	if err != nil {
		return nil, err
	}
	go func() {
		indexer.Start(ctx)
		_ = indexer.Close()
	}()
	service := agent.NewService(appConfig.App.IndexerListen, indexer)
	go func() {
		if err := service.Start(); err != nil {
			logger.Error("indexer service stopped", "err", err)
		}
	}()
	return service, nil
}
