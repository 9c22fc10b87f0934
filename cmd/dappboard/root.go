package main

import (
	"context"
	"fmt"

	"github.com/pscheid92/dappboard/internal/platform/config"
	"github.com/pscheid92/dappboard/internal/platform/logging"
	"github.com/pscheid92/dappboard/internal/platform/version"
	"github.com/spf13/cobra"
)

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:          "dappboard",
	Short:        "dApp discovery dashboard backend",
	Long:         "Serves the dApp feed, course catalog and community voting API.",
	Version:      version.Get().String(),
	SilenceUsage: true,
}

func execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// loadConfig reads the environment and installs the process logger. Every subcommand
// starts with it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}
