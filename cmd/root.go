package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"debt-coach/config"
)

var (
	flagConfig string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "debtcoach",
	Short: "Debt payoff planning service",
	Long:  "HTTP backend for debt payoff plans: snowball/avalanche schedules, budget slip checks, and coaching nudges.",
	RunE:  runServe,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "debtcoach.toml", "Path to TOML config file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}

// setup is the shared bootstrap path used by all commands.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, nil, err
	}

	logger, err := config.NewLogger(flagDebug)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("building logger: %w", err)
	}

	return cfg, logger, nil
}
