// Package commands implements the splitme command line.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/splitme/splitme/internal/config"
	"github.com/splitme/splitme/pkg/logging"
)

// Version is set via ldflags during build.
var Version = "dev"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	envFile string
	network string

	cfg    *config.Config
	logger *slog.Logger
}

func (a *app) load() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.network != "" {
		cfg.Network = a.network
	}
	logger, err := logging.Setup(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "splitme",
		Short:   "Shared expenses settled with an ERC-20 token on Morph",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "optional dotenv file")
	rootCmd.PersistentFlags().StringVar(&a.network, "network", "", "network name (overrides SPLITME_NETWORK)")

	rootCmd.AddCommand(
		newServeCommand(a),
		newDeployCommand(a),
		newSettleCommand(a),
		newFaucetCommand(a),
		newSyncCommand(a),
	)

	return rootCmd
}
