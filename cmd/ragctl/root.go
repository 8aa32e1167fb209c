package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/hybridrag/ragctl/internal/config"
	"github.com/hybridrag/ragctl/internal/credstore"
	"github.com/hybridrag/ragctl/internal/version"
)

// app carries the pieces shared by every subcommand. The credential store
// is opened lazily; resolve-only invocations never touch the database.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  credstore.Store
}

// openStore opens the encrypted store under the ragctl data directory.
func (a *app) openStore() (credstore.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if err := config.EnsureDataDir(); err != nil {
		return nil, err
	}
	store, err := credstore.Open(config.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	a.store = store
	return store, nil
}

func (a *app) closeStore() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	a := &app{}

	cmd := &cobra.Command{
		Use:           "ragctl",
		Short:         "Operator tooling for HybridRAG deployments",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = setupLogger(verbose)
			// First run: seed ~/.ragctl/config.toml with a commented
			// template so operators can see what is tunable.
			if err := config.EnsureConfigFile(); err != nil {
				a.logger.Debug("could not write default config", "error", err)
			}
			a.cfg = config.Load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.closeStore()
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newResolveCmd(a),
		newProbeCmd(a),
		newCredsCmd(a),
		newModeCmd(a),
		newFeaturesCmd(a),
		newFixTextCmd(a),
		newBackupCmd(a),
		newLogsCmd(a),
		newShellCmd(a),
	)
	return cmd
}

func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
	return slog.New(handler)
}
