// ABOUTME: Root command and shared state for the stickies CLI.
// ABOUTME: Loads config, builds the logger and opens the note store around each command.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/stickies/internal/config"
	"github.com/harper/stickies/internal/logging"
	"github.com/harper/stickies/internal/store"
	"github.com/harper/stickies/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// skipStore marks commands that run without opening the note store.
const skipStore = "skip-store"

var (
	cfg       *config.Config
	logger    = zap.NewNop()
	noteStore *store.Store

	dbPathFlag     string
	configPathFlag string
	debugFlag      bool
)

var rootCmd = &cobra.Command{
	Use:           "stickies",
	Short:         "Sticky notes for the terminal",
	Long:          `Colorful rich-text sticky notes with tags, search and a trash that empties itself.`,
	Version:       fmt.Sprintf("%s (%s, %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPathFlag)
		if err != nil {
			return err
		}
		if dbPathFlag != "" {
			cfg.DBPath = dbPathFlag
		}

		level := cfg.LogLevel
		if debugFlag {
			level = "debug"
		}
		logger, err = logging.New(level, debugFlag)
		if err != nil {
			return err
		}

		if cmd.Annotations[skipStore] == "true" {
			return nil
		}

		noteStore, err = store.Open(cmd.Context(), cfg.DBPath,
			store.WithLogger(logger),
			store.WithRetentionDays(cfg.TrashRetentionDays),
			store.WithDefaultColor(cfg.Color()),
		)
		if err != nil {
			return fmt.Errorf("failed to open notes: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer func() { _ = logger.Sync() }()
		if noteStore == nil {
			return nil
		}
		err := noteStore.Close()
		noteStore = nil
		return err
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if noteStore != nil {
		_ = noteStore.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "note database path (default from config)")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "config file path (default $XDG_CONFIG_HOME/stickies/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging to stderr")
}
