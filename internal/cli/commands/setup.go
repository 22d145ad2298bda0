package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/pdmwatch/internal/cli/config"
	"github.com/leapstack-labs/pdmwatch/internal/cli/output"
	intconfig "github.com/leapstack-labs/pdmwatch/internal/config"
	"github.com/leapstack-labs/pdmwatch/internal/state"
	"github.com/leapstack-labs/pdmwatch/internal/ui/features/common"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    *state.Store
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a migrated store and a renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	return newCommandContext(cmd, true)
}

func newCommandContext(cmd *cobra.Command, migrate bool) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutStore(cmd)

	store, err := openStore(cmd, cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	if migrate {
		if err := store.Migrate(cmd.Context()); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
	}

	cmdCtx.Store = store
	cleanup := func() {
		_ = store.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without a store.
// Useful for commands that don't need database access.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	cfg := getConfig(cmd)
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ParseMode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the configuration from the command context, then the
// last loaded configuration, then the defaults.
func getConfig(cmd *cobra.Command) *config.Config {
	if cfg := config.FromContext(cmd.Context()); cfg != nil {
		return cfg
	}
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

func openStore(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*state.Store, error) {
	db := cfg.Database
	if db.Driver == intconfig.DriverSQLite && !db.IsMemory() {
		if dir := filepath.Dir(db.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	store := state.New(logger)
	if err := store.Open(cmd.Context(), db); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	return store, nil
}

// scheduleOptions maps the maintenance config onto schedule derivation.
func scheduleOptions(cfg *config.Config) common.ScheduleOptions {
	return common.ScheduleOptions{
		IntervalDays: cfg.Maintenance.IntervalDays,
		HistoryLimit: cfg.Maintenance.HistoryLimit,
	}
}

// parseID parses a positive integer argument.
func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", core.ErrInvalidInput, what, arg)
	}
	return id, nil
}
