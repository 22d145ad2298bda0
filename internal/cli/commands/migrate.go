package commands

import (
	"github.com/leapstack-labs/pdmwatch/internal/cli/output"
	"github.com/spf13/cobra"
)

// MigrateOutput is the JSON shape of the migrate commands.
type MigrateOutput struct {
	Driver  string `json:"driver"`
	Version int64  `json:"version"`
}

// NewMigrateCommand creates the migrate command. Without a subcommand it
// behaves like "migrate up".
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateUp(cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateUp(cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrateVersion(cmd)
		},
	})

	return cmd
}

func runMigrateUp(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return printMigrationVersion(cmd, cmdCtx, "Database is up to date")
}

func runMigrateVersion(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := newCommandContext(cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	return printMigrationVersion(cmd, cmdCtx, "")
}

func printMigrationVersion(cmd *cobra.Command, cmdCtx *CommandContext, message string) error {
	version, err := cmdCtx.Store.MigrationVersion(cmd.Context())
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(MigrateOutput{Driver: cmdCtx.Cfg.Database.Driver, Version: version})
	}
	if message != "" {
		r.Success(message)
	}
	r.Printf("Schema version: %d\n", version)
	return nil
}
