package commands

import (
	"fmt"

	"github.com/leapstack-labs/pdmwatch/internal/cli/config"
	"github.com/leapstack-labs/pdmwatch/internal/cli/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration with secrets redacted",
		Long: `Print the configuration after defaults, the config file, PDMWATCH_*
environment variables and flags have been merged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			path := config.GetConfigFileUsed()
			if path == "" {
				path = "(none)"
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
		},
	})

	return cmd
}

func runConfigShow(cmd *cobra.Command) error {
	cmdCtx := NewCommandContextWithoutStore(cmd)
	redacted := cmdCtx.Cfg.Redacted()

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(redacted)
	}

	enc := yaml.NewEncoder(r.Writer())
	enc.SetIndent(2)
	if err := enc.Encode(redacted); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
