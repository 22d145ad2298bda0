package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pdmwatch/internal/cli/output"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the pdmwatch version and build information.

With --output json the same fields are printed as a JSON object.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd, info)
		},
	}
}

func runVersion(cmd *cobra.Command, info BuildInfo) error {
	cfg := getConfig(cmd)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ParseMode(cfg.OutputFormat))

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(info)
	}

	r.Printf("pdmwatch v%s\n", info.Version)
	if info.Commit != "" && info.Commit != "unknown" {
		r.Muted("commit " + info.Commit + ", built " + info.BuildDate)
	}
	r.Println("Predictive maintenance dashboard and API")
	return nil
}
