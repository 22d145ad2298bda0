// Package cli provides the command-line interface for pdmwatch.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/pdmwatch/internal/cli/commands"
	"github.com/leapstack-labs/pdmwatch/internal/cli/config"
	"github.com/spf13/cobra"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pdmwatch",
		Short: "pdmwatch - predictive maintenance dashboard",
		Long: `pdmwatch keeps a registry of monitored machines and their maintenance
history, derives when each machine is next due, and serves a live dashboard
and JSON API over SQLite or PostgreSQL.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					logger.Debug("using config file", "path", configFile)
				}
				logger.Debug("using environment", "name", cfg.Environment, "driver", cfg.Database.Driver)
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} {{.Version}}\ncommit %s, built %s\n", GitCommit, BuildDate))

	// Global persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./pdmwatch.yaml)")
	flags.String("env", "", "Environment whose overrides to apply (e.g., dev, prod)")
	flags.BoolP("verbose", "v", false, "Verbose output (forces debug logging)")
	flags.StringP("output", "o", "", "Output format (auto|text|json)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (text|json)")
	flags.String("db-driver", "", "State database driver (sqlite|postgres)")
	flags.String("db-path", "", "SQLite database path, or :memory:")
	flags.String("db-url", "", "PostgreSQL connection URL")

	_ = rootCmd.RegisterFlagCompletionFunc("output", fixedCompletion("auto", "text", "json"))
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", fixedCompletion("debug", "info", "warn", "error"))
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", fixedCompletion("text", "json"))
	_ = rootCmd.RegisterFlagCompletionFunc("db-driver", fixedCompletion("sqlite", "postgres"))
	_ = rootCmd.RegisterFlagCompletionFunc("env", fixedCompletion("dev", "staging", "prod"))

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(commands.BuildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate}))
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewMachinesCommand())
	rootCmd.AddCommand(commands.NewMaintenanceCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// newLogger builds the slog logger described by cfg. Verbose forces debug.
func newLogger(w io.Writer, cfg *config.Config) (*slog.Logger, error) {
	level, err := config.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Log.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), nil
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c := config.FromContext(ctx); c != nil {
		return c
	}
	return config.Default()
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for pdmwatch.

To load completions:

Bash:
  $ source <(pdmwatch completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ pdmwatch completion bash > /etc/bash_completion.d/pdmwatch
  # macOS:
  $ pdmwatch completion bash > $(brew --prefix)/etc/bash_completion.d/pdmwatch

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ pdmwatch completion zsh > "${fpath[1]}/_pdmwatch"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ pdmwatch completion fish | source

  # To load completions for each session, execute once:
  $ pdmwatch completion fish > ~/.config/fish/completions/pdmwatch.fish

PowerShell:
  PS> pdmwatch completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> pdmwatch completion powershell > pdmwatch.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
