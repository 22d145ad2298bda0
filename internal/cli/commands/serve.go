package commands

import (
	"context"
	"os"
	"os/exec"
	"runtime"

	intconfig "github.com/leapstack-labs/pdmwatch/internal/config"
	"github.com/leapstack-labs/pdmwatch/internal/ui"
	"github.com/spf13/cobra"
)

// devSessionSecret signs session cookies when no secret is configured.
const devSessionSecret = "pdmwatch-dev-secret-change-in-production" //nolint:gosec

// ServeOptions holds options for the serve command. --host, --port and
// --watch are read through the config so they share precedence with env vars.
type ServeOptions struct {
	NoBrowser bool
	Dev       bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the dashboard and JSON API",
		Long: `Start a web server providing the maintenance dashboard and the JSON API.

The server provides:
- A dashboard with the machine table and status summary
- Machine pages with the maintenance schedule
- The JSON API under /api/machines and /api/maintenance
- Live updates when the database changes`,
		Example: `  # Serve on the default port
  pdmwatch serve

  # Serve on all interfaces, port 9000
  pdmwatch serve --host 0.0.0.0 --port 9000

  # Start without auto-opening the browser
  pdmwatch serve --no-browser`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().String("host", "", "Interface to bind (default: all)")
	cmd.Flags().Int("port", intconfig.DefaultServerPort, "Port to serve on")
	cmd.Flags().Bool("watch", true, "Push dashboard updates when the database changes")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Enable live reload")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger

	var watchPath string
	if cfg.Server.Watch && cfg.Database.Driver == intconfig.DriverSQLite && !cfg.Database.IsMemory() {
		watchPath = cfg.Database.Path
	}

	secret := sessionSecret(cfg.Server.SessionSecret)
	if secret == devSessionSecret {
		logger.Warn("using the development session secret; set server.session_secret or PDMWATCH_SESSION_SECRET")
	}

	server := ui.NewServer(ui.Config{
		Store:           cmdCtx.Store,
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		SessionSecret:   secret,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		WatchPath:       watchPath,
		Schedule:        scheduleOptions(cfg),
		Dev:             opts.Dev,
		Logger:          logger,
	})

	if !opts.NoBrowser {
		go openBrowser(server.URL())
	}

	r := cmdCtx.Renderer
	r.Printf("Starting server on %s\n", server.URL())
	r.Muted("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// sessionSecret picks the configured secret, then PDMWATCH_SESSION_SECRET,
// then the development default.
func sessionSecret(configured string) string {
	if configured != "" {
		return configured
	}
	if secret := os.Getenv("PDMWATCH_SESSION_SECRET"); secret != "" {
		return secret
	}
	return devSessionSecret
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
