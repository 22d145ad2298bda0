// Package ui serves the pdmwatch dashboard and its JSON API.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/pdmwatch/internal/ui/features/common"
	"github.com/leapstack-labs/pdmwatch/internal/ui/notifier"
	"github.com/leapstack-labs/pdmwatch/internal/ui/router"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// DefaultShutdownTimeout bounds graceful shutdown when Config leaves it unset.
const DefaultShutdownTimeout = 5 * time.Second

// watchDebounce coalesces bursts of database file events.
const watchDebounce = 100 * time.Millisecond

// Server is the main UI server.
type Server struct {
	store           core.Store
	sessionStore    *sessions.CookieStore
	host            string
	port            int
	watchPath       string
	allowedOrigins  []string
	shutdownTimeout time.Duration
	schedule        common.ScheduleOptions
	isDev           bool
	logger          *slog.Logger
	notifier        *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Store           core.Store
	Host            string
	Port            int
	SessionSecret   string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	// WatchPath is a database file whose changes are pushed to open
	// dashboards. Empty disables watching.
	WatchPath string
	Schedule  common.ScheduleOptions
	Dev       bool
	Logger    *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	return &Server{
		store:           cfg.Store,
		sessionStore:    sessionStore,
		host:            cfg.Host,
		port:            cfg.Port,
		watchPath:       cfg.WatchPath,
		allowedOrigins:  cfg.AllowedOrigins,
		shutdownTimeout: timeout,
		schedule:        cfg.Schedule,
		isDev:           cfg.Dev,
		logger:          logger,
		notifier:        notifier.New(),
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// URL returns the address a browser should open.
func (s *Server) URL() string {
	host := s.host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.port))
}

// Handler builds the router with middleware and every feature mounted.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
		cors.Handler(cors.Options{
			AllowedOrigins:   s.allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	if err := router.SetupRoutes(r, s.store, router.Options{
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		Logger:       s.logger,
		Schedule:     s.schedule,
		IsDev:        s.isDev,
	}); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
	}
	return s.serve(ctx, ln, handler)
}

func (s *Server) serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	s.logger.Info("starting UI server", "addr", s.URL())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watchPath != "" {
		eg.Go(func() error {
			return s.watchDatabase(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchDatabase broadcasts when another process writes the database file.
// The directory is watched because SQLite replaces and appends side files.
func (s *Server) watchDatabase(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(s.watchPath)
	if err := watcher.Add(dir); err != nil {
		s.logger.Error("failed to watch database directory", "dir", dir, "error", err)
		// Keep serving without live updates from other processes.
		<-ctx.Done()
		return nil
	}

	base := filepath.Base(s.watchPath)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !isDatabaseFile(filepath.Base(event.Name), base) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				s.logger.Debug("database changed", "file", event.Name)
				s.notifier.Broadcast()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// isDatabaseFile reports whether name is the database or one of its
// -wal/-journal side files.
func isDatabaseFile(name, base string) bool {
	return name == base || strings.HasPrefix(name, base+"-")
}
