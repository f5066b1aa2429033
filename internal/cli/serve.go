package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/recstore/internal/cache"
	"github.com/roach88/recstore/internal/config"
	"github.com/roach88/recstore/internal/httpapi"
	"github.com/roach88/recstore/internal/metrics"
	"github.com/roach88/recstore/internal/record"
	"github.com/roach88/recstore/internal/service"
	"github.com/roach88/recstore/internal/store"
)

// readHeaderTimeout bounds how long a client may take to send headers.
const readHeaderTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Config      string
	Listen      string
	Backend     string
	SQLiteDSN   string
	LookupDelay time.Duration
	NoCache     bool

	// Ready receives the bound address once the listener is open (for testing).
	Ready chan<- string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return newServeCommand(&ServeOptions{RootOptions: rootOpts})
}

func newServeCommand(opts *ServeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the recstore HTTP server.

Settings come from the optional --config YAML file; flags given on the
command line override it. Stops gracefully on SIGINT or SIGTERM.

Routes:
  POST /movie        store a record
  GET  /movie/{id}   fetch a record
  GET  /health       liveness
  GET  /metrics      Prometheus metrics

Examples:
  recstore serve
  recstore serve --listen 127.0.0.1:8080 --backend sqlite
  recstore serve --config recstore.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "path to YAML config file")
	cmd.Flags().StringVar(&opts.Listen, "listen", config.DefaultListen, "listen address")
	cmd.Flags().StringVar(&opts.Backend, "backend", store.BackendMemory, "record store backend (memory|sqlite)")
	cmd.Flags().StringVar(&opts.SQLiteDSN, "sqlite-dsn", "", "SQLite DSN, in-memory only (private database if empty)")
	cmd.Flags().DurationVar(&opts.LookupDelay, "lookup-delay", 0, "artificial latency added to store reads")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "disable the lookup cache")

	return cmd
}

// loadConfig reads the config file, if any, and applies explicitly set flags.
func (o *ServeOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.Config != "" {
		loaded, err := config.Load(o.Config)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Listen = o.Listen
	}
	if flags.Changed("backend") {
		cfg.Backend = o.Backend
	}
	if flags.Changed("sqlite-dsn") {
		cfg.SQLiteDSN = o.SQLiteDSN
	}
	if flags.Changed("lookup-delay") {
		cfg.LookupDelay = o.LookupDelay
	}
	if o.NoCache {
		cfg.Cache.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logger := newLogger(cfg.Log, opts.Verbose, cmd.ErrOrStderr())

	svc, err := buildService(cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build service", err)
	}
	defer func() {
		if closeErr := svc.Close(); closeErr != nil {
			logger.Error("error closing store", "error", closeErr)
		}
	}()

	schema, err := record.NewSchema()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile record schema", err)
	}

	m := metrics.New()
	if cfg.Cache.Enabled {
		m.RegisterCache(svc.CacheStats)
	}

	api := httpapi.New(svc, schema, httpapi.Options{Metrics: m, Logger: logger})
	srv := &http.Server{
		Handler:           api.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	// Setup signal handling for graceful shutdown.
	// cmd.Context() lets tests stop the server.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	addr := ln.Addr().String()
	logger.Info("server listening",
		"addr", addr,
		"backend", cfg.Backend,
		"cache", cfg.Cache.Enabled,
		"lookup_delay", cfg.LookupDelay,
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
	if opts.Ready != nil {
		opts.Ready <- addr
	}

	select {
	case err := <-serveErr:
		return WrapExitError(ExitFailure, "server error", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "graceful shutdown failed", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return WrapExitError(ExitFailure, "server error", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// buildService opens the configured store and cache.
func buildService(cfg config.Config, logger *slog.Logger) (*service.Service, error) {
	st, err := store.Open(cfg.Backend, cfg.SQLiteDSN)
	if err != nil {
		return nil, err
	}
	st = store.NewDelayed(st, cfg.LookupDelay)

	var c cache.Cache = cache.NewDisabled()
	if cfg.Cache.Enabled {
		lru, err := cache.NewLRU(cfg.CacheOptions())
		if err != nil {
			st.Close()
			return nil, err
		}
		c = lru
	}

	return service.New(st, c, logger), nil
}
