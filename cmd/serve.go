package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/ga4mcp/internal/analytics"
	"github.com/teemow/ga4mcp/internal/config"
	"github.com/teemow/ga4mcp/internal/credentials"
	"github.com/teemow/ga4mcp/internal/google"
	"github.com/teemow/ga4mcp/internal/instrumentation"
	"github.com/teemow/ga4mcp/internal/logging"
	"github.com/teemow/ga4mcp/internal/report"
	"github.com/teemow/ga4mcp/internal/server"
	"github.com/teemow/ga4mcp/internal/service"
	"github.com/teemow/ga4mcp/internal/tools/ga4_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// serveOptions holds the serve flags. Flags that were set explicitly win
// over the environment.
type serveOptions struct {
	debugMode          bool
	transport          string
	httpAddr           string
	envFile            string
	googleClientID     string
	googleClientSecret string
	databaseURL        string
	credentialStore    string
	credentialSeedFile string
	strictOrderBy      bool
	metrics            MetricsConfig
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing the GA4 reporting
tools to AI agents.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events (/sse and /message)
  - streamable-http: Streamable HTTP transport (/mcp)

Configuration:
  Google OAuth client (required):
    --google-client-id and --google-client-secret flags
    OR GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars

  Credential store:
    --credential-store postgres (default) with --database-url or DATABASE_URL
    --credential-store memory with an optional --credential-seed-file

  A .env file in the working directory is loaded first when present.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolveConfig(cmd)
			if err != nil {
				return err
			}
			opts.resolveMetricsConfig(cmd)
			return runServe(cmd.Context(), opts, cfg)
		},
	}

	opts.addFlags(cmd)

	return cmd
}

// addFlags binds the serve flags to o.
func (o *serveOptions) addFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&o.debugMode, "debug", false, "Enable debug logging")
	fs.StringVar(&o.transport, "transport", server.TransportStdio, "Transport type: stdio, sse or streamable-http")
	fs.StringVar(&o.httpAddr, "http-addr", ":8000", "HTTP server address (for sse and streamable-http transports)")
	fs.StringVar(&o.envFile, "env-file", config.DefaultEnvFile, "Environment file to load before reading configuration")
	fs.StringVar(&o.googleClientID, "google-client-id", "", "Google OAuth Client ID used to refresh stored tokens. Can also use GOOGLE_CLIENT_ID env var.")
	fs.StringVar(&o.googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret used to refresh stored tokens. Can also use GOOGLE_CLIENT_SECRET env var.")
	fs.StringVar(&o.databaseURL, "database-url", "", "Postgres connection string of the credential store. Can also use DATABASE_URL env var.")
	fs.StringVar(&o.credentialStore, "credential-store", config.StorePostgres, "Credential store backend: postgres or memory. Can also use CREDENTIAL_STORE env var.")
	fs.StringVar(&o.credentialSeedFile, "credential-seed-file", "", "JSON file of connections loaded by the memory store. Can also use CREDENTIAL_SEED_FILE env var.")
	fs.BoolVar(&o.strictOrderBy, "strict-order-by", false, "Reject order_by clauses that name neither a metric nor a dimension instead of skipping them")

	// Metrics server flags
	fs.BoolVar(&o.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	fs.StringVar(&o.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")
}

// resolveConfig loads the env file, reads the environment and applies the
// explicitly set flags on top.
func (o *serveOptions) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadEnvFile(o.envFile); err != nil {
		return config.Config{}, err
	}
	cfg := config.FromEnv()

	flags := cmd.Flags()
	if flags.Changed("google-client-id") {
		cfg.GoogleClientID = o.googleClientID
	}
	if flags.Changed("google-client-secret") {
		cfg.GoogleClientSecret = o.googleClientSecret
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = o.databaseURL
	}
	if flags.Changed("credential-store") {
		cfg.CredentialStore = o.credentialStore
	}
	if flags.Changed("credential-seed-file") {
		cfg.CredentialSeedFile = o.credentialSeedFile
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveMetricsConfig applies METRICS_ENABLED and METRICS_ADDR when the
// corresponding flags were not set.
func (o *serveOptions) resolveMetricsConfig(cmd *cobra.Command) {
	if !cmd.Flags().Changed("metrics-enabled") {
		o.metrics.Enabled = config.Bool("METRICS_ENABLED", o.metrics.Enabled)
	}
	if !cmd.Flags().Changed("metrics-addr") {
		o.metrics.Addr = config.String("METRICS_ADDR", o.metrics.Addr)
	}
}

// newLogger writes text to stderr for stdio, where stdout carries the
// protocol, and JSON to stdout otherwise.
func newLogger(transport string, debug bool) *slog.Logger {
	if transport == server.TransportStdio {
		return logging.New(os.Stderr, logging.FormatText, debug)
	}
	return logging.New(os.Stdout, logging.FormatJSON, debug)
}

// openedStore is a credential store with its readiness checks and the
// function that releases it.
type openedStore struct {
	store  credentials.Store
	checks []server.Option
	close  func()
}

// openStore opens the configured credential store.
func openStore(ctx context.Context, cfg config.Config) (*openedStore, error) {
	switch cfg.CredentialStore {
	case config.StoreMemory:
		if cfg.CredentialSeedFile == "" {
			return &openedStore{store: credentials.NewMemoryStore(), close: func() {}}, nil
		}
		store, err := credentials.LoadMemoryStore(cfg.CredentialSeedFile)
		if err != nil {
			return nil, err
		}
		return &openedStore{store: store, close: func() {}}, nil

	case config.StorePostgres:
		store, err := credentials.OpenPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &openedStore{
			store:  store,
			checks: []server.Option{server.WithReadinessCheck("credential_store", store.Ping)},
			close:  store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported credential store %q", cfg.CredentialStore)
	}
}

// newServerContext wires the service around st. The store is owned by the
// returned context; on error it is closed before returning.
func newServerContext(ctx context.Context, st *openedStore, cfg config.Config, strictOrderBy bool, logger *slog.Logger, provider *instrumentation.Provider, audit instrumentation.AuditLoggingConfig) (*server.ServerContext, error) {
	svc, err := newService(st.store, cfg, strictOrderBy, logger, provider.Metrics())
	if err != nil {
		st.close()
		return nil, err
	}

	scOpts := append([]server.Option{}, st.checks...)
	scOpts = append(scOpts, server.WithCloser(func() error {
		st.close()
		return nil
	}))
	if provider.Enabled() {
		scOpts = append(scOpts,
			server.WithMetrics(provider.Metrics()),
			server.WithAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, audit)),
		)
	}
	// Registered last so it runs first: flush telemetry before the store closes.
	scOpts = append(scOpts, server.WithCloser(func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return provider.Shutdown(shutdownCtx)
	}))

	sc, err := server.NewServerContext(ctx, svc, scOpts...)
	if err != nil {
		st.close()
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	return sc, nil
}

// newService wires the credential store, token refresher and GA4 backend.
func newService(store credentials.Store, cfg config.Config, strictOrderBy bool, logger *slog.Logger, metrics *instrumentation.Metrics) (*service.Service, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	refresher, err := google.NewRefresher(google.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		TokenURL:     cfg.TokenURL,
		HTTPClient:   httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token refresher: %w", err)
	}

	return service.New(service.Options{
		Resolver:  credentials.NewResolver(store),
		Refresher: refresher,
		Backends: analytics.NewFactory(analytics.FactoryConfig{
			Endpoint:   cfg.AnalyticsEndpoint,
			HTTPClient: httpClient,
		}),
		Builder: report.NewBuilder(report.WithStrictOrderBy(strictOrderBy)),
		Logger:  logger,
		Metrics: metrics,
	})
}

// newMCPServer creates the MCP server with all tools registered.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("ga4mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)
	if err := ga4_tools.RegisterGA4Tools(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register GA4 tools: %w", err)
	}
	return mcpSrv, nil
}

func runServe(parent context.Context, opts *serveOptions, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(opts.transport, opts.debugMode)
	slog.SetDefault(logger)

	switch opts.transport {
	case server.TransportStdio, server.TransportSSE, server.TransportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", opts.transport)
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	serverContext, err := newServerContext(ctx, st, cfg, opts.strictOrderBy, logger, provider, instrConfig.AuditLogging)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return err
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("Error during server context shutdown", logging.Err(err))
		}
	}()

	mcpSrv, err := newMCPServer(serverContext)
	if err != nil {
		return err
	}

	logger.Info("Starting GA4 MCP server",
		slog.String("transport", opts.transport),
		slog.String("credential_store", cfg.CredentialStore),
		slog.String("version", version),
	)

	if opts.transport == server.TransportStdio {
		return runStdioServer(mcpSrv)
	}

	// Start metrics server if enabled and not in stdio mode
	if opts.metrics.Enabled && provider.Enabled() && provider.PrometheusHandler() != nil {
		metricsServer, err := startMetricsServer(provider, opts.metrics.Addr, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("Error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	return runHTTPServer(ctx, mcpSrv, serverContext, opts.transport, opts.httpAddr, logger)
}

func startMetricsServer(provider *instrumentation.Provider, addr string, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	// Wait for metrics server to be ready or fail
	select {
	case <-metricsReady:
		logger.Info("Metrics server started", slog.String("addr", metricsServer.Addr()))
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, transport, addr string, logger *slog.Logger) error {
	httpServer, err := server.NewHTTPServer(mcpSrv, transport, sc)
	if err != nil {
		return err
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(addr); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		logger.Info("HTTP server stopped normally")
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
