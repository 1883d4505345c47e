package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aaronsb/google-workspace-mcp/internal/auth"
	"github.com/aaronsb/google-workspace-mcp/internal/instrumentation"
	"github.com/aaronsb/google-workspace-mcp/internal/logging"
	"github.com/aaronsb/google-workspace-mcp/internal/server"
	"github.com/aaronsb/google-workspace-mcp/internal/tools/auth_tools"
	"github.com/aaronsb/google-workspace-mcp/internal/tools/calendar_tools"
	"github.com/aaronsb/google-workspace-mcp/internal/tools/drive_tools"
	"github.com/aaronsb/google-workspace-mcp/internal/tools/gmail_tools"
)

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		transport      string
		httpAddr       string
		credentialsDir string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Gmail,
Calendar and Drive tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

OAuth Configuration:
  GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars are required.
  GOOGLE_REDIRECT_URI is optional and defaults to the out-of-band
  redirect, which shows the authorization code in the browser for
  copy/paste.

Credential Storage:
  Tokens are stored per account under the credentials directory
  (--credentials-dir, GOOGLE_WORKSPACE_CREDENTIALS_DIR, or the user
  cache directory by default).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(transport, httpAddr, credentialsDir, debugMode, metricsEnabled, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type (stdio or streamable-http)")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "Address for the streamable-http transport")
	cmd.Flags().StringVar(&credentialsDir, "credentials-dir", "", "Directory for stored account credentials")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the Prometheus metrics server (non-stdio transports only)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Address for the metrics server")

	return cmd
}

func runServe(transport, httpAddr, credentialsDir string, debugMode, metricsEnabled bool, metricsAddr string) error {
	logger := logging.Setup(debugMode)

	// Set up signal handling for graceful shutdown
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize instrumentation. The metrics endpoint only makes sense
	// for long-running network transports; stdio servers are typically
	// spawned per session by the MCP client.
	instrConfig := instrumentation.Config{
		Enabled:        metricsEnabled && transport != "stdio",
		ServiceName:    "google-workspace-mcp",
		ServiceVersion: version,
	}
	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize instrumentation: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	accounts, err := buildAccountManager(credentialsDir, logger)
	if err != nil {
		return err
	}

	serverContext := server.NewServerContext(shutdownCtx, accounts)
	defer serverContext.Shutdown()

	var metricsServer *server.MetricsServer
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		accounts.Tokens().SetMetrics(provider.Metrics())

		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	mcpSrv := mcpserver.NewMCPServer("google-workspace-mcp", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, httpAddr, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// buildAccountManager wires the credential store, OAuth client and
// account manager from environment configuration.
func buildAccountManager(credentialsDir string, logger *slog.Logger) (*auth.Manager, error) {
	cfg, err := auth.ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	if credentialsDir == "" {
		credentialsDir, err = auth.DefaultCredentialsDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine credentials directory: %w", err)
		}
	}
	store, err := auth.NewStore(credentialsDir)
	if err != nil {
		return nil, err
	}

	client := auth.NewClient(cfg)
	accounts := auth.NewManager(store, client)
	accounts.SetLogger(logger)
	return accounts, nil
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

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, addr string, logger *slog.Logger) error {
	httpSrv := mcpserver.NewStreamableHTTPServer(mcpSrv)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		logger.Info("starting streamable-http server", "addr", addr)
		if err := httpSrv.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}

// registerAllTools registers all MCP tools
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Auth",
			register: func() error {
				return auth_tools.RegisterAuthTools(mcpSrv, ctx)
			},
		},
		{
			name: "Gmail",
			register: func() error {
				return gmail_tools.RegisterGmailTools(mcpSrv, ctx)
			},
		},
		{
			name: "Calendar",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, ctx)
			},
		},
		{
			name: "Drive",
			register: func() error {
				return drive_tools.RegisterDriveTools(mcpSrv, ctx)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.name, err)
		}
	}

	return nil
}
