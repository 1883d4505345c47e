package server

import (
	"context"
	"sync"

	"github.com/aaronsb/google-workspace-mcp/internal/auth"
	"github.com/aaronsb/google-workspace-mcp/internal/calendar"
	"github.com/aaronsb/google-workspace-mcp/internal/drive"
	"github.com/aaronsb/google-workspace-mcp/internal/gmail"
	"github.com/aaronsb/google-workspace-mcp/internal/instrumentation"
)

// ServerContext holds the shared state for the MCP server: the account
// manager plus lazily created, per-account Google service clients.
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	accounts *auth.Manager
	metrics  *instrumentation.Metrics

	mu              sync.Mutex
	gmailClients    map[string]*gmail.Client
	calendarClients map[string]*calendar.Client
	driveClients    map[string]*drive.Client
	shutdown        bool
}

// NewServerContext creates a server context around an account manager.
func NewServerContext(ctx context.Context, accounts *auth.Manager) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		accounts:        accounts,
		gmailClients:    make(map[string]*gmail.Client),
		calendarClients: make(map[string]*calendar.Client),
		driveClients:    make(map[string]*drive.Client),
	}
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Accounts returns the account manager.
func (sc *ServerContext) Accounts() *auth.Manager {
	return sc.accounts
}

// SetMetrics attaches a metrics recorder.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.metrics = metrics
}

// Metrics returns the metrics recorder, or nil when instrumentation is
// not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// GmailClientForAccount returns the Gmail client for an account,
// creating and caching it on first use. Creation fails with an
// AUTH_REQUIRED error when the account has no valid credential.
func (sc *ServerContext) GmailClientForAccount(ctx context.Context, account string) (*gmail.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.gmailClients[account]; ok {
		return client, nil
	}
	client, err := gmail.NewClient(ctx, account, sc.accounts)
	if err != nil {
		return nil, err
	}
	sc.gmailClients[account] = client
	return client, nil
}

// CalendarClientForAccount returns the Calendar client for an account,
// creating and caching it on first use.
func (sc *ServerContext) CalendarClientForAccount(ctx context.Context, account string) (*calendar.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.calendarClients[account]; ok {
		return client, nil
	}
	client, err := calendar.NewClient(ctx, account, sc.accounts)
	if err != nil {
		return nil, err
	}
	sc.calendarClients[account] = client
	return client, nil
}

// DriveClientForAccount returns the Drive client for an account,
// creating and caching it on first use.
func (sc *ServerContext) DriveClientForAccount(ctx context.Context, account string) (*drive.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.driveClients[account]; ok {
		return client, nil
	}
	client, err := drive.NewClient(ctx, account, sc.accounts)
	if err != nil {
		return nil, err
	}
	sc.driveClients[account] = client
	return client, nil
}

// DropClientsForAccount discards cached service clients for an
// account, e.g. after the account is removed.
func (sc *ServerContext) DropClientsForAccount(account string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.gmailClients, account)
	delete(sc.calendarClients, account)
	delete(sc.driveClients, account)
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.shutdown
}

// Shutdown cancels the server context. Safe to call more than once.
func (sc *ServerContext) Shutdown() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return
	}
	sc.shutdown = true
	sc.cancel()
}
