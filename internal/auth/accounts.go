package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/aaronsb/google-workspace-mcp/internal/logging"
)

// Manager is the process-wide registry of authenticated accounts and
// the single entry point service wrappers use to obtain credentials.
// Construct one instance at startup and inject it; wrappers must never
// touch the credential store directly.
type Manager struct {
	tokens *TokenManager
	client *Client
	store  *Store
	logger *slog.Logger
}

// NewManager creates a Manager and its token manager over the given
// store and OAuth client.
func NewManager(store *Store, client *Client) *Manager {
	return &Manager{
		tokens: NewTokenManager(store, client),
		client: client,
		store:  store,
		logger: slog.Default(),
	}
}

// SetLogger sets a custom logger for the manager and its token manager.
func (m *Manager) SetLogger(logger *slog.Logger) {
	m.logger = logger
	m.tokens.SetLogger(logger)
}

// Tokens returns the underlying token manager.
func (m *Manager) Tokens() *TokenManager {
	return m.tokens
}

// ListAccounts enumerates the persisted accounts and reports each one's
// best-known status. Listing validates every account, so it may
// refresh and re-persist tokens (or purge ones whose refresh fails) as
// a side effect.
func (m *Manager) ListAccounts(ctx context.Context) ([]AccountInfo, error) {
	emails, err := m.store.List()
	if err != nil {
		return nil, err
	}

	accounts := make([]AccountInfo, 0, len(emails))
	for _, email := range emails {
		result, err := m.tokens.ValidateToken(ctx, email)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, AccountInfo{
			Email:  email,
			Status: accountStatus(result),
			Reason: result.Reason,
		})
	}
	return accounts, nil
}

// accountStatus maps a validation outcome onto the account state
// machine.
func accountStatus(result *ValidationResult) AccountStatus {
	switch result.Status {
	case ValidationValid:
		return StatusValid
	case ValidationRefreshed:
		return StatusRefreshed
	case ValidationNoToken:
		return StatusUnauthenticated
	default:
		return StatusError
	}
}

// AuthenticateAccount runs the authorization-code flow for an account.
// With an empty authCode it returns the authorization URL for the user
// to visit. With a code it exchanges and persists the resulting token,
// registering the account, and returns an empty string.
func (m *Manager) AuthenticateAccount(ctx context.Context, email, authCode string) (string, error) {
	if err := validateEmail(email); err != nil {
		return "", err
	}

	if authCode == "" {
		return m.client.AuthURL(), nil
	}

	tok, err := m.client.ExchangeCode(ctx, authCode)
	if err != nil {
		return "", err
	}

	// The code proves consent by some Google identity, not necessarily
	// the claimed one. Persisting under the wrong email would hand one
	// account's credential to another, so verify before saving.
	identity, err := m.client.Userinfo(ctx, tok)
	if err != nil {
		return "", NewError(CodeAuthCodeInvalid, "failed to verify the authorized identity", err)
	}
	if !strings.EqualFold(identity, email) {
		return "", NewError(CodeAuthCodeInvalid,
			fmt.Sprintf("authorization was granted by %s, not %s; re-run the flow signed in as %s", identity, email, email), nil)
	}

	rec := NewTokenRecord(email, tok)
	if err := m.tokens.SaveToken(rec); err != nil {
		return "", err
	}

	m.logger.Info("account authenticated",
		logging.UserHash(email),
		"expiry", rec.Expiry())
	return "", nil
}

// RemoveAccount deletes the account's token record. Removing an
// unknown account succeeds silently.
func (m *Manager) RemoveAccount(email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	return m.tokens.DeleteToken(email)
}

// GetValidToken returns a token guaranteed valid for immediate use, or
// a CodeAuthRequired error when none can be produced. Wrappers get the
// same error shape whether the account was never authenticated or its
// refresh failed.
func (m *Manager) GetValidToken(ctx context.Context, email string) (*TokenRecord, error) {
	result, err := m.tokens.ValidateToken(ctx, email)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, NewError(CodeAuthRequired,
			fmt.Sprintf("no valid credential for %s (%s): %s", email, result.Status, result.Reason), nil)
	}
	return result.Token, nil
}

// AuthorizedClient returns an HTTP client authorized with exactly one
// account's credentials. Each call builds a fresh client carrying its
// own credential snapshot, so there is no shared mutable handle to
// race on.
func (m *Manager) AuthorizedClient(ctx context.Context, email string) (*http.Client, error) {
	rec, err := m.GetValidToken(ctx, email)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(rec.OAuth2Token()))

	// Force HTTP/1.1; the Google API endpoints intermittently reset
	// HTTP/2 streams on large uploads.
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{ForceAttemptHTTP2: false}
	}

	return client, nil
}

// validateEmail rejects identifiers that cannot be account emails.
func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("account email cannot be empty")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid account email %q", email)
	}
	return nil
}
