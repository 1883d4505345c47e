package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aaronsb/google-workspace-mcp/internal/instrumentation"
	"github.com/aaronsb/google-workspace-mcp/internal/logging"
)

// SafetyMargin is subtracted from the literal expiry so a token that
// would expire during an in-flight call is refreshed up front.
const SafetyMargin = 30 * time.Second

// TokenManager returns tokens guaranteed valid for immediate use,
// transparently refreshing expired ones and persisting the result.
type TokenManager struct {
	store   *Store
	client  *Client
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	// now is swappable for tests.
	now func() time.Time

	// Per-account locks serialize concurrent validates for the same
	// email so only one refresh runs at a time. Accounts are
	// independent; there is no cross-account ordering.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTokenManager creates a TokenManager over the given store and
// OAuth client.
func NewTokenManager(store *Store, client *Client) *TokenManager {
	return &TokenManager{
		store:  store,
		client: client,
		logger: slog.Default(),
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// SetLogger sets a custom logger for the token manager.
func (m *TokenManager) SetLogger(logger *slog.Logger) {
	m.logger = logger
}

// SetMetrics enables metric recording for validations and refreshes.
func (m *TokenManager) SetMetrics(metrics *instrumentation.Metrics) {
	m.metrics = metrics
}

// accountLock returns the mutex for an email, creating it on first use.
func (m *TokenManager) accountLock(email string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[email]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[email] = lock
	}
	return lock
}

// ValidateToken loads the account's record and returns a token
// guaranteed valid for immediate use, refreshing and re-persisting
// when the stored one is expired or about to expire. A refresh
// rejected by the provider purges the record so the caller knows
// re-authentication, not a retry, is required; a transient failure
// (network, provider 5xx) keeps the record so a later validate can
// try again with the same refresh token. The returned error is
// non-nil only for store I/O failures; every authentication outcome
// is expressed in the result.
func (m *TokenManager) ValidateToken(ctx context.Context, email string) (*ValidationResult, error) {
	lock := m.accountLock(email)
	lock.Lock()
	defer lock.Unlock()

	logger := logging.WithAccount(m.logger, logging.AnonymizeEmail(email))

	rec, err := m.store.Load(email)
	if errors.Is(err, ErrNotFound) {
		m.recordValidation(ctx, string(ValidationNoToken))
		return &ValidationResult{
			Valid:  false,
			Status: ValidationNoToken,
			Reason: "No token found",
		}, nil
	}
	if err != nil {
		return nil, err
	}

	if !rec.ExpiredAt(m.now(), SafetyMargin) {
		m.recordValidation(ctx, string(ValidationValid))
		return &ValidationResult{Valid: true, Status: ValidationValid, Token: rec}, nil
	}

	logger.Debug("access token expired, refreshing", "expiry", rec.Expiry())

	start := m.now()
	tok, err := m.client.Refresh(ctx, rec.RefreshToken)
	if err != nil {
		m.recordRefresh(ctx, instrumentation.StatusError, m.now().Sub(start))

		// A record without a refresh token can never recover, so only a
		// transient failure of an actual refresh keeps the record.
		if rec.RefreshToken != "" && !IsPermanentRefreshError(err) {
			// The refresh token may still be good; keep the record and
			// let a later validate retry.
			logger.Warn("token refresh failed transiently, record kept", logging.Err(err))
			return &ValidationResult{
				Valid:  false,
				Status: ValidationRefreshFailed,
				Reason: err.Error(),
			}, nil
		}

		// The refresh token is revoked or invalid; purge the record so
		// the account reads as never-authenticated. A delete failure is
		// a store I/O error and outranks the refresh failure.
		if delErr := m.store.Delete(email); delErr != nil {
			return nil, delErr
		}
		logger.Warn("token refresh rejected, record purged", logging.Err(err))
		return &ValidationResult{
			Valid:  false,
			Status: ValidationRefreshFailed,
			Reason: err.Error(),
		}, nil
	}

	newRec := NewTokenRecord(email, tok)
	// Google only rotates the refresh token sometimes; keep the
	// previous one when no replacement was issued.
	if newRec.RefreshToken == "" {
		newRec.RefreshToken = rec.RefreshToken
	}
	if newRec.Scope == "" {
		newRec.Scope = rec.Scope
	}

	if err := m.store.Save(newRec); err != nil {
		return nil, err
	}

	m.recordRefresh(ctx, instrumentation.StatusSuccess, m.now().Sub(start))
	logger.Info("access token refreshed", "expiry", newRec.Expiry())
	return &ValidationResult{Valid: true, Status: ValidationRefreshed, Token: newRec}, nil
}

// SaveToken persists a record, typically right after an
// authorization-code exchange.
func (m *TokenManager) SaveToken(rec *TokenRecord) error {
	lock := m.accountLock(rec.Email)
	lock.Lock()
	defer lock.Unlock()
	return m.store.Save(rec)
}

// LoadToken is a raw passthrough read with no freshness check, for
// inspection and listing. Use ValidateToken before making API calls.
func (m *TokenManager) LoadToken(email string) (*TokenRecord, error) {
	return m.store.Load(email)
}

// DeleteToken removes the record for an account. Idempotent.
func (m *TokenManager) DeleteToken(email string) error {
	lock := m.accountLock(email)
	lock.Lock()
	defer lock.Unlock()
	return m.store.Delete(email)
}

func (m *TokenManager) recordValidation(ctx context.Context, status string) {
	if m.metrics != nil {
		m.metrics.RecordTokenValidation(ctx, status)
	}
}

func (m *TokenManager) recordRefresh(ctx context.Context, status string, duration time.Duration) {
	if m.metrics != nil {
		m.metrics.RecordTokenRefresh(ctx, status, duration)
	}
}
