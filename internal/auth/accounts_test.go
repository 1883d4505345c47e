package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, handler http.HandlerFunc) (*Manager, *Store) {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	var client *Client
	if handler != nil {
		_, client = newTokenServer(t, handler)
	} else {
		client = NewClient(testConfig())
	}
	return NewManager(store, client), store
}

func TestListAccountsEmpty(t *testing.T) {
	m, _ := newTestManager(t, nil)

	accounts, err := m.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestListAccountsStatuses(t *testing.T) {
	m, store := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("refresh_token") == "1//good" {
			writeTokenResponse(w, "ya29.fresh", "")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	})

	valid := testRecord("a@example.com")
	require.NoError(t, store.Save(valid))

	refreshable := testRecord("b@example.com")
	refreshable.RefreshToken = "1//good"
	refreshable.ExpiryDate = time.Now().Add(-time.Minute).UnixMilli()
	require.NoError(t, store.Save(refreshable))

	revoked := testRecord("c@example.com")
	revoked.RefreshToken = "1//revoked"
	revoked.ExpiryDate = time.Now().Add(-time.Minute).UnixMilli()
	require.NoError(t, store.Save(revoked))

	accounts, err := m.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	byEmail := make(map[string]AccountInfo, len(accounts))
	for _, info := range accounts {
		byEmail[info.Email] = info
	}
	assert.Equal(t, StatusValid, byEmail["a@example.com"].Status)
	assert.Equal(t, StatusRefreshed, byEmail["b@example.com"].Status)
	assert.Equal(t, StatusError, byEmail["c@example.com"].Status)
	assert.NotEmpty(t, byEmail["c@example.com"].Reason)
}

func TestListAccountsPurgesRevokedAccounts(t *testing.T) {
	m, store := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	})

	revoked := testRecord("c@example.com")
	revoked.ExpiryDate = time.Now().Add(-time.Minute).UnixMilli()
	require.NoError(t, store.Save(revoked))

	_, err := m.ListAccounts(context.Background())
	require.NoError(t, err)

	// The purge happened during listing; the account is gone now.
	accounts, err := m.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestAuthenticateAccountReturnsURL(t *testing.T) {
	m, _ := newTestManager(t, nil)

	url, err := m.AuthenticateAccount(context.Background(), "alice@example.com", "")
	require.NoError(t, err)
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "client_id=client-id")
}

func TestAuthenticateAccountExchangesAndPersists(t *testing.T) {
	m, store := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/userinfo" {
			writeUserinfoResponse(w, "alice@example.com")
			return
		}
		writeTokenResponse(w, "ya29.initial", "1//refresh")
	})

	url, err := m.AuthenticateAccount(context.Background(), "alice@example.com", "auth-code")
	require.NoError(t, err)
	assert.Empty(t, url)

	rec, err := store.Load("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ya29.initial", rec.AccessToken)
	assert.Equal(t, "1//refresh", rec.RefreshToken)
	assert.Equal(t, "email", rec.Scope)
}

func TestAuthenticateAccountRejectsMismatchedIdentity(t *testing.T) {
	// Consent granted by a different Google account than the claimed
	// one must not persist a credential under the claimed email.
	m, store := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/userinfo" {
			writeUserinfoResponse(w, "mallory@example.com")
			return
		}
		writeTokenResponse(w, "ya29.initial", "1//refresh")
	})

	_, err := m.AuthenticateAccount(context.Background(), "alice@example.com", "auth-code")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeAuthCodeInvalid), "error = %v, want AUTH_CODE_INVALID", err)
	assert.Contains(t, err.Error(), "mallory@example.com")

	_, err = store.Load("alice@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthenticateAccountAcceptsCaseInsensitiveIdentity(t *testing.T) {
	m, store := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/userinfo" {
			writeUserinfoResponse(w, "Alice@Example.com")
			return
		}
		writeTokenResponse(w, "ya29.initial", "1//refresh")
	})

	_, err := m.AuthenticateAccount(context.Background(), "alice@example.com", "auth-code")
	require.NoError(t, err)

	_, err = store.Load("alice@example.com")
	require.NoError(t, err)
}

func TestAuthenticateAccountRejectsInvalidEmail(t *testing.T) {
	m, _ := newTestManager(t, nil)

	for _, email := range []string{"", "not-an-email"} {
		_, err := m.AuthenticateAccount(context.Background(), email, "")
		assert.Error(t, err, "email %q must be rejected", email)
	}
}

func TestRemoveAccount(t *testing.T) {
	m, store := newTestManager(t, nil)

	require.NoError(t, store.Save(testRecord("alice@example.com")))
	require.NoError(t, m.RemoveAccount("alice@example.com"))

	accounts, err := m.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)

	// Removing an unknown account succeeds silently.
	require.NoError(t, m.RemoveAccount("alice@example.com"))
}

func TestGetValidToken(t *testing.T) {
	m, store := newTestManager(t, nil)
	require.NoError(t, store.Save(testRecord("alice@example.com")))

	rec, err := m.GetValidToken(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ya29.access", rec.AccessToken)
}

func TestGetValidTokenAuthRequired(t *testing.T) {
	m, _ := newTestManager(t, nil)

	_, err := m.GetValidToken(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeAuthRequired), "error = %v, want AUTH_REQUIRED", err)
	assert.True(t, strings.Contains(err.Error(), "nobody@example.com"))
}

func TestAuthorizedClientRequiresValidToken(t *testing.T) {
	m, _ := newTestManager(t, nil)

	_, err := m.AuthorizedClient(context.Background(), "nobody@example.com")
	assert.True(t, IsCode(err, CodeAuthRequired), "error = %v, want AUTH_REQUIRED", err)
}

func TestAuthorizedClientCarriesCredential(t *testing.T) {
	m, store := newTestManager(t, nil)
	require.NoError(t, store.Save(testRecord("alice@example.com")))

	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer api.Close()

	client, err := m.AuthorizedClient(context.Background(), "alice@example.com")
	require.NoError(t, err)

	resp, err := client.Get(api.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "Bearer ya29.access", gotAuth)
}
