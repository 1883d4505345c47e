package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/aaronsb/google-workspace-mcp/internal/logging"
)

// DefaultUserinfoURL is Google's userinfo endpoint, used to resolve
// which identity a token actually belongs to.
const DefaultUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Client wraps the OAuth2 authorization-code and refresh-token
// exchanges against Google's token endpoint. It holds no per-account
// state; the same instance serves every account.
type Client struct {
	conf        *oauth2.Config
	httpClient  *http.Client
	logger      *slog.Logger
	userinfoURL string
}

// NewClient creates a Client from the validated process configuration,
// requesting the default scope set.
func NewClient(cfg *Config) *Client {
	return &Client{
		conf:        cfg.OAuth2Config(DefaultOAuthScopes),
		logger:      slog.Default(),
		userinfoURL: DefaultUserinfoURL,
	}
}

// NewClientWithEndpoint creates a Client pointed at a custom provider
// endpoint. Used by tests to exchange against an httptest server.
func NewClientWithEndpoint(cfg *Config, endpoint oauth2.Endpoint) *Client {
	conf := cfg.OAuth2Config(DefaultOAuthScopes)
	conf.Endpoint = endpoint
	return &Client{conf: conf, logger: slog.Default(), userinfoURL: DefaultUserinfoURL}
}

// SetLogger sets a custom logger for the client.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// AuthURL builds the provider authorization URL. Offline access plus
// forced consent ensures Google issues a refresh token even if the
// user consented before. No network call is made.
func (c *Client) AuthURL() string {
	return c.conf.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode redeems an authorization code for an initial token. A
// response without a refresh token is a hard failure: the account
// would become unrecoverable on first expiry.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = c.withHTTPClient(ctx)

	tok, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, NewError(CodeAuthCodeInvalid, "authorization code exchange rejected", err)
	}
	if tok.RefreshToken == "" {
		return nil, NewError(CodeAuthCodeInvalid, "provider issued no refresh token; revoke access and re-authorize", nil)
	}

	c.logger.Debug("exchanged authorization code",
		"expiry", tok.Expiry,
		"access_token", logging.SanitizeToken(tok.AccessToken))
	return tok, nil
}

// Refresh redeems a refresh token for a new access token. Failures are
// reported as CodeRefreshFailed and must not be retried automatically:
// a rejected refresh token means the account needs re-authentication
// from scratch.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, NewError(CodeRefreshFailed, "no refresh token available", nil)
	}

	ctx = c.withHTTPClient(ctx)

	ts := c.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := ts.Token()
	if err != nil {
		return nil, NewError(CodeRefreshFailed, "token refresh rejected by provider", err)
	}

	c.logger.Debug("refreshed access token",
		"expiry", tok.Expiry,
		"rotated", tok.RefreshToken != "" && tok.RefreshToken != refreshToken)
	return tok, nil
}

// Userinfo returns the email of the Google identity the token belongs
// to by calling the provider's userinfo endpoint.
func (c *Client) Userinfo(ctx context.Context, tok *oauth2.Token) (string, error) {
	client := oauth2.NewClient(c.withHTTPClient(ctx), oauth2.StaticTokenSource(tok))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfoURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build userinfo request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Email == "" {
		return "", fmt.Errorf("userinfo response carries no email")
	}
	return info.Email, nil
}

// withHTTPClient threads a custom HTTP client into the oauth2 exchange
// when one is configured.
func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	if c.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	return ctx
}

// IsPermanentRefreshError reports whether a refresh failure indicates a
// revoked or invalid grant rather than a transient transport problem.
func IsPermanentRefreshError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"invalid_grant",
		"invalid_client",
		"unauthorized_client",
		"token has been expired or revoked",
		"revoked",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
