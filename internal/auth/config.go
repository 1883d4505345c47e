package auth

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Environment variables supplying the OAuth client configuration.
const (
	EnvClientID     = "GOOGLE_CLIENT_ID"
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"
	EnvRedirectURI  = "GOOGLE_REDIRECT_URI"
)

// OOBRedirectURL is the out-of-band redirect used when no redirect URI
// is configured. The provider displays the authorization code for the
// user to copy instead of redirecting to a callback.
const OOBRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// Config is the per-process OAuth client configuration. It is loaded
// once at startup and immutable for the process lifetime.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// ConfigFromEnv loads the OAuth client configuration from the
// environment. A missing client ID or secret is a startup-fatal
// condition, reported here rather than deferred to first use.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		RedirectURL:  os.Getenv(EnvRedirectURI),
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration eagerly and fills in the OOB
// redirect fallback.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("missing Google OAuth client ID: set %s", EnvClientID)
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("missing Google OAuth client secret: set %s", EnvClientSecret)
	}
	if c.RedirectURL == "" {
		c.RedirectURL = OOBRedirectURL
	}
	return nil
}

// OAuth2Config returns the oauth2 configuration for Google's well-known
// endpoints with the given scopes.
func (c *Config) OAuth2Config(scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       scopes,
	}
}
