package auth

import (
	"testing"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvClientID, "env-client-id")
	t.Setenv(EnvClientSecret, "env-client-secret")
	t.Setenv(EnvRedirectURI, "http://localhost:8080/callback")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() error = %v", err)
	}
	if cfg.ClientID != "env-client-id" {
		t.Errorf("ClientID = %q, want env-client-id", cfg.ClientID)
	}
	if cfg.RedirectURL != "http://localhost:8080/callback" {
		t.Errorf("RedirectURL = %q, want the configured callback", cfg.RedirectURL)
	}
}

func TestConfigFromEnvMissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
	}{
		{"missing both", "", ""},
		{"missing secret", "id", ""},
		{"missing id", "", "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvClientID, tt.id)
			t.Setenv(EnvClientSecret, tt.secret)
			t.Setenv(EnvRedirectURI, "")

			if _, err := ConfigFromEnv(); err == nil {
				t.Error("ConfigFromEnv() should fail without client credentials")
			}
		})
	}
}

func TestConfigRedirectFallsBackToOOB(t *testing.T) {
	t.Setenv(EnvClientID, "id")
	t.Setenv(EnvClientSecret, "secret")
	t.Setenv(EnvRedirectURI, "")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() error = %v", err)
	}
	if cfg.RedirectURL != OOBRedirectURL {
		t.Errorf("RedirectURL = %q, want the out-of-band fallback", cfg.RedirectURL)
	}
}

func TestOAuth2Config(t *testing.T) {
	cfg := testConfig()
	conf := cfg.OAuth2Config(DefaultOAuthScopes)

	if conf.ClientID != cfg.ClientID {
		t.Errorf("ClientID = %q, want %q", conf.ClientID, cfg.ClientID)
	}
	if len(conf.Scopes) != len(DefaultOAuthScopes) {
		t.Errorf("Scopes = %v, want the default scope set", conf.Scopes)
	}
	if conf.Endpoint.TokenURL == "" {
		t.Error("Endpoint must be Google's well-known endpoint")
	}
}

func TestErrorCodeMatching(t *testing.T) {
	err := NewError(CodeRefreshFailed, "refresh rejected", nil)

	if !IsCode(err, CodeRefreshFailed) {
		t.Error("IsCode() should match the error's own code")
	}
	if IsCode(err, CodeStoreIO) {
		t.Error("IsCode() must not match a different code")
	}
	if IsCode(nil, CodeRefreshFailed) {
		t.Error("IsCode(nil) must be false")
	}

	wrapped := NewError(CodeAuthRequired, "no valid credential", err)
	if !IsCode(wrapped, CodeAuthRequired) {
		t.Error("IsCode() should match the outermost code")
	}
}
