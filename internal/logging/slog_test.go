package logging

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestAnonymizeEmail(t *testing.T) {
	hash := AnonymizeEmail("alice@example.com")

	if !strings.HasPrefix(hash, "user:") {
		t.Errorf("AnonymizeEmail() = %q, want user: prefix", hash)
	}
	if strings.Contains(hash, "alice") || strings.Contains(hash, "example.com") {
		t.Errorf("AnonymizeEmail() = %q, must not contain the raw address", hash)
	}

	// Same input, same hash: entries stay correlatable.
	if again := AnonymizeEmail("alice@example.com"); again != hash {
		t.Errorf("AnonymizeEmail() not deterministic: %q vs %q", hash, again)
	}
	if other := AnonymizeEmail("bob@example.com"); other == hash {
		t.Error("AnonymizeEmail() must differ between addresses")
	}
}

func TestAnonymizeEmailEmpty(t *testing.T) {
	if got := AnonymizeEmail(""); got != "" {
		t.Errorf("AnonymizeEmail(\"\") = %q, want empty", got)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"empty", "", "<empty>"},
		{"short", "abc", "[token:3 chars]"},
		{"realistic", "ya29.a0AfH6SMBxxxxxxxx", "[token:22 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeToken(tt.token)
			if got != tt.want {
				t.Errorf("SanitizeToken() = %q, want %q", got, tt.want)
			}
			if tt.token != "" && strings.Contains(got, tt.token) {
				t.Errorf("SanitizeToken() = %q leaks the token", got)
			}
		})
	}
}

func TestErrNilIsSafe(t *testing.T) {
	attr := Err(nil)
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty group", attr.Key)
	}
}

func TestSetupDebugLevel(t *testing.T) {
	logger := Setup(true)
	if logger == nil {
		t.Fatal("Setup() returned nil")
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Setup(true) should enable debug level")
	}

	logger = Setup(false)
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Setup(false) should not enable debug level")
	}
}
