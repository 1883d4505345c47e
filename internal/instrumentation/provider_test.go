package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNewProviderDisabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if provider.Enabled() {
		t.Error("Enabled() = true for a disabled provider")
	}
	if provider.Metrics() == nil {
		t.Fatal("Metrics() must never be nil, even disabled")
	}

	// A disabled provider's recorder must be a safe no-op.
	ctx := context.Background()
	provider.Metrics().RecordTokenValidation(ctx, "VALID")
	provider.Metrics().RecordTokenRefresh(ctx, StatusSuccess, time.Second)
	provider.Metrics().RecordGoogleAPIOperation(ctx, "gmail", "list_messages", StatusSuccess)
	provider.Metrics().RecordToolInvocation(ctx, "search_workspace_emails", StatusSuccess, time.Second)

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewProviderEnabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		Enabled:        true,
		ServiceName:    "test-service",
		ServiceVersion: "test",
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	}()

	if !provider.Enabled() {
		t.Error("Enabled() = false for an enabled provider")
	}
	if provider.Metrics() == nil {
		t.Fatal("Metrics() returned nil")
	}

	ctx := context.Background()
	provider.Metrics().RecordTokenValidation(ctx, "REFRESHED")
	provider.Metrics().RecordTokenRefresh(ctx, StatusError, 250*time.Millisecond)
}

func TestMetricsZeroValueIsNoOp(t *testing.T) {
	var m Metrics
	ctx := context.Background()

	// Must not panic.
	m.RecordTokenValidation(ctx, "VALID")
	m.RecordTokenRefresh(ctx, StatusSuccess, time.Second)
	m.RecordGoogleAPIOperation(ctx, "drive", "list_files", StatusError)
	m.RecordToolInvocation(ctx, "list_drive_files", StatusError, time.Millisecond)
}
