package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrStatus    = "status"
	attrService   = "service"
	attrOperation = "operation"
	attrTool      = "tool"
)

// Status values for consistent labeling.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics provides methods for recording observability metrics. The
// zero value is a safe no-op recorder.
type Metrics struct {
	tokenValidationsTotal metric.Int64Counter
	tokenRefreshTotal     metric.Int64Counter
	tokenRefreshDuration  metric.Float64Histogram

	googleAPIOperationsTotal metric.Int64Counter

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a Metrics instance with all instruments
// initialized on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.tokenValidationsTotal, err = meter.Int64Counter(
		"oauth_token_validations_total",
		metric.WithDescription("Total number of OAuth token validation attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_validations_total counter: %w", err)
	}

	m.tokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of OAuth token refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	m.tokenRefreshDuration, err = meter.Float64Histogram(
		"oauth_token_refresh_duration_seconds",
		metric.WithDescription("OAuth token refresh duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_duration_seconds histogram: %w", err)
	}

	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordTokenValidation records a token validation attempt with its
// outcome status (VALID, REFRESHED, NO_TOKEN, REFRESH_FAILED).
func (m *Metrics) RecordTokenValidation(ctx context.Context, status string) {
	if m.tokenValidationsTotal == nil {
		return
	}
	m.tokenValidationsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String(attrStatus, status)))
}

// RecordTokenRefresh records a token refresh attempt and its duration.
func (m *Metrics) RecordTokenRefresh(ctx context.Context, status string, duration time.Duration) {
	if m.tokenRefreshTotal == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(attrStatus, status))
	m.tokenRefreshTotal.Add(ctx, 1, attrs)
	m.tokenRefreshDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGoogleAPIOperation records a Google API call made by a service
// wrapper.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string) {
	if m.googleAPIOperationsTotal == nil {
		return
	}
	m.googleAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	))
}

// RecordToolInvocation records an MCP tool invocation with its outcome
// and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}
