// Package instrumentation provides OpenTelemetry metrics for the
// server. Metrics are exported through the Prometheus exporter and
// served by the dedicated metrics server in internal/server.
package instrumentation
