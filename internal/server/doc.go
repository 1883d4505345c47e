// Package server holds the shared state for the MCP server: the
// account manager, per-account Google service clients, and the
// dedicated Prometheus metrics server.
package server
