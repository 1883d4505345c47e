// Package logging provides slog helpers shared across the codebase:
// consistent attribute keys, constructors for common attributes, and
// sanitizers that keep emails and token contents out of log output.
package logging
