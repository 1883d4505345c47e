// Package cmd implements the command-line interface for
// google-workspace-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide tools for AI assistants
//   - auth: Manage Google account credentials from the terminal
//   - version: Display version information
//
// The serve command is the default command when no subcommand is
// specified.
package cmd
