// Package auth_tools registers the MCP tools for managing
// authenticated Google Workspace accounts.
package auth_tools
