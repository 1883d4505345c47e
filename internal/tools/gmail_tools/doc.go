// Package gmail_tools registers the Gmail MCP tools.
package gmail_tools
