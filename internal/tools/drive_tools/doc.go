// Package drive_tools registers the Google Drive MCP tools.
package drive_tools
