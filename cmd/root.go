package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the google-workspace-mcp application
var rootCmd = &cobra.Command{
	Use:   "google-workspace-mcp",
	Short: "MCP server for Gmail, Calendar and Drive with multi-account OAuth",
	Long: `google-workspace-mcp is an MCP (Model Context Protocol) server that
exposes Gmail, Google Calendar and Google Drive tools to AI assistants.

It manages OAuth2 credentials for multiple Google accounts, refreshing
access tokens transparently and storing them on disk. Accounts can be
authenticated either through the MCP tools or with the "auth" command.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "google-workspace-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
