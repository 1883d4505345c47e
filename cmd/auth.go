package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aaronsb/google-workspace-mcp/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var credentialsDir string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Google account credentials",
		Long: `Manage the Google accounts known to the server without going
through an MCP client.

Requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET in the environment.`,
	}

	cmd.PersistentFlags().StringVar(&credentialsDir, "credentials-dir", "", "Directory for stored account credentials")

	cmd.AddCommand(newAuthListCmd(&credentialsDir))
	cmd.AddCommand(newAuthAddCmd(&credentialsDir))
	cmd.AddCommand(newAuthRemoveCmd(&credentialsDir))

	return cmd
}

func newAuthListCmd(credentialsDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known accounts and their token status",
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, err := buildAccountManager(*credentialsDir, logging.Setup(false))
			if err != nil {
				return err
			}

			infos, err := accounts.ListAccounts(context.Background())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Println("No accounts configured.")
				return nil
			}
			for _, info := range infos {
				if info.Reason != "" {
					fmt.Printf("%s\t%s\t%s\n", info.Email, info.Status, info.Reason)
				} else {
					fmt.Printf("%s\t%s\n", info.Email, info.Status)
				}
			}
			return nil
		},
	}
}

func newAuthAddCmd(credentialsDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add <email>",
		Short: "Authenticate a Google account",
		Long: `Authenticate a Google account using the OAuth2 authorization code
flow. Prints the authorization URL, then reads the authorization code
from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			accounts, err := buildAccountManager(*credentialsDir, logging.Setup(false))
			if err != nil {
				return err
			}
			ctx := context.Background()

			authURL, err := accounts.AuthenticateAccount(ctx, email, "")
			if err != nil {
				return err
			}
			fmt.Printf("Visit the following URL to authorize %s:\n\n  %s\n\n", email, authURL)
			fmt.Print("Enter the authorization code: ")

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no authorization code provided")
			}

			if _, err := accounts.AuthenticateAccount(ctx, email, code); err != nil {
				return err
			}
			fmt.Printf("Account %s authenticated.\n", email)
			return nil
		},
	}
}

func newAuthRemoveCmd(credentialsDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <email>",
		Short: "Remove a stored account credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			accounts, err := buildAccountManager(*credentialsDir, logging.Setup(false))
			if err != nil {
				return err
			}
			if err := accounts.RemoveAccount(email); err != nil {
				return err
			}
			fmt.Printf("Account %s removed.\n", email)
			return nil
		},
	}
}
