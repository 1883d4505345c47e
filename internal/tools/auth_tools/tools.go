package auth_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aaronsb/google-workspace-mcp/internal/server"
	"github.com/aaronsb/google-workspace-mcp/internal/tools/common"
)

// RegisterAuthTools registers the account management tools with the
// MCP server.
func RegisterAuthTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("list_workspace_accounts",
		mcp.WithDescription("List all authenticated Google Workspace accounts and their token status. "+
			"Listing validates every account, so expired tokens may be refreshed (or purged if the refresh fails) as a side effect."),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("list_workspace_accounts", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAccounts(ctx, sc)
		}))

	authenticateTool := mcp.NewTool("authenticate_workspace_account",
		mcp.WithDescription("Authenticate a Google Workspace account. Without auth_code, returns the authorization URL "+
			"for the user to visit. With auth_code, completes authentication and stores the account's tokens."),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email address of the Google account to authenticate"),
		),
		mcp.WithString("auth_code",
			mcp.Description("Authorization code from the Google consent page. Omit to get the authorization URL."),
		),
	)
	s.AddTool(authenticateTool, common.InstrumentedToolHandler("authenticate_workspace_account", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAuthenticate(ctx, request, sc)
		}))

	removeTool := mcp.NewTool("remove_workspace_account",
		mcp.WithDescription("Remove a Google Workspace account and delete its stored tokens"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email address of the account to remove"),
		),
	)
	s.AddTool(removeTool, common.InstrumentedToolHandler("remove_workspace_account", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRemoveAccount(ctx, request, sc)
		}))

	return nil
}

func handleListAccounts(ctx context.Context, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	accounts, err := sc.Accounts().ListAccounts(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list accounts: %v", err)), nil
	}

	if len(accounts) == 0 {
		return mcp.NewToolResultText("No accounts are authenticated. Use authenticate_workspace_account to add one."), nil
	}

	out, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to render account list: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func handleAuthenticate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	email, err := common.EmailFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	authCode, _ := args["auth_code"].(string)

	authURL, err := sc.Accounts().AuthenticateAccount(ctx, email, authCode)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Authentication failed for %s: %v", email, err)), nil
	}

	if authURL != "" {
		return mcp.NewToolResultText(fmt.Sprintf(`To authorize access for %q:

1. Visit this URL in your browser:
   %s

2. Sign in with %s and grant access
3. Copy the authorization code
4. Call this tool again with the auth_code argument to complete authentication`, email, authURL, email)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Account %q authenticated. All workspace tools can now use this account.", email)), nil
}

func handleRemoveAccount(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	email, err := common.EmailFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := sc.Accounts().RemoveAccount(email); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to remove account %s: %v", email, err)), nil
	}
	sc.DropClientsForAccount(email)

	return mcp.NewToolResultText(fmt.Sprintf("Account %q removed. Its stored tokens have been deleted.", email)), nil
}
