package gmail_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aaronsb/google-workspace-mcp/internal/gmail"
	"github.com/aaronsb/google-workspace-mcp/internal/server"
	"github.com/aaronsb/google-workspace-mcp/internal/tools/common"
)

// getGmailClient retrieves or creates a Gmail client for the given
// account, translating a missing credential into the standard
// authentication instructions.
func getGmailClient(ctx context.Context, email string, sc *server.ServerContext) (*gmail.Client, error) {
	client, err := sc.GmailClientForAccount(ctx, email)
	if err != nil {
		if common.IsAuthRequired(err) {
			return nil, fmt.Errorf("%s", common.AuthRequiredMessage(ctx, sc.Accounts(), email))
		}
		return nil, fmt.Errorf("failed to create Gmail client for account %s: %w", email, err)
	}
	return client, nil
}

// RegisterGmailTools registers all Gmail-related tools with the MCP
// server.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	searchTool := mcp.NewTool("search_workspace_emails",
		mcp.WithDescription("Search emails in a Gmail account using Gmail query syntax (e.g. 'from:alice is:unread')"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email address of the authenticated account to search"),
		),
		mcp.WithString("query",
			mcp.Description("Gmail search query. Empty returns the most recent messages."),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of messages to return (default: 10)"),
		),
	)
	s.AddTool(searchTool, common.InstrumentedToolHandler("search_workspace_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEmails(ctx, request, sc)
		}))

	getTool := mcp.NewTool("get_workspace_email",
		mcp.WithDescription("Get a single email including its plain-text body"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email address of the authenticated account"),
		),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("ID of the message to fetch"),
		),
	)
	s.AddTool(getTool, common.InstrumentedToolHandler("get_workspace_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEmail(ctx, request, sc)
		}))

	labelsTool := mcp.NewTool("list_workspace_labels",
		mcp.WithDescription("List the Gmail labels of an account"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email address of the authenticated account"),
		),
	)
	s.AddTool(labelsTool, common.InstrumentedToolHandler("list_workspace_labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		}))

	return nil
}

func handleSearchEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	email, err := common.EmailFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, _ := args["query"].(string)
	maxResults := int64(10)
	if v, ok := args["max_results"].(float64); ok && v > 0 {
		maxResults = int64(v)
	}

	client, err := getGmailClient(ctx, email, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	messages, err := client.ListMessages(ctx, query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
	}
	if len(messages) == 0 {
		return mcp.NewToolResultText("No messages matched the query."), nil
	}

	return jsonResult(messages)
}

func handleGetEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	email, err := common.EmailFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	messageID, ok := args["message_id"].(string)
	if !ok || messageID == "" {
		return mcp.NewToolResultError("message_id is required"), nil
	}

	client, err := getGmailClient(ctx, email, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	message, err := client.GetMessage(ctx, messageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get message: %v", err)), nil
	}

	return jsonResult(message)
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	email, err := common.EmailFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getGmailClient(ctx, email, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	labels, err := client.ListLabels(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}

	return jsonResult(labels)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to render result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
