package drive_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aaronsb/google-workspace-mcp/internal/drive"
	"github.com/aaronsb/google-workspace-mcp/internal/server"
	"github.com/aaronsb/google-workspace-mcp/internal/tools/common"
)

func getDriveClient(ctx context.Context, email string, sc *server.ServerContext) (*drive.Client, error) {
	client, err := sc.DriveClientForAccount(ctx, email)
	if err != nil {
		if common.IsAuthRequired(err) {
			return nil, fmt.Errorf("%s", common.AuthRequiredMessage(ctx, sc.Accounts(), email))
		}
		return nil, fmt.Errorf("failed to create Drive client for account %s: %w", email, err)
	}
	return client, nil
}

// RegisterDriveTools registers all Drive-related tools with the MCP
// server.
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("list_drive_files",
		mcp.WithDescription("List or search files in Google Drive using Drive query syntax (e.g. \"name contains 'report'\")"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email address of the authenticated account"),
		),
		mcp.WithString("query",
			mcp.Description("Drive search query. Empty lists the most recently modified files."),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Maximum number of files to return (default: 20)"),
		),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("list_drive_files", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListFiles(ctx, request, sc)
		}))

	getTool := mcp.NewTool("get_drive_file",
		mcp.WithDescription("Get the metadata of a Drive file"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email address of the authenticated account"),
		),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("ID of the file"),
		),
	)
	s.AddTool(getTool, common.InstrumentedToolHandler("get_drive_file", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetFile(ctx, request, sc)
		}))

	return nil
}

func handleListFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	email, err := common.EmailFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, _ := args["query"].(string)
	pageSize := int64(20)
	if v, ok := args["page_size"].(float64); ok && v > 0 {
		pageSize = int64(v)
	}

	client, err := getDriveClient(ctx, email, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	files, err := client.ListFiles(ctx, query, pageSize)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list files: %v", err)), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultText("No files matched the query."), nil
	}

	return jsonResult(files)
}

func handleGetFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	email, err := common.EmailFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fileID, ok := args["file_id"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	client, err := getDriveClient(ctx, email, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	file, err := client.GetFile(ctx, fileID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get file: %v", err)), nil
	}

	return jsonResult(file)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to render result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
