package calendar_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aaronsb/google-workspace-mcp/internal/calendar"
	"github.com/aaronsb/google-workspace-mcp/internal/server"
	"github.com/aaronsb/google-workspace-mcp/internal/tools/common"
)

func getCalendarClient(ctx context.Context, email string, sc *server.ServerContext) (*calendar.Client, error) {
	client, err := sc.CalendarClientForAccount(ctx, email)
	if err != nil {
		if common.IsAuthRequired(err) {
			return nil, fmt.Errorf("%s", common.AuthRequiredMessage(ctx, sc.Accounts(), email))
		}
		return nil, fmt.Errorf("failed to create Calendar client for account %s: %w", email, err)
	}
	return client, nil
}

// RegisterCalendarTools registers all Calendar-related tools with the
// MCP server.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listCalendarsTool := mcp.NewTool("list_workspace_calendars",
		mcp.WithDescription("List the calendars visible to an account"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email address of the authenticated account"),
		),
	)
	s.AddTool(listCalendarsTool, common.InstrumentedToolHandler("list_workspace_calendars", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListCalendars(ctx, request, sc)
		}))

	listEventsTool := mcp.NewTool("get_workspace_calendar_events",
		mcp.WithDescription("List calendar events within a time range"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email address of the authenticated account"),
		),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		mcp.WithString("time_min",
			mcp.Description("Range start, RFC 3339 (default: now)"),
		),
		mcp.WithString("time_max",
			mcp.Description("Range end, RFC 3339 (default: one week from now)"),
		),
		mcp.WithString("query",
			mcp.Description("Free-text search filter"),
		),
	)
	s.AddTool(listEventsTool, common.InstrumentedToolHandler("get_workspace_calendar_events", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	createEventTool := mcp.NewTool("create_workspace_calendar_event",
		mcp.WithDescription("Create a calendar event"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Email address of the authenticated account"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Event start, RFC 3339"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Event end, RFC 3339"),
		),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
	)
	s.AddTool(createEventTool, common.InstrumentedToolHandler("create_workspace_calendar_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	return nil
}

func handleListCalendars(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	email, err := common.EmailFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(ctx, email, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	calendars, err := client.ListCalendars(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list calendars: %v", err)), nil
	}

	return jsonResult(calendars)
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	email, err := common.EmailFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	calendarID, _ := args["calendar_id"].(string)
	query, _ := args["query"].(string)

	timeMin := time.Now()
	if v, ok := args["time_min"].(string); ok && v != "" {
		timeMin, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid time_min: %v", err)), nil
		}
	}
	timeMax := timeMin.AddDate(0, 0, 7)
	if v, ok := args["time_max"].(string); ok && v != "" {
		timeMax, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid time_max: %v", err)), nil
		}
	}

	client, err := getCalendarClient(ctx, email, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	events, err := client.ListEvents(ctx, calendarID, timeMin, timeMax, query, 0)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}
	if len(events) == 0 {
		return mcp.NewToolResultText("No events in the requested range."), nil
	}

	return jsonResult(events)
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	email, err := common.EmailFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	input := calendar.EventInput{}
	input.Summary, _ = args["summary"].(string)
	input.Start, _ = args["start"].(string)
	input.End, _ = args["end"].(string)
	input.Description, _ = args["description"].(string)
	input.Location, _ = args["location"].(string)
	calendarID, _ := args["calendar_id"].(string)

	client, err := getCalendarClient(ctx, email, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.CreateEvent(ctx, calendarID, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}

	return jsonResult(event)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to render result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
