package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/aaronsb/google-workspace-mcp/internal/auth"
)

// Client wraps the Calendar service for one account. Instances are
// cached and shared across concurrent tool handlers, so the service
// handle is guarded: reconnects swap it under the mutex.
type Client struct {
	account  string
	accounts *auth.Manager

	mu  sync.Mutex
	svc *calendar.Service
}

// NewClient creates a Calendar client for the given account,
// validating its token through the account manager.
func NewClient(ctx context.Context, account string, accounts *auth.Manager) (*Client, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account manager cannot be nil")
	}

	c := &Client{account: account, accounts: accounts}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Account returns the account this client is associated with.
func (c *Client) Account() string {
	return c.account
}

func (c *Client) connect(ctx context.Context) error {
	httpClient, err := c.accounts.AuthorizedClient(ctx, c.account)
	if err != nil {
		return err
	}
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("failed to create Calendar service: %w", err)
	}
	c.mu.Lock()
	c.svc = svc
	c.mu.Unlock()
	return nil
}

// service returns the current Calendar service handle.
func (c *Client) service() *calendar.Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.svc
}

// withAuthRetry runs fn and, on a provider authorization failure,
// re-validates the account's token and retries exactly once.
func (c *Client) withAuthRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if !isAuthError(err) {
		return err
	}
	if rerr := c.connect(ctx); rerr != nil {
		return rerr
	}
	return fn()
}

func isAuthError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden
	}
	return false
}

// ListCalendars returns the calendars visible to the account.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	var resp *calendar.CalendarList
	err := c.withAuthRetry(ctx, func() error {
		var err error
		resp, err = c.service().CalendarList.List().Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	calendars := make([]CalendarInfo, 0, len(resp.Items))
	for _, item := range resp.Items {
		calendars = append(calendars, CalendarInfo{
			ID:      item.Id,
			Summary: item.Summary,
			Primary: item.Primary,
		})
	}
	return calendars, nil
}

// ListEvents lists events in a calendar within a time range, optionally
// filtered by a free-text query.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, query string, maxResults int64) ([]EventSummary, error) {
	if calendarID == "" {
		calendarID = "primary"
	}
	if maxResults <= 0 {
		maxResults = 25
	}

	var resp *calendar.Events
	err := c.withAuthRetry(ctx, func() error {
		// Built inside the closure so a retry uses the reconnected
		// service.
		call := c.service().Events.List(calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(maxResults)
		if query != "" {
			call = call.Q(query)
		}
		var err error
		resp, err = call.Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]EventSummary, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, summarizeEvent(item))
	}
	return events, nil
}

// CreateEvent creates an event in the given calendar.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	if calendarID == "" {
		calendarID = "primary"
	}
	if input.Summary == "" {
		return nil, fmt.Errorf("event summary cannot be empty")
	}
	if input.Start == "" || input.End == "" {
		return nil, fmt.Errorf("event start and end times are required")
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start:       &calendar.EventDateTime{DateTime: input.Start},
		End:         &calendar.EventDateTime{DateTime: input.End},
	}
	for _, email := range input.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	var created *calendar.Event
	err := c.withAuthRetry(ctx, func() error {
		var err error
		created, err = c.service().Events.Insert(calendarID, event).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := summarizeEvent(created)
	return &summary, nil
}

func summarizeEvent(event *calendar.Event) EventSummary {
	s := EventSummary{
		ID:       event.Id,
		Summary:  event.Summary,
		Location: event.Location,
		HTMLLink: event.HtmlLink,
	}
	if event.Start != nil {
		s.Start = event.Start.DateTime
		if s.Start == "" {
			s.Start = event.Start.Date
		}
	}
	if event.End != nil {
		s.End = event.End.DateTime
		if s.End == "" {
			s.End = event.End.Date
		}
	}
	for _, a := range event.Attendees {
		s.Attendees = append(s.Attendees, a.Email)
	}
	return s
}
