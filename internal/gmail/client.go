package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/aaronsb/google-workspace-mcp/internal/auth"
)

// Client wraps the Gmail service for one account. Instances are
// cached and shared across concurrent tool handlers, so the service
// handle is guarded: reconnects swap it under the mutex.
type Client struct {
	account  string
	accounts *auth.Manager

	mu  sync.Mutex
	svc *gmail.Service
}

// NewClient creates a Gmail client for the given account, validating
// (and if needed refreshing) its token through the account manager.
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

// connect builds the Gmail service from a freshly authorized HTTP
// client.
func (c *Client) connect(ctx context.Context) error {
	httpClient, err := c.accounts.AuthorizedClient(ctx, c.account)
	if err != nil {
		return err
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("failed to create Gmail service: %w", err)
	}
	c.mu.Lock()
	c.svc = svc
	c.mu.Unlock()
	return nil
}

// service returns the current Gmail service handle.
func (c *Client) service() *gmail.Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.svc
}

// withAuthRetry runs fn and, on a provider authorization failure,
// re-validates the account's token and retries exactly once. A second
// consecutive authorization failure propagates to the caller.
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

// isAuthError reports whether err is an HTTP unauthorized/forbidden
// response from the provider.
func isAuthError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden
	}
	return false
}

// ListMessages searches messages with a Gmail query string and returns
// header-level summaries.
func (c *Client) ListMessages(ctx context.Context, query string, maxResults int64) ([]MessageSummary, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	var resp *gmail.ListMessagesResponse
	err := c.withAuthRetry(ctx, func() error {
		var err error
		resp, err = c.service().Users.Messages.List("me").Q(query).MaxResults(maxResults).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	summaries := make([]MessageSummary, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		var full *gmail.Message
		err := c.withAuthRetry(ctx, func() error {
			var err error
			full, err = c.service().Users.Messages.Get("me", msg.Id).Format("metadata").
				MetadataHeaders("From", "To", "Subject", "Date").Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", msg.Id, err)
		}
		summaries = append(summaries, summarize(full))
	}
	return summaries, nil
}

// GetMessage fetches a full message including its decoded plain-text
// body.
func (c *Client) GetMessage(ctx context.Context, id string) (*MessageDetail, error) {
	var msg *gmail.Message
	err := c.withAuthRetry(ctx, func() error {
		var err error
		msg, err = c.service().Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	detail := &MessageDetail{
		MessageSummary: summarize(msg),
		Labels:         msg.LabelIds,
	}
	if msg.Payload != nil {
		detail.Body = extractPlainText(msg.Payload)
	}
	return detail, nil
}

// ListLabels returns the account's Gmail labels.
func (c *Client) ListLabels(ctx context.Context) ([]LabelInfo, error) {
	var resp *gmail.ListLabelsResponse
	err := c.withAuthRetry(ctx, func() error {
		var err error
		resp, err = c.service().Users.Labels.List("me").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	labels := make([]LabelInfo, 0, len(resp.Labels))
	for _, l := range resp.Labels {
		labels = append(labels, LabelInfo{ID: l.Id, Name: l.Name, Type: l.Type})
	}
	return labels, nil
}

// summarize extracts the header-level fields from a message.
func summarize(msg *gmail.Message) MessageSummary {
	s := MessageSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
	}
	if msg.Payload == nil {
		return s
	}
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "From":
			s.From = h.Value
		case "To":
			s.To = h.Value
		case "Subject":
			s.Subject = h.Value
		case "Date":
			s.Date = h.Value
		}
	}
	return s
}

// extractPlainText walks the MIME tree for the first text/plain part
// and decodes it.
func extractPlainText(part *gmail.MessagePart) string {
	if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
		// Gmail emits unpadded base64url, but padded data shows up too.
		decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(part.Body.Data, "="))
		if err != nil {
			return ""
		}
		return string(decoded)
	}
	for _, p := range part.Parts {
		if body := extractPlainText(p); body != "" {
			return body
		}
	}
	return ""
}
