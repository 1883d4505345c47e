package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/aaronsb/google-workspace-mcp/internal/auth"
)

// fileFields is the field mask requested for every file response.
const fileFields = "id, name, mimeType, size, modifiedTime, webViewLink"

// Client wraps the Drive service for one account. Instances are
// cached and shared across concurrent tool handlers, so the service
// handle is guarded: reconnects swap it under the mutex.
type Client struct {
	account  string
	accounts *auth.Manager

	mu  sync.Mutex
	svc *drive.Service
}

// NewClient creates a Drive client for the given account, validating
// its token through the account manager.
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
	svc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("failed to create Drive service: %w", err)
	}
	c.mu.Lock()
	c.svc = svc
	c.mu.Unlock()
	return nil
}

// service returns the current Drive service handle.
func (c *Client) service() *drive.Service {
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

// ListFiles lists files matching a Drive query expression (e.g.
// "name contains 'report'"). An empty query lists recent files.
func (c *Client) ListFiles(ctx context.Context, query string, pageSize int64) ([]FileInfo, error) {
	if pageSize <= 0 {
		pageSize = 20
	}

	var resp *drive.FileList
	err := c.withAuthRetry(ctx, func() error {
		// Built inside the closure so a retry uses the reconnected
		// service.
		call := c.service().Files.List().
			PageSize(pageSize).
			OrderBy("modifiedTime desc").
			Fields(googleapi.Field(fmt.Sprintf("files(%s)", fileFields)))
		if query != "" {
			call = call.Q(query)
		}
		var err error
		resp, err = call.Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	files := make([]FileInfo, 0, len(resp.Files))
	for _, f := range resp.Files {
		files = append(files, fileInfo(f))
	}
	return files, nil
}

// GetFile returns the metadata for one file.
func (c *Client) GetFile(ctx context.Context, id string) (*FileInfo, error) {
	var f *drive.File
	err := c.withAuthRetry(ctx, func() error {
		var err error
		f, err = c.service().Files.Get(id).Fields(fileFields).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", id, err)
	}

	info := fileInfo(f)
	return &info, nil
}

func fileInfo(f *drive.File) FileInfo {
	return FileInfo{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Size:         f.Size,
		ModifiedTime: f.ModifiedTime,
		WebViewLink:  f.WebViewLink,
	}
}
