package gmail

import (
	"context"
	"encoding/base64"
	"net/http"
	"sync"
	"testing"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"github.com/aaronsb/google-workspace-mcp/internal/auth"
)

func TestClientConcurrentReconnect(t *testing.T) {
	store, err := auth.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	rec := &auth.TokenRecord{
		Email:        "alice@example.com",
		AccessToken:  "ya29.access",
		RefreshToken: "1//refresh",
		TokenType:    "Bearer",
		Scope:        "email",
		ExpiryDate:   time.Now().Add(time.Hour).UnixMilli(),
	}
	if err := store.Save(rec); err != nil {
		t.Fatal(err)
	}
	accounts := auth.NewManager(store, auth.NewClient(&auth.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  auth.OOBRedirectURL,
	}))

	c, err := NewClient(context.Background(), "alice@example.com", accounts)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	// ServerContext hands the same client to every tool handler, so
	// reconnects race against reads of the service handle.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := c.connect(context.Background()); err != nil {
				t.Errorf("connect() error = %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if c.service() == nil {
				t.Error("service() = nil")
			}
		}()
	}
	wg.Wait()
}

func TestSummarize(t *testing.T) {
	msg := &gmail.Message{
		Id:       "msg-1",
		ThreadId: "thread-1",
		Snippet:  "Hi there",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "alice@example.com"},
				{Name: "To", Value: "bob@example.com"},
				{Name: "Subject", Value: "Lunch?"},
				{Name: "Date", Value: "Mon, 24 Aug 2026 12:00:00 +0000"},
				{Name: "X-Irrelevant", Value: "ignored"},
			},
		},
	}

	s := summarize(msg)
	if s.ID != "msg-1" || s.ThreadID != "thread-1" {
		t.Errorf("summarize() IDs = %q/%q", s.ID, s.ThreadID)
	}
	if s.From != "alice@example.com" {
		t.Errorf("From = %q", s.From)
	}
	if s.Subject != "Lunch?" {
		t.Errorf("Subject = %q", s.Subject)
	}
	if s.Snippet != "Hi there" {
		t.Errorf("Snippet = %q", s.Snippet)
	}
}

func TestSummarizeWithoutPayload(t *testing.T) {
	s := summarize(&gmail.Message{Id: "msg-1"})
	if s.ID != "msg-1" || s.From != "" {
		t.Errorf("summarize() = %+v, want only the ID set", s)
	}
}

func TestExtractPlainText(t *testing.T) {
	encode := func(s string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(s))
	}

	tests := []struct {
		name string
		part *gmail.MessagePart
		want string
	}{
		{
			name: "top-level plain text",
			part: &gmail.MessagePart{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: encode("hello")},
			},
			want: "hello",
		},
		{
			name: "padded encoding",
			part: &gmail.MessagePart{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("hi"))},
			},
			want: "hi",
		},
		{
			name: "nested multipart",
			part: &gmail.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "text/html",
						Body:     &gmail.MessagePartBody{Data: encode("<p>hello</p>")},
					},
					{
						MimeType: "text/plain",
						Body:     &gmail.MessagePartBody{Data: encode("hello")},
					},
				},
			},
			want: "hello",
		},
		{
			name: "no plain text part",
			part: &gmail.MessagePart{
				MimeType: "text/html",
				Body:     &gmail.MessagePartBody{Data: encode("<p>hello</p>")},
			},
			want: "",
		},
		{
			name: "empty body",
			part: &gmail.MessagePart{MimeType: "text/plain"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractPlainText(tt.part); got != tt.want {
				t.Errorf("extractPlainText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"401", &googleapi.Error{Code: http.StatusUnauthorized}, true},
		{"403", &googleapi.Error{Code: http.StatusForbidden}, true},
		{"404", &googleapi.Error{Code: http.StatusNotFound}, false},
		{"500", &googleapi.Error{Code: http.StatusInternalServerError}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAuthError(tt.err); got != tt.want {
				t.Errorf("isAuthError() = %v, want %v", got, tt.want)
			}
		})
	}
}
