package calendar

import (
	"context"
	"testing"

	calendar "google.golang.org/api/calendar/v3"
)

func TestSummarizeEventTimedEvent(t *testing.T) {
	event := &calendar.Event{
		Id:       "evt-1",
		Summary:  "Standup",
		Location: "Room 1",
		HtmlLink: "https://calendar.google.com/event?eid=evt-1",
		Start:    &calendar.EventDateTime{DateTime: "2026-08-25T09:00:00Z"},
		End:      &calendar.EventDateTime{DateTime: "2026-08-25T09:15:00Z"},
		Attendees: []*calendar.EventAttendee{
			{Email: "alice@example.com"},
			{Email: "bob@example.com"},
		},
	}

	s := summarizeEvent(event)
	if s.ID != "evt-1" || s.Summary != "Standup" {
		t.Errorf("summarizeEvent() = %+v", s)
	}
	if s.Start != "2026-08-25T09:00:00Z" || s.End != "2026-08-25T09:15:00Z" {
		t.Errorf("Start/End = %q/%q", s.Start, s.End)
	}
	if len(s.Attendees) != 2 || s.Attendees[0] != "alice@example.com" {
		t.Errorf("Attendees = %v", s.Attendees)
	}
}

func TestSummarizeEventAllDayEvent(t *testing.T) {
	event := &calendar.Event{
		Id:      "evt-2",
		Summary: "Vacation",
		Start:   &calendar.EventDateTime{Date: "2026-08-25"},
		End:     &calendar.EventDateTime{Date: "2026-08-26"},
	}

	s := summarizeEvent(event)
	if s.Start != "2026-08-25" {
		t.Errorf("Start = %q, want the all-day date", s.Start)
	}
	if s.End != "2026-08-26" {
		t.Errorf("End = %q, want the all-day date", s.End)
	}
}

func TestSummarizeEventWithoutTimes(t *testing.T) {
	s := summarizeEvent(&calendar.Event{Id: "evt-3"})
	if s.Start != "" || s.End != "" {
		t.Errorf("Start/End = %q/%q, want empty", s.Start, s.End)
	}
}

func TestCreateEventValidation(t *testing.T) {
	c := &Client{account: "alice@example.com"}

	tests := []struct {
		name  string
		input EventInput
	}{
		{"missing summary", EventInput{Start: "2026-08-25T09:00:00Z", End: "2026-08-25T10:00:00Z"}},
		{"missing start", EventInput{Summary: "Standup", End: "2026-08-25T10:00:00Z"}},
		{"missing end", EventInput{Summary: "Standup", Start: "2026-08-25T09:00:00Z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.CreateEvent(context.Background(), "primary", tt.input); err == nil {
				t.Error("CreateEvent() should reject incomplete input")
			}
		})
	}
}
