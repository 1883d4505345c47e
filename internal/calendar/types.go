package calendar

// CalendarInfo describes one calendar in the account's list.
type CalendarInfo struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary"`
}

// EventSummary is a compact representation of a calendar event.
type EventSummary struct {
	ID        string   `json:"id"`
	Summary   string   `json:"summary"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Location  string   `json:"location,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
	HTMLLink  string   `json:"htmlLink,omitempty"`
}

// EventInput describes a new event to create.
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       string // RFC 3339
	End         string // RFC 3339
	Attendees   []string
}
