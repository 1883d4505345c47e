package gmail

// MessageSummary contains the header-level fields of a message.
type MessageSummary struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Date     string `json:"date"`
	Snippet  string `json:"snippet"`
}

// MessageDetail is a full message including the decoded plain-text
// body.
type MessageDetail struct {
	MessageSummary
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

// LabelInfo describes a Gmail label.
type LabelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}
