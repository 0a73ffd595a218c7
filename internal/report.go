package internal

import "time"

// Report statuses
const (
	StatusSuccess = "success"
	StatusInfo    = "info"
)

// MessageCounts records how many messages each stage of filtering kept
type MessageCounts struct {
	Total       int `json:"total" yaml:"total"`
	Filtered    int `json:"filtered" yaml:"filtered"`
	WithContext int `json:"with_context" yaml:"with_context"`
}

// Report is the result of one analysis run
type Report struct {
	Status      string        `json:"status" yaml:"status"`
	Message     string        `json:"message,omitempty" yaml:"message,omitempty"`
	Chat        Chat          `json:"chat" yaml:"chat"`
	TargetUsers []string      `json:"target_users,omitempty" yaml:"target_users,omitempty"`
	Model       string        `json:"model,omitempty" yaml:"model,omitempty"`
	PromptName  string        `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Counts      MessageCounts `json:"message_count" yaml:"message_count"`
	DateRange   DateRange     `json:"date_range" yaml:"date_range"`
	UnreadOnly  bool          `json:"unread_only,omitempty" yaml:"unread_only,omitempty"`
	Summary     *Summary      `json:"summary,omitempty" yaml:"summary,omitempty"`
	Cached      bool          `json:"cached,omitempty" yaml:"cached,omitempty"`
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	Messages    []Message     `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// HasSummary reports whether the report carries a generated summary
func (r *Report) HasSummary() bool {
	return r != nil && r.Summary != nil && r.Summary.Overall != ""
}
