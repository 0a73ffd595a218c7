package internal

import "time"

// TimestampLayout is the layout used for message timestamps in transcripts and reports
const TimestampLayout = "2006-01-02 15:04:05"

// Chat identifies the conversation messages were fetched from
type Chat struct {
	ID          int64  `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	UnreadCount int    `json:"unread_count" yaml:"unread_count"`
}

// Message represents a single text message fetched from a chat
type Message struct {
	ID            int       `json:"id" yaml:"id"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
	SenderID      int64     `json:"sender_id,omitempty" yaml:"sender_id,omitempty"`
	SenderName    string    `json:"sender_name" yaml:"sender_name"`
	Text          string    `json:"text" yaml:"text"`
	Unread        bool      `json:"unread,omitempty" yaml:"unread,omitempty"`
	ReplyToID     int       `json:"reply_to_id,omitempty" yaml:"reply_to_id,omitempty"`
	Forwarded     bool      `json:"forwarded,omitempty" yaml:"forwarded,omitempty"`
	ForwardedFrom string    `json:"forwarded_from,omitempty" yaml:"forwarded_from,omitempty"`
}

// IsReply reports whether the message replies to another message
func (m Message) IsReply() bool {
	return m.ReplyToID != 0
}

// FormattedTime returns the timestamp in TimestampLayout, UTC
func (m Message) FormattedTime() string {
	if m.Timestamp.IsZero() {
		return ""
	}
	return m.Timestamp.UTC().Format(TimestampLayout)
}
