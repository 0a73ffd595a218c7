package internal

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Participant groups the messages sent by one sender
type Participant struct {
	Name     string    `json:"name" yaml:"name"`
	Messages []Message `json:"-" yaml:"-"`
}

// DateRange holds the earliest and latest message timestamps
type DateRange struct {
	Earliest *time.Time `json:"earliest" yaml:"earliest"`
	Latest   *time.Time `json:"latest" yaml:"latest"`
}

// String formats the range as "<earliest> to <latest>"
func (r DateRange) String() string {
	return formatRangeTime(r.Earliest) + " to " + formatRangeTime(r.Latest)
}

func formatRangeTime(t *time.Time) string {
	if t == nil {
		return "n/a"
	}
	return t.UTC().Format(TimestampLayout)
}

// normalizeUser lowercases an identifier and strips a leading @
func normalizeUser(s string) string {
	return strings.TrimLeft(strings.ToLower(strings.TrimSpace(s)), "@")
}

// FilterByParticipants keeps messages sent by one of users and returns them together
// with an extended list that adds the messages they reply to.
//
// Users match case-insensitively against the sender name or the sender ID; a leading
// @ is ignored on both sides. With no users both returned slices are the input.
func FilterByParticipants(messages []Message, users []string) (filtered, extended []Message) {
	if len(users) == 0 {
		return messages, messages
	}

	wanted := make(map[string]bool, len(users))
	for _, u := range users {
		if n := normalizeUser(u); n != "" {
			wanted[n] = true
		}
	}

	filtered = make([]Message, 0)
	for _, msg := range messages {
		name := normalizeUser(msg.SenderName)
		id := ""
		if msg.SenderID != 0 {
			id = strconv.FormatInt(msg.SenderID, 10)
		}
		if wanted[name] || (id != "" && wanted[id]) {
			filtered = append(filtered, msg)
		}
	}

	replyTargets := make(map[int]bool)
	inFiltered := make(map[int]bool, len(filtered))
	for _, msg := range filtered {
		inFiltered[msg.ID] = true
		if msg.IsReply() {
			replyTargets[msg.ReplyToID] = true
		}
	}

	extended = make([]Message, 0, len(filtered))
	extended = append(extended, filtered...)
	for _, msg := range messages {
		if replyTargets[msg.ID] && !inFiltered[msg.ID] {
			extended = append(extended, msg)
		}
	}

	return filtered, DeduplicateMessages(extended)
}

// FilterUnread keeps only messages flagged as unread
func FilterUnread(messages []Message) []Message {
	unread := make([]Message, 0)
	for _, msg := range messages {
		if msg.Unread {
			unread = append(unread, msg)
		}
	}
	return unread
}

// FilterSince keeps messages sent at or after since. A zero since keeps everything.
func FilterSince(messages []Message, since time.Time) []Message {
	if since.IsZero() {
		return messages
	}
	kept := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if !msg.Timestamp.Before(since) {
			kept = append(kept, msg)
		}
	}
	return kept
}

// GroupByParticipant groups messages by sender name in order of first appearance
func GroupByParticipant(messages []Message) []Participant {
	index := make(map[string]int)
	var participants []Participant

	for _, msg := range messages {
		name := msg.SenderName
		if name == "" {
			name = "Unknown"
		}
		i, ok := index[name]
		if !ok {
			i = len(participants)
			index[name] = i
			participants = append(participants, Participant{Name: name})
		}
		participants[i].Messages = append(participants[i].Messages, msg)
	}

	return participants
}

// ParticipantNames returns the names of the given participants in order
func ParticipantNames(participants []Participant) []string {
	names := make([]string, 0, len(participants))
	for _, p := range participants {
		names = append(names, p.Name)
	}
	return names
}

// GetDateRange returns the earliest and latest timestamps of messages
func GetDateRange(messages []Message) DateRange {
	var r DateRange
	for i := range messages {
		ts := messages[i].Timestamp
		if ts.IsZero() {
			continue
		}
		if r.Earliest == nil || ts.Before(*r.Earliest) {
			t := ts
			r.Earliest = &t
		}
		if r.Latest == nil || ts.After(*r.Latest) {
			t := ts
			r.Latest = &t
		}
	}
	return r
}

// SortChronologically returns a copy of messages ordered oldest first.
// Messages with equal timestamps are ordered by ID.
func SortChronologically(messages []Message) []Message {
	sorted := make([]Message, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// FormatTranscript renders messages as one line each, oldest first
func FormatTranscript(messages []Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range SortChronologically(messages) {
		lines = append(lines, FormatMessageLine(msg))
	}
	return strings.Join(lines, "\n")
}

// FormatMessageLine renders a single transcript line
func FormatMessageLine(msg Message) string {
	name := msg.SenderName
	if name == "" {
		name = "Unknown"
	}
	if msg.Forwarded {
		source := msg.ForwardedFrom
		if source == "" {
			source = "Unknown Source"
		}
		return "[" + msg.FormattedTime() + "] " + name + " shared content originally by " + source + ": " + msg.Text
	}
	return "[" + msg.FormattedTime() + "] " + name + ": " + msg.Text
}
