package internal

import (
	"time"
)

// testBaseTime is the timestamp of the first message produced by the test helpers
var testBaseTime = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

// CreateTestMessage creates a message sent by sender, offset minutes after the base time
func CreateTestMessage(id int, senderID int64, sender, text string, offset int) Message {
	return Message{
		ID:         id,
		Timestamp:  testBaseTime.Add(time.Duration(offset) * time.Minute),
		SenderID:   senderID,
		SenderName: sender,
		Text:       text,
	}
}

// CreateTestConversation creates a small conversation with replies, a forward and
// two unread messages, returned newest first like the Telegram history API
func CreateTestConversation() []Message {
	alice := CreateTestMessage(1, 101, "@alice", "Morning! Shipping the release today.", 0)
	bob := CreateTestMessage(2, 102, "Bob Smith", "Do we have the changelog ready?", 5)
	aliceReply := CreateTestMessage(3, 101, "@alice", "Yes, it's in the wiki.", 7)
	aliceReply.ReplyToID = 2
	carol := CreateTestMessage(4, 103, "@carol", "Release notes from upstream", 12)
	carol.Forwarded = true
	carol.ForwardedFrom = "Upstream News"
	carol.Unread = true
	bobReply := CreateTestMessage(5, 102, "Bob Smith", "Great, thanks", 15)
	bobReply.ReplyToID = 3
	bobReply.Unread = true

	return []Message{bobReply, carol, aliceReply, bob, alice}
}

// CreateTestReport creates a summarised report for exporter tests
func CreateTestReport() *Report {
	messages := CreateTestConversation()
	return &Report{
		Status:      StatusSuccess,
		Chat:        Chat{ID: -1001234567890, Title: "Release Team"},
		TargetUsers: []string{"alice"},
		Model:       "openai/o4-mini-high",
		Counts: MessageCounts{
			Total:       len(messages),
			Filtered:    2,
			WithContext: 3,
		},
		DateRange: GetDateRange(messages),
		Summary: &Summary{
			Overall: "The team prepared the release.",
			Participants: []ParticipantSummary{
				{Name: "@alice", Summary: "Announced the release."},
				{Name: "Bob Smith", Summary: "Asked about the changelog."},
			},
		},
		Messages: messages,
	}
}
