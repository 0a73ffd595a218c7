package cmd

import (
	"testing"

	"github.com/iksnae/tgsum/internal"
	"github.com/iksnae/tgsum/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport_Validation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing chat", args: []string{"export"}, wantErr: "accepts 1 arg"},
		{name: "unsupported format", args: []string{"export", "@golang", "-f", "csv"}, wantErr: "unsupported format"},
		{name: "invalid since", args: []string{"export", "@golang", "--since", "last week"}, wantErr: "invalid --since"},
		{name: "missing credentials", args: []string{"export", "@golang"}, wantErr: "TELEGRAM_API_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.ClearSecrets(t)
			ws := testutil.NewWorkspace(t, false)

			_, err := executeCommand(t, ws, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTranscriptReport(t *testing.T) {
	chat := &internal.Chat{ID: -1001234567890, Title: "Release Team"}
	messages := internal.CreateTestConversation()

	report := transcriptReport(chat, messages, []string{"alice"}, false)

	assert.Equal(t, internal.StatusSuccess, report.Status)
	assert.Equal(t, "Release Team", report.Chat.Title)
	assert.False(t, report.HasSummary())
	assert.Equal(t, internal.MessageCounts{Total: 5, Filtered: 2, WithContext: 3}, report.Counts)
	require.Len(t, report.Messages, 3)
	assert.Equal(t, 1, report.Messages[0].ID)
	assert.Equal(t, 3, report.Messages[2].ID)
	require.NotNil(t, report.DateRange.Earliest)
	assert.Equal(t, messages[4].Timestamp, *report.DateRange.Earliest)
}

func TestTranscriptReport_NoUsers(t *testing.T) {
	messages := internal.CreateTestConversation()

	report := transcriptReport(nil, messages, nil, true)

	assert.True(t, report.UnreadOnly)
	assert.Equal(t, 5, report.Counts.Filtered)
	assert.Len(t, report.Messages, 5)
	assert.Equal(t, int64(0), report.Chat.ID)
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 message", plural(1, "message"))
	assert.Equal(t, "0 messages", plural(0, "message"))
	assert.Equal(t, "1,500 messages", plural(1500, "message"))
}
