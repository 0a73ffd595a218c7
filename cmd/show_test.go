package cmd

import (
	"strings"
	"testing"

	"github.com/iksnae/tgsum/internal"
	"github.com/iksnae/tgsum/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShow_Validation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing chat", args: []string{"show"}, wantErr: "accepts 1 arg"},
		{name: "invalid chat", args: []string{"show", "https://t.me/"}, wantErr: "invalid chat reference"},
		{name: "invalid since", args: []string{"show", "@golang", "--since", "soon"}, wantErr: "invalid --since"},
		{name: "missing credentials", args: []string{"show", "@golang"}, wantErr: "TELEGRAM_API_ID"},
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

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		check func(t *testing.T, got string)
	}{
		{
			name:  "short line unchanged",
			text:  "hello world",
			width: 80,
			check: func(t *testing.T, got string) {
				assert.Equal(t, "hello world", got)
			},
		},
		{
			name:  "long line wrapped",
			text:  strings.Repeat("word ", 40),
			width: 20,
			check: func(t *testing.T, got string) {
				for _, line := range strings.Split(got, "\n") {
					assert.LessOrEqual(t, len(line), 20)
				}
			},
		},
		{
			name:  "newlines kept",
			text:  "first\nsecond",
			width: 80,
			check: func(t *testing.T, got string) {
				assert.Equal(t, "first\nsecond", got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, wrapText(tt.text, tt.width))
		})
	}
}

func TestSenderLabel(t *testing.T) {
	assert.Equal(t, "Unknown", senderLabel(internal.Message{}))
	assert.Equal(t, "@alice", senderLabel(internal.Message{SenderName: "@alice"}))
}

func TestDisplayMessage(t *testing.T) {
	messages := internal.SortChronologically(internal.CreateTestConversation())
	chat := &internal.Chat{ID: 1, Title: "Release Team", UnreadCount: 2}

	// Rendering must not panic for replies, forwards or empty text
	displayChatHeader(chat, messages)
	displayChatHeader(nil, nil)
	for i, m := range messages {
		displayMessage(i+1, m, len(messages))
	}
	displayMessage(1, internal.Message{ID: 9}, 1)
}
