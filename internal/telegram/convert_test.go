package telegram

import (
	"testing"
	"time"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
)

var testDate = time.Date(2025, 5, 20, 9, 30, 0, 0, time.UTC)

func testEntities() *entities {
	ents := newEntities()
	ents.add(
		map[int64]*tg.User{
			101: {ID: 101, Username: "alice", FirstName: "Alice"},
			102: {ID: 102, FirstName: "Bob", LastName: "Smith"},
			103: {ID: 103},
		},
		map[int64]*tg.Chat{
			300: {ID: 300, Title: "Family"},
		},
		map[int64]*tg.Channel{
			200: {ID: 200, Title: "Upstream News"},
		},
	)
	return ents
}

func textMessage(id int, from tg.PeerClass, text string) *tg.Message {
	msg := &tg.Message{
		ID:      id,
		Date:    int(testDate.Unix()),
		Message: text,
		PeerID:  &tg.PeerChannel{ChannelID: 999},
	}
	if from != nil {
		msg.SetFromID(from)
	}
	return msg
}

func TestPeerName(t *testing.T) {
	ents := testEntities()

	tests := []struct {
		name string
		peer tg.PeerClass
		want string
	}{
		{name: "username", peer: &tg.PeerUser{UserID: 101}, want: "@alice"},
		{name: "full name", peer: &tg.PeerUser{UserID: 102}, want: "Bob Smith"},
		{name: "nameless user", peer: &tg.PeerUser{UserID: 103}, want: "Unknown User"},
		{name: "missing user", peer: &tg.PeerUser{UserID: 999}, want: "Unknown User"},
		{name: "channel", peer: &tg.PeerChannel{ChannelID: 200}, want: "Upstream News"},
		{name: "missing channel", peer: &tg.PeerChannel{ChannelID: 201}, want: "Unknown Channel"},
		{name: "group", peer: &tg.PeerChat{ChatID: 300}, want: "Family"},
		{name: "nil", peer: nil, want: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ents.peerName(tt.peer))
		})
	}
}

func TestConvertMessage(t *testing.T) {
	ents := testEntities()
	chat := &tg.PeerChannel{ChannelID: 999}

	msg := textMessage(10, &tg.PeerUser{UserID: 102}, "Do we have the changelog?")
	got := convertMessage(msg, chat, ents, 5)

	assert.Equal(t, 10, got.ID)
	assert.Equal(t, testDate, got.Timestamp)
	assert.Equal(t, int64(102), got.SenderID)
	assert.Equal(t, "Bob Smith", got.SenderName)
	assert.Equal(t, "Do we have the changelog?", got.Text)
	assert.True(t, got.Unread)
	assert.False(t, got.IsReply())
	assert.False(t, got.Forwarded)

	// at or below the watermark is read
	assert.False(t, convertMessage(msg, chat, ents, 10).Unread)
}

func TestConvertMessage_OutgoingNeverUnread(t *testing.T) {
	msg := textMessage(20, &tg.PeerUser{UserID: 101}, "sent from this account")
	msg.Out = true

	got := convertMessage(msg, &tg.PeerChannel{ChannelID: 999}, testEntities(), 5)
	assert.False(t, got.Unread)
}

func TestConvertMessage_Reply(t *testing.T) {
	msg := textMessage(11, &tg.PeerUser{UserID: 101}, "Yes")
	reply := &tg.MessageReplyHeader{}
	reply.SetReplyToMsgID(10)
	msg.SetReplyTo(reply)

	got := convertMessage(msg, nil, testEntities(), 100)
	assert.Equal(t, 10, got.ReplyToID)
	assert.Equal(t, "@alice", got.SenderName)
}

func TestConvertMessage_ChannelPost(t *testing.T) {
	msg := textMessage(12, nil, "Announcement")
	got := convertMessage(msg, &tg.PeerChannel{ChannelID: 200}, testEntities(), 0)

	assert.Equal(t, "Upstream News", got.SenderName)
	assert.Equal(t, int64(200), got.SenderID)
}

func TestConvertMessage_Forwarded(t *testing.T) {
	tests := []struct {
		name string
		fwd  func() tg.MessageFwdHeader
		want string
	}{
		{
			name: "from name",
			fwd: func() tg.MessageFwdHeader {
				h := tg.MessageFwdHeader{Date: int(testDate.Unix())}
				h.SetFromName("Hidden Author")
				return h
			},
			want: "Hidden Author",
		},
		{
			name: "from channel",
			fwd: func() tg.MessageFwdHeader {
				h := tg.MessageFwdHeader{Date: int(testDate.Unix())}
				h.SetFromID(&tg.PeerChannel{ChannelID: 200})
				return h
			},
			want: "Upstream News",
		},
		{
			name: "unknown",
			fwd: func() tg.MessageFwdHeader {
				return tg.MessageFwdHeader{Date: int(testDate.Unix())}
			},
			want: "Unknown Source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := textMessage(13, &tg.PeerUser{UserID: 101}, "Release notes")
			msg.SetFwdFrom(tt.fwd())

			got := convertMessage(msg, nil, testEntities(), 0)
			assert.True(t, got.Forwarded)
			assert.Equal(t, tt.want, got.ForwardedFrom)
		})
	}
}

func TestSkipCounter(t *testing.T) {
	photo := textMessage(1, nil, "")
	photo.SetMedia(&tg.MessageMediaPhoto{})

	sticker := textMessage(2, nil, "")
	stickerMedia := &tg.MessageMediaDocument{}
	stickerMedia.SetDocument(&tg.Document{Attributes: []tg.DocumentAttributeClass{&tg.DocumentAttributeSticker{}}})
	sticker.SetMedia(stickerMedia)

	voice := textMessage(3, nil, "")
	voiceMedia := &tg.MessageMediaDocument{}
	voiceMedia.SetDocument(&tg.Document{Attributes: []tg.DocumentAttributeClass{&tg.DocumentAttributeAudio{Voice: true}}})
	voice.SetMedia(voiceMedia)

	poll := textMessage(4, nil, "")
	poll.SetMedia(&tg.MessageMediaPoll{})

	captioned := textMessage(5, nil, "look at this")
	captioned.SetMedia(&tg.MessageMediaPhoto{})

	skipped := skipCounter{}
	assert.True(t, skipped.record(photo))
	assert.True(t, skipped.record(sticker))
	assert.True(t, skipped.record(voice))
	assert.True(t, skipped.record(poll))
	assert.True(t, skipped.record(&tg.MessageService{ID: 6}))
	assert.True(t, skipped.record(textMessage(7, nil, "   ")))
	assert.False(t, skipped.record(captioned))

	assert.Equal(t, 6, skipped.total())
	assert.Equal(t, "empty: 1, photo: 1, poll: 1, service: 1, sticker: 1, voice: 1", skipped.String())
}

func TestMediaKind(t *testing.T) {
	video := &tg.MessageMediaDocument{}
	video.SetDocument(&tg.Document{Attributes: []tg.DocumentAttributeClass{
		&tg.DocumentAttributeFilename{FileName: "clip.mp4"},
		&tg.DocumentAttributeVideo{},
	}})

	tests := []struct {
		name  string
		media tg.MessageMediaClass
		want  string
	}{
		{name: "video", media: video, want: "video"},
		{name: "bare document", media: &tg.MessageMediaDocument{}, want: "document"},
		{name: "contact", media: &tg.MessageMediaContact{}, want: "contact"},
		{name: "geo", media: &tg.MessageMediaGeo{}, want: "location"},
		{name: "venue", media: &tg.MessageMediaVenue{}, want: "location"},
		{name: "dice", media: &tg.MessageMediaDice{}, want: "dice"},
		{name: "unsupported", media: &tg.MessageMediaUnsupported{}, want: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mediaKind(tt.media))
		})
	}
}

func TestDialogChat(t *testing.T) {
	ents := testEntities()

	chat, ok := dialogChat(&tg.PeerChannel{ChannelID: 200}, ents, 3)
	assert.True(t, ok)
	assert.Equal(t, int64(-1000000000200), chat.ID)
	assert.Equal(t, "Upstream News", chat.Title)
	assert.Equal(t, 3, chat.UnreadCount)

	chat, ok = dialogChat(&tg.PeerUser{UserID: 101}, ents, 0)
	assert.True(t, ok)
	assert.Equal(t, "Alice", chat.Title)

	chat, ok = dialogChat(&tg.PeerChat{ChatID: 300}, ents, 0)
	assert.True(t, ok)
	assert.Equal(t, int64(-300), chat.ID)
}
