package telegram

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gotd/td/tg"

	"github.com/iksnae/tgsum/internal"
)

const (
	unknownSender  = "Unknown"
	unknownUser    = "Unknown User"
	unknownChannel = "Unknown Channel"
	unknownSource  = "Unknown Source"
)

// entities indexes the users, groups and channels returned alongside messages
type entities struct {
	users    map[int64]*tg.User
	chats    map[int64]*tg.Chat
	channels map[int64]*tg.Channel
}

func newEntities() *entities {
	return &entities{
		users:    make(map[int64]*tg.User),
		chats:    make(map[int64]*tg.Chat),
		channels: make(map[int64]*tg.Channel),
	}
}

// add merges the entities of one response page
func (e *entities) add(users map[int64]*tg.User, chats map[int64]*tg.Chat, channels map[int64]*tg.Channel) {
	for id, u := range users {
		e.users[id] = u
	}
	for id, c := range chats {
		e.chats[id] = c
	}
	for id, c := range channels {
		e.channels[id] = c
	}
}

// peerName returns the display name of the user, group or channel p
func (e *entities) peerName(p tg.PeerClass) string {
	switch v := p.(type) {
	case *tg.PeerUser:
		u, ok := e.users[v.UserID]
		if !ok {
			return unknownUser
		}
		return userName(u)
	case *tg.PeerChannel:
		c, ok := e.channels[v.ChannelID]
		if !ok || c.Title == "" {
			return unknownChannel
		}
		return c.Title
	case *tg.PeerChat:
		c, ok := e.chats[v.ChatID]
		if !ok || c.Title == "" {
			return unknownSender
		}
		return c.Title
	default:
		return unknownSender
	}
}

// peerTitle returns the title of a dialog peer
func (e *entities) peerTitle(p tg.PeerClass) string {
	if u, ok := p.(*tg.PeerUser); ok {
		if user, ok := e.users[u.UserID]; ok {
			if full := fullName(user); full != "" {
				return full
			}
		}
	}
	return e.peerName(p)
}

// userName prefers @username, then the full name
func userName(u *tg.User) string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if full := fullName(u); full != "" {
		return full
	}
	return unknownUser
}

func fullName(u *tg.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// convertMessage maps a Telegram message to the internal model.
// readInboxMaxID is the dialog's read watermark; later messages are unread.
func convertMessage(msg *tg.Message, chatPeer tg.PeerClass, ents *entities, readInboxMaxID int) internal.Message {
	m := internal.Message{
		ID:        msg.ID,
		Timestamp: time.Unix(int64(msg.Date), 0).UTC(),
		Text:      msg.Message,
		Unread:    !msg.Out && msg.ID > readInboxMaxID,
	}

	from, ok := msg.GetFromID()
	if !ok {
		// channel posts and private chats carry no sender
		from = chatPeer
	}
	if from != nil {
		if _, id, ok := peerKind(from); ok {
			m.SenderID = id
		}
		m.SenderName = ents.peerName(from)
	} else {
		m.SenderName = unknownSender
	}

	if reply, ok := msg.GetReplyTo(); ok {
		if h, ok := reply.(*tg.MessageReplyHeader); ok {
			if id, ok := h.GetReplyToMsgID(); ok {
				m.ReplyToID = id
			}
		}
	}

	if fwd, ok := msg.GetFwdFrom(); ok {
		m.Forwarded = true
		m.ForwardedFrom = forwardedFrom(fwd, ents)
	}

	return m
}

// forwardedFrom names the original author of a forwarded message
func forwardedFrom(fwd tg.MessageFwdHeader, ents *entities) string {
	if name, ok := fwd.GetFromName(); ok && name != "" {
		return name
	}
	if from, ok := fwd.GetFromID(); ok {
		if name := ents.peerName(from); name != unknownSender {
			return name
		}
	}
	return unknownSource
}

// skipCounter tallies messages left out of a fetch, by type
type skipCounter map[string]int

// record notes msg as skipped when it has no text and reports whether it was
func (s skipCounter) record(msg tg.NotEmptyMessage) bool {
	switch m := msg.(type) {
	case *tg.Message:
		if strings.TrimSpace(m.Message) != "" {
			return false
		}
		media, ok := m.GetMedia()
		if !ok {
			s["empty"]++
			return true
		}
		s[mediaKind(media)]++
		return true
	case *tg.MessageService:
		s["service"]++
		return true
	default:
		s["empty"]++
		return true
	}
}

// String renders the counts as "photo: 2, sticker: 1"
func (s skipCounter) String() string {
	kinds := make([]string, 0, len(s))
	for k := range s {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s: %d", k, s[k]))
	}
	return strings.Join(parts, ", ")
}

func (s skipCounter) total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

// mediaKind names the type of media attached to a message
func mediaKind(media tg.MessageMediaClass) string {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		return "photo"
	case *tg.MessageMediaDocument:
		return documentKind(m)
	case *tg.MessageMediaPoll:
		return "poll"
	case *tg.MessageMediaContact:
		return "contact"
	case *tg.MessageMediaGeo, *tg.MessageMediaGeoLive, *tg.MessageMediaVenue:
		return "location"
	case *tg.MessageMediaWebPage:
		return "webpage"
	case *tg.MessageMediaDice:
		return "dice"
	case *tg.MessageMediaGame:
		return "game"
	case *tg.MessageMediaInvoice:
		return "invoice"
	default:
		return "other"
	}
}

func documentKind(m *tg.MessageMediaDocument) string {
	docClass, ok := m.GetDocument()
	if !ok {
		return "document"
	}
	doc, ok := docClass.(*tg.Document)
	if !ok {
		return "document"
	}

	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeSticker:
			return "sticker"
		case *tg.DocumentAttributeAnimated:
			return "gif"
		case *tg.DocumentAttributeVideo:
			if a.RoundMessage {
				return "video_note"
			}
			return "video"
		case *tg.DocumentAttributeAudio:
			if a.Voice {
				return "voice"
			}
			return "audio"
		}
	}
	return "document"
}

// dialogChat builds the chat summary shown by ListDialogs
func dialogChat(p tg.PeerClass, ents *entities, unread int) (internal.Chat, bool) {
	kind, id, ok := peerKind(p)
	if !ok {
		return internal.Chat{}, false
	}
	return internal.Chat{
		ID:          botAPIID(kind, id),
		Title:       ents.peerTitle(p),
		UnreadCount: unread,
	}, true
}
