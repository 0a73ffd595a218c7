package telegram

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
)

// channelIDOffset is added to channel ids in the Bot API style -100<id> convention
const channelIDOffset = 1_000_000_000_000

// Kind is the type of peer a ChatRef points at
type Kind int

const (
	KindUsername Kind = iota
	KindUser
	KindChat
	KindChannel
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindChat:
		return "group"
	case KindChannel:
		return "channel"
	default:
		return "username"
	}
}

// ChatRef identifies a chat given on the command line
type ChatRef struct {
	Raw      string
	Kind     Kind
	ID       int64 // bare peer id for users, groups and channels
	Username string
}

// ParseChatRef parses a chat id or username.
//
// Ids follow the Bot API convention: -100<id> is a channel or supergroup, any
// other negative number is a basic group and a positive number is a user.
// Anything else is a username; a leading @ or t.me link prefix is removed.
func ParseChatRef(s string) (ChatRef, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return ChatRef{}, errors.New("empty chat reference")
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		switch {
		case n == 0:
			return ChatRef{}, errors.Errorf("invalid chat id %q", raw)
		case strings.HasPrefix(raw, "-100") && -n > channelIDOffset:
			return ChatRef{Raw: raw, Kind: KindChannel, ID: -n - channelIDOffset}, nil
		case n < 0:
			return ChatRef{Raw: raw, Kind: KindChat, ID: -n}, nil
		default:
			return ChatRef{Raw: raw, Kind: KindUser, ID: n}, nil
		}
	}

	name := raw
	for _, prefix := range []string{"https://", "http://"} {
		name = strings.TrimPrefix(name, prefix)
	}
	for _, prefix := range []string{"t.me/", "telegram.me/", "@"} {
		name = strings.TrimPrefix(name, prefix)
	}
	name = strings.TrimSuffix(name, "/")
	if name == "" || strings.ContainsAny(name, "/ ") {
		return ChatRef{}, errors.Errorf("invalid chat reference %q", raw)
	}

	return ChatRef{Raw: raw, Kind: KindUsername, Username: name}, nil
}

// String returns the reference as the user gave it
func (r ChatRef) String() string {
	return r.Raw
}

// BotAPIID returns the chat id in the Bot API convention
func (r ChatRef) BotAPIID() int64 {
	return botAPIID(r.Kind, r.ID)
}

func botAPIID(kind Kind, id int64) int64 {
	switch kind {
	case KindChannel:
		return -(channelIDOffset + id)
	case KindChat:
		return -id
	default:
		return id
	}
}

// matches reports whether p is the peer r points at
func (r ChatRef) matches(kind Kind, id int64) bool {
	return r.Kind == kind && r.ID == id
}

// peerKind splits a peer into its kind and bare id
func peerKind(p tg.PeerClass) (Kind, int64, bool) {
	switch v := p.(type) {
	case *tg.PeerUser:
		return KindUser, v.UserID, true
	case *tg.PeerChat:
		return KindChat, v.ChatID, true
	case *tg.PeerChannel:
		return KindChannel, v.ChannelID, true
	default:
		return KindUsername, 0, false
	}
}

// inputPeerKind splits an input peer into its kind and bare id
func inputPeerKind(p tg.InputPeerClass) (Kind, int64, bool) {
	switch v := p.(type) {
	case *tg.InputPeerUser:
		return KindUser, v.UserID, true
	case *tg.InputPeerChat:
		return KindChat, v.ChatID, true
	case *tg.InputPeerChannel:
		return KindChannel, v.ChannelID, true
	default:
		return KindUsername, 0, false
	}
}
