package telegram

import (
	"context"
	"math"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/message/peer"
	"github.com/gotd/td/telegram/query"
	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"

	"github.com/iksnae/tgsum/internal"
)

const maxBatchSize = 100

// Source reads dialogs and history through an authorized API client
type Source struct {
	api      *tg.Client
	resolver peer.Resolver
}

// NewSource creates a source for api
func NewSource(api *tg.Client) *Source {
	return &Source{api: api, resolver: peer.DefaultResolver(api)}
}

// dialog is a resolved chat together with its read state
type dialog struct {
	input          tg.InputPeerClass
	peer           tg.PeerClass
	chat           internal.Chat
	readInboxMaxID int
}

// resolve finds the dialog a chat reference points at
func (s *Source) resolve(ctx context.Context, raw string) (*dialog, error) {
	ref, err := ParseChatRef(raw)
	if err != nil {
		return nil, &internal.FetchError{Chat: raw, Op: "resolve", Err: err}
	}

	var resolved tg.InputPeerClass
	if ref.Kind == KindUsername {
		resolved, err = s.resolver.ResolveDomain(ctx, ref.Username)
		if err != nil {
			return nil, &internal.FetchError{Chat: raw, Op: "resolve", Err: errors.Wrapf(err, "resolve @%s", ref.Username)}
		}
		kind, id, ok := inputPeerKind(resolved)
		if !ok {
			return nil, &internal.FetchError{Chat: raw, Op: "resolve", Err: errors.Errorf("unsupported peer %T", resolved)}
		}
		ref.Kind, ref.ID = kind, id
	}

	d, err := s.findDialog(ctx, ref)
	if err != nil {
		return nil, &internal.FetchError{Chat: raw, Op: "dialogs", Err: err}
	}
	if d != nil {
		return d, nil
	}

	if resolved == nil && ref.Kind == KindChat {
		resolved = &tg.InputPeerChat{ChatID: ref.ID}
	}
	if resolved == nil {
		return nil, &internal.FetchError{Chat: raw, Op: "resolve", Err: errors.New("chat not found among dialogs")}
	}

	internal.LogWarn("Chat %s is not among your dialogs, unread state unknown", raw)
	return &dialog{
		input:          resolved,
		peer:           refPeer(ref),
		chat:           internal.Chat{ID: ref.BotAPIID(), Title: ref.Raw},
		readInboxMaxID: math.MaxInt32,
	}, nil
}

// findDialog scans the dialog list for ref; nil means not found
func (s *Source) findDialog(ctx context.Context, ref ChatRef) (*dialog, error) {
	iter := query.GetDialogs(s.api).BatchSize(maxBatchSize).Iter()
	for iter.Next(ctx) {
		elem := iter.Value()
		d, ok := elem.Dialog.(*tg.Dialog)
		if !ok {
			continue
		}
		kind, id, ok := peerKind(d.Peer)
		if !ok || !ref.matches(kind, id) {
			continue
		}

		ents := newEntities()
		ents.add(elem.Entities.Users(), elem.Entities.Chats(), elem.Entities.Channels())
		chat, _ := dialogChat(d.Peer, ents, d.UnreadCount)
		return &dialog{
			input:          elem.Peer,
			peer:           d.Peer,
			chat:           chat,
			readInboxMaxID: d.ReadInboxMaxID,
		}, nil
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate dialogs")
	}
	return nil, nil
}

func refPeer(ref ChatRef) tg.PeerClass {
	switch ref.Kind {
	case KindChannel:
		return &tg.PeerChannel{ChannelID: ref.ID}
	case KindChat:
		return &tg.PeerChat{ChatID: ref.ID}
	default:
		return &tg.PeerUser{UserID: ref.ID}
	}
}

// FetchMessages returns up to limit of the chat's latest text messages, newest
// first. Messages older than since are not fetched when since is set.
func (s *Source) FetchMessages(ctx context.Context, chatRef string, limit int, since time.Time) (*internal.Chat, []internal.Message, error) {
	d, err := s.resolve(ctx, chatRef)
	if err != nil {
		return nil, nil, err
	}
	if limit <= 0 {
		return &d.chat, nil, nil
	}

	log := internal.Logger().WithFields(logrus.Fields{"chat": d.chat.Title, "limit": limit})
	log.Info("Fetching messages from chat")

	iter := query.Messages(s.api).GetHistory(d.input).BatchSize(min(limit, maxBatchSize)).Iter()
	ents := newEntities()
	skipped := skipCounter{}
	out := make([]internal.Message, 0, limit)

	for fetched := 0; fetched < limit && iter.Next(ctx); fetched++ {
		elem := iter.Value()
		if !since.IsZero() && time.Unix(int64(elem.Msg.GetDate()), 0).Before(since) {
			break
		}
		ents.add(elem.Entities.Users(), elem.Entities.Chats(), elem.Entities.Channels())

		if skipped.record(elem.Msg) {
			continue
		}
		msg := elem.Msg.(*tg.Message)
		out = append(out, convertMessage(msg, d.peer, ents, d.readInboxMaxID))
	}
	if err := iter.Err(); err != nil {
		return nil, nil, &internal.FetchError{Chat: chatRef, Op: "history", Err: errors.Wrap(err, "iterate history")}
	}

	log.WithField("skipped", skipped.total()).Infof("Successfully fetched %d messages", len(out))
	return &d.chat, out, nil
}

// FetchUnread returns the text messages newer than the chat's read watermark, newest
// first. Outgoing messages are included but not flagged unread.
func (s *Source) FetchUnread(ctx context.Context, chatRef string) (*internal.Chat, []internal.Message, error) {
	d, err := s.resolve(ctx, chatRef)
	if err != nil {
		return nil, nil, err
	}

	unread := d.chat.UnreadCount
	log := internal.Logger().WithFields(logrus.Fields{"chat": d.chat.Title, "unread": unread})
	if unread == 0 {
		log.Info("No unread messages")
		return &d.chat, nil, nil
	}
	log.Info("Fetching unread messages")

	iter := query.Messages(s.api).GetHistory(d.input).BatchSize(min(unread, maxBatchSize)).Iter()
	ents := newEntities()
	skipped := skipCounter{}
	out := make([]internal.Message, 0, unread)

	seen := 0
	for seen < unread && iter.Next(ctx) {
		elem := iter.Value()
		if elem.Msg.GetID() <= d.readInboxMaxID {
			break
		}
		seen++
		ents.add(elem.Entities.Users(), elem.Entities.Chats(), elem.Entities.Channels())

		if skipped.record(elem.Msg) {
			continue
		}
		out = append(out, convertMessage(elem.Msg.(*tg.Message), d.peer, ents, d.readInboxMaxID))
	}
	if err := iter.Err(); err != nil {
		return nil, nil, &internal.FetchError{Chat: chatRef, Op: "history", Err: errors.Wrap(err, "iterate unread history")}
	}

	if n := skipped.total(); n > 0 {
		log.Infof("Summary: %d total, %d processed, %d skipped (%s)", seen, len(out), n, skipped)
	} else {
		log.Infof("Summary: %d total, %d processed", seen, len(out))
	}
	return &d.chat, out, nil
}

// ListDialogs returns up to limit dialogs in the order Telegram lists them
func (s *Source) ListDialogs(ctx context.Context, limit int) ([]internal.Chat, error) {
	batch := maxBatchSize
	if limit > 0 {
		batch = min(limit, maxBatchSize)
	}
	iter := query.GetDialogs(s.api).BatchSize(batch).Iter()
	chats := make([]internal.Chat, 0)

	for (limit <= 0 || len(chats) < limit) && iter.Next(ctx) {
		elem := iter.Value()
		d, ok := elem.Dialog.(*tg.Dialog)
		if !ok {
			continue
		}
		ents := newEntities()
		ents.add(elem.Entities.Users(), elem.Entities.Chats(), elem.Entities.Channels())
		if chat, ok := dialogChat(d.Peer, ents, d.UnreadCount); ok {
			chats = append(chats, chat)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, &internal.FetchError{Op: "dialogs", Err: errors.Wrap(err, "iterate dialogs")}
	}
	return chats, nil
}
