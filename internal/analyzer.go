package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// NoUnreadMessage is reported when an unread-only run finds nothing new
const NoUnreadMessage = "No unread messages found in the specified chat"

// MessageSource fetches messages from a chat
type MessageSource interface {
	// FetchMessages returns up to limit messages, newest first, stopping at since when it is set
	FetchMessages(ctx context.Context, chatRef string, limit int, since time.Time) (*Chat, []Message, error)
	// FetchUnread returns the chat's unread messages, newest first
	FetchUnread(ctx context.Context, chatRef string) (*Chat, []Message, error)
}

// Summarizer sends a rendered prompt to a model and returns the raw response
type Summarizer interface {
	Summarize(ctx context.Context, model, prompt string) (string, error)
}

// PromptData is the data made available to prompt templates
type PromptData struct {
	ChatTitle        string
	Participants     string // comma-joined names, "None" when empty
	ParticipantNames []string
	Messages         string
	TargetUsers      []string
}

// NewPromptData builds template data from a chat title, its participants and the transcript
func NewPromptData(title string, names []string, transcript string, users []string) PromptData {
	joined := "None"
	if len(names) > 0 {
		joined = strings.Join(names, ", ")
	}
	return PromptData{
		ChatTitle:        title,
		Participants:     joined,
		ParticipantNames: names,
		Messages:         transcript,
		TargetUsers:      users,
	}
}

// PromptBuilder renders a named prompt template
type PromptBuilder interface {
	Build(name string, data PromptData) (string, error)
}

// SummaryCache stores raw model responses keyed by SummaryDigest
type SummaryCache interface {
	Lookup(ctx context.Context, digest string) (string, bool, error)
	Save(ctx context.Context, report *Report, digest string) error
}

// Request describes one analysis run
type Request struct {
	ChatRef         string
	Users           []string
	Limit           int
	Since           time.Time
	UnreadOnly      bool
	Model           string
	PromptName      string
	NoCache         bool
	IncludeMessages bool
}

// Analyzer runs the fetch, filter, prompt and summarize pipeline
type Analyzer struct {
	Source     MessageSource
	Summarizer Summarizer
	Prompts    PromptBuilder
	Cache      SummaryCache // optional

	now func() time.Time
}

// NewAnalyzer creates an analyzer. cache may be nil.
func NewAnalyzer(source MessageSource, summarizer Summarizer, prompts PromptBuilder, cache SummaryCache) *Analyzer {
	return &Analyzer{
		Source:     source,
		Summarizer: summarizer,
		Prompts:    prompts,
		Cache:      cache,
		now:        time.Now,
	}
}

// Run fetches messages for req, summarizes them and returns the report
func (a *Analyzer) Run(ctx context.Context, req Request) (*Report, error) {
	log := Logger().WithFields(logrus.Fields{
		"chat":   req.ChatRef,
		"model":  req.Model,
		"unread": req.UnreadOnly,
	})

	chat, messages, err := a.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Status:      StatusSuccess,
		Chat:        *chat,
		TargetUsers: req.Users,
		Model:       req.Model,
		PromptName:  req.PromptName,
		UnreadOnly:  req.UnreadOnly,
		GeneratedAt: a.clock().UTC(),
	}

	if len(messages) == 0 {
		if req.UnreadOnly {
			report.Status = StatusInfo
			report.Message = NoUnreadMessage
			return report, nil
		}
		return nil, ErrNoMessages
	}

	filtered, extended := FilterByParticipants(messages, req.Users)
	report.Counts = MessageCounts{
		Total:       len(messages),
		Filtered:    len(filtered),
		WithContext: len(extended),
	}
	report.DateRange = GetDateRange(filtered)
	if req.IncludeMessages {
		report.Messages = SortChronologically(extended)
	}

	log.WithFields(logrus.Fields{
		"total":        report.Counts.Total,
		"filtered":     report.Counts.Filtered,
		"with_context": report.Counts.WithContext,
	}).Debug("Filtered messages")

	if len(extended) == 0 {
		log.Info("No messages matched the requested participants")
		return report, nil
	}

	participants := GroupByParticipant(extended)
	data := NewPromptData(chat.Title, ParticipantNames(participants), FormatTranscript(extended), req.Users)
	prompt, err := a.Prompts.Build(req.PromptName, data)
	if err != nil {
		return nil, err
	}

	digest := SummaryDigest(req.Model, prompt)
	if a.Cache != nil && !req.NoCache {
		raw, ok, err := a.Cache.Lookup(ctx, digest)
		if err != nil {
			log.Warnf("Summary cache lookup failed: %v", err)
		} else if ok {
			log.Info("Using cached summary")
			report.Summary = ParseSummary(raw)
			report.Cached = true
			return report, nil
		}
	}

	log.Infof("Generating summary using %s via OpenRouter", req.Model)
	raw, err := a.Summarizer.Summarize(ctx, req.Model, prompt)
	if err != nil {
		return nil, err
	}
	report.Summary = ParseSummary(raw)

	if a.Cache != nil {
		if err := a.Cache.Save(ctx, report, digest); err != nil {
			log.Warnf("Failed to record summary in history: %v", err)
		}
	}

	return report, nil
}

func (a *Analyzer) fetch(ctx context.Context, req Request) (*Chat, []Message, error) {
	if req.ChatRef == "" {
		return nil, nil, fmt.Errorf("no chat specified")
	}
	if !req.UnreadOnly {
		return a.Source.FetchMessages(ctx, req.ChatRef, req.Limit, req.Since)
	}
	chat, messages, err := a.Source.FetchUnread(ctx, req.ChatRef)
	if err != nil {
		return nil, nil, err
	}
	return chat, FilterSince(FilterUnread(messages), req.Since), nil
}

func (a *Analyzer) clock() time.Time {
	if a.now == nil {
		return time.Now()
	}
	return a.now()
}
