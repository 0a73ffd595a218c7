package cmd

import (
	"bytes"
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/iksnae/tgsum/internal"
	"github.com/iksnae/tgsum/internal/config"
	"github.com/iksnae/tgsum/internal/export"
	"github.com/iksnae/tgsum/internal/telegram"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
	exportLimit  int
	exportSince  string
	exportUnread bool
	exportUsers  []string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <chat>",
	Short: "Export a chat transcript to file",
	Long: `Export messages from a Telegram chat without summarizing them.

The transcript is written in one of the export formats (text, md, json, yaml, jsonl).
Use 'tgsum list' to see available chat ids.`,
	Example: `  tgsum export @golang_news -n 500 -f jsonl -o golang.jsonl
  tgsum export -1001234567890 --since 24h -f md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatRef := args[0]
		if _, err := telegram.ParseChatRef(chatRef); err != nil {
			return err
		}
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}
		since, err := parseSince(exportSince)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		limit := exportLimit
		if limit <= 0 {
			limit = cfg.Settings.MessageFetching.DefaultLimit
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		chat, messages, err := fetchTranscript(ctx, cfg, chatRef, limit, since, exportUnread)
		if err != nil {
			return err
		}

		report := transcriptReport(chat, messages, splitUsers(exportUsers), exportUnread)

		var buf bytes.Buffer
		if err := exporter.Export(report, &buf); err != nil {
			return &internal.ExportError{Format: exportFormat, Path: exportOutput, Err: err}
		}
		if err := internal.WriteOutput(buf.String(), exportOutput, exportFormat, export.IsMarkdown(exportFormat)); err != nil {
			return err
		}
		if exportOutput != "" {
			internal.PrintSuccess("Exported " + plural(len(report.Messages), "message") + " to " + exportOutput)
		}
		return nil
	},
}

// fetchTranscript fetches recent or unread messages from one chat
func fetchTranscript(ctx context.Context, cfg *config.Config, chatRef string, limit int, since time.Time, unread bool) (*internal.Chat, []internal.Message, error) {
	var (
		chat     *internal.Chat
		messages []internal.Message
	)
	err := withTelegram(ctx, cfg, func(ctx context.Context, src *telegram.Source) error {
		return internal.ShowProgress(ctx, "Fetching messages from "+chatRef, func(ctx context.Context) error {
			var fetchErr error
			if unread {
				chat, messages, fetchErr = src.FetchUnread(ctx, chatRef)
			} else {
				chat, messages, fetchErr = src.FetchMessages(ctx, chatRef, limit, since)
			}
			return fetchErr
		})
	})
	if err != nil {
		return nil, nil, err
	}
	if unread {
		messages = internal.FilterSince(internal.FilterUnread(messages), since)
	}
	return chat, messages, nil
}

// transcriptReport wraps fetched messages in a report without a summary
func transcriptReport(chat *internal.Chat, messages []internal.Message, users []string, unread bool) *internal.Report {
	filtered, extended := internal.FilterByParticipants(messages, users)
	report := &internal.Report{
		Status:      internal.StatusSuccess,
		TargetUsers: users,
		Counts: internal.MessageCounts{
			Total:       len(messages),
			Filtered:    len(filtered),
			WithContext: len(extended),
		},
		DateRange:   internal.GetDateRange(filtered),
		UnreadOnly:  unread,
		GeneratedAt: time.Now().UTC(),
		Messages:    internal.SortChronologically(extended),
	}
	if chat != nil {
		report.Chat = *chat
	}
	return report
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "jsonl", "Export format: text, md, json, yaml, jsonl")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().IntVarP(&exportLimit, "limit", "n", 0, "Number of messages to fetch (default: message_fetching.default_limit)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "Only export messages newer than this time (RFC3339, YYYY-MM-DD or duration such as 24h)")
	exportCmd.Flags().BoolVar(&exportUnread, "unread", false, "Only export unread messages")
	exportCmd.Flags().StringSliceVarP(&exportUsers, "users", "u", nil, "Only export messages from these users and the messages they reply to")
}
