package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/iksnae/tgsum/internal"
	"github.com/iksnae/tgsum/internal/export"
	"github.com/iksnae/tgsum/internal/prompt"
	"github.com/iksnae/tgsum/internal/telegram"
	"github.com/spf13/cobra"
)

var (
	summarizeChat            string
	summarizeUsers           []string
	summarizeLimit           int
	summarizeOutput          string
	summarizeFormat          string
	summarizeModel           string
	summarizeUnread          bool
	summarizePrompt          string
	summarizeSince           string
	summarizeNoCache         bool
	summarizeIncludeMessages bool
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize messages from a Telegram chat",
	Long: `Fetch messages from a Telegram chat and summarize them with an OpenRouter model.

The chat defaults to DEFAULT_TELEGRAM_CHANNEL_ID. With --users only messages
from those participants are summarized, together with the messages they reply
to. With --unread only messages you have not read yet are fetched.`,
	Example: `  tgsum summarize -c -1001234567890 -n 300
  tgsum summarize -c @golang_news -u alice -u bob -f markdown -o summary.md
  tgsum summarize --unread --model anthropic-3.7-sonnet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		chat := cfg.ChatRef(summarizeChat)
		if chat == "" {
			return errors.New("no chat ID provided and no DEFAULT_TELEGRAM_CHANNEL_ID set")
		}
		if _, err := telegram.ParseChatRef(chat); err != nil {
			return err
		}

		exporter, err := export.NewExporter(summarizeFormat)
		if err != nil {
			return err
		}

		since, err := parseSince(summarizeSince)
		if err != nil {
			return err
		}

		limit := summarizeLimit
		if limit <= 0 {
			limit = cfg.Settings.MessageFetching.DefaultLimit
		}

		promptName := summarizePrompt
		if promptName == "" {
			promptName = cfg.Settings.DefaultPrompt.PromptTemplateName
		}
		prompts := prompt.NewLoader(cfg.Settings.PromptsDir, promptName, cfg.Settings.DefaultPrompt.System.Prompt)

		summarizer, err := newOpenRouter(cfg)
		if err != nil {
			return err
		}

		req := internal.Request{
			ChatRef:         chat,
			Users:           splitUsers(summarizeUsers),
			Limit:           limit,
			Since:           since,
			UnreadOnly:      summarizeUnread,
			Model:           cfg.ResolveModel(summarizeModel),
			PromptName:      promptName,
			NoCache:         summarizeNoCache,
			IncludeMessages: summarizeIncludeMessages || summarizeFormat == "jsonl",
		}

		analyzer := internal.NewAnalyzer(nil, summarizer, prompts, nil)
		store, err := openHistory(cfg)
		if err != nil {
			internal.LogWarn("History unavailable: %v", err)
		} else if store != nil {
			defer store.Close()
			analyzer.Cache = store
		}

		var report *internal.Report
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		err = withTelegram(ctx, cfg, func(ctx context.Context, src *telegram.Source) error {
			analyzer.Source = src
			return internal.ShowProgress(ctx, "Analyzing "+chat, func(ctx context.Context) error {
				var runErr error
				report, runErr = analyzer.Run(ctx, req)
				return runErr
			})
		})
		if err != nil {
			return err
		}

		if report.Cached {
			internal.PrintInfo("Summary loaded from history (use --no-cache to regenerate)")
		}

		var buf bytes.Buffer
		if err := exporter.Export(report, &buf); err != nil {
			return &internal.ExportError{Format: summarizeFormat, Path: summarizeOutput, Err: err}
		}
		return internal.WriteOutput(buf.String(), summarizeOutput, summarizeFormat, export.IsMarkdown(summarizeFormat))
	},
}

// splitUsers accepts both repeated flags and comma-separated lists
func splitUsers(values []string) []string {
	var users []string
	for _, v := range values {
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				users = append(users, u)
			}
		}
	}
	return users
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVarP(&summarizeChat, "chat-id", "c", "", "Chat id or username (default: DEFAULT_TELEGRAM_CHANNEL_ID)")
	summarizeCmd.Flags().StringSliceVarP(&summarizeUsers, "users", "u", nil, "Only summarize messages from these usernames or user ids")
	summarizeCmd.Flags().IntVarP(&summarizeLimit, "num-messages", "n", 0, "Number of messages to fetch (default: message_fetching.default_limit)")
	summarizeCmd.Flags().StringVarP(&summarizeOutput, "output", "o", "", "Write the result to this file instead of stdout")
	summarizeCmd.Flags().StringVarP(&summarizeFormat, "format", "f", "text", "Output format: text, markdown, json, yaml, jsonl")
	summarizeCmd.Flags().StringVar(&summarizeModel, "model", "", "Model alias or OpenRouter model id (default: openrouter.default_model)")
	summarizeCmd.Flags().BoolVar(&summarizeUnread, "unread", false, "Only summarize unread messages")
	summarizeCmd.Flags().StringVar(&summarizePrompt, "prompt", "", "Prompt template name (default: default_prompt.prompt_template_name)")
	summarizeCmd.Flags().StringVar(&summarizeSince, "since", "", "Only fetch messages newer than this time (RFC3339, YYYY-MM-DD or duration such as 24h)")
	summarizeCmd.Flags().BoolVar(&summarizeNoCache, "no-cache", false, "Always call the model, even if an identical summary is in history")
	summarizeCmd.Flags().BoolVar(&summarizeIncludeMessages, "include-messages", false, "Include the analyzed messages in the output")
}
