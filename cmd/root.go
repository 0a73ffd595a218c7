package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iksnae/tgsum/internal"
	"github.com/iksnae/tgsum/internal/config"
	"github.com/iksnae/tgsum/internal/history"
	"github.com/iksnae/tgsum/internal/openrouter"
	"github.com/iksnae/tgsum/internal/telegram"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	envFile    string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tgsum",
	Short: "Summarize Telegram chats with OpenRouter models",
	Long: `A CLI tool that fetches messages from a Telegram chat and summarizes them
with a language model served by OpenRouter.

Messages can be filtered by participant (replies they answer are kept as
context) or limited to what you have not read yet. Prompts are markdown
templates, and summaries can be written as text, Markdown, JSON, YAML or JSONL.

Features:
  • Summarize a chat, a set of participants, or only unread messages
  • Browse dialogs and transcripts without summarizing
  • Custom prompt templates with conversation placeholders
  • Local history of past summaries, reused as a cache

Quick Start:
  tgsum session                          # Log in and create a session string
  tgsum list                             # List your chats
  tgsum summarize -c @channel -n 200     # Summarize the last 200 messages
  tgsum summarize --unread -f markdown   # Summarize unread messages

Secrets are read from the environment or a .env file:
  TELEGRAM_API_ID, TELEGRAM_API_HASH, TELEGRAM_STRING_SESSION,
  DEFAULT_TELEGRAM_CHANNEL_ID, OPENROUTER_API_KEY`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Settings file (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load secrets from this file instead of .env and .env.local")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig loads settings and secrets using the persistent flags
func loadConfig() (*config.Config, error) {
	envFiles := config.DefaultEnvFiles
	if envFile != "" {
		envFiles = []string{envFile}
	}
	return config.Load(configPath, envFiles)
}

// telegramOptions maps configuration to Telegram client options
func telegramOptions(cfg *config.Config) telegram.Options {
	tc := cfg.Settings.TelegramClient
	return telegram.Options{
		AppID:             cfg.Secrets.TelegramAPIID,
		AppHash:           cfg.Secrets.TelegramAPIHash,
		StringSession:     cfg.Secrets.TelegramStringSession,
		DeviceModel:       tc.DeviceModel,
		SystemVersion:     tc.SystemVersion,
		AppVersion:        tc.AppVersion,
		SystemLangCode:    tc.SystemLangCode,
		LangCode:          tc.LangCode,
		RequestsPerSecond: tc.RequestsPerSecond,
	}
}

// withTelegram opens an authorized Telegram connection and runs fn with it
func withTelegram(ctx context.Context, cfg *config.Config, fn func(ctx context.Context, src *telegram.Source) error) error {
	if err := cfg.RequireSession(); err != nil {
		return err
	}
	client, err := telegram.New(ctx, telegramOptions(cfg))
	if err != nil {
		return &internal.ConfigError{Source: "environment", Key: "TELEGRAM_STRING_SESSION", Err: err}
	}
	return client.Run(ctx, fn)
}

// newOpenRouter creates the summarization client from configuration
func newOpenRouter(cfg *config.Config) (*openrouter.Client, error) {
	if err := cfg.RequireOpenRouter(); err != nil {
		return nil, err
	}
	or := cfg.Settings.OpenRouter
	return openrouter.New(openrouter.Options{
		APIKey:      cfg.Secrets.OpenRouterAPIKey,
		BaseURL:     or.BaseURL,
		Timeout:     or.Timeout,
		MaxRetries:  or.MaxRetries,
		Temperature: or.Temperature,
		MaxTokens:   or.MaxTokens,
		AppName:     or.AppName,
		AppURL:      or.AppURL,
	}), nil
}

// openHistory opens the history store, or returns nil when history is disabled
func openHistory(cfg *config.Config) (*history.Store, error) {
	if !cfg.Settings.History.Enabled {
		return nil, nil
	}
	return history.Open(cfg.Settings.History.Path)
}

// parseSince parses a --since value: RFC3339, a date, or a duration ago such as 24h
func parseSince(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(internal.TimestampLayout, s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return t, nil
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return time.Now().Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("invalid --since value %q (expected RFC3339, YYYY-MM-DD or a duration like 24h)", s)
}
