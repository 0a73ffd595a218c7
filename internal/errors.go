package internal

import (
	"errors"
	"fmt"
)

// ErrNoMessages is returned when a chat yields no text messages to analyze
var ErrNoMessages = errors.New("no messages found in the specified chat")

// ConfigError represents missing or malformed configuration
type ConfigError struct {
	Source string // config file path or "environment"
	Key    string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error [%s] %s: %v", e.Source, e.Key, e.Err)
	}
	return fmt.Sprintf("config error [%s]: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// FetchError represents errors retrieving messages from Telegram
type FetchError struct {
	Chat string
	Op   string // "resolve", "history", "dialogs", "auth"
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error: %s %s: %v", e.Op, e.Chat, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PromptError represents errors loading or rendering a prompt template
type PromptError struct {
	Name string
	Err  error
}

func (e *PromptError) Error() string {
	return fmt.Sprintf("prompt error [%s]: %v", e.Name, e.Err)
}

func (e *PromptError) Unwrap() error {
	return e.Err
}

// SummarizeError represents errors returned by the summarization API
type SummarizeError struct {
	Model string
	Err   error
}

func (e *SummarizeError) Error() string {
	return fmt.Sprintf("summarize error [%s]: %v", e.Model, e.Err)
}

func (e *SummarizeError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
