package internal

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	originalErr := errors.New("not set")
	err := &ConfigError{
		Source: "environment",
		Key:    "TELEGRAM_API_HASH",
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "config error") {
		t.Errorf("ConfigError.Error() should contain 'config error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "TELEGRAM_API_HASH") {
		t.Errorf("ConfigError.Error() should contain key, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("ConfigError.Unwrap() should return original error")
	}

	noKey := &ConfigError{Source: "config.yaml", Err: originalErr}
	if got := noKey.Error(); got != "config error [config.yaml]: not set" {
		t.Errorf("ConfigError.Error() without key = %q", got)
	}
}

func TestFetchError(t *testing.T) {
	originalErr := errors.New("CHANNEL_PRIVATE")
	err := &FetchError{
		Chat: "-1001234567890",
		Op:   "history",
		Err:  originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "fetch error") {
		t.Errorf("FetchError.Error() should contain 'fetch error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "-1001234567890") {
		t.Errorf("FetchError.Error() should contain chat, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("FetchError.Unwrap() should return original error")
	}
}

func TestPromptError(t *testing.T) {
	originalErr := errors.New("template not found")
	err := &PromptError{Name: "overall_prompt", Err: originalErr}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "prompt error") || !strings.Contains(errorMsg, "overall_prompt") {
		t.Errorf("PromptError.Error() = %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("PromptError.Unwrap() should return original error")
	}
}

func TestSummarizeError(t *testing.T) {
	originalErr := errors.New("401 Unauthorized")
	err := &SummarizeError{Model: "openai/o4-mini-high", Err: originalErr}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "summarize error") || !strings.Contains(errorMsg, "openai/o4-mini-high") {
		t.Errorf("SummarizeError.Error() = %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("SummarizeError.Unwrap() should return original error")
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("write failed")
	err := &ExportError{
		Format: "markdown",
		Path:   "/output/summary.md",
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "export error") {
		t.Errorf("ExportError.Error() should contain 'export error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "markdown") {
		t.Errorf("ExportError.Error() should contain format, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("ExportError.Unwrap() should return original error")
	}
}
