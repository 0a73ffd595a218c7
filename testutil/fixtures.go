package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/iksnae/tgsum/internal"
	"github.com/iksnae/tgsum/internal/history"
)

// Workspace is a temporary directory holding a settings file, an env file and a history database
type Workspace struct {
	Dir         string
	ConfigPath  string
	EnvPath     string
	HistoryPath string
}

// NewWorkspace creates a workspace whose settings point the history database and prompt
// directory inside it. History is disabled when historyEnabled is false.
func NewWorkspace(t *testing.T, historyEnabled bool) *Workspace {
	t.Helper()
	dir := t.TempDir()
	ws := &Workspace{
		Dir:         dir,
		EnvPath:     filepath.Join(dir, ".env"),
		HistoryPath: filepath.Join(dir, "history.db"),
	}
	ws.ConfigPath = WriteFile(t, dir, "config.yaml", fmt.Sprintf(`message_fetching:
  default_limit: 50
prompts_dir: %q
history:
  path: %q
  enabled: %t
`, filepath.Join(dir, "prompts"), ws.HistoryPath, historyEnabled))
	return ws
}

// SampleReport returns a summarised report for chat with the given title
func SampleReport(chatID int64, title string) *internal.Report {
	report := internal.CreateTestReport()
	report.Chat = internal.Chat{ID: chatID, Title: title}
	report.Summary.Raw = "```overall\n" + report.Summary.Overall + "\n```"
	return report
}

// SeedHistory stores reports in the history database at path and returns the ids
// keyed by chat title
func SeedHistory(t *testing.T, path string, reports ...*internal.Report) map[string]string {
	t.Helper()
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Failed to open history: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	for i, r := range reports {
		if err := store.Save(ctx, r, fmt.Sprintf("digest-%d", i)); err != nil {
			t.Fatalf("Failed to save report %d: %v", i, err)
		}
	}

	records, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	ids := make(map[string]string, len(records))
	for _, r := range records {
		ids[r.ChatTitle] = r.ID
	}
	return ids
}
