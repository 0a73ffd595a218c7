package cmd

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/iksnae/tgsum/internal/history"
	"github.com/iksnae/tgsum/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededWorkspace(t *testing.T) (*testutil.Workspace, map[string]string) {
	t.Helper()
	testutil.ClearSecrets(t)
	ws := testutil.NewWorkspace(t, true)
	ids := testutil.SeedHistory(t, ws.HistoryPath,
		testutil.SampleReport(-1001234567890, "Release Team"),
		testutil.SampleReport(-1009876543210, "Go News"),
	)
	require.Len(t, ids, 2)
	return ws, ids
}

func TestHistoryList(t *testing.T) {
	ws, _ := seededWorkspace(t)

	_, err := executeCommand(t, ws, "history", "list", "--limit", "1")
	assert.NoError(t, err)
}

func TestHistoryShow(t *testing.T) {
	ws, ids := seededWorkspace(t)
	out := filepath.Join(ws.Dir, "out", "summary.json")

	_, err := executeCommand(t, ws, "history", "show", shortID(ids["Release Team"]), "-f", "json", "-o", out)
	require.NoError(t, err)

	content := testutil.ReadFile(t, out)
	assert.Contains(t, content, `"title": "Release Team"`)
	assert.Contains(t, content, "The team prepared the release.")
	assert.NotContains(t, content, `"messages"`)
}

func TestHistoryShow_Errors(t *testing.T) {
	ws, _ := seededWorkspace(t)

	_, err := executeCommand(t, ws, "history", "show", "zzzz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no summary")

	_, err = executeCommand(t, ws, "history", "show", "abc", "-f", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestHistoryShow_UnreadableReport(t *testing.T) {
	ws, ids := seededWorkspace(t)
	id := ids["Go News"]

	db, err := sql.Open("sqlite", ws.HistoryPath)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE summaries SET report = ? WHERE id = ?", "{not json", id)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = executeCommand(t, ws, "history", "show", id, "-f", "markdown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreadable report")

	_, err = executeCommand(t, ws, "history", "show", ids["Release Team"], "-f", "json", "-o", filepath.Join(ws.Dir, "ok.json"))
	assert.NoError(t, err)
}

func TestHistoryDelete(t *testing.T) {
	ws, ids := seededWorkspace(t)
	id := ids["Go News"]

	_, err := executeCommand(t, ws, "history", "delete", id)
	require.NoError(t, err)

	store, err := history.Open(ws.HistoryPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(context.Background(), id)
	assert.True(t, errors.Is(err, history.ErrNotFound))

	_, err = store.Get(context.Background(), ids["Release Team"])
	assert.NoError(t, err)
}

func TestHistory_Disabled(t *testing.T) {
	testutil.ClearSecrets(t)
	ws := testutil.NewWorkspace(t, false)

	_, err := executeCommand(t, ws, "history", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history is disabled")
}

func TestHistoryError(t *testing.T) {
	assert.Contains(t, historyError("ab", history.ErrAmbiguous).Error(), "more than one")
	assert.Contains(t, historyError("ab", history.ErrNotFound).Error(), "no summary")

	other := errors.New("disk full")
	assert.Equal(t, other, historyError("ab", other))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123abcd", shortID("0123abcd-4567-89ef"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestDisplayRecords(t *testing.T) {
	// Should not panic
	displayRecords(nil)
	displayRecords([]*history.Record{{ID: "0123abcd-4567", ChatID: 42, Model: "openai/o4-mini-high"}})
}
