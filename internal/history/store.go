// Package history records past summaries in a local SQLite database.
// The store doubles as the summary cache, keyed by prompt digest.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/iksnae/tgsum/internal"
)

var (
	// ErrNotFound is returned when no record matches an id
	ErrNotFound = errors.New("history record not found")
	// ErrAmbiguous is returned when an id prefix matches more than one record
	ErrAmbiguous = errors.New("id prefix matches more than one record")
)

const schema = `
CREATE TABLE IF NOT EXISTS summaries (
	id            TEXT PRIMARY KEY,
	chat_id       INTEGER NOT NULL,
	chat_title    TEXT NOT NULL,
	model         TEXT NOT NULL,
	prompt_name   TEXT NOT NULL,
	message_count INTEGER NOT NULL,
	digest        TEXT NOT NULL,
	raw_summary   TEXT NOT NULL,
	report        TEXT NOT NULL,
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_summaries_digest ON summaries(digest);
CREATE INDEX IF NOT EXISTS idx_summaries_created_at ON summaries(created_at);
`

const selectColumns = "id, chat_id, chat_title, model, prompt_name, message_count, digest, raw_summary, report, created_at"

// Record is one stored summary
type Record struct {
	ID           string
	ChatID       int64
	ChatTitle    string
	Model        string
	PromptName   string
	MessageCount int
	Digest       string
	RawSummary   string
	Report       *internal.Report
	CreatedAt    time.Time
}

// Store is a SQLite-backed history of summaries
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the history database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records a summarised report under digest
func (s *Store) Save(ctx context.Context, report *internal.Report, digest string) error {
	if !report.HasSummary() {
		return errors.New("report has no summary to record")
	}

	stored := *report
	stored.Messages = nil
	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO summaries ("+selectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id,
		report.Chat.ID,
		report.Chat.Title,
		report.Model,
		report.PromptName,
		report.Counts.WithContext,
		digest,
		report.Summary.Raw,
		string(data),
		s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}

	internal.LogDebug("Recorded summary %s", id)
	return nil
}

// Lookup returns the raw summary most recently stored under digest
func (s *Store) Lookup(ctx context.Context, digest string) (string, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT raw_summary FROM summaries WHERE digest = ? ORDER BY created_at DESC LIMIT 1",
		digest,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup failed: %w", err)
	}
	return raw, true, nil
}

// List returns up to limit records, newest first. A limit of zero lists all.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	query := "SELECT " + selectColumns + " FROM summaries ORDER BY created_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Get returns the record whose id is, or uniquely starts with, id
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	prefix := stripWildcards(id)
	if prefix == "" {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM summaries WHERE id = ? OR id LIKE ? ORDER BY created_at DESC LIMIT 2",
		id, prefix+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	switch len(records) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return records[0], nil
	default:
		for _, r := range records {
			if r.ID == id {
				return r, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
}

// Delete removes the record identified by id or a unique id prefix
func (s *Store) Delete(ctx context.Context, id string) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM summaries WHERE id = ?", record.ID); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		var (
			r         Record
			report    string
			createdAt int64
		)
		if err := rows.Scan(&r.ID, &r.ChatID, &r.ChatTitle, &r.Model, &r.PromptName,
			&r.MessageCount, &r.Digest, &r.RawSummary, &report, &createdAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		r.CreatedAt = time.UnixMilli(createdAt).UTC()

		var rep internal.Report
		if err := json.Unmarshal([]byte(report), &rep); err != nil {
			internal.LogWarn("Skipping unreadable report for %s: %v", r.ID, err)
		} else {
			if rep.Summary != nil {
				rep.Summary.Raw = r.RawSummary
			}
			r.Report = &rep
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return records, nil
}

// stripWildcards drops LIKE wildcards, which never occur in ids
func stripWildcards(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' || s[i] == '_' {
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
