package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iksnae/tgsum/internal"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var obj map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &obj); err != nil {
			t.Fatalf("line %q is not valid JSON: %v", scanner.Text(), err)
		}
		lines = append(lines, obj)
	}
	return lines
}

func TestJSONLExporter_Export(t *testing.T) {
	report := internal.CreateTestReport()
	report.Summary = nil

	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(report, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := decodeLines(t, &buf)
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}

	tests := []struct {
		line  int
		key   string
		value interface{}
	}{
		{line: 0, key: "id", value: float64(5)},
		{line: 0, key: "reply_to_id", value: float64(3)},
		{line: 0, key: "unread", value: true},
		{line: 1, key: "forwarded_from", value: "Upstream News"},
		{line: 4, key: "sender", value: "@alice"},
		{line: 4, key: "timestamp", value: "2025-05-20 09:00:00"},
		{line: 4, key: "chat", value: "Release Team"},
	}
	for _, tt := range tests {
		if got := lines[tt.line][tt.key]; got != tt.value {
			t.Errorf("line %d %s = %v, want %v", tt.line, tt.key, got, tt.value)
		}
	}
	if _, ok := lines[4]["reply_to_id"]; ok {
		t.Error("reply_to_id should be omitted for non-replies")
	}
}

func TestJSONLExporter_SummaryWithMessages(t *testing.T) {
	report := internal.CreateTestReport()
	report.Summary = internal.ParseSummary("```overall\nRelease shipped.\n```")

	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(report, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := decodeLines(t, &buf)
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want summary line plus 5 messages", len(lines))
	}

	summary, ok := lines[0]["summary"].(map[string]interface{})
	if !ok {
		t.Fatalf("first line has no summary: %v", lines[0])
	}
	if summary["overall"] != "Release shipped." {
		t.Errorf("summary overall = %v, want %q", summary["overall"], "Release shipped.")
	}
	if _, ok := lines[0]["messages"]; ok {
		t.Error("summary line should not repeat the messages")
	}
	if lines[1]["id"] != float64(5) {
		t.Errorf("second line id = %v, want 5", lines[1]["id"])
	}
	if len(report.Messages) != 5 {
		t.Error("Export() should not modify the report")
	}
}

func TestJSONLExporter_NoMessages(t *testing.T) {
	report := internal.CreateTestReport()
	report.Messages = nil

	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(report, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if n := bytes.Count(buf.Bytes(), []byte("\n")); n != 1 {
		t.Errorf("got %d lines, want 1", n)
	}
}
