package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iksnae/tgsum/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(internal.CreateTestReport(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded["status"] != "success" {
		t.Errorf("status = %v, want success", decoded["status"])
	}
	counts, ok := decoded["message_count"].(map[string]interface{})
	if !ok {
		t.Fatalf("message_count missing: %v", decoded)
	}
	if counts["with_context"] != float64(3) {
		t.Errorf("with_context = %v, want 3", counts["with_context"])
	}
	summary, ok := decoded["summary"].(map[string]interface{})
	if !ok {
		t.Fatalf("summary missing: %v", decoded)
	}
	if summary["overall"] != "The team prepared the release." {
		t.Errorf("overall = %v", summary["overall"])
	}
	if _, ok := summary["Raw"]; ok {
		t.Error("raw response should not be exported")
	}
	if msgs, ok := decoded["messages"].([]interface{}); !ok || len(msgs) != 5 {
		t.Errorf("messages = %v, want 5 entries", decoded["messages"])
	}

	// pretty printed
	if !bytes.Contains(buf.Bytes(), []byte("\n  \"status\"")) {
		t.Error("Export() output is not indented")
	}
}
