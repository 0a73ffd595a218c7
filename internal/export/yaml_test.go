package export

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/iksnae/tgsum/internal"
)

func TestYAMLExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(internal.CreateTestReport(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"status: success",
		"title: Release Team",
		"with_context: 3",
		"overall: The team prepared the release.",
		"text: Great, thanks",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Export() output missing %q\n%s", want, output)
		}
	}

	var decoded internal.Report
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(decoded.Messages) != 5 {
		t.Errorf("decoded %d messages, want 5", len(decoded.Messages))
	}
}
