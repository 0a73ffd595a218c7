package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/tgsum/internal"
)

// JSONLExporter exports reports in JSONL format (one message per line).
// A summarised report starts with a line holding the report without its messages.
// A report without messages is written as a single line.
type JSONLExporter struct{}

// Export exports a report to JSONL format
func (e *JSONLExporter) Export(report *internal.Report, w io.Writer) error {
	enc := json.NewEncoder(w)

	if len(report.Messages) == 0 {
		return enc.Encode(report)
	}

	if report.HasSummary() {
		head := *report
		head.Messages = nil
		if err := enc.Encode(&head); err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
	}

	for _, msg := range report.Messages {
		obj := map[string]interface{}{
			"id":        msg.ID,
			"chat":      report.Chat.Title,
			"sender":    msg.SenderName,
			"text":      msg.Text,
			"timestamp": msg.FormattedTime(),
		}
		if msg.SenderID != 0 {
			obj["sender_id"] = msg.SenderID
		}
		if msg.IsReply() {
			obj["reply_to_id"] = msg.ReplyToID
		}
		if msg.Forwarded {
			obj["forwarded_from"] = msg.ForwardedFrom
		}
		if msg.Unread {
			obj["unread"] = true
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
