package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/tgsum/internal"
)

// TextExporter exports reports as plain text
type TextExporter struct{}

// Export exports a report as plain text
func (e *TextExporter) Export(report *internal.Report, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "Telegram Chat: %s\n", report.Chat.Title)
	if report.Status != internal.StatusSuccess {
		_, _ = fmt.Fprintf(w, "%s\n", report.Message)
		return nil
	}

	if len(report.TargetUsers) > 0 {
		_, _ = fmt.Fprintf(w, "Users: %s\n", strings.Join(report.TargetUsers, ", "))
	}
	if report.UnreadOnly {
		_, _ = fmt.Fprintf(w, "Unread: %d\n", report.Chat.UnreadCount)
	}
	_, _ = fmt.Fprintf(w, "Messages: %d (with context: %d)\n", report.Counts.Filtered, report.Counts.WithContext)
	_, _ = fmt.Fprintf(w, "Date Range: %s\n", report.DateRange)

	if report.HasSummary() {
		_, _ = fmt.Fprintf(w, "\nSummary:\n%s\n", internal.CleanSummary(report.Summary.Overall))
		if len(report.Summary.Participants) > 0 {
			_, _ = fmt.Fprintf(w, "\nBy participant:\n")
			for _, p := range report.Summary.Participants {
				_, _ = fmt.Fprintf(w, "  %s: %s\n", p.Name, internal.CleanSummary(p.Summary))
			}
		}
	}

	if len(report.Messages) > 0 {
		_, _ = fmt.Fprintf(w, "\n%s\n", internal.FormatTranscript(report.Messages))
	}
	return nil
}

// Extension returns the file extension for this format
func (e *TextExporter) Extension() string {
	return "txt"
}
