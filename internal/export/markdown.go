package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/tgsum/internal"
)

// MarkdownExporter exports reports in Markdown format
type MarkdownExporter struct{}

// Export exports a report to Markdown format
func (e *MarkdownExporter) Export(report *internal.Report, w io.Writer) error {
	if report.Status != internal.StatusSuccess {
		_, _ = fmt.Fprintf(w, "# Telegram Chat: %s\n\n", report.Chat.Title)
		_, _ = fmt.Fprintf(w, "_%s_\n", report.Message)
		return nil
	}

	if report.HasSummary() {
		writeSummaryMarkdown(report, w)
	} else {
		_, _ = fmt.Fprintf(w, "# Telegram Chat Summary: %s\n\n", report.Chat.Title)
		if len(report.TargetUsers) > 0 {
			_, _ = fmt.Fprintf(w, "**Users**: %s  \n", strings.Join(report.TargetUsers, ", "))
		}
		_, _ = fmt.Fprintf(w, "**Messages**: %d (with context: %d)  \n", report.Counts.Filtered, report.Counts.WithContext)
		_, _ = fmt.Fprintf(w, "**Date Range**: %s\n\n", report.DateRange)
	}

	if len(report.Messages) > 0 {
		_, _ = fmt.Fprintf(w, "---\n\n")
		_, _ = fmt.Fprintf(w, "## Messages\n\n")
		for _, msg := range report.Messages {
			_, _ = fmt.Fprintf(w, "- %s\n", escapeMarkdown(internal.FormatMessageLine(msg)))
		}
	}

	return nil
}

func writeSummaryMarkdown(report *internal.Report, w io.Writer) {
	_, _ = fmt.Fprintf(w, "# Telegram Chat Analysis: %s\n\n", report.Chat.Title)
	_, _ = fmt.Fprintf(w, "Messages analyzed: %d  \n", report.Counts.WithContext)
	_, _ = fmt.Fprintf(w, "Date Range: %s\n\n", report.DateRange)

	_, _ = fmt.Fprintf(w, "%s\n\n", internal.CleanSummary(report.Summary.Overall))

	if len(report.Summary.Participants) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "## Participant Summaries\n\n")
	for _, p := range report.Summary.Participants {
		_, _ = fmt.Fprintf(w, "### %s\n\n", p.Name)
		_, _ = fmt.Fprintf(w, "%s\n\n", internal.CleanSummary(p.Summary))
	}
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
