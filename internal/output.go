package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/glamour"
)

// stdout is where WriteOutput prints when no path is given
var stdout io.Writer = os.Stdout

var (
	markdownOnce     sync.Once
	markdownRenderer *glamour.TermRenderer
)

// RenderMarkdown renders markdown for terminal display.
// The input is returned unchanged if the renderer is unavailable or fails.
func RenderMarkdown(content string) string {
	markdownOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			LogDebug("Markdown renderer unavailable: %v", err)
			return
		}
		markdownRenderer = r
	})
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// WriteOutput writes text to path, or to stdout when path is empty.
// Markdown printed to a terminal is rendered first. If the file cannot be written
// the text is printed to stdout instead and the error is returned.
func WriteOutput(text, path, format string, markdown bool) error {
	if path == "" {
		printOutput(stdout, text, markdown)
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return writeFallback(text, format, path, err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return writeFallback(text, format, path, err)
	}

	LogInfo("Output written to %s", path)
	return nil
}

func writeFallback(text, format, path string, err error) error {
	LogError("Failed to write output to %s: %v", path, err)
	fmt.Fprintln(stdout, text)
	return &ExportError{Format: format, Path: path, Err: err}
}

func printOutput(w io.Writer, text string, markdown bool) {
	if markdown && IsTerminal(w) {
		text = RenderMarkdown(text)
	}
	fmt.Fprintln(w, text)
}
