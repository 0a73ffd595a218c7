// Package prompt loads prompt templates and renders them with conversation data.
package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/iksnae/tgsum/internal"
)

// DefaultName is the template used when none is requested
const DefaultName = "overall_prompt"

const extension = ".md"

//go:embed prompts/*.md
var embedded embed.FS

var legacyPlaceholders = strings.NewReplacer(
	"{participants}", "{{.Participants}}",
	"{messages}", "{{.Messages}}",
	"{chat_title}", "{{.ChatTitle}}",
)

var funcs = template.FuncMap{
	"join": strings.Join,
}

// Loader finds templates by name in a directory, then among the built-in
// templates, then falls back to a configured template text
type Loader struct {
	Dir         string
	DefaultName string
	Fallback    string
}

// NewLoader creates a loader for dir
func NewLoader(dir, defaultName, fallback string) *Loader {
	if defaultName == "" {
		defaultName = DefaultName
	}
	return &Loader{Dir: dir, DefaultName: defaultName, Fallback: fallback}
}

// Load returns the template text for name
func (l *Loader) Load(name string) (string, error) {
	if name == "" {
		name = l.DefaultName
	}
	if strings.ContainsAny(name, `/\`) {
		return "", &internal.PromptError{Name: name, Err: errors.New("template name must not contain a path separator")}
	}

	if l.Dir != "" {
		data, err := os.ReadFile(filepath.Join(l.Dir, name+extension))
		switch {
		case err == nil && strings.TrimSpace(string(data)) != "":
			return string(data), nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			internal.LogError("Error loading prompt file %s: %v", name, err)
		}
	}

	if data, err := embedded.ReadFile("prompts/" + name + extension); err == nil {
		return string(data), nil
	}

	if strings.TrimSpace(l.Fallback) != "" {
		internal.LogWarn("Could not load prompt '%s' from file. Using default prompt.", name)
		return l.Fallback, nil
	}

	return "", &internal.PromptError{Name: name, Err: errors.New("template not found and no default provided")}
}

// Build loads the named template and renders it with data
func (l *Loader) Build(name string, data internal.PromptData) (string, error) {
	if name == "" {
		name = l.DefaultName
	}
	text, err := l.Load(name)
	if err != nil {
		return "", err
	}
	return Render(name, text, data)
}

// Render parses text as a template and executes it with data.
// Single-brace placeholders such as {messages} are accepted as well.
func Render(name, text string, data internal.PromptData) (string, error) {
	tmpl, err := template.New(name).Funcs(funcs).Parse(legacyPlaceholders.Replace(text))
	if err != nil {
		return "", &internal.PromptError{Name: name, Err: err}
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", &internal.PromptError{Name: name, Err: err}
	}
	return sb.String(), nil
}

// List returns the names of the templates available in dir and the built-in ones
func List(dir string) ([]string, error) {
	seen := make(map[string]bool)

	builtin, err := fs.Glob(embedded, "prompts/*"+extension)
	if err != nil {
		return nil, err
	}
	for _, p := range builtin {
		seen[strings.TrimSuffix(filepath.Base(p), extension)] = true
	}

	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read prompts directory: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), extension) {
				seen[strings.TrimSuffix(e.Name(), extension)] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}
