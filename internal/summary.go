package internal

import (
	"regexp"
	"strings"
)

const noSummary = "No summary available."

var thinkBlockRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ParticipantSummary is the summary of a single participant's contribution
type ParticipantSummary struct {
	Name    string `json:"name" yaml:"name"`
	Summary string `json:"summary" yaml:"summary"`
}

// Summary is a parsed model response
type Summary struct {
	Overall      string               `json:"overall" yaml:"overall"`
	Participants []ParticipantSummary `json:"participants,omitempty" yaml:"participants,omitempty"`
	Raw          string               `json:"-" yaml:"-"`
}

// ParseSummary splits a model response into its overall and per-participant parts.
//
// The prompt asks for a fenced ```overall block and a fenced ```participants block
// whose lines look like "[name]: summary" or "name: summary". When no overall block
// is present the whole response is used as the overall summary.
func ParseSummary(raw string) *Summary {
	s := &Summary{Raw: raw}
	text := thinkBlockRegex.ReplaceAllString(raw, "")

	if body, ok := fencedBlock(text, "overall"); ok {
		s.Overall = body
	}

	if body, ok := fencedBlock(text, "participants"); ok {
		for _, line := range strings.Split(body, "\n") {
			if p, ok := parseParticipantLine(line); ok {
				s.Participants = append(s.Participants, p)
			}
		}
	}

	if s.Overall == "" {
		LogWarn("Failed to parse structured response, using entire response as overall summary")
		s.Overall = strings.TrimSpace(text)
	}

	return s
}

// fencedBlock returns the content between "```tag" and the next closing fence
func fencedBlock(text, tag string) (string, bool) {
	open := "```" + tag
	start := strings.Index(text, open)
	if start < 0 {
		return "", false
	}
	start += len(open)
	end := strings.Index(text[start:], "```")
	if end < 0 {
		return "", false
	}
	body := strings.TrimSpace(text[start : start+end])
	return body, body != ""
}

func parseParticipantLine(line string) (ParticipantSummary, bool) {
	line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*"))
	if line == "" {
		return ParticipantSummary{}, false
	}

	open := strings.Index(line, "[")
	closing := strings.Index(line, "]")
	if open >= 0 && closing > open+1 {
		name := line[open+1 : closing]
		colon := strings.Index(line[closing:], ":")
		if colon < 0 {
			return ParticipantSummary{}, false
		}
		return ParticipantSummary{
			Name:    strings.TrimSpace(name),
			Summary: strings.TrimSpace(line[closing+colon+1:]),
		}, true
	}

	name, summary, ok := strings.Cut(line, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return ParticipantSummary{}, false
	}
	return ParticipantSummary{Name: strings.TrimSpace(name), Summary: strings.TrimSpace(summary)}, true
}

// CleanSummary prepares summary text for display
func CleanSummary(summary string) string {
	cleaned := strings.TrimSpace(thinkBlockRegex.ReplaceAllString(summary, ""))
	if cleaned == "" {
		return noSummary
	}
	return cleaned
}
