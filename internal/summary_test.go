package internal

import (
	"testing"
)

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name             string
		raw              string
		wantOverall      string
		wantParticipants []ParticipantSummary
	}{
		{
			name: "structured response with brackets",
			raw: "Here you go:\n```overall\nThe team shipped a release.\n```\n" +
				"```participants\n[@alice]: Announced the release.\n[Bob Smith]: Asked about the changelog.\n```",
			wantOverall: "The team shipped a release.",
			wantParticipants: []ParticipantSummary{
				{Name: "@alice", Summary: "Announced the release."},
				{Name: "Bob Smith", Summary: "Asked about the changelog."},
			},
		},
		{
			name:        "participants without brackets",
			raw:         "```overall\nSummary\n```\n```participants\n- @carol: Shared upstream notes\nnot a summary line\n```",
			wantOverall: "Summary",
			wantParticipants: []ParticipantSummary{
				{Name: "@carol", Summary: "Shared upstream notes"},
			},
		},
		{
			name:        "summary text containing colons after brackets",
			raw:         "```overall\nok\n```\n```participants\n[dave]: said: hello\n```",
			wantOverall: "ok",
			wantParticipants: []ParticipantSummary{
				{Name: "dave", Summary: "said: hello"},
			},
		},
		{
			name:        "unstructured response falls back to whole text",
			raw:         "  Just a plain summary.  ",
			wantOverall: "Just a plain summary.",
		},
		{
			name:        "think block is stripped",
			raw:         "<think>reasoning\nmore</think>```overall\nFinal\n```",
			wantOverall: "Final",
		},
		{
			name:        "unterminated overall block",
			raw:         "```overall\nno closing fence",
			wantOverall: "```overall\nno closing fence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSummary(tt.raw)
			if got.Overall != tt.wantOverall {
				t.Errorf("Overall = %q, want %q", got.Overall, tt.wantOverall)
			}
			if got.Raw != tt.raw {
				t.Error("Raw should hold the unmodified response")
			}
			if len(got.Participants) != len(tt.wantParticipants) {
				t.Fatalf("Participants = %+v, want %+v", got.Participants, tt.wantParticipants)
			}
			for i, p := range tt.wantParticipants {
				if got.Participants[i] != p {
					t.Errorf("Participants[%d] = %+v, want %+v", i, got.Participants[i], p)
				}
			}
		})
	}
}

func TestCleanSummary(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: "No summary available."},
		{name: "whitespace", input: "  \n", want: "No summary available."},
		{name: "plain", input: "A summary", want: "A summary"},
		{name: "think block", input: "<think>hmm</think>\nAnswer", want: "Answer"},
		{name: "only think block", input: "<think>hmm</think>", want: "No summary available."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanSummary(tt.input); got != tt.want {
				t.Errorf("CleanSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}
