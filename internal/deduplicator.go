package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// DeduplicateMessages drops messages whose ID has already been seen, keeping the first occurrence
func DeduplicateMessages(messages []Message) []Message {
	seen := make(map[int]bool, len(messages))
	unique := make([]Message, 0, len(messages))

	for _, msg := range messages {
		if seen[msg.ID] {
			continue
		}
		seen[msg.ID] = true
		unique = append(unique, msg)
	}

	return unique
}

// SummaryDigest hashes the model and rendered prompt into a cache key.
// Identical prompts sent to the same model produce the same digest.
func SummaryDigest(model, prompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}
