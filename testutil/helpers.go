package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// SecretVars lists the environment variables tgsum reads secrets from
var SecretVars = []string{
	"TELEGRAM_API_ID",
	"TELEGRAM_API_HASH",
	"TELEGRAM_STRING_SESSION",
	"DEFAULT_TELEGRAM_CHANNEL_ID",
	"OPENROUTER_API_KEY",
}

// ClearSecrets unsets every secret variable for the duration of the test
func ClearSecrets(t *testing.T) {
	t.Helper()
	for _, v := range SecretVars {
		t.Setenv(v, "")
		if err := os.Unsetenv(v); err != nil {
			t.Fatalf("Failed to unset %s: %v", v, err)
		}
	}
}

// SetSecrets sets the given secrets for the duration of the test
func SetSecrets(t *testing.T, secrets map[string]string) {
	t.Helper()
	for k, v := range secrets {
		t.Setenv(k, v)
	}
}

// WriteFile writes content to name inside dir and returns the full path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// ReadFile returns the content of path as a string
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// JSONUnmarshal unmarshals JSON for testing
func JSONUnmarshal(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}
}
