package internal

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLogLevel(t *testing.T) {
	originalLevel := logLevel
	defer SetLogLevel(originalLevel)

	SetLogLevel(LogLevelDebug)
	if logLevel != LogLevelDebug {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelDebug", logLevel)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("logrus level = %v, want debug", logger.GetLevel())
	}

	SetLogLevel(LogLevelError)
	if logLevel != LogLevelError {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelError", logLevel)
	}
	if logger.GetLevel() != logrus.ErrorLevel {
		t.Errorf("logrus level = %v, want error", logger.GetLevel())
	}
}

func TestSetVerbose(t *testing.T) {
	originalLevel := logLevel
	defer SetLogLevel(originalLevel)

	SetVerbose(true)
	if logLevel != LogLevelDebug {
		t.Errorf("SetVerbose(true) logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetVerbose(false)
	if logLevel != LogLevelInfo {
		t.Errorf("SetVerbose(false) logLevel = %v, want LogLevelInfo", logLevel)
	}
}

func TestLogFunctions(t *testing.T) {
	originalLevel := logLevel
	defer SetLogLevel(originalLevel)
	defer SetLogOutput(os.Stderr)

	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetLogLevel(LogLevelInfo)

	LogError("test error message")
	LogWarn("test warning message")
	LogInfo("test info %s", "message")
	LogDebug("test debug message")

	out := buf.String()
	for _, want := range []string{"test error message", "test warning message", "test info message"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output should contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "test debug message") {
		t.Error("debug message should be suppressed at info level")
	}
}

func TestLogLevels(t *testing.T) {
	if LogLevelError >= LogLevelWarn {
		t.Error("LogLevelError should be less than LogLevelWarn")
	}
	if LogLevelWarn >= LogLevelInfo {
		t.Error("LogLevelWarn should be less than LogLevelInfo")
	}
	if LogLevelInfo >= LogLevelDebug {
		t.Error("LogLevelInfo should be less than LogLevelDebug")
	}
}
