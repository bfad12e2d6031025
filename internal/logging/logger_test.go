package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
		{"  DEBUG  ", slog.LevelDebug},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.input); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Format: "json", Level: "info", Output: &buf})
	logger.Info("hello", String("key", "value"))

	out := buf.String()
	if !strings.Contains(out, `"key":"value"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
}

func TestNewComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Format: "text", Output: &buf})
	logger := NewComponentLogger(base, "scanner")
	logger.Info("scan complete")

	if !strings.Contains(buf.String(), "component=scanner") {
		t.Errorf("expected component attribute, got %q", buf.String())
	}
}

func TestNewComponentLoggerNilBase(t *testing.T) {
	logger := NewComponentLogger(nil, "scanner")
	// Must not panic and must discard output.
	logger.Info("dropped")
}
