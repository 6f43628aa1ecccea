package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info", "json")

	logger.Debug().Msg("hidden")
	logger.Info().Int32("user_id", 7).Msg("session added")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if entry["message"] != "session added" || entry["user_id"] != float64(7) {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewWithWriterConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "debug", "")

	logger.Debug().Str("username", "alice").Msg("login attempt")
	if out := buf.String(); !strings.Contains(out, "login attempt") || !strings.Contains(out, "alice") {
		t.Fatalf("unexpected console output %q", out)
	}
}
