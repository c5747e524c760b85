package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "warn", "console")

	logger.Info().Msg("hidden")
	logger.Warn().Str("room", "ABC123").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "ABC123") {
		t.Fatalf("warn line missing: %s", out)
	}
}

func TestJSONLoggerEmitsStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info", "JSON")

	logger.Info().Str("room", "ABC123").Msg("room created")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not json: %v (%s)", err, buf.String())
	}
	if line["room"] != "ABC123" || line["message"] != "room created" || line["service"] != "wirechat-relay" {
		t.Fatalf("unexpected fields: %v", line)
	}
}
