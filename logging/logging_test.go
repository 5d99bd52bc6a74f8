package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace": zerolog.TraceLevel,
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"":      zerolog.WarnLevel,
		"LOUD":  zerolog.WarnLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log, closer := New(Options{Level: "info", Out: &buf})
	defer closer.Close()

	log.Debug().Msg("hidden detail")
	log.Info().Str("tl", "de").Msg("visible message")

	out := buf.String()
	if strings.Contains(out, "hidden detail") {
		t.Fatalf("debug line written at info level:\n%s", out)
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "tl=") {
		t.Fatalf("info line missing:\n%s", out)
	}
}

func TestFileLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gtranslate.log")
	log, closer := New(Options{Level: "debug", File: path, MaxSizeMB: 1, MaxBackups: 1})

	log.Debug().Uint32("seed", 100000).Msg("signed")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, data)
	}
	if entry["message"] != "signed" || entry["seed"] != float64(100000) || entry["level"] != "debug" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
}
