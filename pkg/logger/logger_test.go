package logx

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Config{}, &buf)
	logger.Debug().Msg("hidden")
	logger.Info().Str("step", "1").Msg("visible")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "visible" || entry["step"] != "1" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
}

func TestNewDebugEnablesDebugLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Config{Debug: true}, &buf)
	logger.Debug().Msg("shown")
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Fatalf("debug message missing: %q", buf.String())
	}
}

func TestOutput(t *testing.T) {
	t.Parallel()

	if output("STDOUT") != os.Stdout {
		t.Fatal("expected stdout")
	}
	if output("") != os.Stderr {
		t.Fatal("expected stderr by default")
	}
}
