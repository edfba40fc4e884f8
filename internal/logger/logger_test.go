package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestInfoWritesFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("Found candidate", "document", "Pod Weekly Sync - Notes by Gemini", "hours", 0.25)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "Found candidate" {
		t.Errorf("Expected message 'Found candidate', got %v", entry["message"])
	}
	if entry["document"] != "Pod Weekly Sync - Notes by Gemini" {
		t.Errorf("Expected document field, got %v", entry["document"])
	}
	if entry["level"] != "info" {
		t.Errorf("Expected level 'info', got %v", entry["level"])
	}
}

func TestErrorIncludesError(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	Error("Failed to process meeting", errors.New("boom"), "meeting_id", "evt-1")

	out := buf.String()
	if !strings.Contains(out, `"error":"boom"`) {
		t.Errorf("Expected error field in %q", out)
	}
	if !strings.Contains(out, `"meeting_id":"evt-1"`) {
		t.Errorf("Expected meeting_id field in %q", out)
	}
}

func TestConfigureLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Configure("warn", "json", &buf)
	defer SetOutput(&bytes.Buffer{})

	Debug("hidden")
	Info("hidden")
	Warn("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line at warn level, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "shown") {
		t.Errorf("Expected warn message, got %q", lines[0])
	}
}
