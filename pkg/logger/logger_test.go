package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "json", Output: &buf})
	l.Debug("window loaded", "start", 2)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "window loaded" || entry["start"] != float64(2) {
		t.Errorf("Unexpected entry %v", entry)
	}
}

func TestNewLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "WARN", Output: &buf})
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("Level filter not applied: %q", out)
	}
}

func TestInitSetsGlobal(t *testing.T) {
	var buf bytes.Buffer
	l := Init(Config{Output: &buf})
	if Get() != l {
		t.Error("Expected Get to return the initialized logger")
	}
}
