package gologger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestCharmLogger_WritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCharmLogger(&buf, CharmOptions{Level: "info", JSON: true})

	logger.Debug("hidden", "k", "v")
	logger.Info("trigger listening", "addr", ":8085")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected debug to be filtered, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "trigger listening" || entry["addr"] != ":8085" {
		t.Fatalf("unexpected entry %#v", entry)
	}
}

func TestCharmProvider_PrefixesNamedLoggers(t *testing.T) {
	var buf bytes.Buffer
	provider := NewCharmProvider(NewCharmLogger(&buf, CharmOptions{Level: "debug"}))

	provider.GetLogger("trigger").Warn("duplicate delivery", "event_id", "evt-1")
	if !strings.Contains(buf.String(), "trigger") || !strings.Contains(buf.String(), "duplicate delivery") {
		t.Fatalf("expected prefixed output, got %q", buf.String())
	}

	var nilProvider *CharmProvider
	if nilProvider.GetLogger("x") == nil {
		t.Fatalf("expected nop logger from nil provider")
	}
}

func TestJobLogger_BridgesCharmProvider(t *testing.T) {
	var buf bytes.Buffer
	provider := NewCharmProvider(NewCharmLogger(&buf, CharmOptions{Level: "info"}))

	jobLogger := JobLogger(provider, nil)
	if jobLogger == nil || JobProvider(provider) == nil {
		t.Fatalf("expected go-job bridges")
	}
	jobLogger.Info("record handled", "event_id", "evt-2")
	out := buf.String()
	if !strings.Contains(out, "record handled") || !strings.Contains(out, ComponentWorker) {
		t.Fatalf("expected bridged output under %q, got %q", ComponentWorker, out)
	}
}
