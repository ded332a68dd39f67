package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSecretsAreRedacted(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	log.Info("provider configured", "provider", "gemini", "api_key", "sk-live-123", "Authorization", "Bearer abc")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["provider"] != "gemini" {
		t.Fatalf("expected provider field to pass through, got %v", fields["provider"])
	}
	if fields["api_key"] != "[REDACTED]" || fields["Authorization"] != "[REDACTED]" {
		t.Fatalf("expected secrets redacted, got %v", fields)
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).With("session_id", "s-1")

	log.Warn("fetch superseded", "attempt", 2)

	fields := logs.All()[0].ContextMap()
	if fields["session_id"] != "s-1" {
		t.Fatalf("expected session_id field, got %v", fields)
	}
	if fields["attempt"] != int64(2) {
		t.Fatalf("expected attempt field, got %#v", fields["attempt"])
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"production", "development", ""} {
		log, err := New(mode)
		if err != nil {
			t.Fatalf("new %q: %v", mode, err)
		}
		log.Debug("ok")
	}
}

func TestNewWithOutputWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "play.log")
	log, err := NewWithOutput("production", path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Info("session opened", "session_id", "abc", "password", "hunter2")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"session_id":"abc"`) || strings.Contains(out, "hunter2") {
		t.Fatalf("unexpected log output %s", out)
	}
}
