package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedact(t *testing.T) {
	kv := []interface{}{"metaso_api_key", "sk-123", "keyword", "graphs", "dangling"}
	got := redact(kv)

	if got[1] != "[REDACTED]" {
		t.Errorf("secret not redacted: %v", got[1])
	}
	if got[3] != "graphs" {
		t.Errorf("plain value changed: %v", got[3])
	}
	if kv[1] != "sk-123" {
		t.Error("redact() modified its input")
	}
	if len(got) != len(kv) {
		t.Errorf("len = %d, want %d", len(got), len(kv))
	}
}

func TestLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("action", "expand").Warn("missing root", "keyword", "graphs", "auth_token", "x")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["action"] != "expand" || fields["keyword"] != "graphs" {
		t.Errorf("fields = %v", fields)
	}
	if fields["auth_token"] != "[REDACTED]" {
		t.Errorf("auth_token = %v", fields["auth_token"])
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "quiet"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q) error = %v", mode, err)
		}
		l.Debug("hello")
	}
}
