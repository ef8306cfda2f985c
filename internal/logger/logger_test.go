package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSensitiveKeysAreRedacted(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := FromZap(zap.New(core))

	log.Info("login", "email", "a@example.com", "password", "hunter2", "Token", "abc")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["email"] != "a@example.com" {
		t.Fatalf("expected email to pass through, got %v", fields["email"])
	}
	if fields["password"] != "[REDACTED]" || fields["Token"] != "[REDACTED]" {
		t.Fatalf("expected secrets redacted, got %v", fields)
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).With("component", "store")

	log.Warn("slow query", "duration_ms", 250)

	fields := logs.All()[0].ContextMap()
	if fields["component"] != "store" {
		t.Fatalf("expected component field, got %v", fields)
	}
}
