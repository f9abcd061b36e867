package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCriticalLevelRendered(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, "text")

	log.Critical("app: init failed", "component", "db")

	out := buf.String()
	if !strings.Contains(out, "level=CRITICAL") {
		t.Fatalf("expected CRITICAL level, got %q", out)
	}
	if !strings.Contains(out, "component=db") {
		t.Fatalf("expected attribute, got %q", out)
	}
}

func TestBusinessErrorSkipsNil(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, "text")

	log.BusinessError("expenses.get: not found", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output for nil error, got %q", buf.String())
	}

	log.BusinessError("expenses.get: not found", errors.New("expense not found"), "expense_id", "e-1")
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "expense_id=e-1") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestWithAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "json").With("component", "sync")

	log.Info("sync: pass finished")

	if !strings.Contains(buf.String(), `"component":"sync"`) {
		t.Fatalf("expected component attribute, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		value string
		env   string
		want  slog.Level
	}{
		{"debug", "production", slog.LevelDebug},
		{"", "development", slog.LevelDebug},
		{"", "production", slog.LevelInfo},
		{"WARNING", "", slog.LevelWarn},
		{"fatal", "", LevelCritical},
	}

	for _, tc := range cases {
		if got := ParseLevel(tc.value, tc.env); got != tc.want {
			t.Fatalf("ParseLevel(%q, %q) = %v, want %v", tc.value, tc.env, got, tc.want)
		}
	}
}

func TestStdAdapterWritesComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, "text")

	NewStdAdapter(log, "goose").Printf("OK   %s (%d)\n", "00001_create_kv.sql", 3)

	out := buf.String()
	if !strings.Contains(out, "component=goose") || !strings.Contains(out, "00001_create_kv.sql") {
		t.Fatalf("unexpected output %q", out)
	}
}
