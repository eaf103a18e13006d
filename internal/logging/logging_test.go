package logging

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewFormats(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "json").Info("hello", "table", "user")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"table":"user"`) {
		t.Errorf("expected JSON output, got %s", buf.String())
	}

	buf.Reset()
	logger := New(&buf, "warn", "text")
	logger.Info("dropped")
	logger.Warn("kept", "table", "user")
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("expected info record below warn level to be dropped")
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "table=user") {
		t.Errorf("expected text output, got %s", out)
	}
}

func TestSetupWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := Setup("debug", "text", dir)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	logger.Debug("to file")

	name := fmt.Sprintf("schemadrift-%s.log", time.Now().Format("2006-01-02"))
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("expected record in log file, got %s", data)
	}
}
