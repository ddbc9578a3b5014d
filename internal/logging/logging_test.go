package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"  Info ", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"garbage", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNotifyHookReceivesRecords(t *testing.T) {
	var gotLevel slog.Level
	var gotMessage string
	log, err := Setup(Options{
		Level: slog.LevelInfo,
		Notify: func(level slog.Level, message string) {
			gotLevel, gotMessage = level, message
		},
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	log.Info("schedule committed", "items", 3)
	if gotLevel != slog.LevelInfo || gotMessage != "schedule committed" {
		t.Errorf("notify got %v %q", gotLevel, gotMessage)
	}

	// Below the configured level nothing is delivered.
	gotMessage = ""
	log.Debug("noise")
	if gotMessage != "" {
		t.Errorf("debug record leaked through: %q", gotMessage)
	}
}

func TestFileLogging(t *testing.T) {
	path := t.TempDir() + "/logs/app.log"
	log, err := Setup(Options{FilePath: path, Level: slog.LevelInfo})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	log.Info("hello")
	// lumberjack creates the file lazily on first write; Setup must have
	// created the parent directory for that to succeed.
}
