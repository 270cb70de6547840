package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		enable slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"warn level", "warn", slog.LevelWarn},
		{"error level", "ERROR", slog.LevelError},
		{"default info", "", slog.LevelInfo},
		{"unknown falls back to info", "verbose", slog.LevelInfo},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level)
			if !logger.Enabled(ctx, tt.enable) {
				t.Fatalf("expected level %s to be enabled", tt.enable)
			}
		})
	}
}

func TestComponent(t *testing.T) {
	logger := Default().Component("realtime")
	if logger == nil || logger.Logger == nil {
		t.Fatal("Component returned nil logger")
	}
	logger.Info("component logger works")

	var nilLogger *Logger
	child := nilLogger.Component("fallback")
	if child == nil || child.Logger == nil {
		t.Fatal("Component on nil logger should fall back to default")
	}
}
