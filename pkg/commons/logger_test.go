package commons

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewApplicationLogger_Defaults(t *testing.T) {
	logger, err := NewApplicationLogger()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}
	logger.Infof("hello %s", "world")
	logger.Infow("structured", "key", "value")
	logger.Benchmark("noop", time.Millisecond)
}

func TestNewApplicationLogger_InvalidLevel(t *testing.T) {
	if _, err := NewApplicationLogger(Level("loud")); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNewApplicationLogger_FileSink(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewApplicationLogger(
		Name("test-service"),
		Path(dir),
		Level("debug"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debugw("written to file", "n", 1)
	logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "test-service.log"))
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected log file to contain output")
	}
}

func TestNewApplicationLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		ok    bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"", false},
		{"verbose", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			_, err := NewApplicationLogger(Level(tt.level))
			if tt.ok && err != nil {
				t.Errorf("expected level %q to be accepted: %v", tt.level, err)
			}
			if !tt.ok && err == nil {
				t.Errorf("expected level %q to be rejected", tt.level)
			}
		})
	}
}
