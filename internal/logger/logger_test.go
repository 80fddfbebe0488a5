package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNamedBeforeInit(t *testing.T) {
	Log, Sugar = nil, nil
	l := Named("curve")
	if l == nil {
		t.Fatal("expected a no-op logger, got nil")
	}
	// must not panic
	l.Info("dropped")
	Info("dropped")
	Sync()
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"error message"}, []string{"warn message", "info message", "debug message"}},
		{"warn", []string{"error message", "warn message"}, []string{"info message", "debug message"}},
		{"", []string{"warn message", "info message"}, []string{"debug message"}},
		{"debug", []string{"info message", "debug message"}, nil},
	}

	for _, tt := range tests {
		t.Run("level="+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			if err := InitWithOptions(Options{Level: tt.level, Console: &buf}); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			out := buf.String()
			for _, exp := range tt.expected {
				if !strings.Contains(out, exp) {
					t.Errorf("expected %q in output:\n%s", exp, out)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(out, exc) {
					t.Errorf("unexpected %q in output for level %q", exc, tt.level)
				}
			}
		})
	}
}

func TestUnknownLevelKeepsLogger(t *testing.T) {
	InitNop()
	prev := Log
	if err := InitWithOptions(Options{Level: "verbose"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if Log != prev {
		t.Error("logger replaced after a failed init")
	}
}

func TestNamedTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(Options{Level: "info", Console: &buf}); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	Named("physics").Info("collider rebuilt")
	Sync()

	out := buf.String()
	if !strings.Contains(out, "physics") || !strings.Contains(out, "collider rebuilt") {
		t.Errorf("expected component and message in output, got %q", out)
	}
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "curvetex.log")
	cfg := DefaultFileConfig(logFile)
	cfg.Compress = false

	if err := InitWithOptions(Options{Level: "debug", File: cfg}); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	Named("scene").Debug("scene loaded")
	Sync()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "DEBUG") {
		t.Errorf("expected plain DEBUG level in file output, got %q", content)
	}
	if strings.Contains(string(content), "\x1b[") {
		t.Error("file output must not contain color codes")
	}
	InitNop()
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/curvetex.log")

	if cfg.Path != "/tmp/curvetex.log" {
		t.Errorf("expected path /tmp/curvetex.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 20 {
		t.Errorf("expected MaxSizeMB 20, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 3 {
		t.Errorf("expected MaxBackups 3, got %d", cfg.MaxBackups)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
