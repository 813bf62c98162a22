package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"pdfshrink/internal/domain/entities"
	"pdfshrink/internal/infrastructure/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := logging.ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.input, tt.expected, got)
		}
	}
}

func TestZapLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewZapLogger(entities.OutputConfig{LogLevel: "warning"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	logger.Warning("warning %d", 3)
	logger.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("Messages below warning must be dropped: %q", out)
	}
	if !strings.Contains(out, "warning 3") || !strings.Contains(out, "error 4") {
		t.Errorf("Expected warning and error messages: %q", out)
	}
}

func TestZapLogger_WithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewZapLogger(entities.OutputConfig{LogLevel: "info"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.With("request_id", "abc-123").Success("готово")

	out := buf.String()
	if !strings.Contains(out, "abc-123") || !strings.Contains(out, "готово") {
		t.Errorf("Expected field and message in output: %q", out)
	}
}

func TestZapLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdfshrink.log")
	logger, err := logging.NewZapLogger(entities.OutputConfig{
		LogLevel:    "info",
		LogToFile:   true,
		LogFileName: path,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("в файл")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "в файл") {
		t.Errorf("Expected message in log file, got %q", data)
	}
}
