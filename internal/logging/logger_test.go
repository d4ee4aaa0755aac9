package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svcdir.log")
	logger, err := New("debug", path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("expected log line in file, got %q", string(data))
	}
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger, err := New("loud", "")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug disabled")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info enabled")
	}
}
