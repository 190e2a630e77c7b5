package config

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger_JSONFormat(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "info", Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	defer logger.Sync()

	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("expected info level enabled")
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level disabled at info")
	}
}

func TestNewLogger_ConsoleIsDefaultFormat(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "debug"})
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	defer logger.Sync()

	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level enabled")
	}
}

func TestNewLogger_UnknownFormat(t *testing.T) {
	if _, err := NewLogger(LoggingConfig{Level: "info", Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format, got nil")
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(LoggingConfig{Level: "loud", Format: "json"}); err == nil {
		t.Fatal("expected error for invalid level, got nil")
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")

	logger, err := NewLogger(LoggingConfig{Level: "info", Format: "json", OutputPath: path})
	if err != nil {
		t.Fatalf("NewLogger() failed: %v", err)
	}
	logger.Info("started")
	logger.Sync()
}
