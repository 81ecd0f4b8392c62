package limber

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSimpleLoggerLevels(t *testing.T) {
	logger := NewSimpleLogger()

	// Smoke test: none of the levels may panic, with or without fields.
	logger.Debug("debug message", "key", "value")
	logger.Info("info message")
	logger.Warn("warn message", "attempt", 2)
	logger.Error("error message", "kind", KindTimeout)
}

func TestZapLoggerForwardsLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Debug("request started", "method", "GET")
	logger.Info("session started")
	logger.Warn("retrying", "attempt", 2)
	logger.Error("request failed", "kind", "Timeout")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("logged %d entries, want 4", len(entries))
	}

	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, want := range wantLevels {
		if entries[i].Level != want {
			t.Errorf("entry %d level = %v, want %v", i, entries[i].Level, want)
		}
	}

	fields := entries[0].ContextMap()
	if fields["method"] != "GET" {
		t.Errorf("debug fields = %v, want method=GET", fields)
	}
}

func TestNewDevelopmentLogger(t *testing.T) {
	logger, err := NewDevelopmentLogger()
	if err != nil {
		t.Fatalf("NewDevelopmentLogger() error: %v", err)
	}
	if logger == nil {
		t.Fatal("NewDevelopmentLogger() returned nil logger")
	}
}

func TestDefaultDebugConfig(t *testing.T) {
	config := DefaultDebugConfig()

	if config.Enabled {
		t.Error("debugging must start disabled")
	}
	if !config.LogRequests || !config.LogRetries || !config.LogRateLimit {
		t.Error("all event categories must default on")
	}
	if config.RequestIDGen == nil {
		t.Fatal("RequestIDGen must be set")
	}

	first := config.RequestIDGen()
	second := config.RequestIDGen()
	if first == "" || first == second {
		t.Errorf("request IDs must be unique non-empty, got %q and %q", first, second)
	}
	if strings.Count(first, "-") != 4 {
		t.Errorf("request ID %q is not UUID shaped", first)
	}
}
