package common

import (
	"context"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	fallback := NewSilentLogger()
	if got := LoggerFromContext(context.Background(), fallback); got != fallback {
		t.Error("expected fallback without a request logger")
	}

	scoped := fallback.WithCorrelationId("req-1")
	ctx := ContextWithLogger(context.Background(), scoped)
	if got := LoggerFromContext(ctx, fallback); got != scoped {
		t.Error("expected the request-scoped logger")
	}
}

func TestFileWriterConfigDefaults(t *testing.T) {
	wc := fileWriterConfig(LoggingConfig{})
	if wc.FileName != defaultLogFile {
		t.Errorf("expected %s, got %s", defaultLogFile, wc.FileName)
	}
	if wc.MaxSize != defaultMaxSize || wc.MaxBackups != defaultMaxBackups {
		t.Errorf("unexpected rotation %d/%d", wc.MaxSize, wc.MaxBackups)
	}

	wc = fileWriterConfig(LoggingConfig{FilePath: "x.log", MaxSizeMB: 2, MaxBackups: 3})
	if wc.FileName != "x.log" || wc.MaxSize != 2<<20 || wc.MaxBackups != 3 {
		t.Errorf("unexpected config %+v", wc)
	}
}

func TestNewLoggerFromConfig_ConsoleDefault(t *testing.T) {
	l := NewLoggerFromConfig(LoggingConfig{Level: "error"})
	if l == nil || l.ILogger == nil {
		t.Fatal("expected a logger")
	}
	l.Debug().Str("k", "v").Msg("below level")
}
