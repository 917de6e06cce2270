package console

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSilentConsoleHandles(t *testing.T) {
	c := NewSilentConsole()

	c.LogInfo("reading %s", "1_a.xlsx")
	c.LogWarning("skipping %s", "notes.xlsx")

	status := c.Status("loading")
	status.Update("still loading")
	status.Stop()

	bar := c.ProgressWithTotal(3)
	bar.Increment()
	bar.Stop()

	if h, ok := status.(*statusHandle); !ok || h.spinner != nil {
		t.Errorf("silent status should not start a spinner: %#v", status)
	}
	if h, ok := bar.(*progressHandle); !ok || h.bar != nil {
		t.Errorf("silent progress should not start a bar: %#v", bar)
	}
}

func TestLoggerConsoleForwardsLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewLoggerConsole(zap.New(core).Sugar())

	c.LogInfo("reading %s", "1_a.xlsx")
	c.LogWarning("skipping %s", "notes.xlsx")
	c.LogError("failed %d", 2)
	c.Println("raw line")

	tests := []struct {
		level   zapcore.Level
		message string
	}{
		{zapcore.InfoLevel, "reading 1_a.xlsx"},
		{zapcore.WarnLevel, "skipping notes.xlsx"},
		{zapcore.ErrorLevel, "failed 2"},
		{zapcore.DebugLevel, "raw line"},
	}

	entries := logs.All()
	if len(entries) != len(tests) {
		t.Fatalf("expected %d entries, got %d", len(tests), len(entries))
	}
	for i, tt := range tests {
		if entries[i].Level != tt.level || entries[i].Message != tt.message {
			t.Errorf("entry %d = %s %q, want %s %q", i, entries[i].Level, entries[i].Message, tt.level, tt.message)
		}
	}
}
