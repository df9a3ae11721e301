package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_ParsesLevel(t *testing.T) {
	logger := New("debug")
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %s", logger.GetLevel())
	}
}

func TestNew_FallsBackToInfo(t *testing.T) {
	for _, level := range []string{"", "verbose", "trace2"} {
		logger := New(level)
		if logger.GetLevel() != zerolog.InfoLevel {
			t.Errorf("level %q: expected info fallback, got %s", level, logger.GetLevel())
		}
	}
}
