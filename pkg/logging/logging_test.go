package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriterLogger_LevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterLogger(&buf, LevelWarning)

	log.Debug("debug line")
	log.Info("info line")
	log.Warning("warning line")
	log.Error("error line")

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("below-threshold lines logged: %s", out)
	}
	if !strings.Contains(out, "warning line") || !strings.Contains(out, "error line") {
		t.Errorf("at-threshold lines missing: %s", out)
	}
	if !strings.Contains(out, "WARNING") {
		t.Errorf("level tag missing: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"Warn", LevelWarning},
		{"WARNING", LevelWarning},
		{"ERROR", LevelError},
		{"garbage", LevelError},
		{"", LevelError},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNop(t *testing.T) {
	// Must simply not panic.
	var log Logger = Nop{}
	log.Error("x")
	log.Warning("x")
	log.Info("x")
	log.Debug("x")
}
