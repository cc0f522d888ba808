package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSensitive(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "empty value", value: "", expected: "<not set>"},
		{name: "short value", value: "abc", expected: "***"},
		{name: "long value", value: "ghp_abcdef1234567890", expected: "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskSensitive(tt.value)
			assert.Equal(t, tt.expected, got)
			if tt.value != "" {
				assert.NotContains(t, got, tt.value)
			}
		})
	}
}

func TestSetupLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	SetupLogger(&buf, LevelWarn)
	defer SetupLogger(&buf, LevelInfo)

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestSetupLoggerUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	SetupLogger(&buf, LogLevel("chatty"))
	defer SetupLogger(&buf, LevelInfo)

	Debug("hidden")
	Info("shown")

	lines := strings.TrimSpace(buf.String())
	assert.NotContains(t, lines, "hidden")
	assert.Contains(t, lines, "shown")
}
