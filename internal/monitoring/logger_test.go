package monitoring

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogger(t *testing.T) {
	// restore the package logger
	prev := Logf
	defer func() { Logf = prev }()

	// Test setting a custom logger
	called := false
	customLogger := func(format string, v ...interface{}) {
		called = true
	}

	SetLogger(customLogger)
	Logf("test message")

	if !called {
		t.Error("Custom logger was not called")
	}

	// Test setting nil logger (should create no-op)
	SetLogger(nil)
	// This should not panic
	Logf("test message")

	// Verify the logger is a no-op by checking it doesn't panic
	// and doesn't call anything
	noOpCalled := false
	testLogger := func(format string, v ...interface{}) {
		noOpCalled = true
	}
	SetLogger(testLogger)
	// First verify our test logger works
	Logf("test")
	if !noOpCalled {
		t.Error("Test logger should have been called")
	}

	// Now set to nil and verify it doesn't call our logger
	noOpCalled = false
	SetLogger(nil)
	Logf("test")
	if noOpCalled {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	// Test that Logf is not nil by default
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}

	// Test that we can call it without panic
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()

	Logf("test message: %s", "value")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.name); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPrintfWritesJSONDebugLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "debug", "json")

	Printf(l, "flux")("dropped %d rows for gas %s\n", 3, "SO2")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "flux", entry["component"])
	assert.Equal(t, "dropped 3 rows for gas SO2", entry["message"])
}

func TestPrintfRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "info", "json")

	Printf(l, "run")("hidden")
	assert.Zero(t, buf.Len())

	l.Info().Msg("shown")
	assert.True(t, strings.Contains(buf.String(), "shown"))
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "info", "console")
	l.Info().Str("file", "FTIR.log").Msg("processed")

	out := buf.String()
	assert.Contains(t, out, "processed")
	assert.Contains(t, out, "FTIR.log")
	assert.False(t, strings.HasPrefix(out, "{"))
}
