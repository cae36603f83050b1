package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("info"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("anything else"))
}

func TestQueryMeshLoggerKeyValueArgs(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "text", Output: &buf})

	logger.Info("route resolved", "session_id", "sess-1", "route", "general_knowledge")

	out := buf.String()
	assert.Contains(t, out, "route resolved")
	assert.Contains(t, out, "session_id=sess-1")
	assert.Contains(t, out, "route=general_knowledge")
}
