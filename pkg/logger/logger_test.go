package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONConAppYComponente(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{App: "municipal-ops", Env: "production", Level: "warn", Out: &buf})

	l.Info().Msg("no sale")
	c := l.Component("realtime.relay")
	c.Warn().Str("tenant", "t-1").Msg("broker caído")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1, "info queda por debajo del nivel")

	var got map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &got))
	assert.Equal(t, "municipal-ops", got["app"])
	assert.Equal(t, "realtime.relay", got["component"])
	assert.Equal(t, "warn", got["level"])
	assert.Equal(t, "broker caído", got["message"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("debug").String())
	assert.Equal(t, "info", parseLevel("").String())
	assert.Equal(t, "info", parseLevel("ruidoso").String())
}
