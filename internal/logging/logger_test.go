package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn", "json", "agro-climate")

	log.Info().Msg("dropped")
	log.Warn().Str("place", "Dhaka").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "agro-climate", entry["service"])
	assert.Equal(t, "Dhaka", entry["place"])
	assert.Contains(t, entry, "time")
}

func TestNewLogger_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "loud", "json", "svc")

	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
	log.Info().Msg("shown")
	assert.NotZero(t, buf.Len())
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "info", "console", "svc")
	log.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(buf.Bytes()))
}
