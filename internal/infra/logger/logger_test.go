package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriterTagsComponent(t *testing.T) {
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		Logger = zerolog.Nop()
	})

	var buf bytes.Buffer
	InitWithWriter("warn", &buf)

	dropped := Component("dashboard")
	dropped.Info().Msg("dropped")
	kept := Component("dashboard")
	kept.Warn().Str("challenge", "c1").Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "dashboard", entry["component"])
	assert.Equal(t, "challenge-server", entry["service"])
	assert.Equal(t, "c1", entry["challenge"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel(" DEBUG "))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}
