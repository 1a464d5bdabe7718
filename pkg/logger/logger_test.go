package logx

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, resolveLevel(&Config{}))
	assert.Equal(t, zerolog.DebugLevel, resolveLevel(&Config{Debug: true}))
	assert.Equal(t, zerolog.WarnLevel, resolveLevel(&Config{Debug: true, Level: "WARN"}))
	assert.Equal(t, zerolog.DebugLevel, resolveLevel(&Config{Debug: true, Level: "nope"}))
}

func TestComponentLoggerTagsEvents(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	InitWithWriter(&buf, Config{Debug: true})
	logger := Component("memory")
	logger.Debug().Str("collection", "conversations").Msg("stored")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "memory", entry["component"])
	assert.Equal(t, "stored", entry["message"])
	assert.Equal(t, "debug", entry["level"])
}
