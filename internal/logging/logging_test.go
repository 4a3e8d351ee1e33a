package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/logbot/logbot/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	require.NoError(t, logging.InitWriter(&buf, "warn", false))

	log.Info().Msg("dropped")
	log.Warn().Str("table", "vpc_logs").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "vpc_logs", line["table"])
	assert.Equal(t, "kept", line["message"])
	assert.Contains(t, line, "time")
}

func TestInitEmptyLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, logging.InitWriter(&buf, "", false))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, logging.InitWriter(&bytes.Buffer{}, "loud", false))
}
