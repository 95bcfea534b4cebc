package internal

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreLogger(t *testing.T) {
	t.Helper()
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestInitLoggerJSON(t *testing.T) {
	restoreLogger(t)
	var buf bytes.Buffer

	require.NoError(t, initLogger(LogConfig{Level: "info", Format: "json"}, &buf))

	log.Debug().Msg("hidden")
	log.Info().Str("profile", "dev").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"profile":"dev"`)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestInitLoggerDefaults(t *testing.T) {
	restoreLogger(t)
	var buf bytes.Buffer

	require.NoError(t, initLogger(LogConfig{}, &buf))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestInitLoggerRejectsBadInput(t *testing.T) {
	restoreLogger(t)
	var buf bytes.Buffer

	assert.Error(t, initLogger(LogConfig{Level: "loud"}, &buf))
	assert.Error(t, initLogger(LogConfig{Level: "info", Format: "xml"}, &buf))
}
