package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureGlobalLogger(t *testing.T) {
	t.Helper()
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestInitLogger_JSONOutsideDevelopment(t *testing.T) {
	captureGlobalLogger(t)
	var buf bytes.Buffer
	InitLogger("api", "production", &buf)

	log.Debug().Msg("hidden")
	log.Info().Msg("visible")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "visible", line["message"])
	assert.Equal(t, "api", line["service"])
	assert.Equal(t, "production", line["env"])
}

func TestInitLogger_ConsoleInDevelopment(t *testing.T) {
	captureGlobalLogger(t)
	var buf bytes.Buffer
	InitLogger("directory", "development", &buf)

	log.Debug().Msg("batch stored")

	assert.Contains(t, buf.String(), "batch stored")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestLoggerFromContext_RequestID(t *testing.T) {
	captureGlobalLogger(t)
	var buf bytes.Buffer
	InitLogger("api", "production", &buf)

	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))

	LoggerFromContext(ctx).Info().Msg("lead stored")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-42", line["request_id"])
	assert.NotContains(t, line, "trace_id")
}
