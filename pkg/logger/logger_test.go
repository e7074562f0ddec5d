package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costeo-api/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("ruidoso"))
}

func TestNew_JSONConServicioYNivel(t *testing.T) {
	buf := &bytes.Buffer{}
	l := logger.New(logger.Config{Env: "production", Level: "warn", Service: "costeo-api", Output: buf})

	l.Info().Msg("no debe salir")
	l.Warn().Str("product_id", "MESA").Msg("sin tasa")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1, "info queda por debajo del nivel warn")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "costeo-api", entry["service"])
	assert.Equal(t, "MESA", entry["product_id"])
	assert.Equal(t, "warn", entry["level"])
}
