package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Out: &buf})

	l.Component("catalog").Info().Str("material_id", "m-1").Msg("stock ajustado")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "catalog", entry["component"])
	assert.Equal(t, "m-1", entry["material_id"])
	assert.Equal(t, "stock ajustado", entry["message"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "WARN", Out: &buf})

	l.Info().Msg("oculto")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
