package logger

import (
	"bytes"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telemetry-capture/internal/config"
)

func TestNewJSON(t *testing.T) {
	cfg := config.Default()
	cfg.ServiceName = "svc"
	cfg.InstanceID = "i-1"
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	log := New(cfg, &buf)

	log.Info().Msg("dropped by level")
	log.Warn().Str("k", "v").Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "svc", rec["service"])
	assert.Equal(t, "i-1", rec["instance"])
	assert.Equal(t, "kept", rec["message"])
	assert.Equal(t, "v", rec["k"])
}

func TestNewSampling(t *testing.T) {
	cfg := config.Default()
	cfg.LogSampleN = 5

	var buf bytes.Buffer
	log := New(cfg, &buf)
	for i := 0; i < 10; i++ {
		log.Info().Msg("sampled")
	}
	log.Error().Msg("always")

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "sampled"))
	assert.Equal(t, 1, strings.Count(out, "always"))
}

func TestNewBadLevelFallsBackToInfo(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "loud"

	var buf bytes.Buffer
	log := New(cfg, &buf)
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
