package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/signalnine/scorekeeper/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(&buf, "info", "json")
	require.NoError(t, err)

	log.Named("bestrun").With(logger.Team("team_x")).Warn(context.Background(), "log missing",
		logger.Trial("kitting"), logger.Error(errors.New("boom")))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "log missing", rec["msg"])
	assert.Equal(t, "bestrun", rec["component"])
	assert.Equal(t, "team_x", rec["team"])
	assert.Equal(t, "kitting", rec["trial"])
	assert.Equal(t, "boom", rec["error"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(&buf, "warn", "text")
	require.NoError(t, err)

	log.Info(context.Background(), "hidden")
	log.Debug(context.Background(), "hidden too")
	assert.Empty(t, buf.String())

	log.Error(context.Background(), "shown", logger.Int("n", 3))
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "n=3")
}

func TestParseLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "", "warn", "WARNING", "error"} {
		_, err := logger.ParseLevel(lvl)
		assert.NoError(t, err, lvl)
	}
	_, err := logger.ParseLevel("loud")
	assert.Error(t, err)

	_, err = logger.New(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	log := logger.Nop()
	log.Error(context.Background(), "nothing happens", logger.Float64("x", 1.5), logger.Bool("b", true))
	assert.NotNil(t, log.Named("x"))
}
