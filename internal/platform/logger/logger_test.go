package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"civicfund/internal/platform/config"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("production defaults to json", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.Config{Environment: "production"})
		log.Info("campaign approved", "campaign_id", "c-1")
		assert.Contains(t, buf.String(), `"msg":"campaign approved"`)
		assert.Contains(t, buf.String(), `"service":"civicfund"`)
	})

	t.Run("development defaults to text", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.Config{Environment: "development"})
		log.Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("level filters debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.Config{Log: config.LogConfig{Level: "warn"}})
		log.Info("dropped")
		assert.Empty(t, buf.String())
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}
