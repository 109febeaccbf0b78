package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/logging"
)

func TestNew_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Log: config.LogConfig{Level: "warn", Format: "json"}}

	log := logging.NewWithOutput(cfg, &buf)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Info("hidden")
	log.WithField("abstract", "cache").Warn("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "cache", entry["abstract"])
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Log: config.LogConfig{Level: "chatty", Format: "text"}}

	log := logging.NewWithOutput(cfg, &buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "unknown level")
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestNew_NilConfig(t *testing.T) {
	log := logging.New(nil)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
