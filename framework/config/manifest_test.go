package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/config"
)

func TestLoadManifest(t *testing.T) {
	m, err := config.LoadManifest("testdata/container.yaml")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"configuration": "config", "logger": "log"}, m.Aliases)
	assert.Equal(t, []string{"report.cpu", "report.memory"}, m.Tags["reports"])
}

func TestLoadManifest_MissingFileIsEmpty(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "nope.yaml")} {
		m, err := config.LoadManifest(path)
		require.NoError(t, err)
		assert.Empty(t, m.Aliases)
		assert.Empty(t, m.Tags)
	}
}

func TestLoadManifest_Malformed(t *testing.T) {
	_, err := config.LoadManifest("testdata/broken.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "testdata/broken.yaml")
}
