package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	viper.Reset()
	cfg, err := Load(writeConfigFile(t, "app:\n  name: test\n"))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Pipeline.Cadence)
	assert.Equal(t, 3, cfg.Pipeline.TopK)
	assert.Equal(t, 0.05, cfg.Pipeline.PosThreshold)
	assert.Equal(t, -0.05, cfg.Pipeline.NegThreshold)
	assert.Equal(t, 8, cfg.Pipeline.MaxConcurrentScores)
}

func TestLoadKeepsExplicitZeroThresholds(t *testing.T) {
	viper.Reset()
	cfg, err := Load(writeConfigFile(t, "pipeline:\n  pos_threshold: 0\n  neg_threshold: 0\n"))
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.Pipeline.PosThreshold)
	assert.Equal(t, 0.0, cfg.Pipeline.NegThreshold)
}

func TestLoadClampsSubSecondCadence(t *testing.T) {
	viper.Reset()
	cfg, err := Load(writeConfigFile(t, "pipeline:\n  cadence: 200ms\n"))
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Pipeline.Cadence)
}
