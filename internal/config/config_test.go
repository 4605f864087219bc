package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/tile-clean/internal/tile"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, tile.DefaultParams(), cfg.Params())
	assert.Equal(t, ".tif", cfg.Paths.Extension)
	assert.Equal(t, "fail", cfg.Paths.FailDir)
	assert.GreaterOrEqual(t, cfg.Processing.Workers, 1)
	assert.False(t, cfg.Processing.RemoveReplaced)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tile-clean.yaml")
	data := `
paths:
  dataRoot: /data/nac
  extension: .tiff
resolve:
  targetRows: 64
  targetCols: 48
  stride: 0
processing:
  workers: 3
  removeReplaced: true
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/nac", cfg.Paths.DataRoot)
	assert.Equal(t, ".tiff", cfg.Paths.Extension)
	assert.Equal(t, "Tiles", cfg.Paths.TileDir, "unset keys keep defaults")
	assert.Equal(t, tile.Params{
		Target:           tile.Size{Rows: 64, Cols: 48},
		TrimThreshold:    5,
		RecoverThreshold: 3,
		Stride:           0,
	}, cfg.Params())
	assert.Equal(t, 3, cfg.Processing.Workers)
	assert.True(t, cfg.Processing.RemoveReplaced)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed yaml", "resolve: [unterminated"},
		{"zero target", "resolve:\n  targetRows: 0\n"},
		{"negative threshold", "resolve:\n  trimThreshold: -1\n"},
		{"negative stride", "resolve:\n  stride: -16\n"},
		{"no workers", "processing:\n  workers: 0\n"},
		{"empty extension", "paths:\n  extension: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tile-clean.yaml")
	cfg := DefaultConfig()
	cfg.Resolve.TrimThreshold = 7
	cfg.Logging.File = "/var/log/tile-clean.log"

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}

func TestPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Paths.DataRoot = "/data"

	assert.Equal(t, filepath.Join("/data", "Resampled"), cfg.SourcePath())
	assert.Equal(t, filepath.Join("/data", "Tiles"), cfg.TilePath())
	assert.Equal(t, filepath.Join("/data", "Tiles", "fail"), cfg.FailPath())

	cfg.Paths.FailDir = "/elsewhere/failed"
	assert.Equal(t, "/elsewhere/failed", cfg.FailPath())
}
