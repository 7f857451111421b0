package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
engine:
  name: "Test Goose"
log:
  level: debug
options:
  Ponder: "true"
  Hash: "32"
bench:
  limit: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Test Goose", cfg.Engine.Name)
	assert.Equal(t, "the Goose developers", cfg.Engine.Author)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Bench.Limit)
	assert.Equal(t, 16, cfg.Bench.Hash)
	assert.Equal(t, []string{"Hash", "Ponder"}, cfg.OptionNames())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		errorMsg string
	}{
		{name: "Bad_YAML", yaml: "engine: [", errorMsg: "failed to parse config"},
		{name: "Empty_Name", yaml: "engine:\n  name: \"\"\n", errorMsg: "engine.name"},
		{name: "Bad_Format", yaml: "log:\n  format: xml\n", errorMsg: "log.format"},
		{name: "Bad_Limit_Type", yaml: "bench:\n  limit_type: forever\n", errorMsg: "bench.limit_type"},
		{name: "Zero_Hash", yaml: "bench:\n  hash: 0\n", errorMsg: "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	assert.Empty(t, Default().OptionNames())
}
