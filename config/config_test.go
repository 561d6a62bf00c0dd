package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
provider: anthropic
model: claude-sonnet-4-20250514
max_turns: 5
logging:
  level: debug
  format: json
`)

	cfg := Default()
	require.NoError(t, LoadFromFile(path, cfg))

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model)
	assert.Equal(t, 5, cfg.MaxTurns)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFilePartialOverride(t *testing.T) {
	path := writeConfig(t, "model: gpt-4o-mini\n")

	cfg := Default()
	require.NoError(t, LoadFromFile(path, cfg))

	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"), cfg)
	assert.Error(t, err)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := writeConfig(t, "provider: [unclosed\n")
	cfg := Default()
	assert.Error(t, LoadFromFile(path, cfg))
}

func TestBuildLogger(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg.BuildLogger())
}
