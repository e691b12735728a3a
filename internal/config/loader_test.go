package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every search path at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "credex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := NewLoaderWith(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoad_FromSearchPath(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
log_level: debug
extract:
  min_confidence: 0.5
  scan_all_tokens: true
server:
  port: 9090
registry:
  source: file
  path: /srv/registry.yaml
`)

	loader := NewLoaderWith(viper.New())
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.InDelta(t, 0.5, cfg.Extract.MinConfidence, 1e-9)
	assert.True(t, cfg.Extract.ScanAllTokens)
	assert.True(t, cfg.Extract.Canonicalize, "unset keys keep their defaults")
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/registry.yaml", cfg.Registry.Path)
	assert.Contains(t, loader.GetConfigFileUsed(), "credex.yaml")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CREDEX_LOG_LEVEL", "warn")
	t.Setenv("CREDEX_EXTRACT_MIN_CONFIDENCE", "0.75")
	t.Setenv("CREDEX_BATCH_WORKERS", "9")

	cfg, err := NewLoaderWith(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.InDelta(t, 0.75, cfg.Extract.MinConfidence, 1e-9)
	assert.Equal(t, 9, cfg.Batch.Workers)
}

func TestLoad_ValidationFailure(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "output:\n  format: xml\n")

	_, err := NewLoaderWith(viper.New()).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")

	cfg, err := NewLoaderWith(viper.New()).LoadWithoutValidation()
	require.NoError(t, err)
	assert.Equal(t, "xml", cfg.Output.Format)
}

func TestLoadWithFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: csv\n"), 0o600))

	cfg, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Output.Format)

	_, err = NewLoaderWith(viper.New()).LoadWithFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadWithFile_Malformed(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [port"), 0o600))

	_, err := NewLoaderWith(viper.New()).LoadWithFileWithoutValidation(path)
	assert.Error(t, err)
}

func TestGenerateDefaultConfigFile_RoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "generated.yaml")

	require.NoError(t, GenerateDefaultConfigFile(path))

	cfg, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestGetConfigSearchPaths(t *testing.T) {
	dir := isolate(t)

	paths := GetConfigSearchPaths()
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, dir)
	assert.Contains(t, paths, filepath.Join(dir, "xdg", "credex"))
	assert.Equal(t, "/etc/credex", paths[len(paths)-1])
}
