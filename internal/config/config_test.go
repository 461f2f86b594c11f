package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultExtensions, cfg.Extensions)
	assert.True(t, cfg.IsRecursive())
	assert.True(t, cfg.BindComments())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "jwalk.yml", `
extensions: [".js"]
exclude: ["vendor"]
recursive: false
workers: 2
comments: false
cacheDir: .jwalk/cache
logLevel: debug
format: csv
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{".js"}, cfg.Extensions)
	assert.Equal(t, []string{"vendor"}, cfg.Exclude)
	assert.False(t, cfg.IsRecursive())
	assert.False(t, cfg.BindComments())
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, ".jwalk/cache", cfg.CacheDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "csv", cfg.Format)

	// unset fields still get defaults
	assert.Equal(t, DefaultMaxFileSize, cfg.MaxFileSize)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
}

func TestLoad_YamlExtension(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "jwalk.yaml", "workers: 3\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoad_EmptyExcludeDisablesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "jwalk.yml", "exclude: []\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Exclude)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"too many workers", "workers: 1000\n", "Workers"},
		{"negative workers", "workers: -1\n", "Workers"},
		{"bad log level", "logLevel: loud\n", "LogLevel"},
		{"bad format", "format: xml\n", "Format"},
		{"extension without dot", "extensions: [js]\n", "Extensions"},
		{"negative size", "maxFileSize: -5\n", "MaxFileSize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "jwalk.yml", tt.body)
			_, err := Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "jwalk.yml", "workers: [\n")
	_, err := Load(dir)
	assert.ErrorContains(t, err, "parse")
}
