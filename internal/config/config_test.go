package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imgfetch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, DefaultDirName, cfg.TargetDir)
	assert.Equal(t, 50, cfg.MaxSizeMB)
	assert.Equal(t, 2*time.Second, cfg.BatchDelay)
	assert.Equal(t, 10*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "image_", cfg.FilenamePrefix)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
target_dir: /tmp/pics
max_size_mb: 5
batch_delay: 500ms
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pics", cfg.TargetDir)
	assert.Equal(t, 5, cfg.MaxSizeMB)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchDelay)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// Untouched keys keep their defaults.
	assert.Equal(t, ".image_hashes.txt", cfg.HashFile)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "target_dir: from-yaml\nmax_size_mb: 5\n")
	t.Setenv("IMGFETCH_TARGET_DIR", "from-env")
	t.Setenv("IMGFETCH_MAX_SIZE_MB", "7")
	t.Setenv("IMGFETCH_FETCH_TIMEOUT", "1m")
	t.Setenv("IMGFETCH_SHOW_PROGRESS", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.TargetDir)
	assert.Equal(t, 7, cfg.MaxSizeMB)
	assert.Equal(t, time.Minute, cfg.FetchTimeout)
	assert.False(t, cfg.ShowProgress)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	path := writeConfig(t, "filename_prefix: pic_\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "pic_", cfg.FilenamePrefix)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			yaml:    "target_dir: [unclosed",
			wantErr: "failed to parse config",
		},
		{
			name:    "zero size limit",
			yaml:    "max_size_mb: 0",
			wantErr: "MaxSizeMB",
		},
		{
			name:    "prefix with separator",
			yaml:    "filename_prefix: a/b",
			wantErr: "FilenamePrefix",
		},
		{
			name:    "hash file pointing at parent directory",
			yaml:    "hash_file: ..",
			wantErr: "HashFile",
		},
		{
			name:    "hash file pointing at target directory",
			yaml:    "hash_file: .",
			wantErr: "HashFile",
		},
		{
			name:    "unknown log level",
			yaml:    "log:\n  level: loud",
			wantErr: "Level",
		},
		{
			name:    "bad env duration",
			env:     map[string]string{"IMGFETCH_BATCH_DELAY": "soon"},
			wantErr: "invalid IMGFETCH_BATCH_DELAY",
		},
		{
			name:    "bad env bool",
			env:     map[string]string{"IMGFETCH_ENABLE_HTTP2": "maybe"},
			wantErr: "invalid IMGFETCH_ENABLE_HTTP2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}
