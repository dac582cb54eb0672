package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty directory so no stray .env is picked up
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)
	for _, env := range []string{"OUTPUT_FORMAT", "DATE_COLUMN", "LOWER_FRAC", "UPPER_FRAC", "BOUNDARIES", "CLIP_COLUMNS", "HTTP_PORT"} {
		t.Setenv(env, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.OutputFormat)
	assert.Equal(t, "Date", cfg.DateColumn)
	assert.Equal(t, 0.05, cfg.LowerFrac)
	assert.Equal(t, 0.05, cfg.UpperFrac)
	assert.Equal(t, DefaultBoundaries, cfg.Boundaries)
	assert.Empty(t, cfg.ClipColumns)
	assert.Equal(t, "8005", cfg.HTTPPort)
}

func TestLoadFromDotEnv(t *testing.T) {
	dir := chdir(t)
	for _, env := range []string{"OUTPUT_FORMAT", "CLIP_COLUMNS", "LOWER_FRAC", "UPPER_FRAC"} {
		os.Unsetenv(env)
	}
	t.Cleanup(func() {
		for _, env := range []string{"OUTPUT_FORMAT", "CLIP_COLUMNS", "LOWER_FRAC", "UPPER_FRAC"} {
			os.Unsetenv(env)
		}
	})
	content := "OUTPUT_FORMAT=parquet\nCLIP_COLUMNS=Subway, Bus ,,LIRR\nLOWER_FRAC=0.01\nUPPER_FRAC=0.02\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "parquet", cfg.OutputFormat)
	assert.Equal(t, []string{"Subway", "Bus", "LIRR"}, cfg.ClipColumns)
	assert.Equal(t, 0.01, cfg.LowerFrac)
	assert.Equal(t, 0.02, cfg.UpperFrac)
}

func TestLoadRejectsBadValues(t *testing.T) {
	chdir(t)
	tests := []struct {
		env, value string
	}{
		{"OUTPUT_FORMAT", "xlsx"},
		{"LOWER_FRAC", "-0.1"},
		{"UPPER_FRAC", "abc"},
		{"HTTP_PORT", "http"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
