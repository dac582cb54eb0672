package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pivolan/ridership_clipper/config"
	"github.com/pivolan/ridership_clipper/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ridership.csv")
	require.NoError(t, os.WriteFile(input, []byte(botCSV), 0644))

	cfg := &config.Config{
		InputPath:    input,
		OutputPath:   filepath.Join(dir, "clipped.csv"),
		OutputFormat: "csv",
		ReportDir:    filepath.Join(dir, "report"),
		DateColumn:   "Date",
		DateFormat:   "2006-01-02",
		Boundaries:   "early=2020-01-01..2020-01-10",
		LowerFrac:    0.25,
		UpperFrac:    0.25,
	}
	opts, err := pipeline.OptionsFromConfig(cfg)
	require.NoError(t, err)
	require.NoError(t, runBatch(cfg, opts))

	out, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "Date,Subway\n2020-01-01,3\n"))

	for _, name := range []string{"summary.txt", "boxplots.html", "windows.html"} {
		_, err := os.Stat(filepath.Join(cfg.ReportDir, name))
		assert.NoError(t, err, name)
	}
}

func TestRunBatchMissingInput(t *testing.T) {
	cfg := &config.Config{
		InputPath:  filepath.Join(t.TempDir(), "missing.csv"),
		DateColumn: "Date",
		DateFormat: "2006-01-02",
		Boundaries: config.DefaultBoundaries,
	}
	opts, err := pipeline.OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Error(t, runBatch(cfg, opts))
}

func TestRemoveOldFiles(t *testing.T) {
	dir := t.TempDir()
	oldDir := filepath.Join(dir, "old")
	require.NoError(t, os.MkdirAll(oldDir, 0755))
	oldFile := filepath.Join(oldDir, "a.csv")
	freshFile := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(oldFile, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(freshFile, []byte("x"), 0644))
	past := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(oldFile, past, past))

	require.NoError(t, removeOldFiles(dir, time.Now().Add(-2*time.Hour)))
	_, err := os.Stat(oldFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(oldDir)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshFile)
	assert.NoError(t, err)
}
