package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchgate/benchgate/internal/models"
)

func executeRun(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRunCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRunCommand_MockSuite(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSuite(t, dir)

	require.NoError(t, executeRun(t, specPath))
}

func TestRunCommand_SavesResults(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSuite(t, dir)
	outPath := filepath.Join(dir, "results.json")

	require.NoError(t, executeRun(t, specPath, "--output", outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var saved models.BaselineData
	require.NoError(t, json.Unmarshal(data, &saved))

	// 1 task × 1 provider × 3 runs
	require.Len(t, saved.Results, 3)
	for i, r := range saved.Results {
		assert.Equal(t, "mock/echo", r.ProviderID)
		assert.Equal(t, "greeting", r.TaskName)
		assert.Equal(t, i+1, r.Run)
		assert.False(t, r.Failed())

		score, ok := r.Score("exact_match")
		require.True(t, ok)
		assert.Equal(t, 1.0, score.Value)
	}
}

func TestRunCommand_RunsOverride(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSuite(t, dir)
	outPath := filepath.Join(dir, "results.json")

	require.NoError(t, executeRun(t, specPath, "--output", outPath, "--runs", "1"))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var saved models.BaselineData
	require.NoError(t, json.Unmarshal(data, &saved))
	require.Len(t, saved.Results, 1)
}

func TestRunCommand_MissingSpec(t *testing.T) {
	err := executeRun(t, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load spec")
}
