package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockSuiteYAML = `name: smoke
description: Offline suite used by command tests.

config:
  runs_per_cell: 3
  timeout_ms: 5000

providers:
  - id: mock/echo
    kind: mock
    responses:
      "": "hello"

scorers:
  - kind: exact_match
  - kind: latency

tasks:
  - tasks/*.yaml

gate:
  thresholds:
    exact_match: 0.05
`

const greetingTaskYAML = `name: greeting
prompt: Reply with the word hello.
expected: hello
`

// writeSuite lays out a runnable mock benchmark suite and returns the spec
// path.
func writeSuite(t *testing.T, dir string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tasks"), 0o755))

	specPath := filepath.Join(dir, "benchmark.yaml")
	require.NoError(t, os.WriteFile(specPath, []byte(mockSuiteYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks", "greeting.yaml"), []byte(greetingTaskYAML), 0o644))
	return specPath
}

func executeCI(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newCICommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestCICommand_FirstRunEstablishesBaseline(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSuite(t, dir)
	baselinePath := filepath.Join(dir, "baseline.json")

	err := executeCI(t, specPath, "--baseline", baselinePath, "--save-baseline")
	require.NoError(t, err)
	assert.FileExists(t, baselinePath)
}

func TestCICommand_UnchangedResultsPass(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSuite(t, dir)
	baselinePath := filepath.Join(dir, "baseline.json")

	require.NoError(t, executeCI(t, specPath, "--baseline", baselinePath, "--save-baseline"))
	require.NoError(t, executeCI(t, specPath, "--baseline", baselinePath))
}

func TestCICommand_RegressionFailsGate(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSuite(t, dir)
	baselinePath := filepath.Join(dir, "baseline.json")

	require.NoError(t, executeCI(t, specPath, "--baseline", baselinePath, "--save-baseline"))

	// Change the expectation so every exact_match score drops from 1 to 0.
	broken := `name: greeting
prompt: Reply with the word hello.
expected: goodbye
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks", "greeting.yaml"), []byte(broken), 0o644))

	err := executeCI(t, specPath, "--baseline", baselinePath)
	require.Error(t, err)

	var gateErr *GateFailureError
	require.True(t, errors.As(err, &gateErr))
	assert.Contains(t, gateErr.Message, "gate failed")
}

func TestCICommand_RegressionDoesNotOverwriteBaseline(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSuite(t, dir)
	baselinePath := filepath.Join(dir, "baseline.json")

	require.NoError(t, executeCI(t, specPath, "--baseline", baselinePath, "--save-baseline"))
	saved, err := os.ReadFile(baselinePath)
	require.NoError(t, err)

	broken := `name: greeting
prompt: Reply with the word hello.
expected: goodbye
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks", "greeting.yaml"), []byte(broken), 0o644))
	require.Error(t, executeCI(t, specPath, "--baseline", baselinePath, "--save-baseline"))

	after, err := os.ReadFile(baselinePath)
	require.NoError(t, err)
	assert.Equal(t, saved, after)
}

func TestCICommand_GitHubCommentFormat(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSuite(t, dir)
	baselinePath := filepath.Join(dir, "baseline.json")

	require.NoError(t, executeCI(t, specPath, "--baseline", baselinePath, "--format", "github-comment"))
}

func TestCICommand_ReportOutput(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSuite(t, dir)
	reportPath := filepath.Join(dir, "report.json")

	err := executeCI(t, specPath,
		"--baseline", filepath.Join(dir, "baseline.json"),
		"--output", reportPath)
	require.NoError(t, err)
	assert.FileExists(t, reportPath)
}

func TestCICommand_UnknownFormat(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSuite(t, dir)

	err := executeCI(t, specPath, "--baseline", filepath.Join(dir, "baseline.json"), "--format", "junit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")

	// Rejected before any benchmark work, so a bad format on a bad spec
	// still reports the format error.
	err = executeCI(t, filepath.Join(dir, "nope.yaml"), "--format", "junit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestCICommand_MissingSpec(t *testing.T) {
	err := executeCI(t, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var gateErr *GateFailureError
	assert.False(t, errors.As(err, &gateErr))
}
