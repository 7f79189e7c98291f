package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeYAMLConfig(t *testing.T, dir, baseURL string) string {
	t.Helper()
	doc := map[string]any{
		"api": map[string]any{
			"key":                 "test-key",
			"base_url":            baseURL,
			"requests_per_second": 0,
			"max_retries":         0,
		},
		"checkpoint": map[string]any{
			"backend": "file",
			"path":    filepath.Join(dir, "state.json"),
		},
		"cluster": map[string]any{
			"sim":         0.9,
			"min_samples": 2,
		},
		"logging": map[string]any{
			"level": "error",
		},
	}
	data, err := yaml.Marshal(doc)
	require.NoError(t, err)

	path := filepath.Join(dir, "ytcomments.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRunCommandStructure(t *testing.T) {
	assert.Equal(t, "run <video>", runCmd.Use)
	assert.Equal(t, "out", runCmd.Flags().Lookup("base").DefValue)
	for _, name := range []string{"order", "resume", "max-total", "sim", "min-samples"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestRunPipeline(t *testing.T) {
	_, srv := newFakeYouTube(t)
	dir := t.TempDir()
	cfgPath := writeYAMLConfig(t, dir, srv.URL)
	base := filepath.Join(dir, "out")

	out, err := executeRoot(t, "run", testVideo, "--config", cfgPath, "--base", base)
	require.NoError(t, err, out)

	assert.Contains(t, out, ">>> Running fetch step")
	assert.Contains(t, out, "Saved 5 rows")
	assert.Contains(t, out, ">>> Running cluster step")
	assert.Contains(t, out, "Clusters:")

	for _, suffix := range []string{"_raw.csv", "_clustered.csv", "_clusters_summary.csv"} {
		assert.FileExists(t, base+suffix)
	}
}

func TestRunPipeline_NoComments(t *testing.T) {
	fake, srv := newFakeYouTube(t)
	fake.disabled = true
	dir := t.TempDir()
	cfgPath := writeYAMLConfig(t, dir, srv.URL)
	base := filepath.Join(dir, "out")

	out, err := executeRoot(t, "run", testVideo, "--config", cfgPath, "--base", base)
	require.Error(t, err)
	assert.Contains(t, out, "No comments found or comments disabled.")
	assert.NoFileExists(t, base+"_clustered.csv")
}

func TestFetchCommand_Execute(t *testing.T) {
	_, srv := newFakeYouTube(t)
	dir := t.TempDir()
	cfgPath := writeYAMLConfig(t, dir, srv.URL)
	csvPath := filepath.Join(dir, "c.csv")

	out, err := executeRoot(t, "fetch", testVideo, "--config", cfgPath, "--csv", csvPath, "--max-top-level", "2")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Stopped at max_top_level limit")
	assert.FileExists(t, csvPath)

	out, err = executeRoot(t, "checkpoint", "show", testVideo, "--config", cfgPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, `"processed_top_level"`)
}
