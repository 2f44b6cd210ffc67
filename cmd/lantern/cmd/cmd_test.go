package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the CLI with args and returns its stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// writeTestConfig points lantern at temp stores and one directory
// source over root.
func writeTestConfig(t *testing.T, root string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf(`
version: 1
index:
  path: %s
learn:
  path: %s
sources:
  - name: files
    kind: directory
    root: %s
    interval_seconds: 60
watch:
  enabled: false
`, filepath.Join(dir, "index"), filepath.Join(dir, "learn.db"), root)
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lantern")

	out, err = runCommand(t, "version", "--short")
	require.NoError(t, err)
	assert.Contains(t, out, "dev")

	out, err = runCommand(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
}

func TestRootCommand_ShowsHelp(t *testing.T) {
	out, err := runCommand(t)
	require.NoError(t, err)
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "query")
}

func TestIndexThenQuery(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "firefox.desktop"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notepad.desktop"), []byte("x"), 0o644))
	cfg := writeTestConfig(t, root)

	out, err := runCommand(t, "--config", cfg, "index")
	require.NoError(t, err)
	assert.Contains(t, out, "files: 2 indexed")

	out, err = runCommand(t, "--config", cfg, "query", "fire", "--json")
	require.NoError(t, err)

	var res struct {
		HasCompletion bool `json:"has_completion"`
		Completion    struct {
			Text string `json:"text"`
		} `json:"completion"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.HasCompletion)
	assert.Equal(t, "firefox.desktop", res.Completion.Text)
}

func TestQuery_NoMatchFallsBackToLiteral(t *testing.T) {
	cfg := writeTestConfig(t, t.TempDir())

	_, err := runCommand(t, "--config", cfg, "index")
	require.NoError(t, err)

	out, err := runCommand(t, "--config", cfg, "query", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "no completion")
	assert.Contains(t, out, "zzz")
}

func TestIndexCommand_UnknownSource(t *testing.T) {
	cfg := writeTestConfig(t, t.TempDir())

	_, err := runCommand(t, "--config", cfg, "index", "--source", "nope")
	assert.Error(t, err)
}

func TestConfigShow(t *testing.T) {
	cfg := writeTestConfig(t, t.TempDir())

	out, err := runCommand(t, "--config", cfg, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "min_relevance")
	assert.Contains(t, out, "files")
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := runCommand(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	_, err = runCommand(t, "--config", path, "config", "init")
	assert.Error(t, err)

	_, err = runCommand(t, "--config", path, "config", "init", "--force")
	assert.NoError(t, err)
}
