package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func readYAML(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, yaml.Unmarshal(data, &out))
	return out
}

func TestSaveBaseURL_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".opticshield", "config.yaml")

	require.NoError(t, SaveBaseURL(path, "http://registry:9000"))

	got := readYAML(t, path)
	require.Equal(t, "http://registry:9000", got["base_url"])
}

func TestSaveBaseURL_ReplacesOnlyBaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# registry settings
base_url: http://old:5000 # staging
auto_reload: false
image:
  max_dimension: 320
`
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o600))

	require.NoError(t, SaveBaseURL(path, "https://new.example.com"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, "# registry settings")
	require.Contains(t, text, "# staging")
	require.NotContains(t, text, "old:5000")

	got := readYAML(t, path)
	require.Equal(t, "https://new.example.com", got["base_url"])
	require.Equal(t, false, got["auto_reload"])
	require.Equal(t, map[string]any{"max_dimension": 320}, got["image"])
}

func TestSaveBaseURL_AppendsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auto_reload: true\n"), 0o600))

	require.NoError(t, SaveBaseURL(path, "http://added:1"))

	got := readYAML(t, path)
	require.Equal(t, "http://added:1", got["base_url"])
	require.Equal(t, true, got["auto_reload"])
}

func TestSaveBaseURL_PreservesTemplateComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SaveBaseURL(path, "http://templated:7"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Reload base_url when this file changes")

	cfg, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "http://templated:7", cfg.BaseURL)
}

func TestSaveBaseURL_RejectsInvalidURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.Error(t, SaveBaseURL(path, "not a url"))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "nothing written on validation failure")
}

func TestSaveBaseURL_RejectsNonMappingRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))

	require.ErrorContains(t, SaveBaseURL(path, "http://x:1"), "not a mapping")
}

func TestSaveBaseURL_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveBaseURL(path, "http://x:1"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "config.yaml", entries[0].Name())
}
