package cmd

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/opticshield/opticshield/internal/config"
	"github.com/opticshield/opticshield/internal/person"
	"github.com/opticshield/opticshield/internal/testutil"
)

// execute runs the root command with fresh global state and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("OPTICSHIELD_API_URL", "")
	t.Setenv("VITE_API_URL", "")
	t.Setenv("OPTICSHIELD_DEBUG", "")

	viper.Reset()
	cfgFile, baseURLFlag, debugFlag = "", "", false
	addOpts.name, addOpts.personID, addOpts.flag, addOpts.metadata, addOpts.image = "", "", "whitelist", "", ""
	deleteYes = false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// against runs args against fake with a minimal config file.
func against(t *testing.T, fake *testutil.FakeRegistry, stdin string, args ...string) (string, error) {
	t.Helper()
	path := writeConfig(t, "base_url: http://localhost:5000\n")
	return execute(t, stdin, append([]string{"-c", path, "--base-url", fake.URL()}, args...)...)
}

func TestPersonsList_PrintsJSON(t *testing.T) {
	fake := testutil.NewFakeRegistry(t).Seed(
		testutil.NewPerson("1", "Alice", testutil.WithMetadata("front desk")),
		testutil.NewPerson("2", "Bob", testutil.WithClassification(person.Watchlist)),
	)

	out, err := against(t, fake, "", "persons:list")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	require.Equal(t, "Alice", got[0]["name"])
	require.Equal(t, "front desk", got[0]["metadata"])
	require.Equal(t, "watchlist", got[1]["flag"])
}

func TestPersonsList_EmptyRegistry(t *testing.T) {
	fake := testutil.NewFakeRegistry(t)
	out, err := against(t, fake, "", "persons:list")
	require.NoError(t, err)
	require.Equal(t, "[]\n", out)
}

func TestPersonsList_ServerError(t *testing.T) {
	fake := testutil.NewFakeRegistry(t).FailNext("GET", 500)
	_, err := against(t, fake, "", "persons:list")
	require.Error(t, err)
}

func TestPersonsAdd_CreatesRecord(t *testing.T) {
	fake := testutil.NewFakeRegistry(t)

	out, err := against(t, fake, "", "persons:add", "-n", "Alice", "-i", "A1", "--flag", "blacklist", "--metadata", "front desk")
	require.NoError(t, err)
	require.Contains(t, out, `"name": "Alice"`)

	records := fake.Records()
	require.Len(t, records, 1)
	require.Equal(t, person.Blacklist, records[0].Classification)
	require.Equal(t, "front desk", records[0].MetadataText())
}

func TestPersonsAdd_RequiresNameAndPersonID(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no name", []string{"-i", "A1"}},
		{"no person id", []string{"-n", "Alice"}},
		{"blank person id", []string{"-n", "Alice", "-i", "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeRegistry(t)
			_, err := against(t, fake, "", append([]string{"persons:add"}, tt.args...)...)
			require.Error(t, err)
			require.Contains(t, err.Error(), "required")
			require.Zero(t, fake.Count("POST"))
		})
	}
}

func TestPersonsAdd_RejectsUnknownFlag(t *testing.T) {
	fake := testutil.NewFakeRegistry(t)
	_, err := against(t, fake, "", "persons:add", "-n", "Alice", "-i", "A1", "--flag", "greylist")
	require.Error(t, err)
	require.Contains(t, err.Error(), "greylist")
	require.Zero(t, fake.Count("POST"))
}

func TestPersonsAdd_EmbedsImage(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(testutil.TinyPNG, "data:image/png;base64,"))
	require.NoError(t, err)
	img := filepath.Join(t.TempDir(), "face.png")
	require.NoError(t, os.WriteFile(img, raw, 0o600))

	fake := testutil.NewFakeRegistry(t)
	out, err := against(t, fake, "", "persons:add", "-n", "Alice", "-i", "A1", "--image", img)
	require.NoError(t, err)
	require.Contains(t, out, `"image_mime": "image/png"`)
	require.True(t, strings.HasPrefix(fake.Records()[0].Image, "data:image/png;base64,"))
}

func TestPersonsAdd_BadImageCreatesWithoutImage(t *testing.T) {
	notImage := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notImage, []byte("hello"), 0o600))

	fake := testutil.NewFakeRegistry(t)
	out, err := against(t, fake, "", "persons:add", "-n", "Alice", "-i", "A1", "--image", notImage)
	require.NoError(t, err)
	require.Contains(t, out, `"name": "Alice"`)
	require.NotContains(t, out, "image_mime")

	require.Equal(t, 1, fake.Count("POST"))
	require.Len(t, fake.Records(), 1)
	require.False(t, fake.Records()[0].HasImage())
}

func TestPersonsFlag_AdvancesClassification(t *testing.T) {
	fake := testutil.NewFakeRegistry(t).Seed(testutil.NewPerson("1", "Alice"))

	out, err := against(t, fake, "", "persons:flag", "1")
	require.NoError(t, err)
	require.Contains(t, out, `"flag": "blacklist"`)
	require.Equal(t, person.Blacklist, fake.Records()[0].Classification)
	require.Equal(t, 1, fake.Count("PUT"))
	require.Equal(t, 2, fake.Count("GET"), "printed record is refetched after the update")

	_, err = against(t, fake, "", "persons:flag", "1")
	require.NoError(t, err)
	require.Equal(t, person.Watchlist, fake.Records()[0].Classification)
}

func TestPersonsFlag_UnknownID(t *testing.T) {
	fake := testutil.NewFakeRegistry(t).Seed(testutil.NewPerson("1", "Alice"))
	_, err := against(t, fake, "", "persons:flag", "nope")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
	require.Zero(t, fake.Count("PUT"))
}

func TestPersonsDelete(t *testing.T) {
	tests := []struct {
		name      string
		stdin     string
		args      []string
		deletes   int
		remaining int
	}{
		{"yes flag skips prompt", "", []string{"--yes"}, 1, 0},
		{"prompt accepted", "y\n", nil, 1, 0},
		{"prompt declined", "n\n", nil, 0, 1},
		{"no answer declines", "", nil, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeRegistry(t).Seed(testutil.NewPerson("1", "Alice"))
			args := append([]string{"persons:delete", "1"}, tt.args...)
			_, err := against(t, fake, tt.stdin, args...)
			require.NoError(t, err)
			require.Equal(t, tt.deletes, fake.Count("DELETE"))
			require.Len(t, fake.Records(), tt.remaining)
		})
	}
}

func TestConfigSetURL_PrintsDiffAndKeepsComments(t *testing.T) {
	path := writeConfig(t, "# registry\nbase_url: http://localhost:5000\nauto_reload: true\n")

	out, err := execute(t, "", "-c", path, "config:set-url", "http://registry.local:9000/")
	require.NoError(t, err)
	require.Contains(t, out, "-base_url: http://localhost:5000")
	require.Contains(t, out, "+base_url: http://registry.local:9000")
	require.NotContains(t, out, "auto_reload", "unchanged lines are not printed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# registry")

	saved, err := config.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "http://registry.local:9000", saved.BaseURL)
	require.True(t, saved.AutoReload)
}

func TestConfigSetURL_RejectsInvalidURL(t *testing.T) {
	path := writeConfig(t, "base_url: http://localhost:5000\n")
	_, err := execute(t, "", "-c", path, "config:set-url", "ftp://nope")
	require.Error(t, err)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	require.Equal(t, "base_url: http://localhost:5000\n", string(data))
}

func TestInvalidConfigIsRejected(t *testing.T) {
	fake := testutil.NewFakeRegistry(t)
	path := writeConfig(t, "tracing:\n  sample_rate: 2\n")
	_, err := execute(t, "", "-c", path, "--base-url", fake.URL(), "persons:list")
	require.Error(t, err)
	require.Contains(t, err.Error(), "sample_rate")
	require.Zero(t, fake.Count("GET"))
}

func TestConfigFileBaseURLIsUsed(t *testing.T) {
	fake := testutil.NewFakeRegistry(t).Seed(testutil.NewPerson("1", "Alice"))
	path := writeConfig(t, "base_url: "+fake.URL()+"\n")

	out, err := execute(t, "", "-c", path, "persons:list")
	require.NoError(t, err)
	require.Contains(t, out, "Alice")
	require.Equal(t, fake.URL(), cfg.BaseURL)
}
