package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campsight/campsight/internal/cli"
)

// chdir changes the working directory for the duration of the test and
// restores it afterwards, standing in for testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Open(".")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(dir) {
		if dir, err = os.Getwd(); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		err := oldwd.Chdir()
		oldwd.Close()
		if err != nil {
			panic("chdir: " + err.Error())
		}
	})
}

// setupConfigTest isolates the config location and quiets logging so test
// output stays readable.
func setupConfigTest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("CAMPSIGHT_HOME", home)
	t.Setenv("CAMPSIGHT_LOG_LEVEL", "error")
	t.Setenv("CAMPSIGHT_LOG_FORMAT", "json")
	chdir(t, t.TempDir())
	return home
}

func TestConfigInitCreatesDefaultFile(t *testing.T) {
	home := setupConfigTest(t)

	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"config", "init"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Configuration initialized successfully")
	assert.Contains(t, output, filepath.Join(home, "config.yaml"))

	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "default_title: CampSight")
	assert.Contains(t, string(data), "usage_limit: 3")
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	home := setupConfigTest(t)

	path := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  default_title: Kept\n"), 0600))

	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"config", "init"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Contains(t, err.Error(), "--force")

	// The existing file is untouched.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Kept")
}

func TestConfigInitForceOverwrites(t *testing.T) {
	home := setupConfigTest(t)

	path := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  default_title: Old\n"), 0600))

	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"config", "init", "--force"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Configuration initialized successfully")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "default_title: CampSight")
	assert.NotContains(t, string(data), "Old")
}

// TestConfigInitExplicitPath covers pointing init at a file that does not
// exist yet: the root command must still come up (the missing file falls back
// to defaults) so init can create it.
func TestConfigInitExplicitPath(t *testing.T) {
	setupConfigTest(t)

	path := filepath.Join(t.TempDir(), "nested", "campsight.yaml")

	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"config", "init", "--config", path})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "default_title: CampSight")
}

func TestConfigInitCmdFlags(t *testing.T) {
	cmd := cli.NewConfigInitCmd()

	forceFlag := cmd.Flags().Lookup("force")
	require.NotNil(t, forceFlag)
	assert.Equal(t, "bool", forceFlag.Value.Type())
	assert.Equal(t, "false", forceFlag.DefValue)
	assert.Contains(t, forceFlag.Usage, "overwrite")
}
