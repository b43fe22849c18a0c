package postinstall

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/hook"
	"github.com/arthur-debert/postinstall/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAppID = "org.gnome.Maps"

// isolateEnv keeps a developer's config, logs and DESTDIR out of the tests
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	t.Setenv("DESTDIR", "")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestInstallStaged(t *testing.T) {
	isolateEnv(t)
	tree := testutil.NewInstallTree(t)
	stage := t.TempDir()
	t.Setenv("DESTDIR", stage)

	stdout, _, err := execute(t, tree.DataDir, tree.BinDir, testAppID)
	require.NoError(t, err)

	link := filepath.Join(stage, tree.BinDir, "gnome-maps")
	points, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tree.DataDir, "gnome-maps", testAppID), points)

	assert.NotContains(t, stdout, hook.MsgIconCache)
	assert.NotContains(t, stdout, hook.MsgSchemas)
}

func TestInstallInPlaceWithToolsDisabled(t *testing.T) {
	isolateEnv(t)
	tree := testutil.NewInstallTree(t)

	stdout, _, err := execute(t, "--no-icon-cache", "--no-schemas", "--launcher", "maps",
		tree.DataDir, tree.BinDir, testAppID)
	require.NoError(t, err)

	points, err := os.Readlink(filepath.Join(tree.BinDir, "maps"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tree.DataDir, "maps", testAppID), points)
	assert.Empty(t, stdout)
}

func TestInstallMissingTool(t *testing.T) {
	t.Run("best effort", func(t *testing.T) {
		isolateEnv(t)
		tree := testutil.NewInstallTree(t)
		t.Setenv("POSTINSTALL_ICONS_COMMAND", "postinstall-test-no-such-tool")

		stdout, stderr, err := execute(t, "--no-schemas", tree.DataDir, tree.BinDir, testAppID)
		require.NoError(t, err)

		assert.Contains(t, stdout, hook.MsgIconCache)
		assert.Contains(t, stderr, "warning: icon-cache")
		assert.FileExists(t, filepath.Join(tree.BinDir, "gnome-maps"), "the link is created regardless")
	})

	t.Run("strict", func(t *testing.T) {
		isolateEnv(t)
		tree := testutil.NewInstallTree(t)
		t.Setenv("POSTINSTALL_ICONS_COMMAND", "postinstall-test-no-such-tool")

		_, _, err := execute(t, "--strict", "--no-schemas", tree.DataDir, tree.BinDir, testAppID)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrCommandNotFound))
	})
}

func TestInstallDryRun(t *testing.T) {
	isolateEnv(t)
	tree := testutil.NewInstallTree(t)

	stdout, _, err := execute(t, "--dry-run", tree.DataDir, tree.BinDir, testAppID)
	require.NoError(t, err)

	assert.NoDirExists(t, tree.BinDir)
	assert.Contains(t, stdout, "(dry run)")
	assert.Contains(t, stdout, MsgDryRunNotice)
}

func TestInstallWritesManifest(t *testing.T) {
	isolateEnv(t)
	tree := testutil.NewInstallTree(t)
	stage := t.TempDir()
	t.Setenv("DESTDIR", stage)

	_, _, err := execute(t, "--manifest", "/var/lib/postinstall/maps.toml", tree.DataDir, tree.BinDir, testAppID)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(stage, "var", "lib", "postinstall", "maps.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), testAppID)
	assert.Contains(t, string(data), "symlink")
}

func TestInstallRelativeManifest(t *testing.T) {
	isolateEnv(t)
	tree := testutil.NewInstallTree(t)

	wd, err := os.Getwd()
	require.NoError(t, err)
	work := t.TempDir()
	require.NoError(t, os.Chdir(work))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, _, err = execute(t, "--no-icon-cache", "--no-schemas", "--manifest", filepath.Join("build", "maps.toml"),
		tree.DataDir, tree.BinDir, testAppID)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(work, "build", "maps.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), testAppID)
	assert.NoFileExists(t, filepath.Join("/", "build", "maps.toml"))
}

func TestInstallArgs(t *testing.T) {
	isolateEnv(t)

	_, _, err := execute(t, "/usr/share", "/usr/bin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 3 arg(s)")
}

func TestInstallInvalidConfig(t *testing.T) {
	isolateEnv(t)
	tree := testutil.NewInstallTree(t)

	_, _, err := execute(t, "--format", "xml", tree.DataDir, tree.BinDir, testAppID)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}

func TestPlanCmd(t *testing.T) {
	isolateEnv(t)
	tree := testutil.NewInstallTree(t)

	stdout, _, err := execute(t, "plan", "--format", "json", tree.DataDir, tree.BinDir, testAppID)
	require.NoError(t, err)

	var plan struct {
		Layout struct {
			LinkSource string `json:"linkSource"`
			LinkTarget string `json:"linkTarget"`
		} `json:"layout"`
		Steps []struct {
			Kind string `json:"kind"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &plan))
	assert.Len(t, plan.Steps, 6)
	assert.Equal(t, filepath.Join(tree.DataDir, "gnome-maps", testAppID), plan.Layout.LinkSource)
	assert.Equal(t, filepath.Join(tree.BinDir, "gnome-maps"), plan.Layout.LinkTarget)
	assert.NoDirExists(t, tree.BinDir)
}

func TestPlanCmdText(t *testing.T) {
	isolateEnv(t)
	tree := testutil.NewInstallTree(t)
	t.Setenv("DESTDIR", "/stage")

	stdout, _, err := execute(t, "plan", tree.DataDir, tree.BinDir, testAppID)
	require.NoError(t, err)
	assert.Contains(t, stdout, "staging:  /stage")
	assert.Contains(t, stdout, "skipped (staged)")
}

func TestConfigCmd(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := execute(t, "config", "--launcher", "my-app")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[launcher]")
	assert.Contains(t, stdout, "my-app")
}

func TestConfigCmdShowsSources(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "hook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("launcher:\n  name: from-file\n"), 0644))

	stdout, _, err := execute(t, "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "# loaded from: "+path)
	assert.Contains(t, stdout, "from-file")
}

func TestVersionCmd(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "postinstall version")
	assert.Contains(t, stdout, "commit:")
}

func TestCompletionCmd(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "postinstall")

	_, _, err = execute(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestHelpTopics(t *testing.T) {
	isolateEnv(t)

	t.Run("list", func(t *testing.T) {
		stdout, _, err := execute(t, "help", "topics")
		require.NoError(t, err)
		assert.Contains(t, stdout, "staging")
		assert.Contains(t, stdout, "--strict")
	})

	t.Run("topic", func(t *testing.T) {
		stdout, _, err := execute(t, "help", "staging")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Staged installs")
	})

	t.Run("manifest topic", func(t *testing.T) {
		stdout, _, err := execute(t, "help", "manifest")
		require.NoError(t, err)
		assert.Contains(t, stdout, "`destdir` field")
	})

	t.Run("option topic", func(t *testing.T) {
		stdout, _, err := execute(t, "help", "strict")
		require.NoError(t, err)
		assert.Contains(t, stdout, "exit with status 1")
	})
}

func TestGenCompletionUnknownShell(t *testing.T) {
	err := GenCompletion(NewRootCmd(), "tcsh", &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
