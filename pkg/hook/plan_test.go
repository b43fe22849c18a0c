package hook_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/postinstall/pkg/hook"
	"github.com/arthur-debert/postinstall/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanSteps(t *testing.T) {
	f := newFixture(t)

	plan, err := f.hook().Plan(f.invocation(""))
	require.NoError(t, err)

	kinds := make([]types.StepKind, 0, len(plan.Steps))
	for _, s := range plan.Steps {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []types.StepKind{
		types.StepEnsureDir,
		types.StepLink,
		types.StepIconCache,
		types.StepSchemas,
		types.StepDesktopValidate,
		types.StepManifest,
	}, kinds)

	link, ok := plan.Step(types.StepLink)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(f.tree.DataDir, "gnome-maps", appID), link.Source)
	assert.Equal(t, filepath.Join(f.tree.BinDir, "gnome-maps"), link.Target)

	icons, _ := plan.Step(types.StepIconCache)
	require.Len(t, icons.Commands, 1)
	assert.Equal(t, "gtk-update-icon-cache -f -t "+filepath.Join(f.tree.DataDir, "icons", "hicolor"),
		icons.Commands[0].String())
	assert.Equal(t, hook.MsgIconCache, icons.Progress)
	assert.False(t, icons.Skipped())

	assert.Empty(t, f.runner.Calls(), "planning runs nothing")
	assert.NoDirExists(t, f.tree.BinDir, "planning changes nothing")
}

func TestPlanStagedSkipsTools(t *testing.T) {
	f := newFixture(t)

	plan, err := f.hook().Plan(f.invocation("/stage"))
	require.NoError(t, err)

	dir, _ := plan.Step(types.StepEnsureDir)
	assert.Equal(t, filepath.Join("/stage", f.tree.BinDir), dir.Target)

	for _, kind := range []types.StepKind{types.StepIconCache, types.StepSchemas, types.StepDesktopValidate} {
		s, ok := plan.Step(kind)
		require.True(t, ok)
		assert.Equal(t, types.SkipStaged, s.Skip, kind)
	}
}

func TestPlanDesktopWithoutEntries(t *testing.T) {
	f := newFixture(t)
	f.cfg.Desktop.Enabled = true

	plan, err := f.hook().Plan(f.invocation(""))
	require.NoError(t, err)

	s, _ := plan.Step(types.StepDesktopValidate)
	assert.Equal(t, types.SkipUpToDate, s.Skip)
	assert.Empty(t, s.Commands)
}

func TestPlanManifestPath(t *testing.T) {
	f := newFixture(t)
	f.cfg.Manifest.Path = "/var/lib/postinstall/maps.toml"

	plan, err := f.hook().Plan(f.invocation("/stage"))
	require.NoError(t, err)
	assert.Equal(t, "/stage/var/lib/postinstall/maps.toml", plan.ManifestPath)

	s, _ := plan.Step(types.StepManifest)
	assert.Equal(t, types.SkipNone, s.Skip)
	assert.Equal(t, plan.ManifestPath, s.Target)
}

func TestPlanManifestPathRelative(t *testing.T) {
	f := newFixture(t)
	f.cfg.Manifest.Path = "build/maps.toml"

	wd, err := os.Getwd()
	require.NoError(t, err)

	plan, err := f.hook().Plan(f.invocation(""))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "build", "maps.toml"), plan.ManifestPath)

	staged, err := f.hook().Plan(f.invocation("/stage"))
	require.NoError(t, err)
	assert.Equal(t, "/stage/build/maps.toml", staged.ManifestPath)
}

func TestPlanRecordsSchemaError(t *testing.T) {
	f := newFixture(t)
	f.tree.WriteFile(t, "glib-2.0/schemas/org.gnome.Maps.gschema.xml", validSchema)
	f.tree.WriteFile(t, "glib-2.0/schemas/zz-broken.gschema.xml", "<notaschemalist/>")

	plan, err := f.hook().Plan(f.invocation(""))
	require.NoError(t, err)
	assert.NotEmpty(t, plan.SchemaError)
	require.Len(t, plan.Schemas, 1)
	assert.Equal(t, "org.gnome.Maps", plan.Schemas[0].ID)
}
