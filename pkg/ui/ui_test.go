package ui_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/executor"
	"github.com/arthur-debert/postinstall/pkg/hook"
	"github.com/arthur-debert/postinstall/pkg/paths"
	"github.com/arthur-debert/postinstall/pkg/types"
	"github.com/arthur-debert/postinstall/pkg/ui"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleLayout() paths.Layout {
	layout, err := paths.Resolve(paths.Invocation{
		DataDir: "/usr/share",
		BinDir:  "/usr/bin",
		AppID:   "org.gnome.Maps",
	}, "gnome-maps")
	if err != nil {
		panic(err)
	}
	return layout
}

func samplePlan() *hook.Plan {
	layout := sampleLayout()
	return &hook.Plan{
		Layout: layout,
		Steps: []hook.Step{
			{Kind: types.StepEnsureDir, Description: "Ensure binary directory exists", Target: layout.BinDir},
			{Kind: types.StepLink, Description: "Link launcher into binary directory", Source: layout.LinkSource, Target: layout.LinkTarget},
			{
				Kind:        types.StepIconCache,
				Description: "Refresh icon theme cache",
				Commands: []executor.Command{
					{Name: "gtk-update-icon-cache", Args: []string{"-f", "-t", layout.IconDir}},
				},
			},
			{Kind: types.StepSchemas, Description: "Compile gsettings schemas", Skip: types.SkipDisabled},
		},
	}
}

func sampleReport() *hook.Report {
	return &hook.Report{
		Layout:  sampleLayout(),
		Schemas: []string{"org.gnome.Maps"},
		Results: []hook.StepResult{
			{Kind: types.StepEnsureDir, Description: "Ensure binary directory exists", Status: types.StepStatusOK, Changed: true},
			{Kind: types.StepLink, Description: "Link launcher into binary directory", Status: types.StepStatusOK},
			{
				Kind:        types.StepIconCache,
				Description: "Refresh icon theme cache",
				Status:      types.StepStatusFailed,
				Error:       "gtk-update-icon-cache exited with status 1",
				Commands: []executor.Result{
					{Command: executor.Command{Name: "gtk-update-icon-cache"}, ExitCode: 1},
				},
			},
			{Kind: types.StepSchemas, Status: types.StepStatusSkipped, Skip: types.SkipStaged},
		},
	}
}

func render(t *testing.T, format ui.Format, fn func(ui.Renderer) error) string {
	t.Helper()
	var buf bytes.Buffer
	r, err := ui.NewRenderer(format, &buf)
	require.NoError(t, err)
	require.NoError(t, fn(r))
	return buf.String()
}

func TestTextRenderPlan(t *testing.T) {
	out := render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderPlan(samplePlan()) })

	assert.Contains(t, out, "Post-install plan for org.gnome.Maps")
	assert.Contains(t, out, "/usr/bin/gnome-maps -> /usr/share/gnome-maps/org.gnome.Maps")
	assert.Contains(t, out, "$ gtk-update-icon-cache -f -t /usr/share/icons/hicolor")
	assert.Contains(t, out, "skipped (disabled)")
	assert.NotContains(t, out, "staging:")
}

func TestTextRenderReport(t *testing.T) {
	out := render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderReport(sampleReport()) })

	assert.Contains(t, out, "[ok]")
	assert.Contains(t, out, "(changed)")
	assert.Contains(t, out, "[failed]")
	assert.Contains(t, out, "exited with status 1")
	assert.Contains(t, out, "[skipped]")
	assert.Contains(t, out, "schemas: org.gnome.Maps")
	assert.Contains(t, out, "1 step(s) failed")
}

func TestTextRenderDryRunTitle(t *testing.T) {
	report := sampleReport()
	report.DryRun = true
	out := render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderReport(report) })
	assert.Contains(t, out, "(dry run)")
}

func TestTerminalRenderKeepsContent(t *testing.T) {
	out := render(t, ui.FormatTerminal, func(r ui.Renderer) error { return r.RenderReport(sampleReport()) })
	assert.Contains(t, out, "org.gnome.Maps")
	assert.Contains(t, out, "icon-cache")
}

func TestRenderError(t *testing.T) {
	err := errors.New(errors.ErrCommandNotFound, "command not found: glib-compile-schemas")

	out := render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderError(err) })
	assert.Contains(t, out, "error [COMMAND_NOT_FOUND]")

	out = render(t, ui.FormatJSON, func(r ui.Renderer) error { return r.RenderError(err) })
	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "COMMAND_NOT_FOUND", decoded["code"])
}

func TestJSONRenderReport(t *testing.T) {
	out := render(t, ui.FormatJSON, func(r ui.Renderer) error { return r.RenderReport(sampleReport()) })

	var decoded struct {
		Layout struct {
			LinkTarget string `json:"linkTarget"`
		} `json:"layout"`
		Steps []struct {
			Kind   string `json:"kind"`
			Status string `json:"status"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "/usr/bin/gnome-maps", decoded.Layout.LinkTarget)
	require.Len(t, decoded.Steps, 4)
	assert.Equal(t, "failed", decoded.Steps[2].Status)
}

func TestYAMLRenderPlan(t *testing.T) {
	out := render(t, ui.FormatYAML, func(r ui.Renderer) error { return r.RenderPlan(samplePlan()) })

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "steps")
	assert.Contains(t, decoded, "layout")
}

func TestTOMLRenderReport(t *testing.T) {
	out := render(t, ui.FormatTOML, func(r ui.Renderer) error { return r.RenderReport(sampleReport()) })

	var decoded map[string]interface{}
	require.NoError(t, gotoml.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "steps")
}

func TestRenderMessage(t *testing.T) {
	out := render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderMessage("hello") })
	assert.Equal(t, "hello\n", out)
}

func TestNewProgress(t *testing.T) {
	var buf bytes.Buffer
	progress := ui.NewProgress(ui.FormatText, &buf)
	progress(hook.MsgIconCache)
	assert.Equal(t, "Update icon cache...\n", buf.String())
}
