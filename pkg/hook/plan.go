package hook

import (
	"path/filepath"

	"github.com/arthur-debert/postinstall/pkg/config"
	"github.com/arthur-debert/postinstall/pkg/desktop"
	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/executor"
	"github.com/arthur-debert/postinstall/pkg/paths"
	"github.com/arthur-debert/postinstall/pkg/schemas"
	"github.com/arthur-debert/postinstall/pkg/types"
)

// Progress lines printed before the external tools run
const (
	MsgIconCache = "Update icon cache..."
	MsgSchemas   = "Compiling gsettings schemas..."
	MsgDesktop   = "Validate desktop files..."
)

// Step is one planned unit of work
type Step struct {
	Kind        types.StepKind     `json:"kind" yaml:"kind" toml:"kind"`
	Description string             `json:"description" yaml:"description" toml:"description"`
	Source      string             `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
	Target      string             `json:"target,omitempty" yaml:"target,omitempty" toml:"target,omitempty"`
	Commands    []executor.Command `json:"commands,omitempty" yaml:"commands,omitempty" toml:"commands,omitempty"`
	Skip        types.SkipReason   `json:"skip,omitempty" yaml:"skip,omitempty" toml:"skip,omitempty"`

	// Progress is printed to the console before the step's commands run
	Progress string `json:"-" yaml:"-" toml:"-"`
}

// Skipped reports whether the step will not run
func (s Step) Skipped() bool {
	return s.Skip != types.SkipNone
}

// Plan is the full set of steps for an invocation
type Plan struct {
	Invocation paths.Invocation `json:"invocation" yaml:"invocation" toml:"invocation"`
	Layout     paths.Layout     `json:"layout" yaml:"layout" toml:"layout"`
	Steps      []Step           `json:"steps" yaml:"steps" toml:"steps"`

	// Schemas found in the schema directory when the plan was made
	Schemas []schemas.Schema `json:"schemas,omitempty" yaml:"schemas,omitempty" toml:"schemas,omitempty"`

	// SchemaError is set when a schema source could not be parsed
	SchemaError string `json:"schemaError,omitempty" yaml:"schemaError,omitempty" toml:"schema_error,omitempty"`

	// ManifestPath is where the manifest goes, empty when disabled
	ManifestPath string `json:"manifestPath,omitempty" yaml:"manifestPath,omitempty" toml:"manifest_path,omitempty"`
}

// Step returns the planned step of the given kind
func (p *Plan) Step(kind types.StepKind) (Step, bool) {
	for _, s := range p.Steps {
		if s.Kind == kind {
			return s, true
		}
	}
	return Step{}, false
}

// Plan resolves the layout for inv and lays out the steps of a run.
// Nothing on disk is changed.
func (h *Hook) Plan(inv paths.Invocation) (*Plan, error) {
	layout, err := paths.Resolve(inv, h.cfg.Launcher.Name)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Invocation: inv, Layout: layout}

	found, scanErr := schemas.Scan(h.fs, layout.SchemaDir)
	plan.Schemas = found
	if scanErr != nil {
		plan.SchemaError = scanErr.Error()
	}

	var desktopFiles []string
	if h.cfg.Desktop.Enabled && !layout.Staged() {
		desktopFiles, err = desktop.Find(h.fs, layout.DesktopDir)
		if err != nil {
			h.logger.Warn().Err(err).Str("dir", layout.DesktopDir).Msg("Failed to list desktop files")
		}
	}

	if h.cfg.Manifest.Path != "" {
		plan.ManifestPath, err = manifestPath(layout, h.cfg.Manifest.Path)
		if err != nil {
			return nil, err
		}
	}

	plan.Steps = []Step{
		{
			Kind:        types.StepEnsureDir,
			Description: "Ensure binary directory exists",
			Target:      layout.BinDir,
		},
		{
			Kind:        types.StepLink,
			Description: "Link launcher into binary directory",
			Source:      layout.LinkSource,
			Target:      layout.LinkTarget,
		},
		h.toolStep(types.StepIconCache, "Refresh icon theme cache", MsgIconCache,
			h.cfg.Icons, layout, []string{layout.IconDir}),
		h.toolStep(types.StepSchemas, "Compile gsettings schemas", MsgSchemas,
			h.cfg.Schemas, layout, []string{layout.SchemaDir}),
		h.toolStep(types.StepDesktopValidate, "Validate desktop entries", MsgDesktop,
			h.cfg.Desktop, layout, desktopFiles),
		{
			Kind:        types.StepManifest,
			Description: "Write install manifest",
			Target:      plan.ManifestPath,
			Skip:        manifestSkip(plan.ManifestPath),
		},
	}

	return plan, nil
}

// toolStep plans one external tool invocation per operand. Tools only run
// for in-place installs.
func (h *Hook) toolStep(kind types.StepKind, desc, progress string, tool config.Tool, layout paths.Layout, operands []string) Step {
	step := Step{
		Kind:        kind,
		Description: desc,
		Progress:    progress,
	}

	switch {
	case layout.Staged():
		step.Skip = types.SkipStaged
	case !tool.Enabled:
		step.Skip = types.SkipDisabled
	case len(operands) == 0:
		step.Skip = types.SkipUpToDate
	}

	if len(operands) == 1 {
		step.Target = operands[0]
	} else if len(operands) > 1 {
		step.Target = filepath.Dir(operands[0])
	}

	for _, operand := range operands {
		args := append(append([]string{}, tool.Args...), operand)
		step.Commands = append(step.Commands, executor.Command{
			Name:        tool.Command,
			Args:        args,
			Description: desc,
		})
	}
	return step
}

func manifestSkip(path string) types.SkipReason {
	if path == "" {
		return types.SkipDisabled
	}
	return types.SkipNone
}

// manifestPath places the manifest below the staging root when staging.
// Otherwise a relative path is taken from the working directory.
func manifestPath(layout paths.Layout, path string) (string, error) {
	if layout.Staged() {
		return paths.StagedPath(layout.DestDir, path), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "invalid manifest path %s", path).
			WithDetail("path", path)
	}
	return abs, nil
}
