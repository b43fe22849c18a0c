package hook

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/arthur-debert/postinstall/pkg/config"
	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/executor"
	"github.com/arthur-debert/postinstall/pkg/filesystem"
	"github.com/arthur-debert/postinstall/pkg/logging"
	"github.com/arthur-debert/postinstall/pkg/manifest"
	"github.com/arthur-debert/postinstall/pkg/paths"
	"github.com/arthur-debert/postinstall/pkg/schemas"
	"github.com/arthur-debert/postinstall/pkg/synthfs"
	"github.com/arthur-debert/postinstall/pkg/types"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// Hook runs the post-install steps against a filesystem and a command runner
type Hook struct {
	fs       types.FS
	runner   executor.Runner
	writer   manifest.FileWriter
	cfg      *config.Config
	logger   zerolog.Logger
	progress func(string)
	now      func() time.Time
}

// Option configures a Hook
type Option func(*Hook)

// WithProgress sets the function receiving progress lines
func WithProgress(fn func(string)) Option {
	return func(h *Hook) {
		if fn != nil {
			h.progress = fn
		}
	}
}

// WithFileWriter sets the writer used for the manifest
func WithFileWriter(w manifest.FileWriter) Option {
	return func(h *Hook) { h.writer = w }
}

// WithClock sets the time source for manifest timestamps
func WithClock(now func() time.Time) Option {
	return func(h *Hook) { h.now = now }
}

// New creates a Hook. cfg must be a loaded configuration.
func New(fsys types.FS, runner executor.Runner, cfg *config.Config, opts ...Option) *Hook {
	h := &Hook{
		fs:     fsys,
		runner: runner,
		writer: synthfs.NewFileWriter(cfg.Run.DryRun),
		cfg:    cfg,
		logger: logging.GetLogger("hook"),
		progress: func(msg string) {
			fmt.Fprintln(os.Stdout, msg)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run plans and executes a post-install run for inv
func (h *Hook) Run(ctx context.Context, inv paths.Invocation) (*Report, error) {
	done := logging.LogOperationStart(h.logger, "post-install")
	defer done()

	plan, err := h.Plan(inv)
	if err != nil {
		return nil, err
	}
	return h.Execute(ctx, plan)
}

// Execute runs every step of plan in order. A failing step does not stop the
// ones after it. The returned error is non-nil when the context was cancelled,
// or in strict mode when any step failed.
func (h *Hook) Execute(ctx context.Context, plan *Plan) (*Report, error) {
	report := &Report{
		Layout:  plan.Layout,
		DryRun:  h.cfg.Run.DryRun,
		Strict:  h.cfg.Run.Strict,
		Schemas: schemas.IDs(plan.Schemas),
	}
	created := &manifest.Manifest{
		AppID:     plan.Layout.AppID,
		Launcher:  plan.Layout.Launcher,
		DestDir:   plan.Layout.DestDir,
		CreatedAt: h.now().UTC(),
	}

	h.logger.Debug().
		Str("dataDir", plan.Layout.DataDir).
		Str("binDir", plan.Layout.BinDir).
		Str("appId", plan.Layout.AppID).
		Bool("staged", plan.Layout.Staged()).
		Bool("dryRun", report.DryRun).
		Msg("Starting post-install run")

	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			report.record(StepResult{
				Kind:        step.Kind,
				Description: step.Description,
				Target:      step.Target,
				Err:         errors.Wrap(err, errors.ErrStepFailed, "run cancelled"),
			})
			return report, report.Err()
		}

		res := h.executeStep(ctx, plan, step, created)
		report.record(res)

		logger := h.logger.With().Str("step", string(step.Kind)).Logger()
		switch {
		case res.Err != nil:
			logger.Warn().Err(res.Err).Msg("Step failed, continuing")
		case res.Status == types.StepStatusSkipped:
			logger.Debug().Str("reason", string(res.Skip)).Msg("Step skipped")
		default:
			logger.Info().Bool("changed", res.Changed).Dur("duration", res.Duration).Msg("Step completed")
		}
	}

	if len(created.Entries) > 0 && !report.DryRun {
		report.Manifest = created
	}

	if err := report.Err(); err != nil {
		if h.cfg.Run.Strict {
			return report, err
		}
		h.logger.Warn().Int("failed", len(report.Failed())).Msg("Post-install finished with failures")
	}
	return report, nil
}

func (h *Hook) executeStep(ctx context.Context, plan *Plan, step Step, created *manifest.Manifest) StepResult {
	res := StepResult{
		Kind:        step.Kind,
		Description: step.Description,
		Target:      step.Target,
		Skip:        step.Skip,
	}
	if step.Skipped() {
		res.Status = types.StepStatusSkipped
		return res
	}

	start := time.Now()
	switch step.Kind {
	case types.StepEnsureDir:
		res.Changed, res.Err = h.ensureDir(step, created)
	case types.StepLink:
		res.Changed, res.Err = h.link(step, created)
	case types.StepSchemas:
		if plan.SchemaError != "" && h.cfg.Run.Strict {
			res.Err = errors.Newf(errors.ErrSchemaParse, "invalid schema source: %s", plan.SchemaError).
				WithDetail("dir", plan.Layout.SchemaDir)
			break
		}
		res.Commands, res.Err = h.runCommands(ctx, step)
		res.Changed = res.Err == nil
	case types.StepIconCache, types.StepDesktopValidate:
		res.Commands, res.Err = h.runCommands(ctx, step)
		res.Changed = res.Err == nil && step.Kind == types.StepIconCache
	case types.StepManifest:
		res.Changed, res.Err = h.writeManifest(ctx, step.Target, created)
	default:
		res.Err = errors.Newf(errors.ErrInternal, "unknown step kind: %s", step.Kind)
	}
	res.Duration = time.Since(start)

	switch {
	case res.Err != nil:
		res.Status = types.StepStatusFailed
	case h.cfg.Run.DryRun:
		res.Status = types.StepStatusDryRun
	default:
		res.Status = types.StepStatusOK
	}
	return res
}

func (h *Hook) ensureDir(step Step, created *manifest.Manifest) (bool, error) {
	if h.cfg.Run.DryRun {
		return !filesystem.DirExists(h.fs, step.Target), nil
	}

	made, err := filesystem.EnsureDir(h.fs, step.Target, h.cfg.Launcher.DirMode)
	if err != nil {
		return false, err
	}
	if made {
		h.logger.Info().Str("dir", step.Target).Msg("Created binary directory")
		created.Add(manifest.Entry{Path: step.Target, Kind: manifest.KindDirectory})
	}
	return made, nil
}

func (h *Hook) link(step Step, created *manifest.Manifest) (bool, error) {
	if h.cfg.Run.DryRun {
		state, err := filesystem.InspectLink(h.fs, step.Target)
		if err != nil {
			return false, err
		}
		return !(state.IsSymlink && state.Points == step.Source), nil
	}

	changed, err := filesystem.ReplaceSymlink(h.fs, step.Source, step.Target)
	if err != nil {
		return false, err
	}
	h.logger.Info().
		Str("source", step.Source).
		Str("target", step.Target).
		Bool("changed", changed).
		Msg("Linked launcher")
	created.Add(manifest.Entry{Path: step.Target, Kind: manifest.KindSymlink, Target: step.Source})
	return changed, nil
}

// runCommands runs each command of step. Exit codes are recorded but every
// command runs regardless of the ones before it.
func (h *Hook) runCommands(ctx context.Context, step Step) ([]executor.Result, error) {
	if step.Progress != "" {
		h.progress(step.Progress)
	}

	results := make([]executor.Result, 0, len(step.Commands))
	var errs []error
	for _, cmd := range step.Commands {
		logging.LogCommand(h.logger, cmd.Name, cmd.Args)

		if h.cfg.Run.DryRun {
			results = append(results, executor.Result{Command: cmd, Success: true, DryRun: true})
			continue
		}

		result := h.runner.Run(ctx, cmd)
		results = append(results, result)
		if result.Err != nil {
			errs = append(errs, result.Err)
		}
	}

	switch len(errs) {
	case 0:
		return results, nil
	case 1:
		return results, errs[0]
	default:
		return results, multierror.Append(nil, errs...)
	}
}

func (h *Hook) writeManifest(ctx context.Context, path string, created *manifest.Manifest) (bool, error) {
	if h.cfg.Run.DryRun {
		return true, nil
	}
	prev, err := manifest.Read(h.fs, path)
	if err != nil {
		h.logger.Warn().Err(err).Str("path", path).Msg("Ignoring unreadable manifest")
	}
	// Directories created by an earlier run stay recorded while they exist
	created.Carry(prev, func(e manifest.Entry) bool {
		return e.Kind == manifest.KindDirectory && filesystem.DirExists(h.fs, e.Path)
	})

	if err := manifest.Write(ctx, h.fs, h.writer, path, created); err != nil {
		return false, err
	}
	h.logger.Info().Str("path", path).Int("entries", len(created.Entries)).Msg("Wrote install manifest")
	return true, nil
}
