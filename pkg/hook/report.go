package hook

import (
	"time"

	"github.com/arthur-debert/postinstall/pkg/executor"
	"github.com/arthur-debert/postinstall/pkg/manifest"
	"github.com/arthur-debert/postinstall/pkg/paths"
	"github.com/arthur-debert/postinstall/pkg/types"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

// StepResult is the outcome of one executed step
type StepResult struct {
	Kind        types.StepKind    `json:"kind" yaml:"kind" toml:"kind"`
	Description string            `json:"description" yaml:"description" toml:"description"`
	Target      string            `json:"target,omitempty" yaml:"target,omitempty" toml:"target,omitempty"`
	Status      types.StepStatus  `json:"status" yaml:"status" toml:"status"`
	Skip        types.SkipReason  `json:"skip,omitempty" yaml:"skip,omitempty" toml:"skip,omitempty"`
	Changed     bool              `json:"changed" yaml:"changed" toml:"changed"`
	Commands    []executor.Result `json:"commands,omitempty" yaml:"commands,omitempty" toml:"commands,omitempty"`
	Error       string            `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
	Duration    time.Duration     `json:"duration" yaml:"duration" toml:"duration"`

	Err error `json:"-" yaml:"-" toml:"-"`
}

// Report collects the results of a run
type Report struct {
	Layout   paths.Layout       `json:"layout" yaml:"layout" toml:"layout"`
	DryRun   bool               `json:"dryRun" yaml:"dryRun" toml:"dry_run"`
	Strict   bool               `json:"strict" yaml:"strict" toml:"strict"`
	Schemas  []string           `json:"schemas,omitempty" yaml:"schemas,omitempty" toml:"schemas,omitempty"`
	Results  []StepResult       `json:"steps" yaml:"steps" toml:"steps"`
	Manifest *manifest.Manifest `json:"manifest,omitempty" yaml:"manifest,omitempty" toml:"manifest,omitempty"`

	errs *multierror.Error
}

func (r *Report) record(res StepResult) {
	if res.Err != nil {
		res.Status = types.StepStatusFailed
		res.Error = res.Err.Error()
		r.errs = multierror.Append(r.errs, res.Err)
	}
	r.Results = append(r.Results, res)
}

// Err returns every step failure combined, or nil
func (r *Report) Err() error {
	return r.errs.ErrorOrNil()
}

// Failed returns the steps that failed
func (r *Report) Failed() []StepResult {
	return lo.Filter(r.Results, func(res StepResult, _ int) bool {
		return res.Status == types.StepStatusFailed
	})
}

// Result returns the result of the step of the given kind
func (r *Report) Result(kind types.StepKind) (StepResult, bool) {
	return lo.Find(r.Results, func(res StepResult) bool {
		return res.Kind == kind
	})
}

// Changed reports whether any step modified the system
func (r *Report) Changed() bool {
	return lo.SomeBy(r.Results, func(res StepResult) bool {
		return res.Changed
	})
}
