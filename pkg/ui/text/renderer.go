// Package text provides plain text output
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/hook"
	"github.com/arthur-debert/postinstall/pkg/types"
)

// Styler decorates s with the named style
type Styler func(name, s string) string

// Renderer writes human readable plans and reports
type Renderer struct {
	output io.Writer
	style  Styler
}

// New creates a plain text renderer
func New(output io.Writer) *Renderer {
	return NewStyled(output, func(_, s string) string { return s })
}

// NewStyled creates a renderer that passes every fragment through style
func NewStyled(output io.Writer, style Styler) *Renderer {
	return &Renderer{output: output, style: style}
}

// RenderPlan renders the steps a run would take
func (r *Renderer) RenderPlan(plan *hook.Plan) error {
	var b strings.Builder
	r.header(&b, "Post-install plan for "+plan.Layout.AppID, plan.Layout.DataDir, plan.Layout.BinDir, plan.Layout.DestDir)

	for _, step := range plan.Steps {
		b.WriteString("  ")
		b.WriteString(r.stepName(step.Kind))
		if step.Skipped() {
			b.WriteString(r.style("Muted", "skipped ("+string(step.Skip)+")"))
			b.WriteString("\n")
			continue
		}
		b.WriteString(step.Description)
		if target := r.target(step.Source, step.Target); target != "" {
			b.WriteString("  ")
			b.WriteString(target)
		}
		b.WriteString("\n")
		for _, cmd := range step.Commands {
			b.WriteString(r.style("Command", "    $ "+cmd.String()))
			b.WriteString("\n")
		}
	}

	if plan.SchemaError != "" {
		b.WriteString("\n")
		b.WriteString(r.style("Warning", "warning: "+plan.SchemaError))
		b.WriteString("\n")
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderReport renders the outcome of a run
func (r *Renderer) RenderReport(report *hook.Report) error {
	var b strings.Builder
	title := "Post-install for " + report.Layout.AppID
	if report.DryRun {
		title += " (dry run)"
	}
	r.header(&b, title, report.Layout.DataDir, report.Layout.BinDir, report.Layout.DestDir)

	for _, res := range report.Results {
		b.WriteString("  ")
		b.WriteString(r.status(res))
		b.WriteString(" ")
		b.WriteString(r.stepName(res.Kind))

		switch {
		case res.Status == types.StepStatusSkipped:
			b.WriteString(r.style("Muted", string(res.Skip)))
		case res.Err != nil || res.Error != "":
			b.WriteString(r.style("Error", res.Error))
		default:
			b.WriteString(res.Description)
			if res.Changed {
				b.WriteString(r.style("Muted", " (changed)"))
			}
		}
		b.WriteString("\n")
	}

	if len(report.Schemas) > 0 {
		b.WriteString("\n  schemas: ")
		b.WriteString(strings.Join(report.Schemas, ", "))
		b.WriteString("\n")
	}

	if failed := report.Failed(); len(failed) > 0 {
		b.WriteString("\n")
		b.WriteString(r.style("Warning", fmt.Sprintf("%d step(s) failed", len(failed))))
		b.WriteString("\n")
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderError renders an error with its code
func (r *Renderer) RenderError(err error) error {
	code := errors.GetErrorCode(err)
	_, werr := fmt.Fprintln(r.output, r.style("Error", fmt.Sprintf("error [%s]: %s", code, err.Error())))
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

func (r *Renderer) header(b *strings.Builder, title, dataDir, binDir, destDir string) {
	b.WriteString(r.style("Header", title))
	b.WriteString("\n")
	fmt.Fprintf(b, "  data dir: %s\n", r.style("Path", dataDir))
	fmt.Fprintf(b, "  bin dir:  %s\n", r.style("Path", binDir))
	if destDir != "" {
		fmt.Fprintf(b, "  staging:  %s\n", r.style("Path", destDir))
	}
	b.WriteString("\n")
}

func (r *Renderer) stepName(kind types.StepKind) string {
	return r.style("Step", fmt.Sprintf("%-18s", kind))
}

func (r *Renderer) target(source, target string) string {
	switch {
	case source != "" && target != "":
		return r.style("Path", target+" -> "+source)
	case target != "":
		return r.style("Path", target)
	default:
		return ""
	}
}

func (r *Renderer) status(res hook.StepResult) string {
	label := fmt.Sprintf("%-9s", "["+string(res.Status)+"]")
	switch res.Status {
	case types.StepStatusOK:
		return r.style("Success", label)
	case types.StepStatusFailed:
		return r.style("Error", label)
	case types.StepStatusDryRun:
		return r.style("Info", label)
	default:
		return r.style("Muted", label)
	}
}
