// Package ui renders plans and run reports in different formats.
// It supports terminal (rich), text (plain), JSON, YAML and TOML output.
package ui

import (
	"fmt"
	"io"

	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/hook"
	"github.com/arthur-debert/postinstall/pkg/ui/json"
	"github.com/arthur-debert/postinstall/pkg/ui/structured"
	"github.com/arthur-debert/postinstall/pkg/ui/terminal"
	"github.com/arthur-debert/postinstall/pkg/ui/text"
	"github.com/pterm/pterm"
)

// Renderer is the common interface for all output renderers
type Renderer interface {
	// RenderPlan renders the steps a run would take
	RenderPlan(plan *hook.Plan) error

	// RenderReport renders the outcome of a run
	RenderReport(report *hook.Report) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a new renderer based on the specified format.
// It detects terminal capabilities when format is Auto.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch Resolve(format, output) {
	case FormatTerminal:
		return terminal.New(output), nil
	case FormatText:
		return text.New(output), nil
	case FormatJSON:
		return json.New(output), nil
	case FormatYAML:
		return structured.NewYAML(output), nil
	case FormatTOML:
		return structured.NewTOML(output), nil
	default:
		return nil, errors.Newf(errors.ErrRender, "unknown format: %v", format)
	}
}

// NewProgress returns the function that prints progress lines while tools
// run. Terminal output gets bold lines.
func NewProgress(format Format, output io.Writer) func(string) {
	if Resolve(format, output) == FormatTerminal {
		return func(msg string) {
			fmt.Fprintln(output, pterm.Bold.Sprint(msg))
		}
	}
	return func(msg string) {
		fmt.Fprintln(output, msg)
	}
}
