// Package structured provides YAML and TOML output
package structured

import (
	"io"

	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/arthur-debert/postinstall/pkg/hook"
	gotoml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type marshalFunc func(v interface{}) ([]byte, error)

// Renderer encodes plans and reports with a document marshaller
type Renderer struct {
	output  io.Writer
	name    string
	marshal marshalFunc
}

// NewYAML creates a YAML renderer
func NewYAML(output io.Writer) *Renderer {
	return &Renderer{output: output, name: "YAML", marshal: yaml.Marshal}
}

// NewTOML creates a TOML renderer
func NewTOML(output io.Writer) *Renderer {
	return &Renderer{output: output, name: "TOML", marshal: gotoml.Marshal}
}

// RenderPlan renders a plan
func (r *Renderer) RenderPlan(plan *hook.Plan) error {
	return r.encode(plan)
}

// RenderReport renders a report
func (r *Renderer) RenderReport(report *hook.Report) error {
	return r.encode(report)
}

// RenderError renders an error
func (r *Renderer) RenderError(err error) error {
	return r.encode(map[string]string{
		"error": err.Error(),
		"code":  string(errors.GetErrorCode(err)),
	})
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	return r.encode(map[string]string{"message": msg})
}

func (r *Renderer) encode(v interface{}) error {
	data, err := r.marshal(v)
	if err != nil {
		return errors.Wrapf(err, errors.ErrRender, "failed to encode %s output", r.name)
	}
	if _, err := r.output.Write(data); err != nil {
		return errors.Wrap(err, errors.ErrRender, "failed to write output")
	}
	return nil
}
