package shoot

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"maps"
	"sync"
)

// View is the unit of work flowing through the pipeline. It pairs a name with
// a presentation model and renders itself in place.
type View interface {
	Name() string
	PresentationModel() *PresentationModel
	Render(ctx context.Context) error
}

// PresentationModel is a named bag of template variables backing a view.
type PresentationModel struct {
	name      string
	variables map[string]any
}

// NewPresentationModel creates a presentation model. The variables map is
// copied so later changes by the caller don't leak into the model.
func NewPresentationModel(name string, variables map[string]any) *PresentationModel {
	return &PresentationModel{
		name:      name,
		variables: maps.Clone(variables),
	}
}

// Name returns the presentation model name.
func (m *PresentationModel) Name() string {
	return m.name
}

// Variables returns a copy of the template variables.
func (m *PresentationModel) Variables() map[string]any {
	if m.variables == nil {
		return map[string]any{}
	}
	return maps.Clone(m.variables)
}

// TemplateView renders an html/template into an internal buffer.
//
// Example:
//
//	tmpl := template.Must(template.New("home").Parse(`<h1>Hello {{.user}}</h1>`))
//	view := shoot.NewTemplateView("home", tmpl, shoot.NewPresentationModel("home", vars))
type TemplateView struct {
	name  string
	tmpl  *template.Template
	model *PresentationModel

	mu       sync.Mutex
	output   []byte
	rendered bool
	renders  int
}

// NewTemplateView creates a view that executes tmpl with the model variables.
// A nil model is replaced by an empty one named after the view. A nil tmpl,
// as returned by a missed template.Lookup, makes Render fail with ErrNilTemplate.
func NewTemplateView(name string, tmpl *template.Template, model *PresentationModel) *TemplateView {
	if model == nil {
		model = NewPresentationModel(name, nil)
	}
	return &TemplateView{
		name:  name,
		tmpl:  tmpl,
		model: model,
	}
}

func (v *TemplateView) Name() string {
	return v.name
}

func (v *TemplateView) PresentationModel() *PresentationModel {
	return v.model
}

// Render executes the template and stores its output on the view.
func (v *TemplateView) Render(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.tmpl == nil {
		return ErrNilTemplate
	}

	var buf bytes.Buffer
	if err := v.tmpl.Execute(&buf, v.model.variables); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.output = buf.Bytes()
	v.rendered = true
	v.renders++
	return nil
}

// Rendered reports whether Render has completed successfully at least once.
func (v *TemplateView) Rendered() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rendered
}

// RenderCount returns how many times the view has been rendered.
func (v *TemplateView) RenderCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renders
}

// String returns the rendered output, or an empty string before rendering.
func (v *TemplateView) String() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return string(v.output)
}

// WriteTo writes the rendered output to w.
func (v *TemplateView) WriteTo(w io.Writer) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.rendered {
		return 0, ErrNotRendered
	}
	n, err := w.Write(v.output)
	return int64(n), err
}
