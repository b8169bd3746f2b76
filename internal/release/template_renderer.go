package release

import (
	"context"
	"time"

	"batch-release/internal/assembly"
	"batch-release/internal/fieldmap"
	"batch-release/internal/models"
)

// TemplateSource supplies the raw template bytes.
type TemplateSource interface {
	Load(ctx context.Context) ([]byte, error)
}

// TemplateRenderers fills the configured template locally. The template is
// loaded and parsed once per viewer session.
type TemplateRenderers struct {
	engine     *assembly.Engine
	templates  TemplateSource
	placements fieldmap.Map
	location   *time.Location
}

func NewTemplateRenderers(engine *assembly.Engine, templates TemplateSource, placements fieldmap.Map, location *time.Location) *TemplateRenderers {
	return &TemplateRenderers{
		engine:     engine,
		templates:  templates,
		placements: placements,
		location:   location,
	}
}

func (f *TemplateRenderers) Prepare(ctx context.Context, record models.CertificateRecord) (Renderer, error) {
	raw, err := f.templates.Load(ctx)
	if err != nil {
		return nil, &assembly.TemplateLoadError{Reason: "cannot load template", Err: err}
	}

	tmpl, err := assembly.ParseTemplate(raw)
	if err != nil {
		return nil, err
	}

	return &templateRenderer{
		engine:     f.engine,
		template:   tmpl,
		placements: f.placements,
		location:   f.location,
	}, nil
}

type templateRenderer struct {
	engine     *assembly.Engine
	template   *assembly.Template
	placements fieldmap.Map
	location   *time.Location
}

func (r *templateRenderer) Render(ctx context.Context, data models.CertificateData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.engine.RenderTemplate(r.template, data.Values(r.location), r.placements)
}
