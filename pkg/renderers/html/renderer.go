// Package html renders the certificate preview as a sanitized HTML fragment
// using the pongo2 template engine and a go-theme selection for the
// background image and colour tokens.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"strconv"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-campcert/pkg/preview"
	"github.com/goliatone/go-campcert/pkg/render"
	"github.com/goliatone/go-campcert/pkg/render/template"
	"github.com/goliatone/go-campcert/pkg/render/template/pongo"
)

const (
	// Name is the registry key of the renderer.
	Name = "html"

	contentType     = "text/html; charset=utf-8"
	previewTemplate = "preview"
)

// Option customises the renderer.
type Option func(*Renderer)

// WithTemplateRenderer swaps the template engine.
func WithTemplateRenderer(tr template.TemplateRenderer) Option {
	return func(r *Renderer) {
		if tr != nil {
			r.templates = tr
		}
	}
}

// WithTemplatesFS loads templates from files instead of the embedded set. The
// FS must contain preview.tpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(r *Renderer) {
		if files != nil {
			r.templatesFS = files
		}
	}
}

// WithTheme sets the resolved theme configuration directly.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(r *Renderer) {
		r.theme = cfg
	}
}

// WithThemeSelector resolves the theme through selector during New.
func WithThemeSelector(selector ThemeSelector, name, variant string) Option {
	return func(r *Renderer) {
		r.selector = selector
		r.themeName = name
		r.themeVariant = variant
	}
}

// Renderer produces the preview fragment.
type Renderer struct {
	templates   template.TemplateRenderer
	templatesFS fs.FS
	policy      *bluemonday.Policy

	selector     ThemeSelector
	themeName    string
	themeVariant string
	theme        *theme.RendererConfig
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer. Without a theme option the default manifest
// is used.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{policy: previewSanitizer()}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}

	if r.templates == nil {
		files := r.templatesFS
		if files == nil {
			files = TemplatesFS()
		}
		engine, err := pongo.New(pongo.WithFS(files))
		if err != nil {
			return nil, fmt.Errorf("html: init template engine: %w", err)
		}
		r.templates = engine
	}

	if r.theme == nil {
		selector := r.selector
		if selector == nil {
			defaults, err := NewManifestSelector(DefaultManifest())
			if err != nil {
				return nil, err
			}
			selector = defaults
		}
		selection, err := selector.Select(r.themeName, r.themeVariant)
		if err != nil {
			return nil, fmt.Errorf("html: select theme: %w", err)
		}
		r.theme = RendererConfig(selection)
	}
	return r, nil
}

// Name identifies the renderer in the registry.
func (r *Renderer) Name() string { return Name }

// ContentType reports the HTML media type of the output.
func (r *Renderer) ContentType() string { return contentType }

// Theme returns the resolved theme configuration.
func (r *Renderer) Theme() *theme.RendererConfig { return r.theme }

// Render executes the preview template and sanitizes the result.
func (r *Renderer) Render(ctx context.Context, view preview.View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := r.templates.RenderTemplate(previewTemplate, map[string]any{
		"view":  viewContext(view),
		"theme": themeContext(r.theme),
	})
	if err != nil {
		return nil, fmt.Errorf("html: render preview: %w", err)
	}
	return r.policy.SanitizeBytes([]byte(out)), nil
}

// viewContext flattens the view so the template never formats numbers itself.
func viewContext(view preview.View) map[string]any {
	metrics := make([]map[string]any, 0, len(view.Metrics))
	for _, m := range view.Metrics {
		metrics = append(metrics, map[string]any{
			"label": m.Label,
			"value": strconv.Itoa(m.Value),
		})
	}
	return map[string]any{
		"title":       view.Title,
		"avatar":      view.Avatar.Src,
		"placeholder": view.Avatar.Placeholder || view.Avatar.Src == "",
		"traineeName": view.TraineeName,
		"metrics":     metrics,
	}
}

func themeContext(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	background := ""
	if cfg.AssetURL != nil {
		background = cfg.AssetURL(BackgroundAsset)
	}
	return map[string]any{
		"name":       cfg.Theme,
		"variant":    cfg.Variant,
		"background": background,
	}
}
