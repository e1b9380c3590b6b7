// Package campcert wires the certificate form, preview renderers and theme
// configuration into ready-to-run sessions.
package campcert

import (
	"context"
	"fmt"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-campcert/pkg/config"
	"github.com/goliatone/go-campcert/pkg/formstate"
	"github.com/goliatone/go-campcert/pkg/metrics"
	"github.com/goliatone/go-campcert/pkg/preview"
	"github.com/goliatone/go-campcert/pkg/render"
	"github.com/goliatone/go-campcert/pkg/renderers/html"
	"github.com/goliatone/go-campcert/pkg/renderers/text"
	"github.com/goliatone/go-campcert/pkg/session"
)

// State is an immutable form snapshot.
type State = formstate.State

// Update is a partial set of field values.
type Update = formstate.Update

// View is the certificate view model.
type View = preview.View

// Frame is one rendered preview.
type Frame = session.Frame

// Session is the page component.
type Session = session.Session

// Config is the settings document.
type Config = config.Config

// ThemeManifest builds the manifest for the configured theme on top of the
// stock one: tokens merge, asset prefix and background replace.
func ThemeManifest(cfg config.Theme) *theme.Manifest {
	manifest := html.DefaultManifest()
	if cfg.Name != "" {
		manifest.Name = cfg.Name
	}
	if cfg.AssetPrefix != "" {
		manifest.Assets.Prefix = cfg.AssetPrefix
	}
	if cfg.Background != "" {
		manifest.Assets.Files[html.BackgroundAsset] = cfg.Background
	}
	for key, value := range cfg.Tokens {
		manifest.Tokens[key] = value
	}
	return manifest
}

// ThemeConfig resolves the configured theme and variant.
func ThemeConfig(cfg config.Theme) (*theme.RendererConfig, error) {
	selector, err := html.NewManifestSelector(ThemeManifest(cfg))
	if err != nil {
		return nil, err
	}
	selection, err := selector.Select(cfg.Name, cfg.Variant)
	if err != nil {
		return nil, fmt.Errorf("campcert: select theme: %w", err)
	}
	return html.RendererConfig(selection), nil
}

// NewRegistry registers the html and text renderers, the html one themed per
// cfg.
func NewRegistry(cfg config.Config) (*render.Registry, error) {
	themeCfg, err := ThemeConfig(cfg.Theme)
	if err != nil {
		return nil, err
	}
	htmlRenderer, err := html.New(html.WithTheme(themeCfg))
	if err != nil {
		return nil, err
	}
	return render.NewRegistry(htmlRenderer, text.New())
}

// NewSession builds a session rendering with cfg.Renderer. Start it with Run.
func NewSession(cfg config.Config, options ...session.Option) (*session.Session, error) {
	registry, err := NewRegistry(cfg)
	if err != nil {
		return nil, err
	}
	renderer, err := registry.Resolve(cfg.Renderer)
	if err != nil {
		return nil, err
	}
	return session.New(append([]session.Option{session.WithRenderer(renderer)}, options...)...)
}

// RenderPreview renders one snapshot without a session.
func RenderPreview(ctx context.Context, renderer render.Renderer, state formstate.State) ([]byte, error) {
	if renderer == nil {
		return nil, fmt.Errorf("campcert: renderer is required")
	}
	view := preview.Build(state, metrics.Project(metrics.InputFrom(state)))
	return renderer.Render(ctx, view)
}
