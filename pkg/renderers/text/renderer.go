// Package text renders the certificate preview as a bordered terminal card.
package text

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-campcert/pkg/preview"
	"github.com/goliatone/go-campcert/pkg/render"
)

// Name is the registry key of the renderer.
const Name = "text"

const (
	defaultMetricWidth = 12
	noAvatar           = "[ no avatar ]"
)

type styles struct {
	card, title, avatar, name lipgloss.Style
	metric, metricValue       lipgloss.Style
	metricLabel               lipgloss.Style
}

func newStyles(metricWidth int) styles {
	base := lipgloss.NewStyle()
	return styles{
		card:        base.Border(lipgloss.RoundedBorder()).Padding(0, 1),
		title:       base.Copy().Bold(true).Padding(0, 1),
		avatar:      base.Copy().Faint(true),
		name:        base.Copy().Bold(true),
		metric:      base.Border(lipgloss.NormalBorder()).Width(metricWidth).Align(lipgloss.Center),
		metricValue: base.Copy().Bold(true),
		metricLabel: base.Copy().Faint(true),
	}
}

// Option customises the renderer.
type Option func(*Renderer)

// WithMetricWidth sets the inner width of each metric block.
func WithMetricWidth(width int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.metricWidth = width
		}
	}
}

// Renderer draws the preview with lipgloss.
type Renderer struct {
	metricWidth int
	styles      styles
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a text renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{metricWidth: defaultMetricWidth}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	r.styles = newStyles(r.metricWidth)
	return r
}

// Name identifies the renderer in the registry.
func (r *Renderer) Name() string { return Name }

// ContentType reports the plain text media type of the output.
func (r *Renderer) ContentType() string { return "text/plain; charset=utf-8" }

func (r *Renderer) Render(ctx context.Context, view preview.View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blocks := make([]string, 0, len(view.Metrics))
	for _, m := range view.Metrics {
		blocks = append(blocks, r.styles.metric.Render(lipgloss.JoinVertical(
			lipgloss.Center,
			r.styles.metricValue.Render(strconv.Itoa(m.Value)),
			r.styles.metricLabel.Render(m.Label),
		)))
	}

	body := lipgloss.JoinVertical(
		lipgloss.Center,
		r.styles.title.Render(view.Title),
		"",
		r.styles.avatar.Render(describeAvatar(view.Avatar)),
		r.styles.name.Render(view.TraineeName),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, blocks...),
	)
	return []byte(r.styles.card.Render(body) + "\n"), nil
}

// describeAvatar names the image type of a data URI avatar.
func describeAvatar(avatar preview.Avatar) string {
	if avatar.Placeholder || avatar.Src == "" {
		return noAvatar
	}
	mediaType := "image"
	if rest, ok := strings.CutPrefix(avatar.Src, "data:"); ok {
		if end := strings.IndexAny(rest, ";,"); end > 0 {
			mediaType = rest[:end]
		}
	}
	return "[ " + mediaType + " avatar ]"
}
