package render

import (
	"context"

	"github.com/goliatone/go-campcert/pkg/preview"
)

// Renderer converts a preview View into a byte representation (HTML, terminal
// text, etc.). Implementations must be deterministic: the same View always
// produces the same bytes.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view preview.View) ([]byte, error)
}
