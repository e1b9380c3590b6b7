package campcert

import (
	"io/fs"

	"github.com/goliatone/go-campcert/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in preview templates so callers can
// copy and restyle them, then pass the result through html.WithTemplatesFS.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
