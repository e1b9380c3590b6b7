// Package render defines the renderer contract used to turn a preview.View
// into output bytes, a name-keyed Registry of renderers, and helpers for
// normalising the transient warnings shown next to the preview.
package render
