// Package template defines the template engine contract renderers depend on.
// The pongo2-backed implementation lives in the pongo subpackage.
package template
