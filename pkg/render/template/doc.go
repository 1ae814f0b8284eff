// Package template defines the text-template seam used by code generation and
// the preview page. The pongo2-backed implementation lives in gotemplate.
package template
