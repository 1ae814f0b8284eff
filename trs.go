// Package trs compiles declarative tree templates into typed UI trees.
//
// A template names elements from a tag registry, assigns attributes and nests
// children:
//
//	block {
//	    class: if active { "on" } else { "off" },
//	    "Hello, "
//	    { name }
//	}
//
// Construct parses and builds a template in one call. Literal attributes and
// text become static values; anything in braces, and every if or match, is
// deferred into an evaluator that is re-run each time the consumer asks for
// the value.
package trs

import (
	"log"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-trs/pkg/diag"
	"github.com/goliatone/go-trs/pkg/hostexpr"
	"github.com/goliatone/go-trs/pkg/orchestrator"
	"github.com/goliatone/go-trs/pkg/render"
	"github.com/goliatone/go-trs/pkg/tags"
	"github.com/goliatone/go-trs/pkg/tree"
)

// Compiler is the configured pipeline returned by New.
type Compiler = orchestrator.Orchestrator

// Option configures a Compiler.
type Option = orchestrator.Option

// Request describes one template to build and render.
type Request = orchestrator.Request

// Unit pairs a template with the Go function generated for it.
type Unit = orchestrator.Unit

// Error is a build failure tied to a range of template source.
type Error = diag.Error

// Build failure kinds, matched with errors.Is.
var (
	ErrSyntax                 = diag.ErrSyntax
	ErrUnknownTag             = diag.ErrUnknownTag
	ErrNumberFormat           = diag.ErrNumberFormat
	ErrExpectedAttributeValue = diag.ErrExpectedAttributeValue
	ErrUnknownAttribute       = diag.ErrUnknownAttribute
	ErrAttributeType          = diag.ErrAttributeType
)

// New constructs a Compiler. Without options it accepts the minimal tag set,
// evaluates host expressions against an empty environment and discards log
// output.
func New(options ...Option) *Compiler {
	return orchestrator.New(options...)
}

// Construct builds source with the default configuration. It fails the whole
// build on any syntax error, unknown tag or malformed literal.
func Construct(source string) (tree.Root, error) {
	return New().Construct("", source)
}

// WithTags sets the tag registry templates are validated against.
func WithTags(registry *tags.Registry) Option {
	return orchestrator.WithTags(registry)
}

// WithLogger routes build warnings and evaluation failures to logger.
func WithLogger(logger *log.Logger) Option {
	return orchestrator.WithLogger(logger)
}

// WithEnv sets the bindings host expressions read. Pass a *hostexpr.Store to
// change bindings between evaluations.
func WithEnv(env hostexpr.Env) Option {
	return orchestrator.WithEnv(env)
}

// WithVars is WithEnv over a fixed map.
func WithVars(vars map[string]any) Option {
	return orchestrator.WithEnv(hostexpr.Vars(vars))
}

// WithEngine injects a host expression engine carrying extra functions.
func WithEngine(engine *hostexpr.Engine) Option {
	return orchestrator.WithEngine(engine)
}

// WithErrorHandler overrides how evaluation failures are reported.
func WithErrorHandler(handler orchestrator.ErrorHandler) Option {
	return orchestrator.WithErrorHandler(handler)
}

// WithRenderers replaces the renderer registry used by Render.
func WithRenderers(registry *render.Registry) Option {
	return orchestrator.WithRenderers(registry)
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// html pages are styled with the selected theme and variant.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithThemeManifests selects themes from the given go-theme manifests.
func WithThemeManifests(manifests ...*theme.Manifest) Option {
	return orchestrator.WithThemeManifests(manifests...)
}

// WithTheme sets the default theme name and variant.
func WithTheme(name, variant string) Option {
	return orchestrator.WithTheme(name, variant)
}
