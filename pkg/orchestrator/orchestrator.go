package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-trs/internal/builder"
	"github.com/goliatone/go-trs/internal/codegen"
	"github.com/goliatone/go-trs/internal/syntax"
	"github.com/goliatone/go-trs/pkg/ast"
	"github.com/goliatone/go-trs/pkg/hostexpr"
	"github.com/goliatone/go-trs/pkg/render"
	"github.com/goliatone/go-trs/pkg/render/html"
	"github.com/goliatone/go-trs/pkg/renderers/tui"
	"github.com/goliatone/go-trs/pkg/tags"
	"github.com/goliatone/go-trs/pkg/tree"
)

const defaultRendererName = "html"

// ErrorHandler receives failures raised while an evaluator runs.
type ErrorHandler = builder.ErrorHandler

// GeneratedFunc is one Go function emitted for a template.
type GeneratedFunc = codegen.Func

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithTags sets the tag registry templates are validated against. Defaults
// to tags.Minimal.
func WithTags(registry *tags.Registry) Option {
	return func(o *Orchestrator) {
		o.tags = registry
	}
}

// WithLogger routes build warnings and evaluation failures to logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithEnv sets the bindings host expressions resolve identifiers against.
func WithEnv(env hostexpr.Env) Option {
	return func(o *Orchestrator) {
		o.env = env
	}
}

// WithEngine injects the host expression engine, for example one carrying
// extra functions.
func WithEngine(engine *hostexpr.Engine) Option {
	return func(o *Orchestrator) {
		o.engine = engine
	}
}

// WithErrorHandler overrides how evaluation failures are reported.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(o *Orchestrator) {
		o.onError = handler
	}
}

// WithRenderers injects a renderer registry.
func WithRenderers(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.renderers = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits one.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer registers a Transformer that runs on every built tree
// before it is rendered.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithGoImports adds imports to generated Go files for packages the host
// expressions reference.
func WithGoImports(paths ...string) Option {
	return func(o *Orchestrator) {
		o.genOptions = append(o.genOptions, codegen.WithImports(paths...))
	}
}

// WithTreeImport changes the tree package generated code constructs values
// with.
func WithTreeImport(importPath string) Option {
	return func(o *Orchestrator) {
		o.genOptions = append(o.genOptions, codegen.WithTreeImport(importPath))
	}
}

// Transformer adjusts a built tree before rendering.
type Transformer interface {
	Transform(ctx context.Context, root tree.Root) (tree.Root, error)
}

// TransformerFunc adapts a function to Transformer.
type TransformerFunc func(ctx context.Context, root tree.Root) (tree.Root, error)

func (fn TransformerFunc) Transform(ctx context.Context, root tree.Root) (tree.Root, error) {
	return fn(ctx, root)
}

// Orchestrator coordinates parsing, tree building, code generation and
// rendering. Missing dependencies are initialised with the built-in
// implementations.
type Orchestrator struct {
	tags            *tags.Registry
	logger          *log.Logger
	env             hostexpr.Env
	engine          *hostexpr.Engine
	onError         ErrorHandler
	renderers       *render.Registry
	defaultRenderer string
	transformer     Transformer
	genOptions      []codegen.Option

	themeSelector  theme.ThemeSelector
	themeManifests []*theme.Manifest
	themeName      string
	themeVariant   string

	builder       *builder.Builder
	generator     *codegen.Generator
	initialiseErr error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one template to build and render.
type Request struct {
	// Name identifies the template in diagnostics, usually its file name.
	Name string
	// Source is the template text.
	Source string
	// Renderer names the renderer to use. Empty selects the default.
	Renderer string
	// ThemeName and ThemeVariant pick the theme when a selector is
	// configured. Empty values fall back to WithTheme.
	ThemeName    string
	ThemeVariant string
}

// Unit pairs a template with the Go function signature generated for it.
type Unit struct {
	Name      string
	Source    string
	Signature string
}

// Parse validates source against the tag registry and returns its AST.
func (o *Orchestrator) Parse(name, source string) (*ast.Template, error) {
	return syntax.Parse(name, source, o.tags)
}

// Construct parses source and builds its tree. Any failure rejects the whole
// build; no partial tree is returned.
func (o *Orchestrator) Construct(name, source string) (tree.Root, error) {
	if o.initialiseErr != nil {
		return tree.Root{}, o.initialiseErr
	}
	tmpl, err := o.Parse(name, source)
	if err != nil {
		return tree.Root{}, err
	}
	return o.builder.Build(tmpl)
}

// FreeIdents lists the identifiers the template's host expressions read,
// sorted and deduplicated.
func (o *Orchestrator) FreeIdents(name, source string) ([]string, error) {
	tmpl, err := o.Parse(name, source)
	if err != nil {
		return nil, err
	}
	return o.builder.FreeIdents(tmpl)
}

// Render builds the requested template and renders it with the named
// renderer.
func (o *Orchestrator) Render(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := o.Construct(req.Name, req.Source)
	if err != nil {
		return nil, err
	}
	if o.transformer != nil {
		root, err = o.transformer.Transform(ctx, root)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: transform tree: %w", err)
		}
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}
	themeCfg, err := o.resolveTheme(req)
	if err != nil {
		return nil, err
	}
	output, err := renderer.Render(render.ContextWithTheme(ctx, themeCfg), root)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// GenerateFunc parses source and emits the Go function signature names.
func (o *Orchestrator) GenerateFunc(name, source, signature string) (GeneratedFunc, error) {
	if o.initialiseErr != nil {
		return GeneratedFunc{}, o.initialiseErr
	}
	tmpl, err := o.Parse(name, source)
	if err != nil {
		return GeneratedFunc{}, err
	}
	return o.generator.GenerateFunc(signature, tmpl)
}

// GenerateFile emits a gofmt'd Go file in package pkg with one function per
// unit. The first failing unit aborts generation.
func (o *Orchestrator) GenerateFile(pkg string, units ...Unit) ([]byte, error) {
	if o.initialiseErr != nil {
		return nil, o.initialiseErr
	}
	funcs := make([]GeneratedFunc, 0, len(units))
	for _, unit := range units {
		fn, err := o.GenerateFunc(unit.Name, unit.Source, unit.Signature)
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, fn)
	}
	return o.generator.GenerateFile(pkg, funcs...)
}

// Renderers exposes the renderer registry.
func (o *Orchestrator) Renderers() *render.Registry {
	return o.renderers
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.renderers == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	renderer, err := o.renderers.Get(target)
	if err == nil {
		return renderer, nil
	}
	if name != "" {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
	}

	names := o.renderers.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	return o.renderers.Get(names[0])
}

func (o *Orchestrator) applyDefaults() {
	if o.tags == nil {
		o.tags = tags.Minimal()
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}
	if o.renderers == nil {
		o.renderers = render.NewRegistry(render.NewJSON(render.WithIndent(2)), render.NewYAML(), tui.New())
		preview, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.renderers.MustRegister(preview)
		}
	}

	o.builder = builder.New(builder.Options{
		Engine:  o.engine,
		Env:     o.env,
		Logger:  o.logger,
		OnError: o.onError,
	})

	if len(o.themeManifests) > 0 && o.themeSelector == nil {
		selector, err := newManifestSelector(o.themeManifests)
		if err != nil && o.initialiseErr == nil {
			o.initialiseErr = fmt.Errorf("orchestrator: %w", err)
		}
		if selector != nil {
			o.themeSelector = selector
		}
	}

	generator, err := codegen.New(o.genOptions...)
	if err != nil && o.initialiseErr == nil {
		o.initialiseErr = fmt.Errorf("orchestrator: code generator: %w", err)
	}
	o.generator = generator
}
