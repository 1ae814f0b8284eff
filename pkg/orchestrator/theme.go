package orchestrator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// WithThemeSelector resolves the theme of every Render call through selector.
// The html page renderer turns the selection into CSS variables and a
// stylesheet link.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		if selector != nil {
			o.themeSelector = selector
		}
	}
}

// WithThemeManifests selects themes from the given manifests. Each manifest
// is validated against a go-theme registry when the orchestrator is built.
func WithThemeManifests(manifests ...*theme.Manifest) Option {
	return func(o *Orchestrator) {
		o.themeManifests = append(o.themeManifests, manifests...)
	}
}

// WithTheme sets the theme and variant used when a Request names none.
func WithTheme(name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeName = strings.TrimSpace(name)
		o.themeVariant = strings.TrimSpace(variant)
	}
}

// manifestSelector picks a manifest by name. An empty name selects the first
// manifest in name order.
type manifestSelector struct {
	manifests map[string]*theme.Manifest
}

var _ theme.ThemeSelector = (*manifestSelector)(nil)

func newManifestSelector(manifests []*theme.Manifest) (*manifestSelector, error) {
	registry := theme.NewRegistry()
	sel := &manifestSelector{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, m := range manifests {
		if m == nil {
			continue
		}
		if _, dup := sel.manifests[m.Name]; dup {
			return nil, fmt.Errorf("theme %q registered twice", m.Name)
		}
		if err := registry.Register(m); err != nil {
			return nil, fmt.Errorf("register theme %q: %w", m.Name, err)
		}
		sel.manifests[m.Name] = m
	}
	return sel, nil
}

func (s *manifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if len(s.manifests) == 0 {
		return nil, errors.New("no themes registered")
	}
	if name == "" {
		names := make([]string, 0, len(s.manifests))
		for key := range s.manifests {
			names = append(names, key)
		}
		sort.Strings(names)
		name = names[0]
	}
	m, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("unknown theme %q", name)
	}
	if _, ok := m.Variants[variant]; variant != "" && !ok {
		return nil, fmt.Errorf("theme %q has no variant %q", name, variant)
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: m}, nil
}

// resolveTheme selects the request's theme. It returns nil when no selector
// is configured.
func (o *Orchestrator) resolveTheme(req Request) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	name, variant := req.ThemeName, req.ThemeVariant
	if name == "" {
		name = o.themeName
	}
	if variant == "" {
		variant = o.themeVariant
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	if selection == nil {
		return nil, nil
	}
	return rendererConfig(selection), nil
}

// rendererConfig merges the selected variant over its manifest. Every token
// is also exposed as a --token CSS variable.
func rendererConfig(sel *theme.Selection) *theme.RendererConfig {
	cfg := &theme.RendererConfig{Theme: sel.Theme, Variant: sel.Variant}
	if sel.Manifest == nil {
		return cfg
	}
	m := sel.Manifest
	v := m.Variants[sel.Variant]

	cfg.Tokens = mergeStrings(m.Tokens, v.Tokens)
	cfg.Partials = mergeStrings(m.Templates, v.Templates)
	if len(cfg.Tokens) > 0 {
		cfg.CSSVars = make(map[string]string, len(cfg.Tokens))
		for key, value := range cfg.Tokens {
			cfg.CSSVars["--"+key] = value
		}
	}

	prefix := m.Assets.Prefix
	if v.Assets.Prefix != "" {
		prefix = v.Assets.Prefix
	}
	files := mergeStrings(m.Assets.Files, v.Assets.Files)
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if prefix == "" {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

func mergeStrings(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}
