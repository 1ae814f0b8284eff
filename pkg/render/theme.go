package render

import (
	"context"

	theme "github.com/goliatone/go-theme"
)

type themeKey struct{}

// ContextWithTheme attaches a resolved theme for renderers that style their
// output. A nil cfg leaves ctx unchanged.
func ContextWithTheme(ctx context.Context, cfg *theme.RendererConfig) context.Context {
	if cfg == nil {
		return ctx
	}
	return context.WithValue(ctx, themeKey{}, cfg)
}

// ThemeFromContext returns the theme attached by ContextWithTheme, or nil.
func ThemeFromContext(ctx context.Context) *theme.RendererConfig {
	if ctx == nil {
		return nil
	}
	cfg, _ := ctx.Value(themeKey{}).(*theme.RendererConfig)
	return cfg
}
