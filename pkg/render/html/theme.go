package html

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// themeAssetStylesheet is the asset key resolved for the page stylesheet.
const themeAssetStylesheet = "trs.stylesheet"

// WithTheme styles page output with cfg. A theme carried by the render
// context takes precedence.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// buildThemeContext flattens cfg into the values page.tpl reads.
func buildThemeContext(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	ctx := map[string]any{
		"name":    cfg.Theme,
		"variant": cfg.Variant,
		"style":   cssVarsStyle(cfg.CSSVars),
	}
	if cfg.AssetURL != nil {
		if href := strings.TrimSpace(cfg.AssetURL(themeAssetStylesheet)); href != "" {
			ctx["stylesheet"] = href
		}
	}
	return ctx
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
