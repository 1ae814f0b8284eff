package html_test

import (
	"context"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-trs/pkg/render"
	"github.com/goliatone/go-trs/pkg/render/html"
	"github.com/goliatone/go-trs/pkg/tree"
)

func testThemeConfig(name, brand string) *theme.RendererConfig {
	return &theme.RendererConfig{
		Theme:   name,
		Variant: "dark",
		Tokens: map[string]string{
			"brand": brand,
		},
		CSSVars: map[string]string{
			"--brand":   brand,
			"--surface": "#000",
		},
		AssetURL: func(key string) string {
			if key == "" {
				return ""
			}
			return "/themes/" + name + "/" + key
		},
	}
}

func TestRenderer_PageTheme(t *testing.T) {
	t.Parallel()

	root := tree.New(tree.NewElement("block", nil, tree.Literal("hi")))

	tests := []struct {
		name    string
		opts    []html.Option
		ctx     context.Context
		want    []string
		notWant []string
	}{
		{
			name:    "no theme",
			opts:    []html.Option{html.WithPage("Preview")},
			ctx:     context.Background(),
			want:    []string{`<html lang="en">`},
			notWant: []string{"data-theme", "<style>", "<link"},
		},
		{
			name: "renderer option",
			opts: []html.Option{html.WithPage("Preview"), html.WithTheme(testThemeConfig("acme", "#123456"))},
			ctx:  context.Background(),
			want: []string{
				`data-theme="acme"`,
				`data-theme-variant="dark"`,
				`<link rel="stylesheet" href="/themes/acme/trs.stylesheet">`,
				":root {\n--brand: #123456;\n--surface: #000;\n}",
			},
		},
		{
			name:    "context wins over option",
			opts:    []html.Option{html.WithPage("Preview"), html.WithTheme(testThemeConfig("acme", "#123456"))},
			ctx:     render.ContextWithTheme(context.Background(), testThemeConfig("zen", "#abcdef")),
			want:    []string{`data-theme="zen"`, "--brand: #abcdef;", "/themes/zen/trs.stylesheet"},
			notWant: []string{"acme", "#123456"},
		},
		{
			name:    "fragments ignore the theme",
			opts:    []html.Option{html.WithTheme(testThemeConfig("acme", "#123456"))},
			ctx:     context.Background(),
			want:    []string{"<div>hi</div>"},
			notWant: []string{"<style>", "data-theme"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := newRenderer(t, tt.opts...).Render(tt.ctx, root)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			got := string(out)
			for _, fragment := range tt.want {
				if !strings.Contains(got, fragment) {
					t.Fatalf("expected %q in output:\n%s", fragment, got)
				}
			}
			for _, fragment := range tt.notWant {
				if strings.Contains(got, fragment) {
					t.Fatalf("did not expect %q in output:\n%s", fragment, got)
				}
			}
		})
	}
}

func TestThemeFromContext(t *testing.T) {
	t.Parallel()

	if render.ThemeFromContext(context.Background()) != nil {
		t.Fatalf("expected no theme on a bare context")
	}
	ctx := render.ContextWithTheme(context.Background(), nil)
	if render.ThemeFromContext(ctx) != nil {
		t.Fatalf("nil theme should not be attached")
	}
	cfg := testThemeConfig("acme", "#123456")
	if got := render.ThemeFromContext(render.ContextWithTheme(context.Background(), cfg)); got != cfg {
		t.Fatalf("theme not carried by context")
	}
}
