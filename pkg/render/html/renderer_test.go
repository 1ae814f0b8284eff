package html_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-trs/pkg/render/html"
	"github.com/goliatone/go-trs/pkg/tree"
)

func newRenderer(t *testing.T, opts ...html.Option) *html.Renderer {
	t.Helper()
	r, err := html.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func render(t *testing.T, r *html.Renderer, root tree.Root) string {
	t.Helper()
	out, err := r.Render(context.Background(), root)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRenderer_Elements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		root    tree.Root
		want    []string
		notWant []string
	}{
		{
			name: "empty root",
			root: tree.Empty(),
		},
		{
			name: "text root",
			root: tree.New(tree.Literal("hello")),
			want: []string{"hello"},
		},
		{
			name: "block maps to div",
			root: tree.New(tree.NewElement("block", map[string]tree.AttrValue{
				"id":    tree.Text("card"),
				"class": tree.Text("box"),
			}, tree.NewElement("text", nil, tree.Literal("body")))),
			want: []string{`<div class="box" id="card">`, "<span>body</span>", "</div>"},
		},
		{
			name: "unknown attributes become data attributes",
			root: tree.New(tree.NewElement("block", map[string]tree.AttrValue{
				"count": tree.Int(3),
			})),
			want: []string{`data-count="3"`},
		},
		{
			name: "unknown tag",
			root: tree.New(tree.NewElement("card", nil)),
			want: []string{`<div data-tag="card">`},
		},
		{
			name: "input",
			root: tree.New(tree.NewElement("input", map[string]tree.AttrValue{
				"placeholder": tree.Text("Name"),
				"disabled":    tree.Bool(true),
				"maxlength":   tree.Int(12),
			})),
			want:    []string{"<input", `type="text"`, `placeholder="Name"`, `maxlength="12"`, "disabled"},
			notWant: []string{"</input>"},
		},
		{
			name: "false boolean attribute is omitted",
			root: tree.New(tree.NewElement("input", map[string]tree.AttrValue{
				"disabled": tree.Bool(false),
			})),
			notWant: []string{"disabled"},
		},
		{
			name: "dropdown options",
			root: tree.New(tree.NewElement("dropdown", map[string]tree.AttrValue{
				"selected": tree.Int(1),
			}, tree.Literal("red"), tree.Literal("green"))),
			want: []string{
				"<select>",
				`<option value="0">red</option>`,
				`<option value="1" selected="">green</option>`,
			},
			notWant: []string{"data-selected"},
		},
		{
			name: "reactive values are evaluated",
			root: tree.New(tree.NewElement("block", map[string]tree.AttrValue{
				"class": tree.NewReactive(func() tree.AttrValue { return tree.Text("live") }),
			}, tree.NewReactiveChild(func() tree.Node { return tree.Literal("20") }))),
			want: []string{`class="live"`, ">20</div>"},
		},
		{
			name: "scripts are stripped",
			root: tree.New(tree.NewElement("block", map[string]tree.AttrValue{
				"onclick": tree.Text("alert(1)"),
			}, tree.Literal("<script>alert(1)</script>"))),
			want:    []string{"&lt;script&gt;"},
			notWant: []string{"<script>", " onclick="},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := render(t, newRenderer(t), tt.root)
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
			if len(tt.want) == 0 && len(tt.notWant) == 0 && got != "" {
				t.Fatalf("expected empty output, got %q", got)
			}
		})
	}
}

func TestRenderer_Page(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, html.WithPage("Preview"))
	got := render(t, r, tree.New(tree.NewElement("block", nil, tree.Literal("hi"))))
	for _, fragment := range []string{"<!doctype html>", "<title>Preview</title>", "<div>hi</div>", "</html>"} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("expected %q in page:\n%s", fragment, got)
		}
	}
}

func TestRenderer_Minify(t *testing.T) {
	t.Parallel()

	root := tree.New(tree.NewElement("block", nil, tree.Literal("hi")))
	plain := render(t, newRenderer(t, html.WithPage("Preview")), root)
	minified := render(t, newRenderer(t, html.WithPage("Preview"), html.WithMinify(true)), root)
	if len(minified) >= len(plain) {
		t.Fatalf("expected minified output to be shorter:\n%s", minified)
	}
	if !strings.Contains(minified, "hi") {
		t.Fatalf("minified output lost content:\n%s", minified)
	}
}

func TestRenderer_Contract(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	if r.Name() != "html" || !strings.HasPrefix(r.ContentType(), "text/html") {
		t.Fatalf("unexpected name/content type %q %q", r.Name(), r.ContentType())
	}
}
