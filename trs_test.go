package trs_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	trs "github.com/goliatone/go-trs"
	"github.com/goliatone/go-trs/pkg/render"
	"github.com/goliatone/go-trs/pkg/render/html"
	"github.com/goliatone/go-trs/pkg/tree"
)

func TestConstruct_Deterministic(t *testing.T) {
	t.Parallel()

	src := `block { id: "a", class: { "c" + "d" }, text { "x" } { 1 + 1 } }`
	first, err := trs.Construct(src)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	second, err := trs.Construct(src)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if !first.Materialize().Equal(second.Materialize()) {
		t.Fatalf("repeated builds differ:\n%v\n%v", first.Snapshot(), second.Snapshot())
	}
}

func TestConstruct_Empty(t *testing.T) {
	t.Parallel()

	for _, src := range []string{"", "   \n\t"} {
		root, err := trs.Construct(src)
		if err != nil {
			t.Fatalf("construct %q: %v", src, err)
		}
		if !root.IsEmpty() || root.Content != nil {
			t.Fatalf("expected empty root for %q, got %#v", src, root)
		}
	}
}

func TestConstruct_TextRoot(t *testing.T) {
	t.Parallel()

	root, err := trs.Construct(`"hello"`)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if diff := cmp.Diff(tree.New(tree.Literal("hello")), root); diff != "" {
		t.Fatalf("root mismatch (-want +got):\n%s", diff)
	}
}

func TestConstruct_StaticAttributes(t *testing.T) {
	t.Parallel()

	root, err := trs.Construct(`block { id: "my-block", class: "container" }`)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	el, ok := root.Content.(*tree.Element)
	if !ok {
		t.Fatalf("expected element root, got %T", root.Content)
	}
	want := map[string]tree.AttrValue{
		"id":    tree.Text("my-block"),
		"class": tree.Text("container"),
	}
	if diff := cmp.Diff(want, el.Attrs); diff != "" {
		t.Fatalf("attrs mismatch (-want +got):\n%s", diff)
	}
	if len(el.Children) != 0 {
		t.Fatalf("expected no children, got %d", len(el.Children))
	}
}

func TestConstruct_ReactiveIf(t *testing.T) {
	t.Parallel()

	root, err := trs.Construct(`block { id: if true { "visible" } else { "hidden" } }`)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	value, _ := root.Content.(*tree.Element).Attr("id")
	reactive, ok := value.(tree.Reactive)
	if !ok {
		t.Fatalf("expected reactive attribute, got %T", value)
	}
	for i := 0; i < 2; i++ {
		if got := reactive.Eval(); got != tree.Text("visible") {
			t.Fatalf("eval %d = %#v, want Text(visible)", i, got)
		}
	}
}

func TestConstruct_ReactiveChild(t *testing.T) {
	t.Parallel()

	root, err := trs.New(trs.WithVars(map[string]any{"x": 10})).Construct("view.trs", `block { { x * 2 } }`)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	children := root.Content.(*tree.Element).Children
	if len(children) != 1 {
		t.Fatalf("expected one child, got %d", len(children))
	}
	child, ok := children[0].(tree.ReactiveChild)
	if !ok {
		t.Fatalf("expected reactive child, got %T", children[0])
	}
	if got := child.Eval(); got != tree.Literal("20") {
		t.Fatalf("eval = %#v, want Literal(20)", got)
	}
}

func TestConstruct_UnknownTag(t *testing.T) {
	t.Parallel()

	root, err := trs.Construct(`widget { }`)
	if !errors.Is(err, trs.ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
	var diagErr *trs.Error
	if !errors.As(err, &diagErr) || diagErr.Context.Source[diagErr.Context.From:diagErr.Context.To] != "widget" {
		t.Fatalf("expected error pointing at the tag, got %#v", err)
	}
	if root.Content != nil {
		t.Fatalf("expected no tree on failure, got %#v", root)
	}
}

func TestConstruct_FailureKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want error
	}{
		{src: `block { id: }`, want: trs.ErrExpectedAttributeValue},
		{src: `block { n: 99999999999999999999 }`, want: trs.ErrNumberFormat},
		{src: `block {`, want: trs.ErrSyntax},
		{src: `block { id: { 1 + } }`, want: trs.ErrSyntax},
	}
	for _, tt := range tests {
		root, err := trs.Construct(tt.src)
		if !errors.Is(err, tt.want) {
			t.Fatalf("%q: expected %v, got %v", tt.src, tt.want, err)
		}
		if root.Content != nil {
			t.Fatalf("%q: expected no partial tree", tt.src)
		}
	}
}

func TestRoot_Equality(t *testing.T) {
	t.Parallel()

	static, err := trs.Construct(`block { id: "a", n: 2, "hi" }`)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	hand := tree.New(tree.NewElement("block", map[string]tree.AttrValue{
		"id": tree.Text("a"),
		"n":  tree.Int(2),
	}, tree.Literal("hi")))

	if !static.Equal(static) || !static.Equal(hand) || !hand.Equal(static) {
		t.Fatalf("static trees should compare equal reflexively and symmetrically")
	}

	dynamic, err := trs.Construct(`block { id: { "a" } }`)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if dynamic.Equal(dynamic) {
		t.Fatalf("a tree holding a reactive value must not equal itself")
	}
	if dynamic.Equal(hand) || hand.Equal(dynamic) {
		t.Fatalf("reactive trees must not equal static trees")
	}
}

func TestNew_ThemeOptions(t *testing.T) {
	t.Parallel()

	page, err := html.New(html.WithPage("Card"))
	if err != nil {
		t.Fatalf("html renderer: %v", err)
	}
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456"},
	}
	c := trs.New(
		trs.WithRenderers(render.NewRegistry(page)),
		trs.WithThemeManifests(manifest),
		trs.WithTheme("acme", ""),
	)

	out, err := c.Render(context.Background(), trs.Request{Source: `block { "hi" }`})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, fragment := range []string{`data-theme="acme"`, "--brand: #123456;", "<div>hi</div>"} {
		if !strings.Contains(string(out), fragment) {
			t.Fatalf("expected %q in page:\n%s", fragment, out)
		}
	}

	if _, err := c.Render(context.Background(), trs.Request{Source: `"x"`, ThemeName: "zen"}); err == nil {
		t.Fatalf("expected unknown theme error")
	}
}
