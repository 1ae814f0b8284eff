// Package html renders built trees as static HTML for previews. Every
// reactive value is invoked once; the output is a snapshot, not a live view.
package html

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tdewolff/minify/v2"
	minhtml "github.com/tdewolff/minify/v2/html"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-trs/pkg/render"
	rendertemplate "github.com/goliatone/go-trs/pkg/render/template"
	"github.com/goliatone/go-trs/pkg/render/template/gotemplate"
	"github.com/goliatone/go-trs/pkg/tags"
	"github.com/goliatone/go-trs/pkg/tree"
)

//go:embed templates/*.tpl
var embedded embed.FS

// Option configures the renderer.
type Option func(*config)

type config struct {
	page      bool
	title     string
	minify    bool
	policy    *bluemonday.Policy
	templates rendertemplate.TemplateRenderer
	theme     *theme.RendererConfig
}

// WithPage wraps the fragment in a complete HTML document titled title.
func WithPage(title string) Option {
	return func(cfg *config) {
		cfg.page = true
		cfg.title = title
	}
}

// WithMinify strips insignificant whitespace from the output.
func WithMinify(enabled bool) Option {
	return func(cfg *config) {
		cfg.minify = enabled
	}
}

// WithPolicy replaces the sanitization policy.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithTemplateRenderer injects the engine used for the page wrapper. It must
// provide a template named "page".
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templates = renderer
		}
	}
}

// Renderer maps tree elements onto HTML elements.
type Renderer struct {
	cfg      config
	minifier *minify.M
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the html renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.policy == nil {
		cfg.policy = Policy()
	}
	if cfg.page && cfg.templates == nil {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, fmt.Errorf("html renderer: templates: %w", err)
		}
		engine, err := gotemplate.New(gotemplate.WithFS(sub))
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		cfg.templates = engine
	}

	r := &Renderer{cfg: cfg}
	if cfg.minify {
		r.minifier = minify.New()
		r.minifier.Add("text/html", &minhtml.Minifier{
			KeepDocumentTags: true,
			KeepEndTags:      true,
			KeepQuotes:       true,
		})
	}
	return r, nil
}

// Policy returns the default sanitization policy: user generated content plus
// the form controls the extended tag set maps onto, data attributes, id and
// class.
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataAttributes()
	p.AllowAttrs("id", "class", "title").Globally()
	p.AllowElements("input", "select", "option")
	p.AllowNoAttrs().OnElements("div", "span", "select", "option")
	p.AllowAttrs("type", "value", "placeholder", "maxlength", "name").OnElements("input")
	p.AllowAttrs("disabled").OnElements("input", "select")
	p.AllowAttrs("value", "selected").OnElements("option")
	return p
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, root tree.Root) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if !root.IsEmpty() {
		node := convert(root.Materialize().Content)
		if err := nethtml.Render(&buf, node); err != nil {
			return nil, fmt.Errorf("html renderer: render nodes: %w", err)
		}
	}
	body := r.cfg.policy.SanitizeBytes(buf.Bytes())

	out := body
	if r.cfg.page {
		themeCfg := render.ThemeFromContext(ctx)
		if themeCfg == nil {
			themeCfg = r.cfg.theme
		}
		page, err := r.cfg.templates.RenderTemplate("page", map[string]any{
			"title": r.cfg.title,
			"body":  string(body),
			"theme": buildThemeContext(themeCfg),
		})
		if err != nil {
			return nil, fmt.Errorf("html renderer: render page: %w", err)
		}
		out = []byte(page)
	}

	if r.minifier != nil {
		minified, err := r.minifier.Bytes("text/html", out)
		if err != nil {
			return nil, fmt.Errorf("html renderer: minify: %w", err)
		}
		out = minified
	}
	return out, nil
}

// htmlTags maps tree tags onto HTML element names. Unknown tags become a div
// carrying the original name in data-tag.
var htmlTags = map[string]string{
	tags.TagBlock:    "div",
	tags.TagText:     "span",
	tags.TagInput:    "input",
	tags.TagDropdown: "select",
}

// htmlAttrs are passed through unchanged; any other attribute is prefixed
// with data-.
var htmlAttrs = map[string]bool{
	"id":          true,
	"class":       true,
	"title":       true,
	"name":        true,
	"value":       true,
	"placeholder": true,
	"disabled":    true,
	"maxlength":   true,
}

func convert(node tree.Node) *nethtml.Node {
	switch n := node.(type) {
	case tree.Literal:
		return &nethtml.Node{Type: nethtml.TextNode, Data: string(n)}
	case tree.ReactiveChild:
		return convert(n.Eval())
	case *tree.Element:
		return convertElement(n)
	default:
		return &nethtml.Node{Type: nethtml.TextNode}
	}
}

func convertElement(el *tree.Element) *nethtml.Node {
	name, known := htmlTags[el.Tag]
	if !known {
		name = "div"
	}
	out := &nethtml.Node{Type: nethtml.ElementNode, Data: name, DataAtom: atom.Lookup([]byte(name))}
	if !known {
		out.Attr = append(out.Attr, nethtml.Attribute{Key: "data-tag", Val: el.Tag})
	}
	if el.Tag == tags.TagInput {
		out.Attr = append(out.Attr, nethtml.Attribute{Key: "type", Val: "text"})
	}

	keys := make([]string, 0, len(el.Attrs))
	for key := range el.Attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if el.Tag == tags.TagDropdown && key == "selected" {
			continue
		}
		value := el.Attrs[key]
		if tree.IsReactive(value) {
			value = value.(tree.Reactive).Eval()
		}
		attrKey := key
		if !htmlAttrs[key] {
			attrKey = "data-" + key
		}
		if b, ok := value.(tree.Bool); ok && htmlAttrs[key] {
			if b {
				out.Attr = append(out.Attr, nethtml.Attribute{Key: attrKey})
			}
			continue
		}
		out.Attr = append(out.Attr, nethtml.Attribute{Key: attrKey, Val: tree.Format(value)})
	}

	if el.Tag == tags.TagDropdown {
		appendOptions(out, el)
		return out
	}
	if el.Tag == tags.TagInput {
		return out
	}
	for _, child := range el.Children {
		out.AppendChild(convert(child))
	}
	return out
}

// appendOptions renders each child of a dropdown as an option whose value is
// its index. The selected attribute picks the option by index.
func appendOptions(sel *nethtml.Node, el *tree.Element) {
	selected := int64(-1)
	if v, ok := el.Attr("selected"); ok {
		if tree.IsReactive(v) {
			v = v.(tree.Reactive).Eval()
		}
		if n, ok := tree.Coerce(v, tree.KindInt); ok {
			selected = int64(n.(tree.Int))
		}
	}
	for i, child := range el.Children {
		opt := &nethtml.Node{Type: nethtml.ElementNode, Data: "option", DataAtom: atom.Option}
		opt.Attr = append(opt.Attr, nethtml.Attribute{Key: "value", Val: strconv.Itoa(i)})
		if int64(i) == selected {
			opt.Attr = append(opt.Attr, nethtml.Attribute{Key: "selected"})
		}
		opt.AppendChild(convert(child))
		sel.AppendChild(opt)
	}
}
