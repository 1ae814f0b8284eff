// Package tui renders trees as plain text outlines for terminals and collects
// host bindings interactively.
package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-trs/pkg/render"
	"github.com/goliatone/go-trs/pkg/tags"
	"github.com/goliatone/go-trs/pkg/tree"
)

// Renderer implements render.Renderer for terminals and drives the prompts
// behind Bindings.
type Renderer struct {
	driver PromptDriver
	theme  Theme
	parse  func(string) (any, error)
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer backed by survey prompts.
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver: newSurveyDriver(),
		theme:  DefaultTheme,
		parse:  ParseScalar,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render writes one line per node, indenting children under their element.
// Reactive values are invoked once.
func (r *Renderer) Render(ctx context.Context, root tree.Root) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if !root.IsEmpty() {
		r.outline(&buf, root.Materialize().Content, 0)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) outline(buf *bytes.Buffer, node tree.Node, depth int) {
	indent := strings.Repeat(r.theme.Indent, depth)
	switch n := node.(type) {
	case tree.Literal:
		fmt.Fprintf(buf, "%s%s\n", indent, string(n))
	case tree.ReactiveChild:
		r.outline(buf, n.Eval(), depth)
	case *tree.Element:
		switch n.Tag {
		case tags.TagInput:
			value := attrText(n, "value")
			if value == "" {
				value = attrText(n, "placeholder")
			}
			fmt.Fprintf(buf, "%s%s%s\n", indent, fmt.Sprintf(r.theme.Input, value), attrSuffix(n, "value", "placeholder"))
			return
		case tags.TagDropdown:
			fmt.Fprintf(buf, "%s%s%s\n", indent, n.Tag, attrSuffix(n, "selected"))
			selected := int64(-1)
			if v, ok := n.Attr("selected"); ok {
				if i, ok := tree.Coerce(v, tree.KindInt); ok {
					selected = int64(i.(tree.Int))
				}
			}
			for i, child := range n.Children {
				mark := r.theme.Unchecked
				if int64(i) == selected {
					mark = r.theme.Checked
				}
				fmt.Fprintf(buf, "%s%s%s %s\n", indent, r.theme.Indent, mark, tree.Format(tree.AttrOf(textOf(child))))
			}
			return
		}
		fmt.Fprintf(buf, "%s%s%s\n", indent, n.Tag, attrSuffix(n))
		for _, child := range n.Children {
			r.outline(buf, child, depth+1)
		}
	}
}

func attrText(el *tree.Element, name string) string {
	v, ok := el.Attr(name)
	if !ok {
		return ""
	}
	return tree.Format(v)
}

// attrSuffix formats the remaining attributes as " key=value" pairs sorted
// by key.
func attrSuffix(el *tree.Element, skip ...string) string {
	keys := make([]string, 0, len(el.Attrs))
	for key := range el.Attrs {
		if !contains(skip, key) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%q", key, tree.Format(el.Attrs[key]))
	}
	return b.String()
}

// textOf flattens a node to the text it displays.
func textOf(node tree.Node) string {
	switch n := node.(type) {
	case tree.Literal:
		return string(n)
	case tree.ReactiveChild:
		return textOf(n.Eval())
	case *tree.Element:
		var b strings.Builder
		for _, child := range n.Children {
			b.WriteString(textOf(child))
		}
		return b.String()
	default:
		return ""
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
