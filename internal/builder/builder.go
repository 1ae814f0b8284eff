package builder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-trs/pkg/ast"
	"github.com/goliatone/go-trs/pkg/diag"
	"github.com/goliatone/go-trs/pkg/hostexpr"
	"github.com/goliatone/go-trs/pkg/tree"
)

// Builder turns parsed templates into runtime trees, evaluating host
// expressions in-process with hostexpr.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options. Zero fields fall back to
// the defaults.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Engine != nil {
		opts.Engine = options.Engine
	}
	if options.Env != nil {
		opts.Env = options.Env
	}
	if options.Logger != nil {
		opts.Logger = options.Logger
	}
	opts.OnError = options.OnError
	b := &Builder{opts: opts}
	if b.opts.OnError == nil {
		b.opts.OnError = b.logError
	}
	return b
}

// Build constructs the tree for tmpl. Every host expression is compiled
// before any evaluator exists, so a malformed expression fails the whole
// build and no partial tree is returned.
func (b *Builder) Build(tmpl *ast.Template) (tree.Root, error) {
	if tmpl == nil {
		return tree.Root{}, errors.New("builder: template is required")
	}
	if tmpl.Root == nil {
		return tree.Empty(), nil
	}
	run := &build{b: b, tmpl: tmpl}
	node, err := run.node(tmpl.Root)
	if err != nil {
		return tree.Root{}, err
	}
	return tree.New(node), nil
}

// FreeIdents compiles every host expression in tmpl and returns the
// identifiers they read, sorted and without duplicates.
func (b *Builder) FreeIdents(tmpl *ast.Template) ([]string, error) {
	if tmpl == nil || tmpl.Root == nil {
		return nil, nil
	}
	run := &build{b: b, tmpl: tmpl}
	seen := map[string]struct{}{}
	for _, span := range ast.HostSpans(tmpl.Root) {
		prog, err := run.compile(span)
		if err != nil {
			return nil, err
		}
		for _, ident := range prog.FreeIdents() {
			seen[ident] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for ident := range seen {
		out = append(out, ident)
	}
	sort.Strings(out)
	return out, nil
}

func (b *Builder) logError(tmpl *ast.Template, span ast.Span, err error) {
	b.opts.Logger.Printf("builder: %s: evaluate %q: %v", position(tmpl, span), span.Src, err)
}

func position(tmpl *ast.Template, span ast.Span) string {
	ctx := diag.Context{Name: tmpl.Name, Source: tmpl.Source, From: span.From, To: span.To}
	line, col := ctx.Position()
	name := tmpl.Name
	if name == "" {
		name = "<template>"
	}
	return fmt.Sprintf("%s:%d:%d", name, line, col)
}

// build holds the state of one Build call.
type build struct {
	b    *Builder
	tmpl *ast.Template
}

// evalFunc computes a host value on demand.
type evalFunc func() (any, error)

func (r *build) node(n ast.Node) (tree.Node, error) {
	switch x := n.(type) {
	case *ast.TextNode:
		return tree.Literal(x.Value), nil
	case *ast.ExpressionNode:
		fn, err := r.host(x.Expr)
		if err != nil {
			return nil, err
		}
		return r.reactiveChild(x.Expr, fn), nil
	case *ast.ElementNode:
		return r.element(x)
	default:
		return nil, fmt.Errorf("builder: unsupported node %T", n)
	}
}

func (r *build) element(el *ast.ElementNode) (tree.Node, error) {
	out := &tree.Element{Tag: el.Tag, Attrs: make(map[string]tree.AttrValue, len(el.Attrs))}
	for _, attr := range el.Attrs {
		value, err := r.attr(attr)
		if err != nil {
			return nil, err
		}
		if _, dup := out.Attrs[attr.Name]; dup {
			r.b.opts.Logger.Printf("builder: %s: duplicate attribute %q on %s, later value wins", position(r.tmpl, attr.NameSpan), attr.Name, el.Tag)
		}
		out.Attrs[attr.Name] = value
	}
	for _, child := range el.Children {
		node, err := r.node(child)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, node)
	}
	return out, nil
}

func (r *build) attr(attr ast.Attr) (tree.AttrValue, error) {
	switch v := attr.Value.(type) {
	case *ast.LiteralExpr:
		return v.Value, nil
	case *ast.DynamicExpr:
		fn, err := r.value(v.Value)
		if err != nil {
			return nil, err
		}
		return r.reactive(v.Value.Pos(), attr.Kind, fn), nil
	default:
		return nil, fmt.Errorf("builder: unsupported attribute value %T", attr.Value)
	}
}

func (r *build) reactive(span ast.Span, kind tree.Kind, fn evalFunc) tree.Reactive {
	return tree.NewReactive(func() tree.AttrValue {
		value, err := fn()
		if err != nil {
			r.b.opts.OnError(r.tmpl, span, err)
			return tree.Text("")
		}
		return tree.CoerceTo(kind, value)
	})
}

func (r *build) reactiveChild(span ast.Span, fn evalFunc) tree.ReactiveChild {
	return tree.NewReactiveChild(func() tree.Node {
		value, err := fn()
		if err != nil {
			r.b.opts.OnError(r.tmpl, span, err)
			return tree.Literal("")
		}
		return tree.NodeOf(value)
	})
}

// value compiles an if/match/host value into a closure.
func (r *build) value(v ast.Value) (evalFunc, error) {
	switch x := v.(type) {
	case *ast.HostExpr:
		return r.host(x.Expr)
	case *ast.IfExpr:
		return r.ifValue(x)
	case *ast.MatchExpr:
		return r.matchValue(x)
	default:
		return nil, fmt.Errorf("builder: unsupported value %T", v)
	}
}

func (r *build) host(span ast.Span) (evalFunc, error) {
	prog, err := r.compile(span)
	if err != nil {
		return nil, err
	}
	env := r.b.opts.Env
	return func() (any, error) {
		return prog.Eval(env)
	}, nil
}

func (r *build) ifValue(x *ast.IfExpr) (evalFunc, error) {
	cond, err := r.host(x.Cond)
	if err != nil {
		return nil, err
	}
	then, err := r.value(x.Then)
	if err != nil {
		return nil, err
	}
	otherwise, err := r.value(x.Else)
	if err != nil {
		return nil, err
	}
	return func() (any, error) {
		c, err := cond()
		if err != nil {
			return nil, err
		}
		if hostexpr.Truthy(c) {
			return then()
		}
		return otherwise()
	}, nil
}

type matchArm struct {
	patterns []tree.AttrValue
	wildcard bool
	body     evalFunc
}

func (r *build) matchValue(x *ast.MatchExpr) (evalFunc, error) {
	subject, err := r.host(x.Subject)
	if err != nil {
		return nil, err
	}
	arms := make([]matchArm, 0, len(x.Arms))
	for _, arm := range x.Arms {
		body, err := r.value(arm.Body)
		if err != nil {
			return nil, err
		}
		arms = append(arms, matchArm{patterns: arm.Patterns, wildcard: arm.Wildcard, body: body})
	}
	return func() (any, error) {
		s, err := subject()
		if err != nil {
			return nil, err
		}
		for _, arm := range arms {
			if arm.wildcard || tree.Matches(s, arm.patterns...) {
				return arm.body()
			}
		}
		return nil, nil
	}, nil
}

// compile parses a host span, mapping compile failures onto the template
// source.
func (r *build) compile(span ast.Span) (*hostexpr.Program, error) {
	prog, err := r.b.opts.Engine.Compile(span.Src)
	if err == nil {
		return prog, nil
	}
	from, to := span.From, span.To
	msg := err.Error()
	var serr *hostexpr.SyntaxError
	if errors.As(err, &serr) {
		from = min(span.From+serr.Offset, span.To)
		if from == span.To && from > span.From {
			from--
		}
		to = min(from+1, span.To)
		msg = serr.Message
	}
	return nil, diag.New(diag.ErrSyntax, r.tmpl.Name, r.tmpl.Source, from, to, "host expression: %s", msg)
}
