package codegen

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	goast "go/ast"
	"go/format"
	goparser "go/parser"
	gotoken "go/token"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-trs/pkg/ast"
	"github.com/goliatone/go-trs/pkg/render/template"
	"github.com/goliatone/go-trs/pkg/render/template/gotemplate"
)

// TreeImport is the import path generated code uses for the runtime tree.
const TreeImport = "github.com/goliatone/go-trs/pkg/tree"

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// Option configures a Generator.
type Option func(*Generator)

// WithImports adds packages the host expressions reference.
func WithImports(paths ...string) Option {
	return func(g *Generator) {
		for _, p := range paths {
			if p = strings.TrimSpace(p); p != "" {
				g.imports = append(g.imports, p)
			}
		}
	}
}

// WithTreeImport overrides the tree package import path. The package is
// referenced by the last element of the path.
func WithTreeImport(importPath string) Option {
	return func(g *Generator) {
		if importPath = strings.TrimSpace(importPath); importPath != "" {
			g.treeImport = importPath
		}
	}
}

// WithTemplates replaces the embedded file template. The renderer must
// provide a template named "file.go".
func WithTemplates(renderer template.TemplateRenderer) Option {
	return func(g *Generator) {
		g.templates = renderer
	}
}

// Generator lowers templates into Go source that constructs tree.Root values.
type Generator struct {
	treeImport string
	imports    []string
	templates  template.TemplateRenderer
}

// Func is one generated Go function.
type Func struct {
	Name   string
	Source string
	// Origin names the template the function came from.
	Origin string
}

// New constructs a Generator backed by the embedded file template unless
// WithTemplates overrides it.
func New(options ...Option) (*Generator, error) {
	g := &Generator{treeImport: TreeImport}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	if g.templates == nil {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, fmt.Errorf("codegen: templates: %w", err)
		}
		engine, err := gotemplate.New(gotemplate.WithFS(sub), gotemplate.WithExtension(".tpl"))
		if err != nil {
			return nil, fmt.Errorf("codegen: %w", err)
		}
		g.templates = engine
	}
	return g, nil
}

// GenerateFunc emits a function returning tree.Root for tmpl. signature is
// a Go function name optionally followed by a parameter list, such as
// `Card(title string, count int)`; the parameters are in scope for every host
// expression of the template.
func (g *Generator) GenerateFunc(signature string, tmpl *ast.Template) (Func, error) {
	if tmpl == nil {
		return Func{}, errors.New("codegen: template is required")
	}
	name, params, err := parseSignature(signature)
	if err != nil {
		return Func{}, err
	}

	low := &lowerer{tmpl: tmpl, pkg: path.Base(g.treeImport)}
	expr, err := low.root()
	if err != nil {
		return Func{}, err
	}

	var body bytes.Buffer
	if err := format.Node(&body, gotoken.NewFileSet(), expr); err != nil {
		return Func{}, fmt.Errorf("codegen: print %s: %w", name, err)
	}
	printed, err := breakKeyedLiterals(body.Bytes())
	if err != nil {
		return Func{}, fmt.Errorf("codegen: print %s: %w", name, err)
	}
	src, err := format.Source([]byte(fmt.Sprintf("func %s(%s) %s.Root {\n\treturn %s\n}\n", name, params, low.pkg, printed)))
	if err != nil {
		return Func{}, fmt.Errorf("codegen: format %s: %w", name, err)
	}
	return Func{Name: name, Source: string(src), Origin: tmpl.Name}, nil
}

// breakKeyedLiterals puts every element of a single-line keyed composite
// literal on its own line. The printer keeps position-less literals on one
// line, so the breaks are inserted into the printed text and left for gofmt
// to indent.
func breakKeyedLiterals(src []byte) ([]byte, error) {
	fset := gotoken.NewFileSet()
	expr, err := goparser.ParseExprFrom(fset, "", src, 0)
	if err != nil {
		return nil, err
	}
	type insertion struct {
		offset int
		text   string
	}
	offset := func(pos gotoken.Pos) int { return fset.Position(pos).Offset }
	line := func(pos gotoken.Pos) int { return fset.Position(pos).Line }

	var edits []insertion
	goast.Inspect(expr, func(n goast.Node) bool {
		lit, ok := n.(*goast.CompositeLit)
		if !ok || len(lit.Elts) == 0 || line(lit.Lbrace) != line(lit.Rbrace) {
			return true
		}
		if _, keyed := lit.Elts[0].(*goast.KeyValueExpr); !keyed {
			return true
		}
		edits = append(edits, insertion{offset(lit.Lbrace) + 1, "\n"})
		for _, elt := range lit.Elts[1:] {
			edits = append(edits, insertion{offset(elt.Pos()), "\n"})
		}
		edits = append(edits, insertion{offset(lit.Elts[len(lit.Elts)-1].End()), ",\n"})
		return true
	})
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].offset > edits[j].offset })

	out := append([]byte(nil), src...)
	for _, e := range edits {
		out = append(out[:e.offset], append([]byte(e.text), out[e.offset:]...)...)
	}
	return out, nil
}

// GenerateFile renders a gofmt'd Go file declaring funcs in package pkg.
func (g *Generator) GenerateFile(pkg string, funcs ...Func) ([]byte, error) {
	pkg = strings.TrimSpace(pkg)
	if !gotoken.IsIdentifier(pkg) {
		return nil, fmt.Errorf("codegen: invalid package name %q", pkg)
	}

	seen := map[string]bool{}
	sources := []string{}
	bodies := make([]string, 0, len(funcs))
	for _, fn := range funcs {
		if seen["func:"+fn.Name] {
			return nil, fmt.Errorf("codegen: duplicate function %q", fn.Name)
		}
		seen["func:"+fn.Name] = true
		bodies = append(bodies, fn.Source)
		if fn.Origin != "" && !seen["src:"+fn.Origin] {
			seen["src:"+fn.Origin] = true
			sources = append(sources, fn.Origin)
		}
	}

	imports := []string{}
	if len(funcs) > 0 {
		imports = append(imports, g.treeImport)
	}
	for _, imp := range g.imports {
		if !seen["imp:"+imp] && imp != g.treeImport {
			imports = append(imports, imp)
		}
		seen["imp:"+imp] = true
	}
	sort.Strings(imports)

	rendered, err := g.templates.RenderTemplate("file.go", map[string]any{
		"pkg":     pkg,
		"imports": imports,
		"sources": sources,
		"funcs":   bodies,
	})
	if err != nil {
		return nil, fmt.Errorf("codegen: render file: %w", err)
	}
	out, err := format.Source([]byte(rendered))
	if err != nil {
		return nil, fmt.Errorf("codegen: format generated file: %w", err)
	}
	return out, nil
}

// parseSignature splits `Name(params)` and checks it is a valid Go function
// header.
func parseSignature(signature string) (string, string, error) {
	signature = strings.TrimSpace(signature)
	name, params := signature, ""
	if i := strings.IndexByte(signature, '('); i >= 0 {
		if !strings.HasSuffix(signature, ")") {
			return "", "", fmt.Errorf("codegen: malformed signature %q", signature)
		}
		name = strings.TrimSpace(signature[:i])
		params = strings.TrimSpace(signature[i+1 : len(signature)-1])
	}
	if !gotoken.IsIdentifier(name) {
		return "", "", fmt.Errorf("codegen: invalid function name %q", name)
	}
	header := fmt.Sprintf("package p\nfunc %s(%s) {}\n", name, params)
	if _, err := goparser.ParseFile(gotoken.NewFileSet(), "", header, 0); err != nil {
		return "", "", fmt.Errorf("codegen: malformed signature %q: %w", signature, err)
	}
	return name, params, nil
}
