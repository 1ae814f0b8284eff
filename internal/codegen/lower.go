package codegen

import (
	"errors"
	"fmt"
	goast "go/ast"
	"go/parser"
	"go/scanner"
	gotoken "go/token"
	"strconv"

	"github.com/goliatone/go-trs/pkg/ast"
	"github.com/goliatone/go-trs/pkg/diag"
	"github.com/goliatone/go-trs/pkg/tree"
)

// subjectVar holds the evaluated subject inside a lowered match.
const subjectVar = "trsSubject"

// lowerer turns one template into a Go expression of type tree.Root.
type lowerer struct {
	tmpl *ast.Template
	pkg  string // identifier the tree package is imported as
}

func (l *lowerer) root() (goast.Expr, error) {
	if l.tmpl.Root == nil {
		return l.call("Empty"), nil
	}
	node, err := l.node(l.tmpl.Root)
	if err != nil {
		return nil, err
	}
	return l.call("New", node), nil
}

func (l *lowerer) node(n ast.Node) (goast.Expr, error) {
	switch x := n.(type) {
	case *ast.TextNode:
		return l.call("Literal", strLit(x.Value)), nil
	case *ast.ExpressionNode:
		ex, err := l.hostExpr(x.Expr)
		if err != nil {
			return nil, err
		}
		body := l.call("NodeOf", ex)
		return l.call("NewReactiveChild", l.closure("Node", body)), nil
	case *ast.ElementNode:
		return l.element(x)
	default:
		return nil, fmt.Errorf("codegen: unsupported node %T", n)
	}
}

func (l *lowerer) element(el *ast.ElementNode) (goast.Expr, error) {
	// Later assignments win; a Go map literal cannot repeat a key.
	last := make(map[string]int, len(el.Attrs))
	for i, attr := range el.Attrs {
		last[attr.Name] = i
	}

	var attrs goast.Expr = goast.NewIdent("nil")
	if len(el.Attrs) > 0 {
		lit := &goast.CompositeLit{
			Type: &goast.MapType{Key: goast.NewIdent("string"), Value: l.sel("AttrValue")},
		}
		emitted := map[string]bool{}
		for _, attr := range el.Attrs {
			if emitted[attr.Name] {
				continue
			}
			emitted[attr.Name] = true
			value, err := l.attr(el.Attrs[last[attr.Name]])
			if err != nil {
				return nil, err
			}
			lit.Elts = append(lit.Elts, &goast.KeyValueExpr{Key: strLit(attr.Name), Value: value})
		}
		attrs = lit
	}

	args := []goast.Expr{strLit(el.Tag), attrs}
	for _, child := range el.Children {
		cx, err := l.node(child)
		if err != nil {
			return nil, err
		}
		args = append(args, cx)
	}
	return l.call("NewElement", args...), nil
}

func (l *lowerer) attr(attr ast.Attr) (goast.Expr, error) {
	switch v := attr.Value.(type) {
	case *ast.LiteralExpr:
		return l.literal(v.Value)
	case *ast.DynamicExpr:
		ex, err := l.value(v.Value)
		if err != nil {
			return nil, err
		}
		var body goast.Expr
		if attr.Kind == tree.KindAny {
			body = l.call("AttrOf", ex)
		} else {
			body = l.call("CoerceTo", l.kind(attr.Kind), ex)
		}
		return l.call("NewReactive", l.closure("AttrValue", body)), nil
	default:
		return nil, fmt.Errorf("codegen: unsupported attribute value %T", attr.Value)
	}
}

func (l *lowerer) literal(v tree.AttrValue) (goast.Expr, error) {
	switch x := v.(type) {
	case tree.Text:
		return l.call("Text", strLit(string(x))), nil
	case tree.Int:
		return l.call("Int", &goast.BasicLit{Kind: gotoken.INT, Value: strconv.FormatInt(int64(x), 10)}), nil
	case tree.Float:
		return l.call("Float", &goast.BasicLit{Kind: gotoken.FLOAT, Value: strconv.FormatFloat(float64(x), 'g', -1, 64)}), nil
	case tree.Bool:
		return l.call("Bool", goast.NewIdent(strconv.FormatBool(bool(x)))), nil
	default:
		return nil, fmt.Errorf("codegen: unsupported literal %T", v)
	}
}

func (l *lowerer) kind(k tree.Kind) goast.Expr {
	names := map[tree.Kind]string{
		tree.KindText:  "KindText",
		tree.KindInt:   "KindInt",
		tree.KindFloat: "KindFloat",
		tree.KindBool:  "KindBool",
	}
	if name, ok := names[k]; ok {
		return l.sel(name)
	}
	return l.sel("KindAny")
}

func (l *lowerer) value(v ast.Value) (goast.Expr, error) {
	switch x := v.(type) {
	case *ast.HostExpr:
		return l.hostExpr(x.Expr)
	case *ast.IfExpr:
		return l.ifExpr(x)
	case *ast.MatchExpr:
		return l.matchExpr(x)
	default:
		return nil, fmt.Errorf("codegen: unsupported value %T", v)
	}
}

// ifExpr lowers to func() any { if cond { return a }; return b }().
func (l *lowerer) ifExpr(x *ast.IfExpr) (goast.Expr, error) {
	cond, err := l.hostExpr(x.Cond)
	if err != nil {
		return nil, err
	}
	then, err := l.value(x.Then)
	if err != nil {
		return nil, err
	}
	otherwise, err := l.value(x.Else)
	if err != nil {
		return nil, err
	}
	return iife(
		&goast.IfStmt{
			Cond: cond,
			Body: &goast.BlockStmt{List: []goast.Stmt{ret(then)}},
		},
		ret(otherwise),
	), nil
}

// matchExpr lowers to a switch over tree.Matches. Arms after the first
// wildcard can never run and are dropped.
func (l *lowerer) matchExpr(x *ast.MatchExpr) (goast.Expr, error) {
	subject, err := l.hostExpr(x.Subject)
	if err != nil {
		return nil, err
	}

	sw := &goast.SwitchStmt{
		Init: &goast.AssignStmt{
			Lhs: []goast.Expr{goast.NewIdent(subjectVar)},
			Tok: gotoken.DEFINE,
			Rhs: []goast.Expr{subject},
		},
		Body: &goast.BlockStmt{},
	}
	exhaustive := false
	for _, arm := range x.Arms {
		body, err := l.value(arm.Body)
		if err != nil {
			return nil, err
		}
		clause := &goast.CaseClause{Body: []goast.Stmt{ret(body)}}
		if arm.Wildcard {
			sw.Body.List = append(sw.Body.List, clause)
			exhaustive = true
			break
		}
		args := []goast.Expr{goast.NewIdent(subjectVar)}
		for _, p := range arm.Patterns {
			lit, err := l.literal(p)
			if err != nil {
				return nil, err
			}
			args = append(args, lit)
		}
		clause.List = []goast.Expr{l.call("Matches", args...)}
		sw.Body.List = append(sw.Body.List, clause)
	}
	if len(sw.Body.List) == 1 && exhaustive {
		init := sw.Init.(*goast.AssignStmt)
		init.Lhs[0] = goast.NewIdent("_")
		init.Tok = gotoken.ASSIGN
	}
	if exhaustive {
		return iife(sw), nil
	}
	return iife(sw, ret(goast.NewIdent("nil"))), nil
}

// hostExpr parses a span as a Go expression, reporting failures at the
// offending position of the template.
func (l *lowerer) hostExpr(span ast.Span) (goast.Expr, error) {
	ex, err := parser.ParseExprFrom(gotoken.NewFileSet(), "", span.Src, 0)
	if err == nil {
		return ex, nil
	}
	from, to, msg := span.From, span.To, err.Error()
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		offset := list[0].Pos.Offset
		from = min(span.From+offset, span.To)
		if from == span.To && from > span.From {
			from--
		}
		to = min(from+1, span.To)
		msg = list[0].Msg
	}
	return nil, diag.New(diag.ErrSyntax, l.tmpl.Name, l.tmpl.Source, from, to, "invalid Go expression: %s", msg)
}

func (l *lowerer) sel(name string) goast.Expr {
	return &goast.SelectorExpr{X: goast.NewIdent(l.pkg), Sel: goast.NewIdent(name)}
}

func (l *lowerer) call(name string, args ...goast.Expr) goast.Expr {
	return &goast.CallExpr{Fun: l.sel(name), Args: args}
}

// closure builds func() tree.<result> { return body }.
func (l *lowerer) closure(result string, body goast.Expr) goast.Expr {
	return &goast.FuncLit{
		Type: &goast.FuncType{
			Params:  &goast.FieldList{},
			Results: &goast.FieldList{List: []*goast.Field{{Type: l.sel(result)}}},
		},
		Body: &goast.BlockStmt{List: []goast.Stmt{ret(body)}},
	}
}

// iife builds func() any { stmts }().
func iife(stmts ...goast.Stmt) goast.Expr {
	return &goast.CallExpr{
		Fun: &goast.FuncLit{
			Type: &goast.FuncType{
				Params:  &goast.FieldList{},
				Results: &goast.FieldList{List: []*goast.Field{{Type: goast.NewIdent("any")}}},
			},
			Body: &goast.BlockStmt{List: stmts},
		},
	}
}

func ret(ex goast.Expr) goast.Stmt {
	return &goast.ReturnStmt{Results: []goast.Expr{ex}}
}

func strLit(s string) *goast.BasicLit {
	return &goast.BasicLit{Kind: gotoken.STRING, Value: strconv.Quote(s)}
}
