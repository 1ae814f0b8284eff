package ast

import "github.com/goliatone/go-trs/pkg/tree"

// Span is a byte range [From, To) of template source together with the text
// it covers. Host expressions are carried as spans and handed to the host
// unchanged.
type Span struct {
	From int
	To   int
	Src  string
}

// Template is the parse result of one template source. Root is nil when the
// source contained no node.
type Template struct {
	Name   string
	Source string
	Root   Node
}

// Node is a parsed template node: *ElementNode, *TextNode or *ExpressionNode.
type Node interface {
	Pos() Span
	node()
}

// ElementNode is `tag { members }`.
type ElementNode struct {
	Tag      string
	TagSpan  Span
	Attrs    []Attr
	Children []Node
	Span     Span
}

func (n *ElementNode) Pos() Span { return n.Span }
func (*ElementNode) node()       {}

// TextNode is a quoted text literal.
type TextNode struct {
	Value string
	Span  Span
}

func (n *TextNode) Pos() Span { return n.Span }
func (*TextNode) node()       {}

// ExpressionNode is a brace-delimited host expression used as a child.
type ExpressionNode struct {
	Expr Span
	Span Span
}

func (n *ExpressionNode) Pos() Span { return n.Span }
func (*ExpressionNode) node()       {}

// Attr is one `name: value` assignment, kept in source order. Kind is the
// schema kind declared for the attribute, tree.KindAny when undeclared.
type Attr struct {
	Name     string
	NameSpan Span
	Kind     tree.Kind
	Value    AttrExpr
}

// AttrExpr is the classified right-hand side of an attribute: *LiteralExpr or
// *DynamicExpr.
type AttrExpr interface {
	Pos() Span
	attrExpr()
}

// LiteralExpr is a value fixed at build time.
type LiteralExpr struct {
	Value tree.AttrValue
	Span  Span
}

func (e *LiteralExpr) Pos() Span { return e.Span }
func (*LiteralExpr) attrExpr()   {}

// DynamicExpr defers its value to evaluation time.
type DynamicExpr struct {
	Value Value
	Span  Span
}

func (e *DynamicExpr) Pos() Span { return e.Span }
func (*DynamicExpr) attrExpr()   {}

// Value is the shape of a dynamic expression: *HostExpr, *IfExpr or
// *MatchExpr.
type Value interface {
	Pos() Span
	value()
}

// HostExpr is an opaque host-language expression.
type HostExpr struct {
	Expr Span
}

func (e *HostExpr) Pos() Span { return e.Expr }
func (*HostExpr) value()      {}

// IfExpr is `if cond { then } else { else }`. An else-if chain nests another
// *IfExpr in Else.
type IfExpr struct {
	Cond Span
	Then Value
	Else Value
	Span Span
}

func (e *IfExpr) Pos() Span { return e.Span }
func (*IfExpr) value()      {}

// MatchExpr is `match subject { pattern => body, ... }`. Arms are tried in
// order; parsing guarantees a wildcard arm exists.
type MatchExpr struct {
	Subject Span
	Arms    []MatchArm
	Span    Span
}

func (e *MatchExpr) Pos() Span { return e.Span }
func (*MatchExpr) value()      {}

// MatchArm is one `p1 | p2 => body` arm. Wildcard marks `_`.
type MatchArm struct {
	Patterns []tree.AttrValue
	Wildcard bool
	Body     Value
	Span     Span
}
