package tree

// Node is one entry of a built template tree. The concrete variants are
// *Element, Literal and ReactiveChild.
type Node interface {
	node()
}

// Element is a tagged node with attributes and ordered children. Attribute
// keys are unique; builders insert sequentially so a repeated key keeps the
// last value.
type Element struct {
	Tag      string
	Attrs    map[string]AttrValue
	Children []Node
}

func (*Element) node() {}

// NewElement constructs an Element, allocating the attribute map when attrs is
// nil so callers can insert without checks.
func NewElement(tag string, attrs map[string]AttrValue, children ...Node) *Element {
	if attrs == nil {
		attrs = make(map[string]AttrValue)
	}
	return &Element{Tag: tag, Attrs: attrs, Children: children}
}

// Attr returns the attribute stored under name.
func (e *Element) Attr(name string) (AttrValue, bool) {
	if e == nil || e.Attrs == nil {
		return nil, false
	}
	v, ok := e.Attrs[name]
	return v, ok
}

// SetAttr inserts or overwrites an attribute.
func (e *Element) SetAttr(name string, value AttrValue) {
	if e.Attrs == nil {
		e.Attrs = make(map[string]AttrValue)
	}
	e.Attrs[name] = value
}

// Literal is static text content.
type Literal string

func (Literal) node() {}

// NodeFunc produces the content of a ReactiveChild.
type NodeFunc func() Node

// ReactiveChild is a child whose content is computed on demand. Copies of a
// ReactiveChild share the same evaluator.
type ReactiveChild struct {
	fn *NodeFunc
}

func (ReactiveChild) node() {}

// NewReactiveChild wraps fn as a reactive child.
func NewReactiveChild(fn func() Node) ReactiveChild {
	f := NodeFunc(fn)
	return ReactiveChild{fn: &f}
}

// Eval invokes the evaluator. A zero ReactiveChild evaluates to an empty
// Literal.
func (r ReactiveChild) Eval() Node {
	if r.fn == nil || *r.fn == nil {
		return Literal("")
	}
	out := (*r.fn)()
	if out == nil {
		return Literal("")
	}
	return out
}

// Walk visits node and its descendants depth first. Returning false from fn
// skips the children of the visited node. Reactive children are visited but
// never invoked.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || fn == nil {
		return
	}
	if !fn(node) {
		return
	}
	if el, ok := node.(*Element); ok && el != nil {
		for _, child := range el.Children {
			Walk(child, fn)
		}
	}
}
