package tree

// Equal compares nodes structurally. Elements match on tag, attributes and
// children; literals on their text. Reactive children cannot be compared
// without invoking them, so any comparison involving one reports false, even
// against itself.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case Literal:
		y, ok := b.(Literal)
		return ok && x == y
	case *Element:
		y, ok := b.(*Element)
		if !ok || x == nil || y == nil {
			return ok && x == nil && y == nil
		}
		return elementEqual(x, y)
	default:
		return false
	}
}

func elementEqual(a, b *Element) bool {
	if a.Tag != b.Tag {
		return false
	}
	if len(a.Attrs) != len(b.Attrs) {
		return false
	}
	for key, av := range a.Attrs {
		bv, ok := b.Attrs[key]
		if !ok || !AttrEqual(av, bv) {
			return false
		}
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// AttrEqual compares attribute values of the same variant. Reactive values
// never compare equal.
func AttrEqual(a, b AttrValue) bool {
	switch x := a.(type) {
	case Text:
		y, ok := b.(Text)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		return ok && x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	default:
		return false
	}
}

// SameEvaluator reports whether two reactive values share one evaluator. It
// is the identity comparison for the variants Equal refuses to compare.
func SameEvaluator(a, b any) bool {
	switch x := a.(type) {
	case Reactive:
		y, ok := b.(Reactive)
		return ok && x.fn != nil && x.fn == y.fn
	case ReactiveChild:
		y, ok := b.(ReactiveChild)
		return ok && x.fn != nil && x.fn == y.fn
	default:
		return false
	}
}

// Clone copies the static structure of node. Reactive values are copied by
// reference so the clone shares their evaluators; this is always legal for
// both evaluator-bearing variants.
func Clone(node Node) Node {
	switch n := node.(type) {
	case *Element:
		if n == nil {
			return n
		}
		out := &Element{Tag: n.Tag}
		if n.Attrs != nil {
			out.Attrs = make(map[string]AttrValue, len(n.Attrs))
			for key, value := range n.Attrs {
				out.Attrs[key] = value
			}
		}
		if n.Children != nil {
			out.Children = make([]Node, len(n.Children))
			for i, child := range n.Children {
				out.Children[i] = Clone(child)
			}
		}
		return out
	default:
		return node
	}
}

// maxFlatten bounds how many nested evaluators Materialize follows for a
// single value.
const maxFlatten = 16

// Materialize returns a static copy of node, invoking each reactive value
// once. The original tree is left untouched.
func Materialize(node Node) Node {
	switch n := node.(type) {
	case *Element:
		if n == nil {
			return n
		}
		out := &Element{Tag: n.Tag, Attrs: make(map[string]AttrValue, len(n.Attrs))}
		for key, value := range n.Attrs {
			out.Attrs[key] = materializeAttr(value)
		}
		if len(n.Children) > 0 {
			out.Children = make([]Node, len(n.Children))
			for i, child := range n.Children {
				out.Children[i] = Materialize(child)
			}
		}
		return out
	case ReactiveChild:
		current := Node(n)
		for depth := 0; depth < maxFlatten; depth++ {
			rc, ok := current.(ReactiveChild)
			if !ok {
				return Materialize(current)
			}
			current = rc.Eval()
		}
		return Literal("")
	default:
		return node
	}
}

func materializeAttr(value AttrValue) AttrValue {
	for depth := 0; depth < maxFlatten; depth++ {
		r, ok := value.(Reactive)
		if !ok {
			return value
		}
		value = r.Eval()
	}
	return Text("")
}
