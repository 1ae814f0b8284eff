package ast

// Inspect visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || fn == nil {
		return
	}
	if !fn(n) {
		return
	}
	if el, ok := n.(*ElementNode); ok {
		for _, child := range el.Children {
			Inspect(child, fn)
		}
	}
}

// HostSpans returns every host-expression span reachable from n. An element's
// attribute spans come before its children's.
func HostSpans(n Node) []Span {
	var spans []Span
	Inspect(n, func(node Node) bool {
		switch x := node.(type) {
		case *ExpressionNode:
			spans = append(spans, x.Expr)
		case *ElementNode:
			for _, attr := range x.Attrs {
				if dyn, ok := attr.Value.(*DynamicExpr); ok {
					spans = appendValueSpans(spans, dyn.Value)
				}
			}
		}
		return true
	})
	return spans
}

func appendValueSpans(spans []Span, v Value) []Span {
	switch x := v.(type) {
	case *HostExpr:
		spans = append(spans, x.Expr)
	case *IfExpr:
		spans = append(spans, x.Cond)
		spans = appendValueSpans(spans, x.Then)
		spans = appendValueSpans(spans, x.Else)
	case *MatchExpr:
		spans = append(spans, x.Subject)
		for _, arm := range x.Arms {
			spans = appendValueSpans(spans, arm.Body)
		}
	}
	return spans
}
