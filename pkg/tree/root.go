package tree

// Root wraps the outermost node of a template. A nil Content means the
// template had no content at all, which is distinct from an element with no
// children.
type Root struct {
	Content Node
}

// New wraps node as the root content.
func New(node Node) Root {
	return Root{Content: node}
}

// Empty returns a root without content.
func Empty() Root {
	return Root{}
}

// IsEmpty reports whether the root holds no content.
func (r Root) IsEmpty() bool {
	return r.Content == nil
}

// Equal compares two roots structurally. Two empty roots are equal; an empty
// root never equals a root with content.
func (r Root) Equal(other Root) bool {
	if r.Content == nil || other.Content == nil {
		return r.Content == nil && other.Content == nil
	}
	return Equal(r.Content, other.Content)
}

// Clone copies the static structure of the root, sharing evaluators.
func (r Root) Clone() Root {
	if r.Content == nil {
		return Root{}
	}
	return Root{Content: Clone(r.Content)}
}

// Materialize returns a copy of the root with every reactive value invoked
// once.
func (r Root) Materialize() Root {
	if r.Content == nil {
		return Root{}
	}
	return Root{Content: Materialize(r.Content)}
}
