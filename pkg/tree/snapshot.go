package tree

import (
	"encoding/json"
	"math"
)

// Snapshot is a serialisable view of a tree. Exactly one of Tag or Text is
// set for static nodes; Reactive marks a reactive child that was not
// invoked.
type Snapshot struct {
	Tag      string         `json:"tag,omitempty" yaml:"tag,omitempty"`
	Text     *string        `json:"text,omitempty" yaml:"text,omitempty"`
	Attrs    map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Children []*Snapshot    `json:"children,omitempty" yaml:"children,omitempty"`
	Reactive bool           `json:"reactive,omitempty" yaml:"reactive,omitempty"`
}

// SnapshotOf captures node without invoking any evaluator. Call Materialize
// first to capture evaluated values instead.
func SnapshotOf(node Node) *Snapshot {
	switch n := node.(type) {
	case nil:
		return nil
	case Literal:
		text := string(n)
		return &Snapshot{Text: &text}
	case ReactiveChild:
		return &Snapshot{Reactive: true}
	case *Element:
		if n == nil {
			return nil
		}
		out := &Snapshot{Tag: n.Tag}
		if len(n.Attrs) > 0 {
			out.Attrs = make(map[string]any, len(n.Attrs))
			for key, value := range n.Attrs {
				out.Attrs[key] = snapshotAttr(value)
			}
		}
		for _, child := range n.Children {
			out.Children = append(out.Children, SnapshotOf(child))
		}
		return out
	default:
		return nil
	}
}

// snapshotAttr maps a value onto plain Go types. Non-finite floats become
// their Format text since JSON has no encoding for them, and a reactive value
// becomes a fresh {"reactive": true} map.
func snapshotAttr(value AttrValue) any {
	switch v := value.(type) {
	case Text:
		return string(v)
	case Int:
		return int64(v)
	case Float:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return Format(v)
		}
		return float64(v)
	case Bool:
		return bool(v)
	default:
		return map[string]any{"reactive": true}
	}
}

// Snapshot captures the root content; an empty root yields nil.
func (r Root) Snapshot() *Snapshot {
	return SnapshotOf(r.Content)
}

// MarshalJSON encodes the root as {"content": <snapshot or null>}.
func (r Root) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Content *Snapshot `json:"content"`
	}{Content: r.Snapshot()})
}
