package tree

import (
	"fmt"
	"strings"
)

// Kind enumerates attribute value shapes. Tag schemas use it to declare the
// expected type of an attribute; KindAny accepts everything.
type Kind int

const (
	KindAny Kind = iota
	KindText
	KindInt
	KindFloat
	KindBool
	KindReactive
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindReactive:
		return "reactive"
	default:
		return "any"
	}
}

// ParseKind maps a schema spelling onto a Kind. Aliases mirror the names
// commonly used in JSON/YAML schema documents.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "any":
		return KindAny, nil
	case "text", "string":
		return KindText, nil
	case "int", "integer":
		return KindInt, nil
	case "float", "number":
		return KindFloat, nil
	case "bool", "boolean":
		return KindBool, nil
	default:
		return KindAny, fmt.Errorf("tree: unknown attribute kind %q", raw)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so schema files can spell
// kinds as strings.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// AttrValue is an attribute value. The concrete variants are Text, Int, Float,
// Bool and Reactive.
type AttrValue interface {
	Kind() Kind
	attrValue()
}

// Text is a literal string attribute.
type Text string

// Int is a 64-bit signed integer attribute.
type Int int64

// Float is a 64-bit floating point attribute.
type Float float64

// Bool is a boolean attribute.
type Bool bool

func (Text) Kind() Kind  { return KindText }
func (Int) Kind() Kind   { return KindInt }
func (Float) Kind() Kind { return KindFloat }
func (Bool) Kind() Kind  { return KindBool }

func (Text) attrValue()  {}
func (Int) attrValue()   {}
func (Float) attrValue() {}
func (Bool) attrValue()  {}

// AttrFunc produces the current value of a Reactive attribute.
type AttrFunc func() AttrValue

// Reactive is an attribute whose value is computed on demand. Copies share the
// same evaluator.
type Reactive struct {
	fn *AttrFunc
}

// NewReactive wraps fn as a reactive attribute value.
func NewReactive(fn func() AttrValue) Reactive {
	f := AttrFunc(fn)
	return Reactive{fn: &f}
}

func (Reactive) Kind() Kind { return KindReactive }
func (Reactive) attrValue() {}

// Eval invokes the evaluator. A zero Reactive evaluates to an empty Text.
func (r Reactive) Eval() AttrValue {
	if r.fn == nil || *r.fn == nil {
		return Text("")
	}
	out := (*r.fn)()
	if out == nil {
		return Text("")
	}
	return out
}

// IsReactive reports whether v defers its value to an evaluator.
func IsReactive(v AttrValue) bool {
	_, ok := v.(Reactive)
	return ok
}
