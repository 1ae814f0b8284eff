package tree

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Char marks a single character so it converts to a one-character Text.
// Plain rune values are int32 and convert to Int.
type Char rune

func (c Char) String() string {
	return string(rune(c))
}

// AttrOf converts a host value into an AttrValue:
//   - every signed and unsigned integer width becomes Int (uint64 values above
//     math.MaxInt64 wrap; there is no overflow check)
//   - float32 and float64 become Float
//   - bool becomes Bool
//   - string, []byte, Char and fmt.Stringer become Text
//   - an AttrValue passes through; a Reactive is invoked once
//   - nil becomes an empty Text, anything else its fmt.Sprint form
func AttrOf(v any) AttrValue {
	switch x := v.(type) {
	case nil:
		return Text("")
	case Reactive:
		return x.Eval()
	case AttrValue:
		return x
	case string:
		return Text(x)
	case []byte:
		return Text(string(x))
	case Char:
		return Text(string(rune(x)))
	case bool:
		return Bool(x)
	case int:
		return Int(x)
	case int8:
		return Int(x)
	case int16:
		return Int(x)
	case int32:
		return Int(x)
	case int64:
		return Int(x)
	case uint:
		return Int(x)
	case uint8:
		return Int(x)
	case uint16:
		return Int(x)
	case uint32:
		return Int(x)
	case uint64:
		return Int(x)
	case uintptr:
		return Int(x)
	case float32:
		return Float(x)
	case float64:
		return Float(x)
	case fmt.Stringer:
		return Text(x.String())
	default:
		return Text(fmt.Sprint(v))
	}
}

// NodeOf converts a host value into a Node. Nodes pass through (a
// ReactiveChild is invoked once); every other value renders as a Literal of its
// textual form.
func NodeOf(v any) Node {
	switch x := v.(type) {
	case nil:
		return Literal("")
	case ReactiveChild:
		return x.Eval()
	case Node:
		return x
	default:
		return Literal(Format(AttrOf(v)))
	}
}

// Format renders an attribute value as text. Floats use the shortest
// representation that round-trips.
func Format(v AttrValue) string {
	switch x := v.(type) {
	case nil:
		return ""
	case Text:
		return string(x)
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case Float:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(x))
	case Reactive:
		return Format(materializeAttr(x))
	default:
		return fmt.Sprint(v)
	}
}

// Coerce converts v to the requested kind. Float to Int truncates toward zero
// (NaN becomes 0 and infinities clamp to the int64 range), Int to Float widens,
// Bool maps to 0/1, numbers become Bool when non-zero, and Text is parsed with
// strconv. When a conversion is impossible Coerce returns v unchanged and
// false.
func Coerce(v AttrValue, kind Kind) (AttrValue, bool) {
	if r, ok := v.(Reactive); ok {
		v = materializeAttr(r)
	}
	if v == nil {
		v = Text("")
	}
	switch kind {
	case KindAny, KindReactive:
		return v, true
	case KindText:
		return Text(Format(v)), true
	case KindInt:
		return toInt(v)
	case KindFloat:
		return toFloat(v)
	case KindBool:
		return toBool(v)
	default:
		return v, false
	}
}

// CoerceTo converts a host value with AttrOf and then to kind, keeping the
// AttrOf result when the kind conversion fails.
func CoerceTo(kind Kind, v any) AttrValue {
	attr := AttrOf(v)
	if out, ok := Coerce(attr, kind); ok {
		return out
	}
	return attr
}

func toInt(v AttrValue) (AttrValue, bool) {
	switch x := v.(type) {
	case Int:
		return x, true
	case Float:
		return Int(truncate(float64(x))), true
	case Bool:
		if x {
			return Int(1), true
		}
		return Int(0), true
	case Text:
		s := strings.TrimSpace(string(x))
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(n), true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Int(truncate(f)), true
		}
	}
	return v, false
}

func truncate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}

func toFloat(v AttrValue) (AttrValue, bool) {
	switch x := v.(type) {
	case Float:
		return x, true
	case Int:
		return Float(x), true
	case Bool:
		if x {
			return Float(1), true
		}
		return Float(0), true
	case Text:
		if f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64); err == nil {
			return Float(f), true
		}
	}
	return v, false
}

func toBool(v AttrValue) (AttrValue, bool) {
	switch x := v.(type) {
	case Bool:
		return x, true
	case Int:
		return Bool(x != 0), true
	case Float:
		return Bool(x != 0), true
	case Text:
		if b, err := strconv.ParseBool(strings.TrimSpace(string(x))); err == nil {
			return Bool(b), true
		}
	}
	return v, false
}

// Matches reports whether subject equals any of the patterns. Int and Float
// compare numerically; other variants compare with AttrEqual.
func Matches(subject any, patterns ...AttrValue) bool {
	value := AttrOf(subject)
	for _, pattern := range patterns {
		if matchOne(value, pattern) {
			return true
		}
	}
	return false
}

func matchOne(value, pattern AttrValue) bool {
	vf, vnum := numeric(value)
	pf, pnum := numeric(pattern)
	if vnum && pnum {
		vi, vInt := value.(Int)
		pi, pInt := pattern.(Int)
		if vInt && pInt {
			return vi == pi
		}
		return vf == pf
	}
	return AttrEqual(value, pattern)
}

func numeric(v AttrValue) (float64, bool) {
	switch x := v.(type) {
	case Int:
		return float64(x), true
	case Float:
		return float64(x), true
	default:
		return 0, false
	}
}
