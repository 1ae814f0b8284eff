package hostexpr

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// normalize maps host values onto the evaluator's working set: int64,
// float64, string, bool and nil. Values implementing fmt.Stringer keep their
// type so the tree conversions see them as text; operators unwrap them on
// use. Other named types are unwrapped by kind and anything else passes
// through untouched.
func normalize(value any) any {
	switch v := value.(type) {
	case nil, int64, float64, string, bool:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float32:
		return float64(v)
	case []byte:
		return string(v)
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil
		}
		return v
	}
	return unwrap(value)
}

// unwrap converts a named scalar to its underlying working-set value by
// kind. Nil pointers, maps, slices and funcs become nil.
func unwrap(value any) any {
	switch value.(type) {
	case nil, int64, float64, string, bool:
		return value
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		if rv.IsNil() {
			return nil
		}
	}
	return value
}

func truthy(value any) bool {
	switch v := unwrap(value).(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(value)
	}
}

func coerceInt(value any) (int64, bool) {
	switch v := unwrap(value).(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), true
		}
	}
	return 0, false
}

func coerceFloat(value any) (float64, bool) {
	switch v := unwrap(value).(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "nil"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func isNumber(value any) bool {
	switch value.(type) {
	case int64, float64:
		return true
	}
	return false
}

// Truthy reports whether value counts as true in a condition. Blank strings
// and zero numbers are false.
func Truthy(value any) bool {
	return truthy(normalize(value))
}
