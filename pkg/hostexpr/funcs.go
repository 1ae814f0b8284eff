package hostexpr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Func is a callable exposed to expressions. Arguments arrive normalized
// (int64, float64, string, bool, nil or the raw host value).
type Func func(args ...any) (any, error)

func builtins() map[string]Func {
	return map[string]Func{
		"len":    fnLen,
		"upper":  stringFunc(strings.ToUpper),
		"lower":  stringFunc(strings.ToLower),
		"trim":   stringFunc(strings.TrimSpace),
		"format": fnFormat,
		"string": fnString,
		"int":    fnInt,
		"float":  fnFloat,
	}
}

func arity(args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}
	return nil
}

func stringFunc(fn func(string) string) Func {
	return func(args ...any) (any, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		return fn(coerceString(args[0])), nil
	}
}

func fnLen(args ...any) (any, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case nil:
		return int64(0), nil
	case string:
		return int64(utf8.RuneCountInString(v)), nil
	}
	rv := reflect.ValueOf(args[0])
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return int64(rv.Len()), nil
	}
	return nil, fmt.Errorf("%w: len of %s", ErrType, typeName(args[0]))
}

func fnFormat(args ...any) (any, error) {
	if len(args) == 0 {
		return nil, errors.New("expected a format string")
	}
	format, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: format string is %s", ErrType, typeName(args[0]))
	}
	return fmt.Sprintf(format, args[1:]...), nil
}

func fnString(args ...any) (any, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	return coerceString(args[0]), nil
}

func fnInt(args ...any) (any, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	n, ok := coerceInt(args[0])
	if !ok {
		return nil, fmt.Errorf("%w: cannot convert %s to int", ErrType, typeName(args[0]))
	}
	return n, nil
}

func fnFloat(args ...any) (any, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	f, ok := coerceFloat(args[0])
	if !ok {
		return nil, fmt.Errorf("%w: cannot convert %s to float", ErrType, typeName(args[0]))
	}
	return f, nil
}
