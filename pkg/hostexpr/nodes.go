package hostexpr

import (
	"fmt"
	"math"
)

type exprNode interface {
	eval(env Env) (any, error)
	idents(visit func(string))
}

type exprLiteral struct {
	value any
}

func (n exprLiteral) eval(Env) (any, error) { return n.value, nil }
func (exprLiteral) idents(func(string))     {}

type exprIdent struct {
	name string
	pos  int
}

func (n exprIdent) eval(env Env) (any, error) {
	value, ok := resolve(env, n.name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUndefined, n.name)
	}
	return normalize(value), nil
}

func (n exprIdent) idents(visit func(string)) { visit(n.name) }

type exprOr struct {
	left  exprNode
	right exprNode
}

func (n exprOr) eval(env Env) (any, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return nil, err
	}
	if truthy(left) {
		return true, nil
	}
	right, err := n.right.eval(env)
	if err != nil {
		return nil, err
	}
	return truthy(right), nil
}

func (n exprOr) idents(visit func(string)) {
	n.left.idents(visit)
	n.right.idents(visit)
}

type exprAnd struct {
	left  exprNode
	right exprNode
}

func (n exprAnd) eval(env Env) (any, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return nil, err
	}
	if !truthy(left) {
		return false, nil
	}
	right, err := n.right.eval(env)
	if err != nil {
		return nil, err
	}
	return truthy(right), nil
}

func (n exprAnd) idents(visit func(string)) {
	n.left.idents(visit)
	n.right.idents(visit)
}

type exprNot struct {
	inner exprNode
}

func (n exprNot) eval(env Env) (any, error) {
	value, err := n.inner.eval(env)
	if err != nil {
		return nil, err
	}
	return !truthy(value), nil
}

func (n exprNot) idents(visit func(string)) { n.inner.idents(visit) }

type exprNeg struct {
	inner exprNode
}

func (n exprNeg) eval(env Env) (any, error) {
	value, err := n.inner.eval(env)
	if err != nil {
		return nil, err
	}
	switch v := unwrap(value).(type) {
	case int64:
		return -v, nil
	case float64:
		return -v, nil
	default:
		return nil, fmt.Errorf("%w: cannot negate %s", ErrType, typeName(value))
	}
}

func (n exprNeg) idents(visit func(string)) { n.inner.idents(visit) }

type exprBinary struct {
	op    tokenKind
	raw   string
	left  exprNode
	right exprNode
}

func (n exprBinary) idents(visit func(string)) {
	n.left.idents(visit)
	n.right.idents(visit)
}

func (n exprBinary) eval(env Env) (any, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return nil, err
	}
	right, err := n.right.eval(env)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case tokenEq:
		return equal(left, right), nil
	case tokenNeq:
		return !equal(left, right), nil
	case tokenLt, tokenLte, tokenGt, tokenGte:
		return n.order(left, right)
	case tokenPlus:
		_, ls := left.(string)
		_, rs := right.(string)
		if ls || rs {
			return coerceString(left) + coerceString(right), nil
		}
	}
	return n.arithmetic(left, right)
}

func (n exprBinary) arithmetic(left, right any) (any, error) {
	left, right = unwrap(left), unwrap(right)
	if !isNumber(left) || !isNumber(right) {
		return nil, fmt.Errorf("%w: %s %s %s", ErrType, typeName(left), n.raw, typeName(right))
	}
	li, lok := left.(int64)
	ri, rok := right.(int64)
	if lok && rok {
		switch n.op {
		case tokenPlus:
			return li + ri, nil
		case tokenMinus:
			return li - ri, nil
		case tokenStar:
			return li * ri, nil
		case tokenSlash:
			if ri == 0 {
				return nil, ErrDivisionByZero
			}
			return li / ri, nil
		case tokenPercent:
			if ri == 0 {
				return nil, ErrDivisionByZero
			}
			return li % ri, nil
		}
	}

	lf, _ := coerceFloat(left)
	rf, _ := coerceFloat(right)
	switch n.op {
	case tokenPlus:
		return lf + rf, nil
	case tokenMinus:
		return lf - rf, nil
	case tokenStar:
		return lf * rf, nil
	case tokenSlash:
		if rf == 0 {
			return nil, ErrDivisionByZero
		}
		return lf / rf, nil
	case tokenPercent:
		if rf == 0 {
			return nil, ErrDivisionByZero
		}
		return math.Mod(lf, rf), nil
	}
	return nil, fmt.Errorf("%w: unsupported operator %q", ErrType, n.raw)
}

func (n exprBinary) order(left, right any) (any, error) {
	left, right = unwrap(left), unwrap(right)
	var cmp int
	switch {
	case isNumber(left) && isNumber(right):
		li, lok := left.(int64)
		ri, rok := right.(int64)
		if lok && rok {
			cmp = compareOrdered(li, ri)
		} else {
			lf, _ := coerceFloat(left)
			rf, _ := coerceFloat(right)
			cmp = compareOrdered(lf, rf)
		}
	default:
		ls, lok := left.(string)
		rs, rok := right.(string)
		if !lok || !rok {
			return nil, fmt.Errorf("%w: %s %s %s", ErrType, typeName(left), n.raw, typeName(right))
		}
		cmp = compareOrdered(ls, rs)
	}

	switch n.op {
	case tokenLt:
		return cmp < 0, nil
	case tokenLte:
		return cmp <= 0, nil
	case tokenGt:
		return cmp > 0, nil
	default:
		return cmp >= 0, nil
	}
}

func compareOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// equal compares numbers numerically and everything else by value. Values
// of different types are unequal.
func equal(left, right any) bool {
	if ln, rn := unwrap(left), unwrap(right); isNumber(ln) && isNumber(rn) {
		li, lok := ln.(int64)
		ri, rok := rn.(int64)
		if lok && rok {
			return li == ri
		}
		lf, _ := coerceFloat(ln)
		rf, _ := coerceFloat(rn)
		return lf == rf
	}
	if l, ok := textOf(left); ok {
		r, ok := textOf(right)
		return ok && l == r
	}
	switch l := left.(type) {
	case nil:
		return right == nil
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	}
	return false
}

// textOf reports the text of strings and fmt.Stringer values.
func textOf(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

type exprCall struct {
	name string
	fn   Func
	args []exprNode
}

func (n exprCall) eval(env Env) (any, error) {
	args := make([]any, len(n.args))
	for i, arg := range n.args {
		value, err := arg.eval(env)
		if err != nil {
			return nil, err
		}
		args[i] = value
	}
	out, err := n.fn(args...)
	if err != nil {
		return nil, fmt.Errorf("hostexpr: %s: %w", n.name, err)
	}
	return normalize(out), nil
}

func (n exprCall) idents(visit func(string)) {
	for _, arg := range n.args {
		arg.idents(visit)
	}
}
