package hostexpr

import (
	"errors"
	"fmt"
)

var (
	// ErrUndefined is returned when an identifier has no binding in the Env.
	ErrUndefined = errors.New("hostexpr: undefined identifier")
	// ErrDivisionByZero is returned for `/` and `%` with a zero divisor.
	ErrDivisionByZero = errors.New("hostexpr: division by zero")
	// ErrType is returned when an operator receives operands it cannot combine.
	ErrType = errors.New("hostexpr: invalid operand type")
)

// SyntaxError reports a compile failure at a byte offset of the expression.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("hostexpr: offset %d: %s", e.Offset, e.Message)
}

func errorf(offset int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}
