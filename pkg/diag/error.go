package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for build failures. Every *Error wraps exactly one of them so
// callers can test with errors.Is.
var (
	ErrSyntax                 = errors.New("syntax error")
	ErrUnknownTag             = errors.New("unknown tag")
	ErrNumberFormat           = errors.New("number format error")
	ErrExpectedAttributeValue = errors.New("expected attribute value")
	ErrUnknownAttribute       = errors.New("unknown attribute")
	ErrAttributeType          = errors.New("attribute type mismatch")
)

// Error is a build failure tied to a range of template source.
type Error struct {
	Kind    error
	Message string
	Context Context
}

// New builds an Error for the byte range [from, to) of source.
func New(kind error, name, source string, from, to int, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Context: Context{Name: name, Source: source, From: from, To: to},
	}
}

// Error returns a one-line description: "kind: name:line:col: message".
func (e *Error) Error() string {
	line, col := e.Context.Position()
	return fmt.Sprintf("%s: %s:%d:%d: %s", e.kindName(), e.Context.displayName(), line, col, e.Message)
}

// Unwrap exposes the sentinel kind to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

func (e *Error) kindName() string {
	if e.Kind == nil {
		return "error"
	}
	return e.Kind.Error()
}

// Show renders the error with the offending source line and a caret marker.
// When color is set the culprit is highlighted with ANSI escapes.
func (e *Error) Show(color bool) string {
	var b strings.Builder
	header := e.kindName()
	if color {
		header = "\033[31;1m" + header + "\033[m"
	}
	b.WriteString(header)
	b.WriteString(": ")
	b.WriteString(e.Message)
	b.WriteByte('\n')
	b.WriteString(e.Context.Show("  ", color))
	return b.String()
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var out *Error
	if errors.As(err, &out) {
		return out, true
	}
	return nil, false
}
