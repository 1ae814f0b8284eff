package builder

import (
	"io"
	"log"

	"github.com/goliatone/go-trs/pkg/ast"
	"github.com/goliatone/go-trs/pkg/hostexpr"
)

// ErrorHandler receives failures raised while an evaluator runs. The
// evaluator itself still returns an empty value.
type ErrorHandler func(tmpl *ast.Template, span ast.Span, err error)

// Options configures the Builder. The root package builds them from its
// functional options and passes them into New.
type Options struct {
	// Engine compiles host expressions. Defaults to the builtin function table.
	Engine *hostexpr.Engine
	// Env resolves identifiers when evaluators run. A *hostexpr.Store lets the
	// caller change bindings between invocations.
	Env hostexpr.Env
	// Logger receives build warnings and, through the default ErrorHandler,
	// evaluation failures.
	Logger *log.Logger
	// OnError overrides how evaluation failures are reported.
	OnError ErrorHandler
}

func defaultOptions() Options {
	return Options{
		Engine: hostexpr.NewEngine(),
		Env:    hostexpr.Vars{},
		Logger: log.New(io.Discard, "", 0),
	}
}
