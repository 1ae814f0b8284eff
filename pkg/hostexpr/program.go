// Package hostexpr is the small expression language evaluated in-process for
// template host expressions.
//
// Supported syntax:
//   - literals: "text", `raw`, 'c', 42, 1.5, true, false, nil
//   - identifiers with dot paths: user.name (exact keys win over traversal)
//   - unary: !x, -x
//   - arithmetic: * / % + - (+ concatenates when either side is a string)
//   - comparisons: == != < <= > >=
//   - boolean composition: && ||
//   - calls: len, upper, lower, trim, format, string, int, float
//
// Integer arithmetic stays int64; mixing an int with a float promotes to
// float64. Division by zero is an evaluation error.
package hostexpr

import (
	"sort"
	"strings"
	"sync"
)

// Engine compiles expressions against a function table.
type Engine struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// Option configures an Engine.
type Option func(*Engine)

// WithFunc exposes fn to expressions under name, replacing a builtin of the
// same name.
func WithFunc(name string, fn Func) Option {
	return func(e *Engine) {
		if name == "" || fn == nil {
			return
		}
		e.funcs[name] = fn
	}
}

// NewEngine returns an engine with the builtin functions plus any supplied
// through options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{funcs: builtins()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Register adds or replaces a function.
func (e *Engine) Register(name string, fn Func) {
	e.mu.Lock()
	defer e.mu.Unlock()
	WithFunc(name, fn)(e)
}

// Compile parses src. Errors are *SyntaxError carrying the byte offset of the
// culprit within src.
func (e *Engine) Compile(src string) (*Program, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	root, err := parseExpression(tokens, e.funcs)
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return &Program{src: src, root: root}, nil
}

var defaultEngine = NewEngine()

// Compile parses src with the builtin function table.
func Compile(src string) (*Program, error) {
	return defaultEngine.Compile(src)
}

// Program is a compiled expression. It is immutable and safe for concurrent
// evaluation.
type Program struct {
	src  string
	root exprNode
}

// Eval evaluates the program against env. The result is one of int64,
// float64, string, bool, nil, or a host value passed through unchanged.
func (p *Program) Eval(env Env) (any, error) {
	return p.root.eval(env)
}

// String returns the source the program was compiled from.
func (p *Program) String() string {
	return p.src
}

// FreeIdents lists the identifiers the program reads, sorted and without
// duplicates.
func (p *Program) FreeIdents() []string {
	seen := map[string]struct{}{}
	p.root.idents(func(name string) {
		seen[name] = struct{}{}
	})
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Roots reduces dotted identifiers to their first segment, the names an Env
// must bind.
func Roots(idents []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, ident := range idents {
		head, _, _ := strings.Cut(ident, ".")
		if _, ok := seen[head]; ok {
			continue
		}
		seen[head] = struct{}{}
		out = append(out, head)
	}
	sort.Strings(out)
	return out
}
