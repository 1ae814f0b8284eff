package hostexpr

import (
	"strings"
	"sync"
)

// Env resolves identifiers during evaluation.
type Env interface {
	Lookup(name string) (any, bool)
}

// Vars is a fixed set of bindings.
type Vars map[string]any

// Lookup returns the binding for name.
func (v Vars) Lookup(name string) (any, bool) {
	value, ok := v[name]
	return value, ok
}

// EnvFunc adapts a function into an Env.
type EnvFunc func(name string) (any, bool)

// Lookup delegates to the underlying function.
func (fn EnvFunc) Lookup(name string) (any, bool) {
	return fn(name)
}

// Store is a mutable Env safe for concurrent use. Evaluators built against a
// Store observe updates made between invocations.
type Store struct {
	mu   sync.RWMutex
	vars map[string]any
}

// NewStore returns a store seeded with a copy of initial.
func NewStore(initial map[string]any) *Store {
	s := &Store{vars: make(map[string]any, len(initial))}
	for k, v := range initial {
		s.vars[k] = v
	}
	return s
}

// Set binds name to value, replacing any previous binding.
func (s *Store) Set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vars == nil {
		s.vars = make(map[string]any)
	}
	s.vars[name] = value
}

// Delete removes the binding for name.
func (s *Store) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vars, name)
}

// Get returns the binding for name.
func (s *Store) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.vars[name]
	return value, ok
}

// Lookup implements Env.
func (s *Store) Lookup(name string) (any, bool) {
	return s.Get(name)
}

// Snapshot copies the current bindings.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

// resolve looks up a dotted path. An exact binding wins over traversal so
// flattened keys such as "user.name" work alongside nested maps.
func resolve(env Env, path string) (any, bool) {
	if env == nil {
		return nil, false
	}
	if v, ok := env.Lookup(path); ok {
		return v, true
	}
	head, rest, dotted := strings.Cut(path, ".")
	if !dotted {
		return nil, false
	}
	current, ok := env.Lookup(head)
	if !ok {
		return nil, false
	}
	for _, part := range strings.Split(rest, ".") {
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case Env:
			next, ok := typed.Lookup(part)
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, true
}
