package render

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-trs/pkg/tree"
)

// Registry stores renderers by name so the CLI can select an output format
// with a flag.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates a registry holding renderers. Duplicate names panic.
func NewRegistry(renderers ...Renderer) *Registry {
	reg := &Registry{
		renderers: make(map[string]Renderer, len(renderers)),
	}
	for _, r := range renderers {
		reg.MustRegister(r)
	}
	return reg
}

// Register adds a renderer by its Name(). Duplicate names return an error.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found (have %v)", name, r.namesLocked())
	}
	return renderer, nil
}

// Render looks up name and renders root with it.
func (r *Registry) Render(ctx context.Context, name string, root tree.Root) ([]byte, error) {
	renderer, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, root)
}

// List returns the registered renderer names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a renderer is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.renderers[name]
	return ok
}
