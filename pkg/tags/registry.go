package tags

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-trs/pkg/tree"
)

// Built-in tag identifiers.
const (
	TagBlock    = "block"
	TagText     = "text"
	TagInput    = "input"
	TagDropdown = "dropdown"
)

// Schema describes one element kind. Attributes maps declared attribute names
// onto their expected kind; when it is empty, or AllowAny is set, undeclared
// attributes are accepted too.
type Schema struct {
	Name        string
	Description string
	Attributes  map[string]tree.Kind
	AllowAny    bool
}

// Permits reports whether attr may appear on the element and the kind values
// should be coerced to (KindAny for undeclared attributes).
func (s Schema) Permits(attr string) (tree.Kind, bool) {
	if kind, ok := s.Attributes[attr]; ok {
		return kind, true
	}
	if s.AllowAny || len(s.Attributes) == 0 {
		return tree.KindAny, true
	}
	return tree.KindAny, false
}

func (s Schema) clone() Schema {
	out := s
	if s.Attributes != nil {
		out.Attributes = make(map[string]tree.Kind, len(s.Attributes))
		for key, kind := range s.Attributes {
			out.Attributes[key] = kind
		}
	}
	return out
}

// Registry holds the element kinds a parser accepts. Registries are plain
// values owned by the caller; build pipelines may share one for reads or
// Clone it to vary the set per build.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]Schema
}

// NewRegistry constructs a registry holding the supplied schemas. Later
// schemas replace earlier ones with the same name.
func NewRegistry(schemas ...Schema) *Registry {
	reg := &Registry{schemas: make(map[string]Schema, len(schemas))}
	for _, schema := range schemas {
		name := strings.TrimSpace(schema.Name)
		if name == "" {
			continue
		}
		schema.Name = name
		reg.schemas[name] = schema.clone()
	}
	return reg
}

// Minimal returns a registry with the two core tags, block and text.
func Minimal() *Registry {
	return NewRegistry(minimalSchemas()...)
}

// Extended returns the minimal registry plus the input and dropdown tags.
func Extended() *Registry {
	return NewRegistry(append(minimalSchemas(), extendedSchemas()...)...)
}

func minimalSchemas() []Schema {
	return []Schema{
		{Name: TagBlock, Description: "generic container"},
		{Name: TagText, Description: "text run"},
	}
}

func extendedSchemas() []Schema {
	return []Schema{
		{
			Name:        TagInput,
			Description: "single line text input",
			AllowAny:    true,
			Attributes: map[string]tree.Kind{
				"value":       tree.KindText,
				"placeholder": tree.KindText,
				"disabled":    tree.KindBool,
				"maxlength":   tree.KindInt,
			},
		},
		{
			Name:        TagDropdown,
			Description: "single choice selector",
			AllowAny:    true,
			Attributes: map[string]tree.Kind{
				"selected": tree.KindInt,
				"disabled": tree.KindBool,
			},
		},
	}
}

// Register adds a schema. Empty and duplicate names are rejected.
func (r *Registry) Register(schema Schema) error {
	name := strings.TrimSpace(schema.Name)
	if name == "" {
		return fmt.Errorf("tags: tag name is required")
	}
	schema.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.schemas == nil {
		r.schemas = make(map[string]Schema)
	}
	if _, exists := r.schemas[name]; exists {
		return fmt.Errorf("tags: tag %q already registered", name)
	}
	r.schemas[name] = schema.clone()
	return nil
}

// Set adds or replaces a schema.
func (r *Registry) Set(schema Schema) error {
	name := strings.TrimSpace(schema.Name)
	if name == "" {
		return fmt.Errorf("tags: tag name is required")
	}
	schema.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.schemas == nil {
		r.schemas = make(map[string]Schema)
	}
	r.schemas[name] = schema.clone()
	return nil
}

// Lookup returns the schema registered under name.
func (r *Registry) Lookup(name string) (Schema, bool) {
	if r == nil {
		return Schema{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, ok := r.schemas[name]
	if !ok {
		return Schema{}, false
	}
	return schema.clone(), true
}

// Has reports whether name is a known tag.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.schemas[name]
	return ok
}

// Permits reports whether attr is allowed on tag, and the kind it coerces to.
// Unknown tags permit nothing.
func (r *Registry) Permits(tag, attr string) (tree.Kind, bool) {
	if r == nil {
		return tree.KindAny, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, ok := r.schemas[tag]
	if !ok {
		return tree.KindAny, false
	}
	return schema.Permits(attr)
}

// Names returns the registered tag names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of registered tags.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return NewRegistry()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := &Registry{schemas: make(map[string]Schema, len(r.schemas))}
	for name, schema := range r.schemas {
		out.schemas[name] = schema.clone()
	}
	return out
}
