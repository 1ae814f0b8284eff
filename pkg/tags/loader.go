package tags

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-trs/pkg/tree"
)

// Base registry names accepted by the `extends` key of a schema document.
const (
	ExtendsNone     = "none"
	ExtendsMinimal  = "minimal"
	ExtendsExtended = "extended"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type documentFile struct {
	Extends string    `json:"extends" yaml:"extends" validate:"omitempty,oneof=none minimal extended"`
	Tags    []tagFile `json:"tags" yaml:"tags" validate:"dive"`
}

type tagFile struct {
	Name        string            `json:"name" yaml:"name" validate:"required,ident"`
	Description string            `json:"description" yaml:"description"`
	AllowAny    bool              `json:"allowAny" yaml:"allowAny"`
	Attributes  map[string]string `json:"attributes" yaml:"attributes" validate:"dive,keys,ident,endkeys,kind"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func schemaValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
			return identPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
			_, err := tree.ParseKind(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// LoadFS reads a JSON or YAML schema document from fsys and merges it over
// base. See Load for the document shape.
func LoadFS(fsys fs.FS, name string, base *Registry) (*Registry, error) {
	if fsys == nil {
		return nil, errors.New("tags: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("tags: read %s: %w", name, err)
	}
	return Load(data, name, base)
}

// Load parses a schema document:
//
//	extends: minimal        # none | minimal | extended, default: use base
//	tags:
//	  - name: card
//	    allowAny: true
//	    attributes:
//	      elevation: int
//
// The tags are merged over a clone of base (or over the registry named by
// extends), replacing same-named schemas. A document repeating a tag name is
// rejected.
func Load(data []byte, source string, base *Registry) (*Registry, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}
	if err := schemaValidator().Struct(doc); err != nil {
		return nil, fmt.Errorf("tags: validate %s: %w", source, describeValidation(err))
	}

	reg := baseRegistry(doc.Extends, base)
	seen := make(map[string]struct{}, len(doc.Tags))
	for _, raw := range doc.Tags {
		schema, err := normaliseTag(raw)
		if err != nil {
			return nil, fmt.Errorf("tags: %s: %w", source, err)
		}
		if _, dup := seen[schema.Name]; dup {
			return nil, fmt.Errorf("tags: %s: duplicate tag %q", source, schema.Name)
		}
		seen[schema.Name] = struct{}{}
		if err := reg.Set(schema); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("tags: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return documentFile{}, fmt.Errorf("tags: parse %s: invalid JSON or YAML", source)
}

func baseRegistry(extends string, base *Registry) *Registry {
	switch strings.TrimSpace(extends) {
	case ExtendsNone:
		return NewRegistry()
	case ExtendsMinimal:
		return Minimal()
	case ExtendsExtended:
		return Extended()
	default:
		if base == nil {
			return Minimal()
		}
		return base.Clone()
	}
}

func normaliseTag(raw tagFile) (Schema, error) {
	schema := Schema{
		Name:        strings.TrimSpace(raw.Name),
		Description: strings.TrimSpace(raw.Description),
		AllowAny:    raw.AllowAny,
	}
	if len(raw.Attributes) > 0 {
		schema.Attributes = make(map[string]tree.Kind, len(raw.Attributes))
		for name, spelled := range raw.Attributes {
			kind, err := tree.ParseKind(spelled)
			if err != nil {
				return Schema{}, fmt.Errorf("tag %q attribute %q: %w", schema.Name, name, err)
			}
			schema.Attributes[name] = kind
		}
	}
	return schema, nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
