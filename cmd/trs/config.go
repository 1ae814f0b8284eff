package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-trs/pkg/tags"
)

const (
	defaultConfigFile = "trs.yaml"
	defaultSuffix     = ".trs.go"
	defaultCacheFile  = ".trs-cache.db"
	templateExt       = ".trs"
)

// Config is the optional trs.yaml project file. Paths are relative to the
// directory holding it.
type Config struct {
	// Registry is the base tag set: minimal or extended.
	Registry string `yaml:"registry,omitempty"`

	// Schemas are tag schema documents merged over the base registry in order.
	Schemas []string `yaml:"schemas,omitempty"`

	// Vars are default bindings for build and preview.
	Vars map[string]any `yaml:"vars,omitempty"`

	// Renderer is the default output format for build.
	Renderer string `yaml:"renderer,omitempty"`

	Gen GenConfig `yaml:"gen,omitempty"`

	Theme ThemeConfig `yaml:"theme,omitempty"`

	dir string
}

// ThemeConfig styles html output through go-theme manifests.
type ThemeConfig struct {
	// Name and Variant are the defaults when -theme and -variant are unset.
	Name    string `yaml:"name,omitempty"`
	Variant string `yaml:"variant,omitempty"`
	// Manifests are theme manifest files, see themeFile.
	Manifests []string `yaml:"manifests,omitempty"`
}

// GenConfig configures `trs gen`.
type GenConfig struct {
	Package    string            `yaml:"package,omitempty"`
	Suffix     string            `yaml:"suffix,omitempty"`
	Cache      string            `yaml:"cache,omitempty"`
	Imports    []string          `yaml:"imports,omitempty"`
	TreeImport string            `yaml:"tree_import,omitempty"`
	Funcs      map[string]string `yaml:"funcs,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Registry: tags.ExtendsExtended,
		Renderer: "json",
		Gen: GenConfig{
			Suffix: defaultSuffix,
			Cache:  defaultCacheFile,
		},
		dir: ".",
	}
}

// LoadConfig reads path. A missing file at the default location yields the
// defaults; a missing file named explicitly is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == defaultConfigFile {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)

	if cfg.Gen.Suffix == "" {
		cfg.Gen.Suffix = defaultSuffix
	}
	if cfg.Gen.Cache == "" {
		cfg.Gen.Cache = defaultCacheFile
	}
	if cfg.Renderer == "" {
		cfg.Renderer = "json"
	}
	return cfg, nil
}

// resolve makes a config-relative path usable from the working directory.
func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

// TagRegistry builds the registry named by Registry and Schemas.
func (c *Config) TagRegistry() (*tags.Registry, error) {
	var reg *tags.Registry
	switch strings.TrimSpace(c.Registry) {
	case "", tags.ExtendsExtended:
		reg = tags.Extended()
	case tags.ExtendsMinimal:
		reg = tags.Minimal()
	default:
		return nil, fmt.Errorf("unknown registry %q (want minimal or extended)", c.Registry)
	}
	for _, schema := range c.Schemas {
		path := c.resolve(schema)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		reg, err = tags.Load(data, path, reg)
		if err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// registryInputs returns the bytes that decide the tag registry: the base
// name followed by each schema path and its contents.
func (c *Config) registryInputs() ([][]byte, error) {
	parts := [][]byte{[]byte(strings.TrimSpace(c.Registry))}
	for _, schema := range c.Schemas {
		data, err := os.ReadFile(c.resolve(schema))
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		parts = append(parts, []byte(schema), data)
	}
	return parts, nil
}

// Signature returns the Go function header generated for the template at
// path: the configured one, or the file name in CamelCase with no
// parameters.
func (c *Config) Signature(path string) string {
	if sig, ok := c.Gen.Funcs[filepath.Base(path)]; ok {
		return sig
	}
	if sig, ok := c.Gen.Funcs[filepath.ToSlash(path)]; ok {
		return sig
	}
	return funcName(path)
}

func funcName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), templateExt)
	var b strings.Builder
	upper := true
	for _, r := range base {
		switch {
		case r == '-' || r == '_' || r == '.' || r == ' ':
			upper = true
		case upper:
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
		default:
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "T" + name
	}
	return name
}

// PackageName returns the generated package for a template in dir.
func (c *Config) PackageName(dir string) string {
	if c.Gen.Package != "" {
		return c.Gen.Package
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "views"
	}
	name := strings.Map(func(r rune) rune {
		if r == '-' || r == '.' {
			return '_'
		}
		return r
	}, strings.ToLower(filepath.Base(abs)))
	if name == "" || name == string(filepath.Separator) {
		return "views"
	}
	return name
}
