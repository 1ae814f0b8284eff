package main

import (
	"fmt"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// themeFile is the on-disk theme manifest:
//
//	name: acme
//	tokens:
//	  brand: "#123456"
//	assets:
//	  prefix: /assets/acme
//	  files:
//	    trs.stylesheet: theme.css
//	variants:
//	  dark:
//	    tokens:
//	      brand: "#654321"
type themeFile struct {
	Name     string                      `yaml:"name"`
	Version  string                      `yaml:"version"`
	Tokens   map[string]string           `yaml:"tokens"`
	Assets   themeAssetsFile             `yaml:"assets"`
	Variants map[string]themeVariantFile `yaml:"variants"`
}

type themeAssetsFile struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

type themeVariantFile struct {
	Tokens map[string]string `yaml:"tokens"`
	Assets themeAssetsFile   `yaml:"assets"`
}

// ThemeManifests reads every manifest named by Theme.Manifests.
func (c *Config) ThemeManifests() ([]*theme.Manifest, error) {
	manifests := make([]*theme.Manifest, 0, len(c.Theme.Manifests))
	for _, name := range c.Theme.Manifests {
		path := c.resolve(name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read theme: %w", err)
		}
		var file themeFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse theme %s: %w", path, err)
		}
		if strings.TrimSpace(file.Name) == "" {
			return nil, fmt.Errorf("theme %s: name is required", path)
		}
		manifests = append(manifests, file.manifest())
	}
	return manifests, nil
}

func (f themeFile) manifest() *theme.Manifest {
	version := f.Version
	if version == "" {
		version = "0.0.0"
	}
	m := &theme.Manifest{
		Name:    f.Name,
		Version: version,
		Tokens:  f.Tokens,
		Assets:  theme.Assets{Prefix: f.Assets.Prefix, Files: f.Assets.Files},
	}
	if len(f.Variants) > 0 {
		m.Variants = make(map[string]theme.Variant, len(f.Variants))
		for name, v := range f.Variants {
			m.Variants[name] = theme.Variant{
				Tokens: v.Tokens,
				Assets: theme.Assets{Prefix: v.Assets.Prefix, Files: v.Assets.Files},
			}
		}
	}
	return m
}
