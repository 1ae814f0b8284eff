package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-trs/pkg/hostexpr"
	"github.com/goliatone/go-trs/pkg/orchestrator"
	"github.com/goliatone/go-trs/pkg/renderers/tui"
)

// collectTemplates expands directories into the *.trs files below them.
// Explicit file arguments are kept whatever their extension.
func collectTemplates(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	seen := map[string]bool{}
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !seen[path] {
				seen[path] = true
				out = append(out, path)
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != path && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(p, templateExt) && !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}

// singleTemplate reads the one template a command operates on.
func singleTemplate(args []string) (string, string, error) {
	if len(args) != 1 {
		return "", "", fmt.Errorf("expected exactly one template, got %d", len(args))
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	return args[0], string(data), nil
}

// bindings merges config vars with -var flags, parsing flag values as YAML
// scalars.
func bindings(cfg *Config, flags varFlags) (hostexpr.Vars, error) {
	out := make(hostexpr.Vars, len(cfg.Vars)+len(flags))
	for key, value := range cfg.Vars {
		out[key] = value
	}
	for key, raw := range flags {
		value, err := tui.ParseScalar(raw)
		if err != nil {
			return nil, fmt.Errorf("-var %s: %w", key, err)
		}
		out[key] = value
	}
	return out, nil
}

// compiler builds the orchestrator for cfg.
func compiler(env *cliEnv, cfg *Config, extra ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	reg, err := cfg.TagRegistry()
	if err != nil {
		return nil, err
	}
	opts := []orchestrator.Option{
		orchestrator.WithTags(reg),
		orchestrator.WithLogger(env.logger),
	}
	if len(cfg.Gen.Imports) > 0 {
		opts = append(opts, orchestrator.WithGoImports(cfg.Gen.Imports...))
	}
	if cfg.Gen.TreeImport != "" {
		opts = append(opts, orchestrator.WithTreeImport(cfg.Gen.TreeImport))
	}
	if len(cfg.Theme.Manifests) > 0 {
		manifests, err := cfg.ThemeManifests()
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			orchestrator.WithThemeManifests(manifests...),
			orchestrator.WithTheme(cfg.Theme.Name, cfg.Theme.Variant),
		)
	}
	return orchestrator.New(append(opts, extra...)...), nil
}
