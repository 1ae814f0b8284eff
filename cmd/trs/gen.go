package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-trs/internal/gencache"
	"github.com/goliatone/go-trs/pkg/orchestrator"
)

// generatorVersion is mixed into every cache hash so a new release
// regenerates all files.
const generatorVersion = "trs-gen/1"

// runGen compiles each template into a sibling Go file, skipping templates
// whose source, signature, package and tag registry are unchanged since the
// last run.
func runGen(_ context.Context, env *cliEnv, args []string) error {
	fs, configPath := newFlagSet(env, "gen")
	force := fs.Bool("force", false, "regenerate every file, ignoring the cache")
	pkg := fs.String("package", "", "generated package name (default: config or directory name)")
	noCache := fs.Bool("no-cache", false, "do not read or write the cache")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: trs gen [flags] [paths...]\n\nCompile *.trs templates into *%s files.\n\n", defaultSuffix)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *pkg != "" {
		cfg.Gen.Package = *pkg
	}
	o, err := compiler(env, cfg)
	if err != nil {
		return err
	}
	files, err := collectTemplates(fs.Args())
	if err != nil {
		return err
	}
	registry, err := cfg.registryInputs()
	if err != nil {
		return err
	}

	var cache *gencache.Cache
	if !*noCache {
		cache, err = gencache.Open(cfg.resolve(cfg.Gen.Cache))
		if err != nil {
			return err
		}
		defer cache.Close()
	}

	failed, written, skipped := 0, 0, 0
	for _, file := range files {
		changed, err := genOne(o, cfg, cache, registry, file, *force)
		switch {
		case err != nil:
			printError(env, err)
			failed++
		case changed:
			written++
		default:
			skipped++
		}
	}
	fmt.Fprintf(env.stdout, "%d written, %d unchanged, %d failed\n", written, skipped, failed)
	if failed > 0 {
		return errFailed
	}
	return nil
}

func genOne(o *orchestrator.Orchestrator, cfg *Config, cache *gencache.Cache, registry [][]byte, file string, force bool) (bool, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return false, err
	}
	output := strings.TrimSuffix(file, templateExt) + cfg.Gen.Suffix
	signature := cfg.Signature(file)
	pkg := cfg.PackageName(filepath.Dir(file))
	parts := [][]byte{[]byte(generatorVersion), src, []byte(signature), []byte(pkg),
		[]byte(strings.Join(cfg.Gen.Imports, ",")), []byte(cfg.Gen.TreeImport)}
	hash := gencache.Hash(append(parts, registry...)...)

	if cache != nil && !force {
		fresh, err := cache.Fresh(output, hash)
		if err != nil {
			return false, err
		}
		if _, statErr := os.Stat(output); fresh && statErr == nil {
			return false, nil
		}
	}

	code, err := o.GenerateFile(pkg, orchestrator.Unit{Name: file, Source: string(src), Signature: signature})
	if err != nil {
		if cache != nil {
			_ = cache.Forget(output)
		}
		return false, err
	}
	if err := os.WriteFile(output, code, 0o644); err != nil {
		return false, err
	}
	if cache != nil {
		if err := cache.Store(output, hash); err != nil {
			return true, err
		}
	}
	return true, nil
}
