package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-trs/pkg/orchestrator"
	"github.com/goliatone/go-trs/pkg/render"
	"github.com/goliatone/go-trs/pkg/render/html"
	"github.com/goliatone/go-trs/pkg/renderers/tui"
)

// runPreview renders one template as a standalone HTML page. With
// -interactive it prompts for every identifier the template reads.
func runPreview(ctx context.Context, env *cliEnv, args []string) error {
	return preview(ctx, env, args, tui.New())
}

func preview(ctx context.Context, env *cliEnv, args []string, prompts *tui.Renderer) error {
	fs, configPath := newFlagSet(env, "preview")
	output := fs.String("o", "", "output file (stdout if empty)")
	interactive := fs.Bool("interactive", false, "prompt for every free identifier")
	minify := fs.Bool("minify", false, "minify the page")
	themeName := fs.String("theme", "", "theme name (default from config)")
	variant := fs.String("variant", "", "theme variant (default from config)")
	vars := varFlags{}
	fs.Var(vars, "var", "binding name=value for host expressions (repeatable)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: trs preview [flags] template.trs\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	name, src, err := singleTemplate(fs.Args())
	if err != nil {
		return err
	}
	bound, err := bindings(cfg, vars)
	if err != nil {
		return err
	}

	if *interactive {
		inspector, err := compiler(env, cfg)
		if err != nil {
			return err
		}
		idents, err := inspector.FreeIdents(name, src)
		if err != nil {
			printError(env, err)
			return errFailed
		}
		answers, err := prompts.Bindings(ctx, idents, bound)
		if err != nil {
			return err
		}
		for key, value := range answers {
			bound[key] = value
		}
	}

	page, err := html.New(
		html.WithPage(strings.TrimSuffix(filepath.Base(name), templateExt)),
		html.WithMinify(*minify),
	)
	if err != nil {
		return err
	}
	o, err := compiler(env, cfg,
		orchestrator.WithEnv(bound),
		orchestrator.WithRenderers(render.NewRegistry(page)),
	)
	if err != nil {
		return err
	}
	out, err := o.Render(ctx, orchestrator.Request{
		Name:         name,
		Source:       src,
		Renderer:     page.Name(),
		ThemeName:    *themeName,
		ThemeVariant: *variant,
	})
	if err != nil {
		printError(env, err)
		return errFailed
	}

	if *output == "" {
		_, err = env.stdout.Write(out)
		return err
	}
	if err := os.WriteFile(*output, out, 0o644); err != nil {
		return err
	}
	return prompts.Info(ctx, fmt.Sprintf("Preview written to %s", *output))
}
