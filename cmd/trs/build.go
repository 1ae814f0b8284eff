package main

import (
	"context"
	"fmt"

	"github.com/goliatone/go-trs/pkg/orchestrator"
	"github.com/goliatone/go-trs/pkg/render"
	"github.com/goliatone/go-trs/pkg/render/html"
	"github.com/goliatone/go-trs/pkg/renderers/tui"
)

// runBuild constructs one template and prints it with the chosen renderer.
func runBuild(ctx context.Context, env *cliEnv, args []string) error {
	fs, configPath := newFlagSet(env, "build")
	format := fs.String("format", "", "output format: json, yaml, html or tui (default from config)")
	materialize := fs.Bool("materialize", true, "evaluate reactive values once instead of printing markers")
	themeName := fs.String("theme", "", "theme name for html output (default from config)")
	variant := fs.String("variant", "", "theme variant for html output (default from config)")
	vars := varFlags{}
	fs.Var(vars, "var", "binding name=value for host expressions (repeatable)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: trs build [flags] template.trs\n\n")
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

	page, err := html.New()
	if err != nil {
		return err
	}
	renderers := render.NewRegistry(
		render.NewJSON(render.WithIndent(2), render.WithMaterialize(*materialize)),
		render.NewYAML(render.WithMaterialize(*materialize)),
		page,
		tui.New(),
	)
	o, err := compiler(env, cfg, orchestrator.WithEnv(bound), orchestrator.WithRenderers(renderers))
	if err != nil {
		return err
	}

	target := *format
	if target == "" {
		target = cfg.Renderer
	}
	out, err := o.Render(ctx, orchestrator.Request{
		Name:         name,
		Source:       src,
		Renderer:     target,
		ThemeName:    *themeName,
		ThemeVariant: *variant,
	})
	if err != nil {
		printError(env, err)
		return errFailed
	}
	if _, err := env.stdout.Write(out); err != nil {
		return err
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		fmt.Fprintln(env.stdout)
	}
	return nil
}
