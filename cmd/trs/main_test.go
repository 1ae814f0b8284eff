package main

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-trs/pkg/renderers/tui"
)

type testEnv struct {
	*cliEnv
	out *bytes.Buffer
	err *bytes.Buffer
}

func newTestEnv() testEnv {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return testEnv{
		cliEnv: &cliEnv{
			stdin:  strings.NewReader(""),
			stdout: out,
			stderr: errOut,
			logger: log.New(errOut, "trs: ", 0),
		},
		out: out,
		err: errOut,
	}
}

// writeProject lays out files under a temp dir and returns the dir.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestRun_Usage(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	if code := run(context.Background(), env.cliEnv, nil); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(env.err.String(), "Commands:") {
		t.Fatalf("expected usage, got %q", env.err.String())
	}

	env = newTestEnv()
	if code := run(context.Background(), env.cliEnv, []string{"help"}); code != 0 {
		t.Fatalf("help exit code = %d, want 0", code)
	}

	env = newTestEnv()
	if code := run(context.Background(), env.cliEnv, []string{"frobnicate"}); code != 2 {
		t.Fatalf("unknown command exit code = %d, want 2", code)
	}
	if !strings.Contains(env.err.String(), `unknown command "frobnicate"`) {
		t.Fatalf("expected unknown command message, got %q", env.err.String())
	}
}

func TestRun_Check(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, map[string]string{
		"trs.yaml":        "registry: minimal\n",
		"ok.trs":          `block { class: "card" "hello" }`,
		"bad.trs":         "block {\n  widget { }\n}",
		".hidden/x.trs":   "nope { }",
		"notes/extra.trs": `text { { name } }`,
	})
	config := filepath.Join(dir, "trs.yaml")

	env := newTestEnv()
	code := run(context.Background(), env.cliEnv, []string{"check", "-config", config, dir})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1\nstderr:\n%s", code, env.err.String())
	}
	stderr := env.err.String()
	for _, fragment := range []string{"bad.trs:2:3", "widget", "1 of 3 template(s) failed"} {
		if !strings.Contains(stderr, fragment) {
			t.Fatalf("expected %q in stderr:\n%s", fragment, stderr)
		}
	}
	if strings.Contains(stderr, "x.trs") {
		t.Fatalf("dot directories should be skipped:\n%s", stderr)
	}

	env = newTestEnv()
	code = run(context.Background(), env.cliEnv, []string{"check", "-config", config, filepath.Join(dir, "ok.trs")})
	if code != 0 {
		t.Fatalf("exit code = %d, want 0\nstderr:\n%s", code, env.err.String())
	}
	if got := env.out.String(); got != "1 template(s) ok\n" {
		t.Fatalf("stdout = %q", got)
	}
}

func TestRun_Build(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, map[string]string{
		"trs.yaml": "vars:\n  x: 1\n",
		"calc.trs": `block { class: "calc" { x * 2 } }`,
	})
	config := filepath.Join(dir, "trs.yaml")
	file := filepath.Join(dir, "calc.trs")

	env := newTestEnv()
	code := run(context.Background(), env.cliEnv, []string{"build", "-config", config, "-var", "x=21", file})
	if code != 0 {
		t.Fatalf("exit code = %d\nstderr:\n%s", code, env.err.String())
	}
	for _, fragment := range []string{`"tag": "block"`, `"class": "calc"`, `"text": "42"`} {
		if !strings.Contains(env.out.String(), fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, env.out.String())
		}
	}

	env = newTestEnv()
	code = run(context.Background(), env.cliEnv, []string{"build", "-config", config, "-format", "json", "-materialize=false", file})
	if code != 0 {
		t.Fatalf("exit code = %d\nstderr:\n%s", code, env.err.String())
	}
	if !strings.Contains(env.out.String(), `"reactive": true`) {
		t.Fatalf("expected reactive marker:\n%s", env.out.String())
	}

	env = newTestEnv()
	code = run(context.Background(), env.cliEnv, []string{"build", "-config", config, "-format", "html", file})
	if code != 0 {
		t.Fatalf("exit code = %d\nstderr:\n%s", code, env.err.String())
	}
	if got := env.out.String(); got != "<div class=\"calc\">2</div>\n" {
		t.Fatalf("html = %q", got)
	}
}

func TestRun_BuildErrors(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, map[string]string{
		"trs.yaml":   "registry: minimal\n",
		"input.trs":  `input { value: "x" }`,
		"second.trs": `"x"`,
	})
	config := filepath.Join(dir, "trs.yaml")

	env := newTestEnv()
	if code := run(context.Background(), env.cliEnv, []string{"build", "-config", config, filepath.Join(dir, "input.trs")}); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(env.err.String(), "input") {
		t.Fatalf("expected unknown tag diagnostic:\n%s", env.err.String())
	}

	env = newTestEnv()
	args := []string{"build", "-config", config, filepath.Join(dir, "input.trs"), filepath.Join(dir, "second.trs")}
	if code := run(context.Background(), env.cliEnv, args); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(env.err.String(), "expected exactly one template") {
		t.Fatalf("unexpected stderr:\n%s", env.err.String())
	}

	env = newTestEnv()
	if code := run(context.Background(), env.cliEnv, []string{"build", "-config", filepath.Join(dir, "missing.yaml"), "x.trs"}); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestRun_Gen(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, map[string]string{
		"trs.yaml": strings.Join([]string{
			"gen:",
			"  package: views",
			"  funcs:",
			"    user-card.trs: UserCard(name string, admin bool)",
			"",
		}, "\n"),
		"user-card.trs": `block { class: if admin { "admin" } else { "user" } { name } }`,
		"footer.trs":    `text { "bye" }`,
	})
	config := filepath.Join(dir, "trs.yaml")

	env := newTestEnv()
	if code := run(context.Background(), env.cliEnv, []string{"gen", "-config", config, dir}); code != 0 {
		t.Fatalf("exit code = %d\nstderr:\n%s", code, env.err.String())
	}
	if got := env.out.String(); got != "2 written, 0 unchanged, 0 failed\n" {
		t.Fatalf("summary = %q", got)
	}

	card, err := os.ReadFile(filepath.Join(dir, "user-card.trs.go"))
	if err != nil {
		t.Fatalf("read generated card: %v", err)
	}
	for _, fragment := range []string{"// Code generated by trs. DO NOT EDIT.", "package views", "func UserCard(name string, admin bool) tree.Root"} {
		if !strings.Contains(string(card), fragment) {
			t.Fatalf("expected %q in generated file:\n%s", fragment, card)
		}
	}
	footer, err := os.ReadFile(filepath.Join(dir, "footer.trs.go"))
	if err != nil {
		t.Fatalf("read generated footer: %v", err)
	}
	if !strings.Contains(string(footer), "func Footer() tree.Root") {
		t.Fatalf("expected default function name:\n%s", footer)
	}

	env = newTestEnv()
	if code := run(context.Background(), env.cliEnv, []string{"gen", "-config", config, dir}); code != 0 {
		t.Fatalf("second run exit code = %d\nstderr:\n%s", code, env.err.String())
	}
	if got := env.out.String(); got != "0 written, 2 unchanged, 0 failed\n" {
		t.Fatalf("second summary = %q", got)
	}

	if err := os.Remove(filepath.Join(dir, "footer.trs.go")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	env = newTestEnv()
	if code := run(context.Background(), env.cliEnv, []string{"gen", "-config", config, dir}); code != 0 {
		t.Fatalf("third run exit code = %d", code)
	}
	if got := env.out.String(); got != "1 written, 1 unchanged, 0 failed\n" {
		t.Fatalf("missing output should be regenerated, summary = %q", got)
	}

	env = newTestEnv()
	if code := run(context.Background(), env.cliEnv, []string{"gen", "-config", config, "-force", dir}); code != 0 {
		t.Fatalf("forced run exit code = %d", code)
	}
	if got := env.out.String(); got != "2 written, 0 unchanged, 0 failed\n" {
		t.Fatalf("forced summary = %q", got)
	}
}

func TestRun_GenSchemaChange(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, map[string]string{
		"trs.yaml": "schemas:\n  - tags.yaml\ngen:\n  package: views\n  funcs:\n    meter.trs: Meter(n int)\n",
		"tags.yaml": strings.Join([]string{
			"tags:",
			"  - name: meter",
			"    attributes:",
			"      size: int",
			"",
		}, "\n"),
		"meter.trs": `meter { size: { n } }`,
	})
	config := filepath.Join(dir, "trs.yaml")
	output := filepath.Join(dir, "meter.trs.go")

	gen := func(want string) string {
		t.Helper()
		env := newTestEnv()
		if code := run(context.Background(), env.cliEnv, []string{"gen", "-config", config, dir}); code != 0 {
			t.Fatalf("exit code = %d\nstderr:\n%s", code, env.err.String())
		}
		if got := env.out.String(); got != want {
			t.Fatalf("summary = %q, want %q", got, want)
		}
		code, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("read generated file: %v", err)
		}
		return string(code)
	}

	if code := gen("1 written, 0 unchanged, 0 failed\n"); !strings.Contains(code, "tree.KindInt") {
		t.Fatalf("expected int coercion:\n%s", code)
	}
	gen("0 written, 1 unchanged, 0 failed\n")

	schema := filepath.Join(dir, "tags.yaml")
	data, err := os.ReadFile(schema)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	edited := strings.Replace(string(data), "size: int", "size: text", 1)
	if err := os.WriteFile(schema, []byte(edited), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	if code := gen("1 written, 0 unchanged, 0 failed\n"); !strings.Contains(code, "tree.KindText") {
		t.Fatalf("schema edit should regenerate with text coercion:\n%s", code)
	}

	if err := os.WriteFile(config, []byte("registry: minimal\nschemas:\n  - tags.yaml\ngen:\n  package: views\n  funcs:\n    meter.trs: Meter(n int)\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	gen("1 written, 0 unchanged, 0 failed\n")
}

func TestRun_GenFailure(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, map[string]string{
		"trs.yaml": "gen:\n  package: views\n",
		"bad.trs":  `block { class: { a + } }`,
	})
	env := newTestEnv()
	code := run(context.Background(), env.cliEnv, []string{"gen", "-config", filepath.Join(dir, "trs.yaml"), "-no-cache", dir})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if got := env.out.String(); got != "0 written, 0 unchanged, 1 failed\n" {
		t.Fatalf("summary = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.trs.go")); !os.IsNotExist(err) {
		t.Fatalf("no file should be written for a failing template, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, defaultCacheFile)); !os.IsNotExist(err) {
		t.Fatalf("-no-cache should not create the cache, stat err = %v", err)
	}
}

type promptStub struct {
	answers map[string]string
	info    []string
}

func (p *promptStub) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	name := strings.TrimSuffix(cfg.Message, ":")
	if answer, ok := p.answers[name]; ok {
		return answer, nil
	}
	return cfg.Default, nil
}

func (p *promptStub) Confirm(_ context.Context, cfg tui.ConfirmConfig) (bool, error) {
	return cfg.Default, nil
}

func (p *promptStub) Info(_ context.Context, msg string) error {
	p.info = append(p.info, msg)
	return nil
}

func TestPreview(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, map[string]string{
		"trs.yaml":     "vars:\n  greeting: Hi\n",
		"welcome.trs":  `block { class: { greeting } { name } }`,
		"unknown.trs":  `card { }`,
		"readme.notes": "ignored",
	})
	config := filepath.Join(dir, "trs.yaml")
	file := filepath.Join(dir, "welcome.trs")
	stub := &promptStub{answers: map[string]string{"name": "Ada"}}
	prompts := tui.New(tui.WithPromptDriver(stub))

	env := newTestEnv()
	output := filepath.Join(dir, "welcome.html")
	err := preview(context.Background(), env.cliEnv, []string{"-config", config, "-interactive", "-o", output, file}, prompts)
	if err != nil {
		t.Fatalf("preview: %v\nstderr:\n%s", err, env.err.String())
	}
	page, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	for _, fragment := range []string{"<title>welcome</title>", `<div class="Hi">Ada</div>`} {
		if !strings.Contains(string(page), fragment) {
			t.Fatalf("expected %q in page:\n%s", fragment, page)
		}
	}
	if diff := cmp.Diff([]string{"Preview written to " + output}, stub.info); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}

	env = newTestEnv()
	err = preview(context.Background(), env.cliEnv, []string{"-config", config, filepath.Join(dir, "unknown.trs")}, prompts)
	if err != errFailed {
		t.Fatalf("err = %v, want errFailed", err)
	}
}

func TestPreview_Theme(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, map[string]string{
		"trs.yaml": "theme:\n  name: acme\n  manifests:\n    - themes/acme.yaml\n",
		"themes/acme.yaml": strings.Join([]string{
			"name: acme",
			"tokens:",
			"  brand: \"#123456\"",
			"assets:",
			"  prefix: /assets/acme",
			"  files:",
			"    trs.stylesheet: theme.css",
			"variants:",
			"  dark:",
			"    tokens:",
			"      brand: \"#654321\"",
			"",
		}, "\n"),
		"card.trs": `block { "hi" }`,
	})
	config := filepath.Join(dir, "trs.yaml")
	file := filepath.Join(dir, "card.trs")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "config default",
			args: []string{"preview", "-config", config, file},
			want: []string{`data-theme="acme"`, `href="/assets/acme/theme.css"`, "--brand: #123456;"},
		},
		{
			name: "variant flag",
			args: []string{"preview", "-config", config, "-variant", "dark", file},
			want: []string{`data-theme-variant="dark"`, "--brand: #654321;"},
		},
		{
			name: "build html",
			args: []string{"build", "-config", config, "-format", "html", "-variant", "dark", file},
			want: []string{"<div>hi</div>"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			if code := run(context.Background(), env.cliEnv, tt.args); code != 0 {
				t.Fatalf("exit code = %d\nstderr:\n%s", code, env.err.String())
			}
			for _, fragment := range tt.want {
				if !strings.Contains(env.out.String(), fragment) {
					t.Fatalf("expected %q in output:\n%s", fragment, env.out.String())
				}
			}
		})
	}

	env := newTestEnv()
	if code := run(context.Background(), env.cliEnv, []string{"preview", "-config", config, "-theme", "missing", file}); code != 1 {
		t.Fatalf("unknown theme exit code = %d, want 1", code)
	}
	if !strings.Contains(env.err.String(), `unknown theme "missing"`) {
		t.Fatalf("unexpected stderr:\n%s", env.err.String())
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := writeProject(t, map[string]string{
		"trs.yaml": strings.Join([]string{
			"registry: minimal",
			"renderer: yaml",
			"gen:",
			"  cache: build/cache.db",
			"",
		}, "\n"),
	})
	cfg, err := LoadConfig(filepath.Join(dir, "trs.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Renderer != "yaml" || cfg.Gen.Suffix != defaultSuffix {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if got, want := cfg.resolve(cfg.Gen.Cache), filepath.Join(dir, "build", "cache.db"); got != want {
		t.Fatalf("resolve = %q, want %q", got, want)
	}
	reg, err := cfg.TagRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if reg.Has("input") {
		t.Fatalf("minimal registry should not know input")
	}

	if _, err := LoadConfig(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Fatalf("expected error for an explicit missing file")
	}
	bad := &Config{Registry: "huge"}
	if _, err := bad.TagRegistry(); err == nil {
		t.Fatalf("expected unknown registry error")
	}
}

func TestFuncName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"user-card.trs":       "UserCard",
		"views/footer.trs":    "Footer",
		"snake_case_name.trs": "SnakeCaseName",
		"404.trs":             "T404",
		"a.b.trs":             "AB",
	}
	for in, want := range tests {
		if got := funcName(in); got != want {
			t.Fatalf("funcName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVarFlags(t *testing.T) {
	t.Parallel()

	vars := varFlags{}
	if err := vars.Set("count=3"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := vars.Set("novalue"); err == nil {
		t.Fatalf("expected error for missing '='")
	}
	bound, err := bindings(&Config{Vars: map[string]any{"count": 1, "name": "x"}}, vars)
	if err != nil {
		t.Fatalf("bindings: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"count": 3, "name": "x"}, map[string]any(bound)); diff != "" {
		t.Fatalf("bindings mismatch (-want +got):\n%s", diff)
	}
}
