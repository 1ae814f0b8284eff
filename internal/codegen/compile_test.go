package codegen

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-trs/internal/builder"
	"github.com/goliatone/go-trs/pkg/hostexpr"
)

const branchingTemplate = `block {
	m: match x { 1 => "low", 10 => "ten", _ => match x % 2 { 1 => "odd", _ => "even" } },
	w: if x < 5 { "small" } else if x > 8 { "big" } else { "mid" },
	w: if x < 5 { "small" } else if x > 8 { "big" } else { s },
	label: { s + "!" }
	{ x * 2 }
}`

const branchingMain = `package main

import (
	"encoding/json"
	"fmt"
	"os"
)

func main() {
	for _, x := range []int{1, 10, 7} {
		data, err := json.Marshal(View(x, "go").Materialize())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	}
}
`

// TestGeneratedCode_MatchesBuilder compiles the generated Go for a template
// with if, else-if, nested match and a repeated attribute, runs it and
// compares every materialized tree with the in-process builder.
func TestGeneratedCode_MatchesBuilder(t *testing.T) {
	if testing.Short() {
		t.Skip("compiles generated code")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not found")
	}
	t.Parallel()

	tmpl := mustParse(t, branchingTemplate)
	gen := newGenerator(t)
	fn, err := gen.GenerateFunc("View(x int, s string)", tmpl)
	if err != nil {
		t.Fatalf("generate func: %v", err)
	}
	file, err := gen.GenerateFile("main", fn)
	if err != nil {
		t.Fatalf("generate file: %v", err)
	}

	// The program must live inside the module to import the tree package.
	dir, err := os.MkdirTemp(".", "genrun")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	if err := os.WriteFile(filepath.Join(dir, "view.go"), file, 0o644); err != nil {
		t.Fatalf("write view: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte(branchingMain), 0o644); err != nil {
		t.Fatalf("write main: %v", err)
	}

	cmd := exec.Command(goBin, "run", "./"+filepath.Base(dir))
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go run: %v\n%s\ngenerated:\n%s", err, out, file)
	}
	got := strings.Split(strings.TrimSpace(string(out)), "\n")

	want := []string{
		`{"content":{"tag":"block","attrs":{"label":"go!","m":"low","w":"small"},"children":[{"text":"2"}]}}`,
		`{"content":{"tag":"block","attrs":{"label":"go!","m":"ten","w":"big"},"children":[{"text":"20"}]}}`,
		`{"content":{"tag":"block","attrs":{"label":"go!","m":"odd","w":"go"},"children":[{"text":"14"}]}}`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("generated output mismatch (-want +got):\n%s\ngenerated:\n%s", diff, file)
	}

	var built []string
	for _, x := range []int{1, 10, 7} {
		root, err := builder.New(builder.Options{Env: hostexpr.Vars{"x": x, "s": "go"}}).Build(tmpl)
		if err != nil {
			t.Fatalf("build x=%d: %v", x, err)
		}
		data, err := json.Marshal(root.Materialize())
		if err != nil {
			t.Fatalf("marshal x=%d: %v", x, err)
		}
		built = append(built, string(data))
	}
	if diff := cmp.Diff(built, got); diff != "" {
		t.Fatalf("generated code and builder disagree (-builder +generated):\n%s", diff)
	}
}
