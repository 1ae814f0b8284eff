package orchestrator_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-trs/pkg/hostexpr"
	"github.com/goliatone/go-trs/pkg/orchestrator"
	"github.com/goliatone/go-trs/pkg/render"
	"github.com/goliatone/go-trs/pkg/tags"
	"github.com/goliatone/go-trs/pkg/testsupport"
)

func TestOrchestrator_GoldenSnapshot(t *testing.T) {
	t.Parallel()

	fixture := filepath.Join("testdata", "profile.trs")
	golden := filepath.Join("testdata", "profile.golden.json")
	src := testsupport.MustReadFixture(t, fixture)

	o := orchestrator.New(
		orchestrator.WithTags(tags.Extended()),
		orchestrator.WithEnv(hostexpr.Vars{"name": "Ada", "role": "admin"}),
		orchestrator.WithRenderers(render.NewRegistry(render.NewJSON(render.WithMaterialize(true)))),
	)
	out, err := o.Render(context.Background(), orchestrator.Request{Name: fixture, Source: src, Renderer: "json"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if testsupport.WriteMaybeGolden(t, golden, append(out, '\n')) {
		return
	}

	want := strings.TrimSpace(testsupport.MustReadGoldenString(t, golden))
	if diff := testsupport.CompareGolden(want, strings.TrimSpace(string(out))); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}
