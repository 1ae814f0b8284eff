package tags

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-trs/pkg/tree"
)

func TestMinimalAndExtended(t *testing.T) {
	t.Parallel()

	if diff := cmp.Diff([]string{"block", "text"}, Minimal().Names()); diff != "" {
		t.Fatalf("minimal names (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"block", "dropdown", "input", "text"}, Extended().Names()); diff != "" {
		t.Fatalf("extended names (-want +got):\n%s", diff)
	}
	if Minimal().Has("input") {
		t.Fatalf("expected minimal registry to reject input")
	}
}

func TestPermits(t *testing.T) {
	t.Parallel()

	reg := Extended()
	cases := []struct {
		name   string
		tag    string
		attr   string
		kind   tree.Kind
		permit bool
	}{
		{name: "open schema", tag: TagBlock, attr: "anything", kind: tree.KindAny, permit: true},
		{name: "declared kind", tag: TagInput, attr: "maxlength", kind: tree.KindInt, permit: true},
		{name: "allow any extra", tag: TagInput, attr: "class", kind: tree.KindAny, permit: true},
		{name: "unknown tag", tag: "foo", attr: "id", kind: tree.KindAny, permit: false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			kind, ok := reg.Permits(tc.tag, tc.attr)
			if ok != tc.permit || kind != tc.kind {
				t.Fatalf("Permits(%q, %q): want (%v, %v), got (%v, %v)", tc.tag, tc.attr, tc.kind, tc.permit, kind, ok)
			}
		})
	}

	closed := NewRegistry(Schema{Name: "badge", Attributes: map[string]tree.Kind{"count": tree.KindInt}})
	if _, ok := closed.Permits("badge", "color"); ok {
		t.Fatalf("expected closed schema to reject undeclared attribute")
	}
}

func TestRegister_RejectsDuplicatesAndEmptyNames(t *testing.T) {
	t.Parallel()

	reg := Minimal()
	if err := reg.Register(Schema{Name: "block"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := reg.Register(Schema{Name: "  "}); err == nil {
		t.Fatalf("expected empty name error")
	}
	if err := reg.Register(Schema{Name: "card"}); err != nil {
		t.Fatalf("register card: %v", err)
	}
	if !reg.Has("card") {
		t.Fatalf("expected card to be registered")
	}
}

func TestClone_IsIndependent(t *testing.T) {
	t.Parallel()

	base := Minimal()
	clone := base.Clone()
	if err := clone.Register(Schema{Name: "card"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if base.Has("card") {
		t.Fatalf("expected base registry to stay unchanged")
	}
	if clone.Len() != 3 {
		t.Fatalf("expected 3 tags in clone, got %d", clone.Len())
	}
}

func TestLoad_YAMLExtendsBase(t *testing.T) {
	t.Parallel()

	doc := `
tags:
  - name: card
    description: elevated container
    allowAny: true
    attributes:
      elevation: int
      title: string
`
	reg, err := Load([]byte(doc), "tags.yaml", Minimal())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"block", "card", "text"}, reg.Names()); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
	schema, ok := reg.Lookup("card")
	if !ok {
		t.Fatalf("expected card schema")
	}
	want := Schema{
		Name:        "card",
		Description: "elevated container",
		AllowAny:    true,
		Attributes:  map[string]tree.Kind{"elevation": tree.KindInt, "title": tree.KindText},
	}
	if diff := cmp.Diff(want, schema); diff != "" {
		t.Fatalf("schema (-want +got):\n%s", diff)
	}
}

func TestLoad_JSONWithExtends(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"schemas/tags.json": {Data: []byte(`{"extends":"extended","tags":[{"name":"badge"}]}`)},
	}
	reg, err := LoadFS(fsys, "schemas/tags.json", nil)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	for _, name := range []string{"block", "text", "input", "dropdown", "badge"} {
		if !reg.Has(name) {
			t.Fatalf("expected %q to be registered", name)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{name: "empty", doc: "  ", wantErr: "is empty"},
		{name: "bad tag name", doc: "tags:\n  - name: 9lives\n", wantErr: "ident"},
		{name: "bad kind", doc: "tags:\n  - name: card\n    attributes:\n      size: huge\n", wantErr: "kind"},
		{name: "bad extends", doc: "extends: everything\n", wantErr: "oneof"},
		{name: "duplicate", doc: "tags:\n  - name: card\n  - name: card\n", wantErr: "duplicate tag"},
		{name: "garbage", doc: "tags: [", wantErr: "invalid JSON or YAML"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load([]byte(tc.doc), "tags.yaml", Minimal())
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
