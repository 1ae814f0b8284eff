package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-trs/pkg/hostexpr"
	"github.com/goliatone/go-trs/pkg/tree"
)

type stubDriver struct {
	inputs       []string
	confirm      []bool
	prompts      []InputConfig
	infoMessages []string
	inputPos     int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestRender_Outline(t *testing.T) {
	t.Parallel()

	root := tree.New(tree.NewElement("block", map[string]tree.AttrValue{
		"id": tree.Text("form"),
	},
		tree.NewElement("text", nil, tree.Literal("Name")),
		tree.NewElement("input", map[string]tree.AttrValue{
			"placeholder": tree.Text("Ada"),
			"maxlength":   tree.Int(8),
		}),
		tree.NewElement("dropdown", map[string]tree.AttrValue{
			"selected": tree.NewReactive(func() tree.AttrValue { return tree.Int(1) }),
		}, tree.Literal("red"), tree.NewReactiveChild(func() tree.Node { return tree.Literal("green") })),
	))

	out, err := New(WithPromptDriver(&stubDriver{})).Render(context.Background(), root)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `block id="form"
  text
    Name
  [ Ada ] maxlength="8"
  dropdown
    ( ) red
    (*) green
`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("outline mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_ThemeAndEmpty(t *testing.T) {
	t.Parallel()

	r := New(WithTheme(Theme{Indent: "\t", Input: "<%s>"}))
	out, err := r.Render(context.Background(), tree.Empty())
	if err != nil || len(out) != 0 {
		t.Fatalf("empty root: out=%q err=%v", out, err)
	}

	out, err = r.Render(context.Background(), tree.New(tree.NewElement("block", nil,
		tree.NewElement("input", map[string]tree.AttrValue{"value": tree.Text("x")}))))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff("block\n\t<x>\n", string(out)); diff != "" {
		t.Fatalf("outline mismatch (-want +got):\n%s", diff)
	}
}

func TestBindings(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{inputs: []string{"42", "true", "Ada Lovelace", "1.5", ""}}
	r := New(WithPromptDriver(driver))

	got, err := r.Bindings(context.Background(),
		[]string{"count", "user.active", "user.name", "ratio", "empty"},
		map[string]any{"count": 7},
	)
	if err != nil {
		t.Fatalf("bindings: %v", err)
	}
	want := hostexpr.Vars{
		"count":       42,
		"user.active": true,
		"user.name":   "Ada Lovelace",
		"ratio":       1.5,
		"empty":       "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bindings mismatch (-want +got):\n%s", diff)
	}
	if driver.prompts[0].Default != "7" || driver.prompts[1].Default != "" {
		t.Fatalf("unexpected defaults %q %q", driver.prompts[0].Default, driver.prompts[1].Default)
	}
	if driver.prompts[0].Message != "count:" {
		t.Fatalf("unexpected message %q", driver.prompts[0].Message)
	}
}

func TestBindings_DriverError(t *testing.T) {
	t.Parallel()

	r := New(WithPromptDriver(&stubDriver{}))
	if _, err := r.Bindings(context.Background(), []string{"x"}, nil); err == nil {
		t.Fatalf("expected driver error")
	}
}

func TestParseScalar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want any
	}{
		{in: "10", want: 10},
		{in: "-2.5", want: -2.5},
		{in: "false", want: false},
		{in: "hello", want: "hello"},
		{in: `"42"`, want: "42"},
		{in: "a: b", want: "a: b"},
		{in: "[1, 2", want: "[1, 2"},
		{in: "  ", want: ""},
		{in: "null", want: ""},
	}
	for _, tt := range tests {
		got, err := ParseScalar(tt.in)
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("%q mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestConfirmAndInfo(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{confirm: []bool{true}}
	r := New(WithPromptDriver(driver))
	ok, err := r.Confirm(context.Background(), "again?", false)
	if err != nil || !ok {
		t.Fatalf("confirm: ok=%v err=%v", ok, err)
	}
	if err := r.Info(context.Background(), "done"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if diff := cmp.Diff([]string{"done"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}
