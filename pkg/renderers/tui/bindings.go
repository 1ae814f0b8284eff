package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-trs/pkg/hostexpr"
	"github.com/goliatone/go-trs/pkg/tree"
)

// Bindings prompts for a value of every identifier in idents and returns them
// keyed by the full dotted path. Values already present in defaults are
// offered as the prompt default.
func (r *Renderer) Bindings(ctx context.Context, idents []string, defaults map[string]any) (hostexpr.Vars, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	out := make(hostexpr.Vars, len(idents))
	for _, ident := range idents {
		cfg := InputConfig{
			Message: ident + ":",
			Help:    "YAML scalar: 42, 1.5, true or text",
			Validator: func(answer string) error {
				_, err := r.parse(answer)
				return err
			},
		}
		if v, ok := defaults[ident]; ok {
			cfg.Default = tree.Format(tree.AttrOf(v))
		}
		answer, err := r.driver.Input(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("tui: prompt %s: %w", ident, err)
		}
		value, err := r.parse(answer)
		if err != nil {
			return nil, fmt.Errorf("tui: value for %s: %w", ident, err)
		}
		out[ident] = value
	}
	return out, nil
}

// Confirm asks a yes/no question through the prompt driver.
func (r *Renderer) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	if r.driver == nil {
		return false, errors.New("tui: prompt driver is nil")
	}
	return r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def})
}

// Info prints a message through the prompt driver.
func (r *Renderer) Info(ctx context.Context, msg string) error {
	if r.driver == nil {
		return errors.New("tui: prompt driver is nil")
	}
	return r.driver.Info(ctx, msg)
}

// ParseScalar reads s as a YAML scalar so numbers and booleans keep their
// type. Anything that is not a scalar is kept as the raw text.
func ParseScalar(s string) (any, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(trimmed), &node); err != nil {
		return s, nil
	}
	if len(node.Content) != 1 || node.Content[0].Kind != yaml.ScalarNode {
		return s, nil
	}
	var value any
	if err := node.Content[0].Decode(&value); err != nil {
		return nil, err
	}
	if value == nil {
		return "", nil
	}
	return value, nil
}
