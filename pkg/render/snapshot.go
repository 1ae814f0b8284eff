package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-trs/pkg/tree"
)

// SnapshotOption configures the JSON and YAML renderers.
type SnapshotOption func(*snapshotConfig)

type snapshotConfig struct {
	materialize bool
	indent      int
}

// WithMaterialize invokes every reactive value once before encoding. Without
// it reactive entries are encoded as markers.
func WithMaterialize(enabled bool) SnapshotOption {
	return func(cfg *snapshotConfig) {
		cfg.materialize = enabled
	}
}

// WithIndent sets the indentation width. Zero produces compact JSON.
func WithIndent(width int) SnapshotOption {
	return func(cfg *snapshotConfig) {
		if width >= 0 {
			cfg.indent = width
		}
	}
}

// SnapshotRenderer encodes tree snapshots as JSON or YAML.
type SnapshotRenderer struct {
	name   string
	ctype  string
	cfg    snapshotConfig
	encode func(cfg snapshotConfig, doc snapshotDocument) ([]byte, error)
}

type snapshotDocument struct {
	Content *tree.Snapshot `json:"content" yaml:"content"`
}

var _ Renderer = (*SnapshotRenderer)(nil)

// NewJSON returns the "json" renderer.
func NewJSON(options ...SnapshotOption) *SnapshotRenderer {
	return newSnapshotRenderer("json", "application/json", encodeJSON, options)
}

// NewYAML returns the "yaml" renderer.
func NewYAML(options ...SnapshotOption) *SnapshotRenderer {
	options = append([]SnapshotOption{WithIndent(2)}, options...)
	return newSnapshotRenderer("yaml", "application/yaml", encodeYAML, options)
}

func newSnapshotRenderer(name, ctype string, encode func(snapshotConfig, snapshotDocument) ([]byte, error), options []SnapshotOption) *SnapshotRenderer {
	r := &SnapshotRenderer{name: name, ctype: ctype, encode: encode}
	for _, opt := range options {
		if opt != nil {
			opt(&r.cfg)
		}
	}
	return r
}

func (r *SnapshotRenderer) Name() string {
	return r.name
}

func (r *SnapshotRenderer) ContentType() string {
	return r.ctype
}

func (r *SnapshotRenderer) Render(ctx context.Context, root tree.Root) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.cfg.materialize {
		root = root.Materialize()
	}
	out, err := r.encode(r.cfg, snapshotDocument{Content: root.Snapshot()})
	if err != nil {
		return nil, fmt.Errorf("render: %s: %w", r.name, err)
	}
	return out, nil
}

func encodeJSON(cfg snapshotConfig, doc snapshotDocument) ([]byte, error) {
	if cfg.indent == 0 {
		return json.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", string(bytes.Repeat([]byte(" "), cfg.indent)))
}

func encodeYAML(cfg snapshotConfig, doc snapshotDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(max(cfg.indent, 2))
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
