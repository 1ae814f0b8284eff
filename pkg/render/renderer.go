package render

import (
	"context"

	"github.com/goliatone/go-trs/pkg/tree"
)

// Renderer converts a built tree into a byte representation (HTML, JSON,
// YAML). Renderers read the tree; they never mutate it.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, root tree.Root) ([]byte, error)
}
