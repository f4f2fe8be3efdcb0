package compose

import (
	"context"
	"fmt"
	"os"

	"github.com/talgya/toroid/internal/sites"
)

// Request is what a composer is given: the world seed and the placeholder
// sites awaiting names, each with the context captured at placement.
type Request struct {
	Seed         string
	Placeholders []sites.Placeholder
}

// Composer supplies a composition for a world. Implementations may block
// on an external service and should honour ctx.
type Composer interface {
	Compose(ctx context.Context, req Request) (*Composition, error)
}

// FileComposer reads a previously authored composition from disk.
type FileComposer struct {
	Path string
}

// Compose reads and parses the file. The request is ignored; features whose
// placeholder ids do not exist in this world are skipped at resolve time.
func (f FileComposer) Compose(ctx context.Context, _ Request) (*Composition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read composition: %w", err)
	}
	return Parse(data)
}
