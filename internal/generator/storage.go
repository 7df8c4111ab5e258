package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// artifactWriter abstracts where build outputs land. Paths are slash
// separated and relative to the output root.
type artifactWriter interface {
	WriteFile(ctx context.Context, name string, data []byte) error
}

type dirWriter struct {
	root string
}

func (w dirWriter) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := filepath.Join(w.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("generator: create dir for %s: %w", name, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("generator: write %s: %w", name, err)
	}
	return nil
}

type noopWriter struct{}

func (noopWriter) WriteFile(context.Context, string, []byte) error { return nil }
