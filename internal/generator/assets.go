package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// copyAssets mirrors the public directory into the output root, skipping
// hidden entries. A missing public directory copies nothing.
func copyAssets(ctx context.Context, writer artifactWriter, publicDir string) (int, error) {
	publicDir = strings.TrimSpace(publicDir)
	if publicDir == "" {
		return 0, nil
	}
	if _, err := os.Stat(publicDir); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	source := os.DirFS(publicDir)
	copied := 0
	err := fs.WalkDir(source, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if name != "." && strings.HasPrefix(path.Base(name), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(source, name)
		if err != nil {
			return fmt.Errorf("generator: read asset %s: %w", name, err)
		}
		if err := writer.WriteFile(ctx, name, data); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}
