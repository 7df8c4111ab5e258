package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// LoaderConfig configures how Markdown files are discovered.
type LoaderConfig struct {
	// Pattern limits discovered files to those matching the glob (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Loader reads Markdown documents from a filesystem rooted at the content
// directory. Paths are slash separated and relative to that root.
type Loader struct {
	fs        fs.FS
	pattern   string
	recursive bool
}

// NewLoader constructs a Loader over filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	return &Loader{
		fs:        filesystem,
		pattern:   pattern,
		recursive: cfg.Recursive,
	}
}

// FS exposes the underlying filesystem.
func (l *Loader) FS() fs.FS {
	return l.fs
}

// LoadFile reads and parses a single document.
func (l *Loader) LoadFile(ctx context.Context, name string) (*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = cleanName(name)
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	info, err := fs.Stat(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", name, err)
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}
	return BuildDocument(name, data, info.ModTime())
}

// LoadDirectory parses every matching document below dir, sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root := cleanName(dir)
	recursive := l.recursive
	if opts.Recursive != nil {
		recursive = *opts.Recursive
	}
	pattern := l.pattern
	if p := strings.TrimSpace(opts.Pattern); p != "" {
		pattern = p
	}

	var docs []*interfaces.Document
	err := fs.WalkDir(l.fs, root, func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if name != root && (!recursive || isHidden(d.Name())) {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if isHidden(d.Name()) || !matches(pattern, name) {
			return nil
		}
		doc, err := l.LoadFile(ctx, name)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(docs, func(a, b *interfaces.Document) int {
		return strings.Compare(a.FilePath, b.FilePath)
	})
	return docs, nil
}

func cleanName(name string) string {
	name = strings.Trim(path.Clean("/"+strings.TrimSpace(name)), "/")
	if name == "" {
		return "."
	}
	return name
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func matches(pattern, name string) bool {
	pattern = strings.ReplaceAll(pattern, "**/", "")
	target := name
	if !strings.Contains(pattern, "/") {
		target = path.Base(name)
	}
	ok, err := path.Match(pattern, target)
	return err == nil && ok
}
