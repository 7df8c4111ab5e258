package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// DefaultDebounce groups bursts of editor writes into a single rescan.
const DefaultDebounce = 250 * time.Millisecond

// Invalidator is notified when the content tree changes.
type Invalidator interface {
	Invalidate()
}

// Watcher invalidates an index whenever files below root are created,
// written, removed or renamed.
type Watcher struct {
	root     string
	target   Invalidator
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   interfaces.Logger
	onFlush  func()
}

// WatcherOption customises the watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides DefaultDebounce. Zero flushes on every event.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger attaches a logger for watch diagnostics.
func WithWatcherLogger(logger interfaces.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithFlushHook registers fn to run after each invalidation.
func WithFlushHook(fn func()) WatcherOption {
	return func(w *Watcher) {
		w.onFlush = fn
	}
}

// NewWatcher registers root and every visible directory below it.
func NewWatcher(root string, target Invalidator, opts ...WatcherOption) (*Watcher, error) {
	if target == nil {
		return nil, errors.New("content watcher: invalidator is required")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("content watcher: %w", err)
	}

	w := &Watcher{
		root:     filepath.Clean(root),
		target:   target,
		watcher:  fsw,
		debounce: DefaultDebounce,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				w.addTree(event.Name)
			}
			logging.WithFields(w.logger, map[string]any{
				"path": event.Name,
				"op":   event.Op.String(),
			}).Debug("content.watcher.event")

			if w.debounce == 0 {
				w.flush()
				continue
			}
			stop()
			timer = time.NewTimer(w.debounce)
			pending = timer.C
		case <-pending:
			pending = nil
			w.flush()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.WithFields(w.logger, map[string]any{"error": err}).Warn("content.watcher.error")
		}
	}
}

func (w *Watcher) flush() {
	w.target.Invalidate()
	w.logger.Info("content.watcher.invalidated")
	if w.onFlush != nil {
		w.onFlush()
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return !hidden(filepath.Base(event.Name))
}

// addTree watches dir and its visible subdirectories. Non directories are
// ignored.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			if name == dir && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name != w.root && hidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(name); err != nil {
			return fmt.Errorf("content watcher: watch %s: %w", name, err)
		}
		return nil
	})
}
