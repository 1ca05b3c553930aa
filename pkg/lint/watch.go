package lint

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for more changes before linting.
const DefaultDebounce = 300 * time.Millisecond

// Report is the outcome of one lint pass.
type Report struct {
	Files      []string
	Violations []Violation
	Err        error
}

// Watcher re-lints schema files when they change.
type Watcher struct {
	patterns []string
	debounce time.Duration
	logger   *slog.Logger
	excludes map[string]bool
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period after the last change.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger *slog.Logger) WatchOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a watcher over glob patterns.
func NewWatcher(patterns []string, opts ...WatchOption) *Watcher {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}
	w := &Watcher{
		patterns: patterns,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		excludes: map[string]bool{".git": true, "node_modules": true, "vendor": true},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Run lints once, then again after every burst of changes to a matching
// file, passing each report to fn. It returns when ctx is done.
func (w *Watcher) Run(ctx context.Context, fn func(Report)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	for _, pattern := range w.patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		if err := w.addRecursive(fsw, filepath.FromSlash(base)); err != nil {
			return err
		}
	}
	w.logger.Info("lint watcher started", "patterns", w.patterns, "debounce", w.debounce)

	fn(w.lint())

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(fsw, event.Name); err != nil {
						w.logger.Warn("lint watcher: add directory failed", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if w.matches(event.Name) {
				w.logger.Debug("lint watcher: change", "path", event.Name, "op", event.Op.String())
				fire = time.After(w.debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("lint watcher error", "error", err)
		case <-fire:
			fire = nil
			fn(w.lint())
		}
	}
}

func (w *Watcher) lint() Report {
	files, err := Files(w.patterns...)
	if err != nil {
		return Report{Err: err}
	}
	violations, err := Paths(files)
	return Report{Files: files, Violations: violations, Err: err}
}

func (w *Watcher) matches(name string) bool {
	name = filepath.Clean(name)
	for _, pattern := range w.patterns {
		if ok, _ := doublestar.PathMatch(filepath.Clean(pattern), name); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	if root == "" {
		root = "."
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.excludes[d.Name()] {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
