package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher flushes an accessor's cache whenever the local content tree changes.
type Watcher struct {
	accessor *Accessor
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

// NewWatcher watches the content root and every collection directory below it.
// Directories that do not exist are skipped.
func NewWatcher(accessor *Accessor, root string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create content watcher: %w", err)
	}

	dirs := []string{root}
	for _, c := range accessor.Collections() {
		if c.Dir != "" {
			dirs = append(dirs, filepath.Join(root, filepath.FromSlash(c.Dir)))
		}
	}

	watched := 0
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watched++
	}
	if watched == 0 {
		_ = fw.Close()
		return nil, fmt.Errorf("no content directories to watch under %s", root)
	}

	return &Watcher{
		accessor: accessor,
		watcher:  fw,
		logger:   slog.Default(),
	}, nil
}

// Run processes change events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.accessor.Invalidate()
				w.logger.DebugContext(ctx, "content changed, cache flushed", "path", event.Name, "op", event.Op.String())
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WarnContext(ctx, "content watcher error", "error", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
