package fonts

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch keeps r in sync with font files added to, changed in or removed from
// dir until ctx is cancelled. Only the top-level directory and directories
// present at start are watched.
func Watch(ctx context.Context, r *Registry, dir string, patterns []string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create font watcher: %w", err)
	}

	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
	if err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				handleEvent(r, dir, patterns, ev, logger)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("font watcher error", "error", err)
			}
		}
	}()
	return nil
}

func handleEvent(r *Registry, dir string, patterns []string, ev fsnotify.Event, logger *slog.Logger) {
	rel, err := filepath.Rel(dir, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if !matchesAny(patterns, rel) {
		return
	}
	family := FamilyName(rel)
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		r.Remove(family)
		logger.Info("font removed", "family", family)
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		data, err := os.ReadFile(ev.Name)
		if err != nil {
			logger.Warn("reading font file", "file", ev.Name, "error", err)
			return
		}
		if err := r.Register(family, data); err != nil {
			// Partially written files fail to parse; the next write retries.
			logger.Debug("font not registered yet", "file", ev.Name, "error", err)
			return
		}
		logger.Info("font registered", "family", family)
	}
}
