// Package watcher drives the bump engine from file-system events.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/docstamp/internal/storage"
)

// DefaultDebounce is how long a path must stay quiet before it is handed on.
const DefaultDebounce = 200 * time.Millisecond

// Handler reacts to settled changes. Paths are root-relative slash paths.
type Handler interface {
	DocumentsChanged(ctx context.Context, paths []string)
	IndexChanged(ctx context.Context)
}

// Config selects what is watched.
type Config struct {
	Dir        string // corpus directory relative to the store root
	IndexPath  string
	Extensions []string
	Debounce   time.Duration
}

// Watch starts an fsnotify watcher on the corpus directory and processes
// events until ctx is cancelled. Created and written documents are collected
// and handed to h once they have been quiet for the debounce interval; a
// change to the index document additionally triggers h.IndexChanged.
//
// New directories created at runtime are added to the watch list and any
// documents already inside them are queued.
func Watch(ctx context.Context, store storage.Provider, cfg Config, logger *slog.Logger, h Handler) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := filepath.Join(store.Root(), filepath.FromSlash(cfg.Dir))
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	indexPath := path.Clean(cfg.IndexPath)

	logger.Info("watcher: started", slog.String("root", root))

	pending := make(map[string]struct{})
	indexDirty := false

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	queue := func(abs string) {
		if !storage.HasExt(abs, cfg.Extensions) {
			return
		}
		rel, err := store.Rel(abs)
		if err != nil {
			return
		}
		pending[rel] = struct{}{}
		if rel == indexPath {
			indexDirty = true
		}
		schedule()
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			if len(pending) > 0 {
				paths := make([]string, 0, len(pending))
				for p := range pending {
					paths = append(paths, p)
				}
				slices.Sort(paths)
				clear(pending)
				logger.Debug("watcher: settled", slog.Int("count", len(paths)))
				h.DocumentsChanged(ctx, paths)
			}
			if indexDirty {
				indexDirty = false
				h.IndexChanged(ctx)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
					queueDir(ev.Name, queue)
					continue
				}
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				queue(ev.Name)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// The new name of a rename arrives as its own Create event.
				if rel, err := store.Rel(ev.Name); err == nil && rel == indexPath {
					indexDirty = true
					schedule()
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// queueDir queues every file already present in a newly created directory.
func queueDir(dir string, queue func(string)) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		queue(p)
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
