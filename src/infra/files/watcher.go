package files

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher rescans the local catalog when the music directory changes.
// Events are debounced so a bulk copy triggers a single rescan.
type Watcher struct {
	catalog  *LocalCatalog
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a filesystem watcher over the catalog root and all of
// its subdirectories.
func NewWatcher(catalog *LocalCatalog) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		catalog:  catalog,
		watcher:  fsw,
		stopChan: make(chan struct{}),
	}
	if err := w.addRecursive(catalog.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins watching. Must be paired with Stop on teardown.
func (w *Watcher) Start() {
	go w.run()
	slog.Info("Catalog watcher started", "root", w.catalog.root)
}

// Stop halts the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.watcher.Close()
	})
}

func (w *Watcher) run() {
	var (
		debounce *time.Timer
		rescan   <-chan time.Time
	)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) {
				// New directories must be watched too.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addRecursive(event.Name)
				}
			}
			if debounce == nil {
				debounce = time.NewTimer(2 * time.Second)
			} else {
				debounce.Reset(2 * time.Second)
			}
			rescan = debounce.C
		case <-rescan:
			rescan = nil
			if err := w.catalog.Scan(); err != nil {
				slog.Error("Catalog rescan failed", "error", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Catalog watcher error", "error", err)
		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				slog.Warn("Failed to watch directory", "path", path, "error", err)
			}
		}
		return nil
	})
}
