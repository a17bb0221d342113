// Package watcher rebuilds a dataset when container files in its
// directories change.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jamesainslie/h5index/pkg/h5index/container"
	"github.com/jamesainslie/h5index/pkg/h5index/dataset"
	"github.com/jamesainslie/h5index/pkg/h5index/logging"
	"github.com/jamesainslie/h5index/pkg/h5index/manifest"
)

// BuildFunc constructs a fresh dataset.
type BuildFunc func() (*dataset.Dataset, error)

// RebuildFunc returns a BuildFunc that rescans paths on every call. Manifests
// are persisted unless the options say otherwise.
func RebuildFunc(paths []string, key string, opts ...dataset.FolderOption) BuildFunc {
	opts = append(append([]dataset.FolderOption(nil), opts...),
		dataset.WithScanOverrides(map[string]any{"force_rescan": true}))
	return func() (*dataset.Dataset, error) {
		return dataset.NewDataset(paths, key, opts...)
	}
}

// Watcher watches dataset directories (not their subdirectories) for
// container file changes.
type Watcher struct {
	fsw        *fsnotify.Watcher
	debounce   time.Duration
	extensions []string
	log        *logging.Logger

	mu     sync.Mutex
	paths  []string
	closed bool
}

// New watches every directory in paths. An empty extensions list uses
// container.DefaultExtensions.
func New(paths []string, debounce time.Duration, extensions []string) (*Watcher, error) {
	if len(extensions) == 0 {
		extensions = container.DefaultExtensions
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:        fsw,
		debounce:   debounce,
		extensions: append([]string(nil), extensions...),
		log:        logging.Get("watcher"),
	}
	for _, p := range paths {
		if err := w.add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", abs)
	}
	if err := w.fsw.Add(abs); err != nil {
		return fmt.Errorf("watch %s: %w", abs, err)
	}

	w.mu.Lock()
	w.paths = append(w.paths, abs)
	w.mu.Unlock()
	return nil
}

// Paths returns the watched directories.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.paths...)
}

// Close stops watching. Run returns once the event channels close.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}

// Run blocks until ctx is cancelled or the watcher is closed. After a burst
// of container file events has been quiet for the debounce interval, build
// is called and its result passed to onRebuild. Rebuilds never overlap.
func (w *Watcher) Run(ctx context.Context, build BuildFunc, onRebuild func(*dataset.Dataset, error)) {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("change detected", "file", event.Name, "op", event.Op.String())
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			ds, err := build()
			if err != nil {
				w.log.Error("rebuild failed", "error", err)
			} else {
				w.log.Info("dataset rebuilt", "files", ds.Folder().NumFiles())
			}
			if onRebuild != nil {
				onRebuild(ds, err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", "error", err)
		}
	}
}

// relevant reports whether event concerns a container file. Manifest writes
// are ignored so that a rebuild does not trigger itself.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, manifest.FileName) || strings.HasPrefix(name, ".") {
		return false
	}
	for _, ext := range w.extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
