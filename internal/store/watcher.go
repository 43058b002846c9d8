package store

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/attend-io/attend/internal/config"
	"github.com/attend-io/attend/internal/logging"
)

// Watcher flags external modification of the data directory during a
// session, so save and load can warn before clobbering or missing
// changes made outside the process.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	log       *logging.Logger
	done      chan struct{}

	mu    sync.Mutex
	dirty bool
}

// NewWatcher starts watching the activities subdirectory of dir. The
// directory must exist; callers typically create the watcher after the
// first successful load or save.
func NewWatcher(dir string, log *logging.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Join(dir, config.ActivitiesDirName)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		log:       log,
		done:      make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			w.mu.Lock()
			first := !w.dirty
			w.dirty = true
			w.mu.Unlock()
			if first {
				w.log.Warningf("data directory changed on disk: %s (%s)", event.Name, event.Op)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Errorf("watch error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Dirty reports whether the watched directory changed since the last
// Reset.
func (w *Watcher) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty
}

// Reset clears the dirty flag, typically right after a save or load
// initiated by this process.
func (w *Watcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirty = false
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsWatcher.Close()
}
