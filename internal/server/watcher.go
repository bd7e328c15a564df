package server

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the config file for changes and triggers hot reload
type Watcher struct {
	server   *Server
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Debounce rapid file changes
	debounce     time.Duration
	pendingTimer *time.Timer
	timerMu      sync.Mutex
}

// NewWatcher creates a new config file watcher
func NewWatcher(server *Server) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		server:   server,
		watcher:  fsWatcher,
		stopChan: make(chan struct{}),
		debounce: 500 * time.Millisecond,
	}

	return w, nil
}

// Start begins watching the config file's directory. Editors replace files
// on save instead of writing in place, so the directory is watched and
// events are filtered to the config filename.
func (w *Watcher) Start() error {
	if w.server.cfgPath == "" {
		log.Warn("No config path set, watcher not started")
		return nil
	}

	dir := filepath.Dir(w.server.cfgPath)
	if err := w.watcher.Add(dir); err != nil {
		log.Warn("Cannot watch config directory (may not exist yet): %v", err)
		return nil
	}

	w.wg.Add(1)
	go w.run()

	log.Info("Watching config file: %s", w.server.cfgPath)
	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	close(w.stopChan)
	w.wg.Wait()

	w.timerMu.Lock()
	if w.pendingTimer != nil {
		w.pendingTimer.Stop()
	}
	w.timerMu.Unlock()

	return w.watcher.Close()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("Watcher error: %v", err)

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Only care about the config file itself
	if filepath.Base(event.Name) != filepath.Base(w.server.cfgPath) {
		return
	}

	// Only care about write, create, remove, rename
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	log.Debug("Config file changed: %s (%s)", filepath.Base(event.Name), event.Op)

	// Debounce: schedule reload after debounce period
	w.scheduleReload()
}

func (w *Watcher) scheduleReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	// Cancel any pending reload
	if w.pendingTimer != nil {
		w.pendingTimer.Stop()
	}

	// Schedule new reload
	w.pendingTimer = time.AfterFunc(w.debounce, func() {
		w.doReload()
	})
}

func (w *Watcher) doReload() {
	log.Info("Hot reloading config...")
	if err := w.server.Reload(); err != nil {
		log.Error("Failed to reload config: %v", err)
	}
}
