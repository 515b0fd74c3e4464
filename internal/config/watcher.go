package config

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file when it changes on disk.
// Invalid files are reported through the error callback and the previous
// configuration stays current.
type Watcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	logger   *slog.Logger
	done     chan struct{}
	mu       sync.Mutex
	running  bool

	current  *Config
	onReload func(cfg *Config)
	onError  func(err error)
}

// NewWatcher creates a watcher for the config file at path.
// An empty path uses ConfigPath().
func NewWatcher(path string, initial *Config, logger *slog.Logger) (*Watcher, error) {
	if path == "" {
		path = ConfigPath()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if initial == nil {
		initial = DefaultConfig()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  watcher,
		filePath: path,
		logger:   logger,
		done:     make(chan struct{}),
		current:  initial,
	}, nil
}

// SetReloadCallback sets the callback invoked with each successfully reloaded config.
func (w *Watcher) SetReloadCallback(cb func(cfg *Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = cb
}

// SetErrorCallback sets the callback invoked when a changed file fails to load.
func (w *Watcher) SetErrorCallback(cb func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = cb
}

// Current returns the most recent valid configuration.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Start begins watching the file for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the directory containing the file (more reliable for editors that replace files)
	dir := filepath.Dir(w.filePath)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.watch()
	w.logger.Debug("config watcher started", "path", w.filePath)
	return nil
}

// watch is the main watch loop.
func (w *Watcher) watch() {
	filename := filepath.Base(w.filePath)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only care about our file
			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// reload loads and validates the file, then notifies the callbacks.
func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.filePath)

	w.mu.Lock()
	onReload, onError := w.onReload, w.onError
	if err == nil {
		w.current = cfg
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("config file changed but validation failed", "path", w.filePath, "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}

	w.logger.Info("config reloaded", "path", w.filePath)
	if onReload != nil {
		onReload(cfg)
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.done)
	return w.watcher.Close()
}
