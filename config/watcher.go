package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a project configuration file when it changes on disk and
// delivers each successfully validated reload to a callback. Invalid edits
// are logged and skipped; the previous configuration stays in effect.
type Watcher struct {
	path     string
	loader   *Loader
	onReload func(*ProjectConfig)
	logger   *slog.Logger

	fw   *fsnotify.Watcher
	done chan struct{}

	// debounce coalesces editor save bursts into one reload.
	debounce time.Duration
}

// NewWatcher creates a watcher for the config file at path. onReload is
// called with each valid new configuration.
func NewWatcher(path string, onReload func(*ProjectConfig)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}

	// Watch the directory, not the file: editors replace files on save,
	// which drops a watch set on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:     path,
		loader:   NewLoader(),
		onReload: onReload,
		logger:   slog.Default(),
		fw:       fw,
		done:     make(chan struct{}),
		debounce: 100 * time.Millisecond,
	}, nil
}

// Start begins watching in a background goroutine. Stop terminates it.
func (w *Watcher) Start() {
	go w.loop()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			w.reload()

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := w.loader.LoadFromFile(w.path)
	if err != nil {
		w.logger.Warn("config reload skipped", "path", w.path, "error", err)
		return
	}
	w.logger.Info("config reloaded", "path", w.path, "pipelines", len(cfg.Pipelines))
	w.onReload(cfg)
}

// Stop terminates the watcher and releases its resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fw.Close()
}
