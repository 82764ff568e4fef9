package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dailycheer/cheer-notifier/internal/logging"
)

const defaultDebounce = 500 * time.Millisecond

// Reconfigurer reloads settings and re-arms timers
type Reconfigurer interface {
	Reconfigure(ctx context.Context) error
}

// SettingsWatcher triggers a reconfigure whenever the settings file changes
type SettingsWatcher struct {
	path     string
	target   Reconfigurer
	debounce time.Duration
	logger   logging.Logger

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// NewSettingsWatcher creates a watcher for the settings file at path
func NewSettingsWatcher(path string, target Reconfigurer, debounce time.Duration, logger logging.Logger) *SettingsWatcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &SettingsWatcher{
		path:     filepath.Clean(path),
		target:   target,
		debounce: debounce,
		logger:   logging.Component(logger, "watcher"),
	}
}

// Start watches the settings directory until ctx is done.
// The directory is watched so editors that replace the file are still seen.
func (w *SettingsWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch settings directory: %w", err)
	}
	w.watcher = watcher

	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.WithField("path", w.path).Info("watching settings")
	return nil
}

// Stop closes the watcher and waits for the loop to exit
func (w *SettingsWatcher) Stop() {
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.wg.Wait()
}

func (w *SettingsWatcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			// Editors emit bursts of events for one save
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() { w.reload(ctx) })
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("watcher error")
		}
	}
}

func (w *SettingsWatcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.target.Reconfigure(ctx); err != nil {
		w.logger.WithError(err).Warn("settings reload failed")
		return
	}
	w.logger.Info("settings reloaded")
}
