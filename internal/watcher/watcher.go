// Package watcher provides file system watching with debouncing for block
// definition sources.
package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors definition directories and catalog databases for
// changes and sends debounced notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dirs      []string
	catalogs  []string
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}
	watched   []string
}

// Config holds watcher configuration options.
type Config struct {
	// Dirs are definition directories to watch for YAML changes.
	Dirs []string

	// Catalogs are sqlite catalog files whose directories are also
	// watched. Empty disables catalog watching.
	Catalogs []string

	// Debounce collapses a burst of events into one notification.
	Debounce time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(dirs ...string) Config {
	return Config{
		Dirs:     dirs,
		Debounce: 1 * time.Second,
	}
}

// New creates a definition source watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 1 * time.Second
	}

	return &Watcher{
		fsWatcher: fsw,
		dirs:      append([]string(nil), cfg.Dirs...),
		catalogs:  append([]string(nil), cfg.Catalogs...),
		debounce:  debounce,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching every configured path that exists. Missing
// directories are skipped; at least one path must be watchable.
// Returns a channel that receives a signal when a definition source changes.
func (w *Watcher) Start() (<-chan struct{}, error) {
	for _, dir := range w.dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			continue
		}
		w.watched = append(w.watched, dir)
	}
	for _, catalog := range w.catalogs {
		// Watch the directory: sqlite swaps files on checkpoint, so
		// watching the file inode directly misses changes.
		dir := filepath.Dir(catalog)
		if err := w.fsWatcher.Add(dir); err != nil {
			continue
		}
		w.watched = append(w.watched, dir)
	}
	if len(w.watched) == 0 {
		return nil, fmt.Errorf("none of the configured paths can be watched")
	}

	go w.loop()

	return w.onChange, nil
}

// Watched lists the paths actually under watch. Valid after Start.
func (w *Watcher) Watched() []string {
	return append([]string(nil), w.watched...)
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !w.isRelevantEvent(event) {
				continue
			}

			// Reset or start the debounce timer
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = true
			} else {
				if !timer.Stop() {
					// Drain the timer channel if it already fired
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
				pending = true
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				// Non-blocking send - drop if channel full
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			// Keep watching through transient errors. Callers can wrap
			// the watcher if they need error visibility.

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent checks if the event should trigger a reload.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	// Writes, creates, removes and renames all change what a reload would
	// produce. Chmod does not.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	base := filepath.Base(event.Name)
	for _, catalog := range w.catalogs {
		cbase := filepath.Base(catalog)
		// The WAL file may be created fresh on the first write.
		if base == cbase || base == cbase+"-wal" {
			return true
		}
	}

	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
