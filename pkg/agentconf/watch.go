package agentconf

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the delay between a file change and the re-read.
// Editors tend to produce bursts of write events for one save.
const DefaultDebounce = 100 * time.Millisecond

// WatchFunc receives the re-parsed configuration after each change.
// On a read or watcher error cfg is nil and err carries the cause.
type WatchFunc func(cfg *Config, err error)

// Watch monitors the configuration file at path and invokes fn after each
// write or create, debounced by the given delay (DefaultDebounce when
// nonpositive). It blocks until ctx is done and watches the parent
// directory, so the file may be replaced by rename.
func Watch(ctx context.Context, path string, debounce time.Duration, fn WatchFunc) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("agentconf: create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("agentconf: watch %s: %w", dir, err)
	}

	base := filepath.Base(path)

	var mu sync.Mutex
	var timer *time.Timer
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	reload := func() {
		cfg, err := Load(path)
		fn(cfg, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, reload)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fn(nil, fmt.Errorf("agentconf: watcher: %w", err))
		}
	}
}
