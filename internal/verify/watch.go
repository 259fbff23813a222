package verify

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zbx-labs/zbxkit/pkg/log"
)

// DefaultDebounce coalesces the event bursts editors produce when
// saving a file.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a scenario file on change and hands each good load
// to a callback. The callback runs on the watcher's timer goroutine,
// so a long-running callback delays the next reload rather than
// overlapping it.
type Watcher struct {
	path   string
	delay  time.Duration
	logger log.Logger
	fn     func(*Scenario)

	mu       sync.Mutex
	debounce *time.Timer
}

// NewWatcher watches path. A non-positive delay selects the default
// debounce window.
func NewWatcher(path string, delay time.Duration, logger log.Logger, fn func(*Scenario)) *Watcher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Watcher{
		path:   path,
		delay:  delay,
		logger: logger,
		fn:     fn,
	}
}

// Run loads the scenario once, invokes the callback, and then keeps
// reloading on file changes until the context ends. The initial load
// must succeed; later reload failures are logged and the previous
// scenario stays in effect.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("verify: create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the parent directory: editors that replace the file via
	// rename would otherwise detach the watch. Registered before the
	// initial load so edits made during a long first run still land.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("verify: watch %s: %w", filepath.Dir(w.path), err)
	}

	sc, err := LoadScenario(w.path)
	if err != nil {
		return err
	}
	w.fn(sc)

	base := filepath.Base(w.path)
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
			w.debounceReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) debounceReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, func() {
		sc, err := LoadScenario(w.path)
		if err != nil {
			w.logger.Error("scenario reload failed", log.Err(err))
			return
		}
		w.logger.Info("scenario reloaded", log.String("path", w.path))
		w.fn(sc)
	})
}
