package verify

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const watchTimeout = 5 * time.Second

func scenarioWithLogDir(logDir string) []byte {
	return []byte(`
log_dir: ` + logDir + `
suites:
  - name: smoke
    checks:
      - agent:
          key: agent.ping
`)
}

func TestWatcherReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, scenarioWithLogDir("first-logs"), 0o644); err != nil {
		t.Fatal(err)
	}

	loads := make(chan *Scenario, 4)
	w := NewWatcher(path, 20*time.Millisecond, nil, func(sc *Scenario) {
		loads <- sc
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case sc := <-loads:
		if sc.LogDir != "first-logs" {
			t.Errorf("initial log dir = %q, want first-logs", sc.LogDir)
		}
	case <-time.After(watchTimeout):
		t.Fatal("timed out waiting for the initial load")
	}

	if err := os.WriteFile(path, scenarioWithLogDir("second-logs"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case sc := <-loads:
		if sc.LogDir != "second-logs" {
			t.Errorf("reloaded log dir = %q, want second-logs", sc.LogDir)
		}
	case <-time.After(watchTimeout):
		t.Fatal("timed out waiting for the reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil on cancel", err)
		}
	case <-time.After(watchTimeout):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherKeepsRunningOnBadReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, scenarioWithLogDir("first-logs"), 0o644); err != nil {
		t.Fatal(err)
	}

	loads := make(chan *Scenario, 4)
	w := NewWatcher(path, 20*time.Millisecond, nil, func(sc *Scenario) {
		loads <- sc
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	select {
	case <-loads:
	case <-time.After(watchTimeout):
		t.Fatal("timed out waiting for the initial load")
	}

	// A broken edit must not kill the watcher or reach the callback.
	if err := os.WriteFile(path, []byte("suites: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, scenarioWithLogDir("third-logs"), 0o644); err != nil {
		t.Fatal(err)
	}

	for {
		select {
		case sc := <-loads:
			if sc.LogDir == "third-logs" {
				return
			}
			// A debounce window can still deliver the first content.
			if sc.LogDir != "first-logs" {
				t.Fatalf("unexpected scenario %q reached the callback", sc.LogDir)
			}
		case <-time.After(watchTimeout):
			t.Fatal("timed out waiting for the good reload after a bad one")
		}
	}
}

func TestWatcherInitialLoadError(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing.yaml"), 0, nil, func(*Scenario) {
		t.Error("callback invoked for a missing scenario")
	})
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("Run() error = nil, want error")
	}
}
