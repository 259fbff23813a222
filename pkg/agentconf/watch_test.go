package agentconf

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zabbix_agentd.conf")
	if err := os.WriteFile(path, []byte("ServerActive=first.example.com\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []*Config
	reloaded := make(chan struct{}, 4)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := Watch(ctx, path, 10*time.Millisecond, func(cfg *Config, err error) {
			if err != nil {
				t.Errorf("watch callback error: %v", err)
				return
			}
			mu.Lock()
			got = append(got, cfg)
			mu.Unlock()
			reloaded <- struct{}{}
		})
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	}()

	// Give the watcher time to register before the change.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte("ServerActive=second.example.com\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	mu.Lock()
	last := got[len(got)-1]
	mu.Unlock()
	if last.ServerActive != "second.example.com" {
		t.Errorf("ServerActive = %q, want %q", last.ServerActive, "second.example.com")
	}

	cancel()
	wg.Wait()
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zabbix_agentd.conf")
	if err := os.WriteFile(path, []byte("ServerActive=first.example.com\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = Watch(ctx, path, 10*time.Millisecond, func(cfg *Config, err error) {
			select {
			case fired <- struct{}{}:
			default:
			}
		})
	}()

	time.Sleep(50 * time.Millisecond)

	// A change to an unrelated file in the same directory must not reload.
	if err := os.WriteFile(filepath.Join(dir, "other.conf"), []byte("Server=x\n"), 0o644); err != nil {
		t.Fatalf("write other file: %v", err)
	}

	select {
	case <-fired:
		t.Fatal("unexpected reload for unrelated file")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	wg.Wait()
}
