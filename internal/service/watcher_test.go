package service

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dailycheer/cheer-notifier/internal/logging"
)

type countingReconfigurer struct {
	calls int32
}

func (c *countingReconfigurer) Reconfigure(ctx context.Context) error {
	atomic.AddInt32(&c.calls, 1)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSettingsWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("global_enabled: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	target := &countingReconfigurer{}
	w := NewSettingsWatcher(path, target, 50*time.Millisecond, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("global_enabled: false\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return atomic.LoadInt32(&target.calls) >= 1 })

	// A burst of writes collapses into one reload
	time.Sleep(200 * time.Millisecond)
	if n := atomic.LoadInt32(&target.calls); n > 2 {
		t.Errorf("Expected writes to be debounced, got %d reloads", n)
	}
}

func TestSettingsWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	target := &countingReconfigurer{}
	w := NewSettingsWatcher(path, target, 20*time.Millisecond, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "cheer.db"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if n := atomic.LoadInt32(&target.calls); n != 0 {
		t.Errorf("Expected no reload, got %d", n)
	}
}
