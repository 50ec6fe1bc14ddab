package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"declutter/internal/logging"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(50*time.Millisecond, func() { fired.Add(1) })

	for i := 0; i < 5; i++ {
		d.trigger()
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("burst should fire once, fired %d times", got)
	}
}

func TestDebouncerStopCancelsPendingFire(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(30*time.Millisecond, func() { fired.Add(1) })

	d.trigger()
	d.stop()

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("stopped debouncer fired %d times", got)
	}
}

func TestWatcherRunsInitialPass(t *testing.T) {
	dir := t.TempDir()
	ran := make(chan struct{}, 8)
	runner := func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- New(dir, 20*time.Millisecond, runner, logging.NewNop()).Watch(ctx)
	}()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("initial pass never ran")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Watch returned %v, want context.Canceled", err)
	}
}

func TestWatcherRunsAfterFileDrop(t *testing.T) {
	dir := t.TempDir()
	ran := make(chan struct{}, 8)
	runner := func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- New(dir, 20*time.Millisecond, runner, logging.NewNop()).Watch(ctx)
	}()

	// Drain the startup pass first.
	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("initial pass never ran")
	}

	if err := os.WriteFile(filepath.Join(dir, "dropped.txt"), []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("file drop never triggered a pass")
	}

	cancel()
	<-done
}

func TestWatcherStopsWhenPassFails(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("pass failed")
	runner := func(ctx context.Context) error { return boom }

	err := New(dir, 20*time.Millisecond, runner, logging.NewNop()).Watch(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Watch returned %v, want the runner failure", err)
	}
}

func TestWatcherRejectsMissingSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	err := New(missing, 0, func(context.Context) error { return nil }, logging.NewNop()).Watch(context.Background())
	if err == nil {
		t.Fatal("expected an error for a missing watch directory")
	}
}
