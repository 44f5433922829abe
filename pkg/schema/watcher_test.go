package schema

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	doc := "name: x\nentities:\n  E:\n    fields:\n      f: string\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(&WatcherConfig{Path: path, DebounceInterval: 20 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	reloads := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- w.Watch(ctx, func() error {
			reloads <- struct{}{}
			return nil
		})
	}()

	// Give the watch loop time to register the directory.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte(doc+"      g: string\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloads:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after file write")
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	select {
	case err := <-watchDone:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch() did not return after Stop()")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	if err := os.WriteFile(path, []byte("name: x\nentities:\n  E:\n    fields:\n      f: string\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(&WatcherConfig{Path: path, DebounceInterval: 20 * time.Millisecond}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	reloads := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = w.Watch(ctx, func() error {
			reloads <- struct{}{}
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloads:
		t.Fatal("reload fired for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStopBeforeWatch(t *testing.T) {
	w, err := NewWatcher(&WatcherConfig{Path: "schema.yaml"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() on idle watcher error = %v", err)
	}

	// Stop released the fsnotify handle, so a later Watch cannot
	// register its directory.
	if err := w.Watch(context.Background(), func() error { return nil }); err == nil {
		t.Error("Watch() succeeded on a stopped watcher")
	}
}

func TestWatcherRejectsDoubleWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	if err := os.WriteFile(path, []byte("name: x\nentities:\n  E:\n    fields:\n      f: string\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(&WatcherConfig{Path: path}, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Watch(ctx, func() error { return nil }) }()

	time.Sleep(100 * time.Millisecond)

	if err := w.Watch(ctx, func() error { return nil }); err == nil {
		t.Error("second Watch() succeeded while the first is running")
	}
	_ = w.Stop()
}

func TestDebouncerCollapsesBursts(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	defer d.stop()

	fired := make(chan struct{}, 16)
	for i := 0; i < 5; i++ {
		d.trigger(func() { fired <- struct{}{} })
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced callback never fired")
	}

	select {
	case <-fired:
		t.Error("burst produced more than one callback")
	case <-time.After(200 * time.Millisecond):
	}
}
