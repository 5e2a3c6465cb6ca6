package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "doc.json")
	other := filepath.Join(dir, "other.json")
	writeFile(t, doc, "{}")
	writeFile(t, other, "{}")

	w, err := New(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Add(doc); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	writeFile(t, other, "[]")
	writeFile(t, doc, `{"a":1}`)
	writeFile(t, doc, `{"a":2}`)

	select {
	case ev := <-w.Events():
		if len(ev.Paths) != 1 || ev.Paths[0] != doc {
			t.Errorf("event paths = %v, want [%s]", ev.Paths, doc)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}

	select {
	case ev := <-w.Events():
		t.Errorf("unexpected second event %v", ev.Paths)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherAddErrors(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "doc.json")
	writeFile(t, doc, "{}")

	w, err := New(0)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Add(filepath.Join(dir, "missing.json")); !errors.Is(err, ErrPathNotExist) {
		t.Errorf("Add(missing) error = %v, want ErrPathNotExist", err)
	}
	if err := w.Add(doc); err != nil {
		t.Fatal(err)
	}
	if err := w.Add(doc); !errors.Is(err, ErrAlreadyWatching) {
		t.Errorf("Add(twice) error = %v, want ErrAlreadyWatching", err)
	}
	if got := w.Files(); len(got) != 1 || got[0] != doc {
		t.Errorf("Files() = %v", got)
	}
	if err := w.Remove(doc); err != nil {
		t.Errorf("Remove() error = %v", err)
	}
	if got := w.Files(); len(got) != 0 {
		t.Errorf("Files() after Remove = %v", got)
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Add(doc); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Add(closed) error = %v, want ErrWatcherClosed", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	w, err := New(10 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(Event) {})
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
