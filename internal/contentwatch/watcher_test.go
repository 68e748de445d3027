package contentwatch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrWong99/wayfarer/internal/contentwatch"
	"github.com/MrWong99/wayfarer/internal/pack"
)

func startWatcher(t *testing.T, dir string, opts ...contentwatch.Option) <-chan pack.Source {
	t.Helper()
	got := make(chan pack.Source, 16)
	handler := func(_ context.Context, src pack.Source) error {
		got <- src
		return nil
	}
	opts = append([]contentwatch.Option{contentwatch.WithDebounce(20 * time.Millisecond)}, opts...)
	w, err := contentwatch.New(dir, handler, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	t.Cleanup(func() {
		cancel()
		if err := w.Stop(); err != nil {
			t.Errorf("Stop: %v", err)
		}
	})
	return got
}

func waitFor(t *testing.T, got <-chan pack.Source) pack.Source {
	t.Helper()
	select {
	case src := <-got:
		return src
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for package")
		return pack.Source{}
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherDeliversChangedFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	got := startWatcher(t, dir)

	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	path := filepath.Join(dir, "scene_1.json")
	writeFile(t, path, `{"packageId": "scene_1"}`)

	src := waitFor(t, got)
	if src.Name != "scene_1.json" || string(src.Data) != `{"packageId": "scene_1"}` {
		t.Fatalf("delivered %q: %s", src.Name, src.Data)
	}

	// Same bytes again are skipped; the next delivery is the new content.
	writeFile(t, path, `{"packageId": "scene_1"}`)
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, `{"packageId": "scene_1", "metadata": {"version": "2"}}`)

	src = waitFor(t, got)
	if string(src.Data) != `{"packageId": "scene_1", "metadata": {"version": "2"}}` {
		t.Errorf("second delivery = %s", src.Data)
	}
}

func TestWatcherInitialScan(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "02_b.yaml"), "packageId: b\n")
	writeFile(t, filepath.Join(dir, "01_a.json"), `{"packageId": "a"}`)

	got := startWatcher(t, dir, contentwatch.WithInitialScan())

	if first := waitFor(t, got); first.Name != "01_a.json" {
		t.Errorf("first = %s, want 01_a.json", first.Name)
	}
	if second := waitFor(t, got); second.Name != "02_b.yaml" {
		t.Errorf("second = %s, want 02_b.yaml", second.Name)
	}
}

func TestWatcherHandlerErrorKeepsRunning(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	calls := make(chan string, 4)
	w, err := contentwatch.New(dir, func(_ context.Context, src pack.Source) error {
		calls <- src.Name
		return errors.New("boom")
	}, contentwatch.WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	w.Start(context.Background())
	t.Cleanup(func() { _ = w.Stop() })

	for _, name := range []string{"a.toml", "b.toml"} {
		writeFile(t, filepath.Join(dir, name), `packageId = "x"`)
		select {
		case got := <-calls:
			if got != name {
				t.Errorf("handled %s, want %s", got, name)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s", name)
		}
	}
}

func TestNewMissingDir(t *testing.T) {
	t.Parallel()
	_, err := contentwatch.New(filepath.Join(t.TempDir(), "missing"), func(context.Context, pack.Source) error { return nil })
	if err == nil {
		t.Fatal("expected error for missing dir")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	t.Parallel()
	w, err := contentwatch.New(t.TempDir(), func(context.Context, pack.Source) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	w.Start(context.Background())
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}
