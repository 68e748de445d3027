// Package contentwatch watches the dynamic content directory and hands new
// or changed package files to a handler.
//
// Change bursts on a file are debounced, and a file whose bytes did not
// change since it was last handled is skipped. The handler always runs on the
// watcher's single goroutine, so it may write to the content graph without
// further locking.
package contentwatch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrWong99/wayfarer/internal/pack"
)

// Handler receives a package file. An error is logged and the watcher keeps
// running.
type Handler func(ctx context.Context, src pack.Source) error

// Option configures a [Watcher].
type Option func(*Watcher)

// WithDebounce sets how long a file must be quiet before it is handled. The
// default is 250ms.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher's logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithInitialScan makes [Watcher.Start] hand every package file already in
// the directory to the handler, in file-name order, before watching.
func WithInitialScan() Option {
	return func(w *Watcher) { w.initialScan = true }
}

// Watcher monitors one directory.
type Watcher struct {
	dir         string
	handler     Handler
	debounce    time.Duration
	logger      *slog.Logger
	initialScan bool

	fsw  *fsnotify.Watcher
	work chan string

	mu     sync.Mutex
	timers map[string]*time.Timer
	hashes map[string][sha256.Size]byte

	done     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher on dir. Call [Watcher.Start] to begin delivering
// files.
func New(dir string, handler Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("contentwatch: create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("contentwatch: watch %q: %w", dir, err)
	}

	w := &Watcher{
		dir:      dir,
		handler:  handler,
		debounce: 250 * time.Millisecond,
		fsw:      fsw,
		work:     make(chan string, 64),
		timers:   make(map[string]*time.Timer),
		hashes:   make(map[string][sha256.Size]byte),
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w, nil
}

// Start runs the watcher in the background until ctx is cancelled or
// [Watcher.Stop] is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(w.exited)
		if w.initialScan {
			w.scan(ctx)
		}
		w.loop(ctx)
	}()
}

// Stop stops the watcher and waits for an in-flight handler to return.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		for _, t := range w.timers {
			t.Stop()
		}
		w.mu.Unlock()
		w.wg.Wait()
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if _, ok := pack.FormatOf(event.Name); !ok {
				continue
			}
			w.logger.Debug("contentwatch: change detected", "file", event.Name, "op", event.Op.String())
			w.schedule(event.Name)

		case path := <-w.work:
			w.handle(ctx, path)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("contentwatch: watcher error", "err", err)
		}
	}
}

// schedule debounces path. The timer only enqueues; the loop handles.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() { w.enqueue(path) })
}

// enqueue hands path to the loop. It gives up once the watcher is stopped
// or the loop has exited.
func (w *Watcher) enqueue(path string) {
	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()
	select {
	case w.work <- path:
	case <-w.done:
	case <-w.exited:
	}
}

func (w *Watcher) scan(ctx context.Context) {
	sources, err := pack.ReadDir(ctx, w.dir)
	if err != nil {
		w.logger.Error("contentwatch: initial scan", "dir", w.dir, "err", err)
		return
	}
	for _, src := range sources {
		w.deliver(ctx, src)
	}
}

func (w *Watcher) handle(ctx context.Context, path string) {
	src, err := pack.ReadFile(path)
	if err != nil {
		// Usually a file removed or renamed before the debounce fired.
		w.logger.Warn("contentwatch: read package", "file", path, "err", err)
		return
	}
	w.deliver(ctx, src)
}

func (w *Watcher) deliver(ctx context.Context, src pack.Source) {
	key := filepath.Clean(src.Path)
	sum := sha256.Sum256(src.Data)

	w.mu.Lock()
	prev, seen := w.hashes[key]
	w.mu.Unlock()
	if seen && prev == sum {
		w.logger.Debug("contentwatch: unchanged, skipping", "file", src.Path)
		return
	}

	if err := w.handler(ctx, src); err != nil {
		w.logger.Error("contentwatch: handle package", "file", src.Path, "err", err)
	}

	w.mu.Lock()
	w.hashes[key] = sum
	w.mu.Unlock()
}
