// Package watcher reports settled changes to a single file, such as a
// snapshot that is re-exported while the checker runs.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors one file. The parent directory is watched so that
// replace-by-rename writes are seen too.
type Watcher struct {
	logger *slog.Logger
	path   string
	opts   Options
	fs     *fsnotify.Watcher

	mu      sync.Mutex
	pending *pendingChange

	events    chan Event
	errors    chan error
	done      chan struct{}
	closeOnce sync.Once
}

// pendingChange tracks a file that may still be changing.
type pendingChange struct {
	size    int64
	modTime time.Time
	exists  bool
	timer   *time.Timer
}

// New creates a watcher for path. The file itself may not exist yet, but its
// directory must.
func New(logger *slog.Logger, path string, opts Options) (*Watcher, error) {
	opts.setDefaults()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		logger: logger,
		path:   abs,
		opts:   opts,
		fs:     fsw,
		events: make(chan Event, 16),
		errors: make(chan error, 4),
		done:   make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Events returns settled change events. The channel is never closed; stop
// reading once Run has returned.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors returns errors reported by the underlying watcher. Errors are
// dropped when nobody reads them.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Run processes file system notifications until ctx is canceled or Close is
// called.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.cancelPending()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "path", w.path, "error", err)
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.cancelPending()
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return
	}
	w.logger.Debug("file event", "path", w.path, "op", ev.Op.String())
	w.startSettling()
}

// startSettling (re)starts the settle timer with the file's current state.
func (w *Watcher) startSettling() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.timer.Stop()
	}

	p := &pendingChange{}
	p.size, p.modTime, p.exists = w.stat()
	p.timer = time.AfterFunc(w.opts.SettleDelay, w.checkSettled)
	w.pending = p
}

// checkSettled emits an event if the file has not changed since the timer
// was started, and restarts the timer otherwise.
func (w *Watcher) checkSettled() {
	ev, ok := w.settle()
	if !ok {
		return
	}
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

func (w *Watcher) settle() (Event, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p := w.pending
	if p == nil {
		return Event{}, false
	}

	size, modTime, exists := w.stat()
	if exists != p.exists || size != p.size || !modTime.Equal(p.modTime) {
		p.size, p.modTime, p.exists = size, modTime, exists
		p.timer = time.AfterFunc(w.opts.SettleDelay, w.checkSettled)
		return Event{}, false
	}
	w.pending = nil

	if !exists {
		return Event{Type: EventRemoved, Path: w.path}, true
	}
	return Event{Type: EventChanged, Path: w.path, Size: size, ModTime: modTime}, true
}

func (w *Watcher) stat() (size int64, modTime time.Time, exists bool) {
	info, err := os.Stat(w.path)
	if err != nil {
		return 0, time.Time{}, false
	}
	return info.Size(), info.ModTime(), true
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.timer.Stop()
		w.pending = nil
	}
}
