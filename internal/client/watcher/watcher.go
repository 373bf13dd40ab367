package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rjeczalik/notify"
	"github.com/watchdeck/watchdeck/internal/utils"
)

const eventBufferSize = 64

// FilterFunc reports whether an event for path should be dropped.
type FilterFunc func(path string) bool

// Watcher observes a set of directories recursively and emits translated
// file events. Create and write events go through the filter; deletes always
// pass, the dashboard treats files that are already gone as deleted.
type Watcher struct {
	watchDirs []string
	events    chan FileEvent
	rawEvents chan notify.EventInfo
	filter    FilterFunc
	filterMu  sync.RWMutex
	done      chan struct{}
	wg        sync.WaitGroup
}

func New(watchDirs ...string) *Watcher {
	return &Watcher{
		watchDirs: watchDirs,
		done:      make(chan struct{}),
	}
}

// FilterPaths sets a callback to drop create/write events before they are
// forwarded. The callback should return true if the event should be dropped.
func (w *Watcher) FilterPaths(filter FilterFunc) {
	w.filterMu.Lock()
	defer w.filterMu.Unlock()
	w.filter = filter
}

func (w *Watcher) Start(ctx context.Context) error {
	if len(w.watchDirs) == 0 {
		return errors.New("no directories to watch")
	}

	w.rawEvents = make(chan notify.EventInfo, eventBufferSize)
	w.events = make(chan FileEvent, eventBufferSize)

	for _, dir := range w.watchDirs {
		if !utils.DirExists(dir) {
			slog.Warn("watch dir missing, creating", "dir", dir)
			if err := utils.EnsureDir(dir); err != nil {
				return fmt.Errorf("create watch dir '%s': %w", dir, err)
			}
		}

		slog.Info("watching directory", "dir", dir)
		if err := notify.Watch(dir+"/...", w.rawEvents, notify.Create|notify.Write|notify.Remove|notify.Rename); err != nil {
			notify.Stop(w.rawEvents)
			return fmt.Errorf("watch '%s': %w", dir, err)
		}
	}

	w.wg.Add(1)
	go w.pumpEvents(ctx)

	return nil
}

func (w *Watcher) Stop() {
	slog.Info("watcher stopping")

	close(w.done)

	// Stops all watchpoints registered on the channel
	if w.rawEvents != nil {
		notify.Stop(w.rawEvents)
	}

	w.wg.Wait()

	slog.Info("watcher stopped")
}

func (w *Watcher) Events() <-chan FileEvent {
	return w.events
}

func (w *Watcher) pumpEvents(ctx context.Context) {
	defer func() {
		close(w.events)
		w.wg.Done()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case raw, ok := <-w.rawEvents:
			if !ok {
				return
			}

			kind, ok := eventKind(raw.Event())
			if !ok {
				continue
			}

			// Deletes skip the filter: the file is gone, there is nothing
			// left to stat or size-check.
			if kind != Deleted && w.shouldDrop(raw.Path()) {
				continue
			}

			event := FileEvent{Path: raw.Path(), Kind: kind}
			select {
			case w.events <- event:
				slog.Debug("watcher", "event", kind, "path", raw.Path())
			default:
				slog.Warn("watcher dropped event", "reason", "channel full", "path", raw.Path())
			}
		}
	}
}

func (w *Watcher) shouldDrop(path string) bool {
	w.filterMu.RLock()
	defer w.filterMu.RUnlock()
	return w.filter != nil && w.filter(path)
}

// eventKind translates a raw notify event. A rename reports the old path,
// which is gone after the rename, so it maps to a delete; the new path
// arrives as a separate create.
func eventKind(e notify.Event) (EventKind, bool) {
	switch {
	case e&notify.Create != 0:
		return Created, true
	case e&notify.Write != 0:
		return Modified, true
	case e&notify.Remove != 0, e&notify.Rename != 0:
		return Deleted, true
	default:
		return 0, false
	}
}
