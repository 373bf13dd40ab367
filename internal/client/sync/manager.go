package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/watchdeck/watchdeck/internal/client/config"
	"github.com/watchdeck/watchdeck/internal/client/watcher"
	"github.com/watchdeck/watchdeck/internal/utils"
	"golang.org/x/sync/errgroup"
)

// LockFileName guards a project root against concurrent watch pipelines.
const LockFileName = ".watchdeck.lock"

var ErrRootLocked = errors.New("project root locked by another watchdeck instance")

// Manager owns the watch pipeline: detector -> filter -> debounce -> upload,
// plus settle-delayed deletes. One instance per project root.
type Manager struct {
	cfg      *config.Config
	uploader *Uploader
	watch    *watcher.Watcher
	debounce *watcher.Debouncer
	filter   *watcher.Filter
	lock     *flock.Flock

	mu       sync.Mutex
	draining bool
	inflight sync.WaitGroup
}

func NewManager(cfg *config.Config, uploader *Uploader) *Manager {
	filter := watcher.NewFilter(cfg.Root, cfg.MaxFileSize, cfg.IgnorePatterns, cfg.WatchPatterns)

	w := watcher.New(cfg.WatchPaths()...)
	w.FilterPaths(filter.Drop)

	return &Manager{
		cfg:      cfg,
		uploader: uploader,
		watch:    w,
		debounce: watcher.NewDebouncer(cfg.Debounce),
		filter:   filter,
		lock:     flock.New(filepath.Join(cfg.Root, LockFileName)),
	}
}

// Start runs the pipeline until the context is canceled. On shutdown,
// pending timers are abandoned and in-flight transfers run to completion.
func (m *Manager) Start(ctx context.Context) error {
	if err := utils.EnsureDir(m.cfg.Root); err != nil {
		return fmt.Errorf("create root '%s': %w", m.cfg.Root, err)
	}
	if err := m.acquireLock(); err != nil {
		return err
	}
	defer m.releaseLock()

	slog.Info("watch pipeline start",
		"root", m.cfg.Root,
		"dirs", m.cfg.WatchDirs,
		"targets", len(m.uploader.Targets()),
		"debounce", m.cfg.Debounce,
	)

	m.filter.Load()
	m.probeTargets(ctx)

	if err := m.watch.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		m.consumeEvents(egCtx)
		return nil
	})

	err := eg.Wait()
	slog.Info("shutting down watch pipeline")

	m.watch.Stop()

	m.mu.Lock()
	m.draining = true
	m.mu.Unlock()
	m.debounce.Stop()

	slog.Info("waiting for in-flight transfers")
	m.inflight.Wait()

	slog.Info("watch pipeline stopped")
	return err
}

func (m *Manager) consumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-m.watch.Events():
			if !ok {
				return
			}
			m.handleEvent(event)
		}
	}
}

func (m *Manager) handleEvent(event watcher.FileEvent) {
	path := event.Path

	switch event.Kind {
	case watcher.Created, watcher.Modified:
		slog.Info("file "+event.Kind.String(), "path", path)
		m.debounce.Trigger(path, func() {
			m.track(func() {
				// deliberately detached from the daemon context: an upload
				// that has started runs to completion even during shutdown
				_ = m.uploader.Upload(context.Background(), path)
			})
		})

	case watcher.Deleted:
		slog.Info("file deleted", "path", path)
		time.AfterFunc(m.cfg.DeleteSettle, func() {
			m.track(func() {
				_ = m.uploader.Delete(context.Background(), path)
			})
		})
	}
}

// track runs task counted against the in-flight group, unless the manager is
// already draining. Work that has not started is abandoned on shutdown; work
// that has started always finishes.
func (m *Manager) track(task func()) {
	m.mu.Lock()
	if m.draining {
		m.mu.Unlock()
		return
	}
	m.inflight.Add(1)
	m.mu.Unlock()

	defer m.inflight.Done()
	task()
}

// probeTargets checks reachability once at startup. Failures are reported
// but never fatal, a target may come up later.
func (m *Manager) probeTargets(ctx context.Context) {
	for _, target := range m.uploader.Targets() {
		probeCtx, cancel := context.WithTimeout(ctx, m.cfg.HealthTimeout)
		resp, err := target.Client.Health(probeCtx)
		cancel()

		if err != nil {
			slog.Error("cannot connect to target, uploads will fail until it is available", "target", target.URL, "error", err)
			continue
		}
		slog.Info("connected to target", "target", target.URL, "status", resp.Status)
	}
}

func (m *Manager) acquireLock() error {
	locked, err := m.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock '%s': %w", m.lock.Path(), err)
	}
	if !locked {
		return ErrRootLocked
	}
	return nil
}

func (m *Manager) releaseLock() {
	if !m.lock.Locked() {
		return
	}
	if err := m.lock.Unlock(); err != nil {
		slog.Warn("failed to release lock", "path", m.lock.Path(), "error", err)
		return
	}
	_ = os.Remove(m.lock.Path())
}
