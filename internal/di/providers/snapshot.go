package providers

import (
	"context"
	"errors"

	"github.com/samber/do/v2"

	"github.com/aiknowledgehub/hub-server/internal/config"
	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/logger"
	"github.com/aiknowledgehub/hub-server/internal/service"
	"github.com/aiknowledgehub/hub-server/internal/snapshot"
	"github.com/aiknowledgehub/hub-server/internal/store"
	"github.com/aiknowledgehub/hub-server/internal/watcher"
)

// ProvideSnapshotLoader provides the snapshot loader.
func ProvideSnapshotLoader(i do.Injector) (*snapshot.Loader, error) {
	log := do.MustInvoke[*logger.Logger](i)

	return snapshot.NewLoader(
		do.MustInvoke[*store.Memory](i),
		do.MustInvoke[*domain.Factory](i),
		do.MustInvoke[*service.UserService](i),
		do.MustInvoke[*service.ToolService](i),
		do.MustInvoke[*service.PlaylistService](i),
		do.MustInvoke[*service.IngestService](i),
		log.Logger,
	), nil
}

// SnapshotWatcherHandle wraps the snapshot file watcher with its context for
// lifecycle management.
type SnapshotWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *SnapshotWatcherHandle) Shutdown() error {
	h.cancel()
	<-h.done
	return h.Close()
}

// ProvideSnapshotWatcher provides a running watcher on the snapshot file.
func ProvideSnapshotWatcher(i do.Injector) (*SnapshotWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Snapshot.Path == "" {
		return nil, errors.New("snapshot path is required to watch")
	}

	w, err := watcher.New(log.Logger, cfg.Snapshot.Path, watcher.Options{
		SettleDelay: cfg.Snapshot.SettleDelay,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &SnapshotWatcherHandle{Watcher: w, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Snapshot watcher stopped", "error", err)
		}
	}()

	log.Info("Watching snapshot", "path", w.Path(), "settle_delay", cfg.Snapshot.SettleDelay)
	return h, nil
}
