// Package di provides dependency injection configuration for the knowledge hub.
package di

import (
	"github.com/samber/do/v2"

	"github.com/aiknowledgehub/hub-server/internal/config"
	"github.com/aiknowledgehub/hub-server/internal/di/providers"
	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/logger"
	"github.com/aiknowledgehub/hub-server/internal/service"
	"github.com/aiknowledgehub/hub-server/internal/snapshot"
)

// NewContainer creates and configures the DI container with all providers.
// The configuration is loaded by the caller so flags can be parsed first.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideFactory)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)

	// Events
	do.Provide(injector, providers.ProvideBus)
	do.Provide(injector, providers.ProvidePublisher)

	// Ingest pipeline
	do.Provide(injector, providers.ProvideIngestLimiter)

	// Business services
	do.Provide(injector, providers.ProvidePlaylistService)
	do.Provide(injector, providers.ProvideToolService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideIngestService)

	// Snapshot checking
	do.Provide(injector, providers.ProvideSnapshotLoader)
	do.Provide(injector, providers.ProvideSnapshotWatcher)

	return injector
}

// Bootstrap initializes the core services so configuration problems surface
// before any work starts. The snapshot watcher stays lazy; it is only built
// in watch mode.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*domain.Factory](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.BusHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.PlaylistService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.ToolService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.UserService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.IngestService](injector); err != nil {
		return err
	}
	_, err := do.Invoke[*snapshot.Loader](injector)
	return err
}
