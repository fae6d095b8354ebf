// Package providers contains dependency injection providers for the knowledge hub.
package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/aiknowledgehub/hub-server/internal/config"
	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/id"
	"github.com/aiknowledgehub/hub-server/internal/logger"
)

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})
	log.SetDefault()

	log.Info("Starting knowledge hub",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"snapshot_path", cfg.Snapshot.Path,
		"ingest_path", cfg.Ingest.Path,
		"max_tools_per_playlist", cfg.Catalog.MaxToolsPerPlaylist,
	)

	return log, nil
}

// ProvideFactory provides the entity factory backed by random ids and the wall clock.
func ProvideFactory(i do.Injector) (*domain.Factory, error) {
	return domain.NewFactory(id.Random{}, time.Now), nil
}
