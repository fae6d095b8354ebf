package providers

import (
	"github.com/samber/do/v2"

	"github.com/aiknowledgehub/hub-server/internal/config"
	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/logger"
	"github.com/aiknowledgehub/hub-server/internal/ratelimit"
	"github.com/aiknowledgehub/hub-server/internal/service"
	"github.com/aiknowledgehub/hub-server/internal/store"
)

// ProvideIngestLimiter provides the per-channel ingest limiter.
// It returns nil when throttling is disabled.
func ProvideIngestLimiter(i do.Injector) (*ratelimit.Keyed, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if cfg.Ingest.RatePerSecond <= 0 {
		return nil, nil
	}
	return ratelimit.New(cfg.Ingest.RatePerSecond, cfg.Ingest.Burst), nil
}

// ProvidePlaylistService provides the playlist service.
func ProvidePlaylistService(i do.Injector) (*service.PlaylistService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	s := do.MustInvoke[*store.Memory](i)
	factory := do.MustInvoke[*domain.Factory](i)
	pub := do.MustInvoke[service.Publisher](i)

	return service.NewPlaylistService(s, factory, pub, log.Logger, cfg.Catalog.MaxToolsPerPlaylist), nil
}

// ProvideToolService provides the tool service.
func ProvideToolService(i do.Injector) (*service.ToolService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	s := do.MustInvoke[*store.Memory](i)
	factory := do.MustInvoke[*domain.Factory](i)
	pub := do.MustInvoke[service.Publisher](i)

	return service.NewToolService(s, factory, pub, log.Logger), nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	s := do.MustInvoke[*store.Memory](i)
	factory := do.MustInvoke[*domain.Factory](i)

	return service.NewUserService(s, factory, log.Logger), nil
}

// ProvideIngestService provides the classification ingest service.
func ProvideIngestService(i do.Injector) (*service.IngestService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	s := do.MustInvoke[*store.Memory](i)
	factory := do.MustInvoke[*domain.Factory](i)
	pub := do.MustInvoke[service.Publisher](i)
	limiter := do.MustInvoke[*ratelimit.Keyed](i)

	return service.NewIngestService(s, factory, pub, limiter, log.Logger), nil
}
