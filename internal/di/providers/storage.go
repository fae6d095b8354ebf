package providers

import (
	"github.com/samber/do/v2"

	"github.com/aiknowledgehub/hub-server/internal/logger"
	"github.com/aiknowledgehub/hub-server/internal/store"
)

// ProvideStore provides the in-memory record store.
func ProvideStore(i do.Injector) (*store.Memory, error) {
	log := do.MustInvoke[*logger.Logger](i)

	s := store.NewMemory()
	log.Debug("Store initialized", "backend", "memory")

	return s, nil
}
