package providers

import (
	"github.com/samber/do/v2"

	"github.com/aiknowledgehub/hub-server/internal/bus"
	"github.com/aiknowledgehub/hub-server/internal/logger"
	"github.com/aiknowledgehub/hub-server/internal/service"
)

// BusHandle wraps the event bus for lifecycle management.
type BusHandle struct {
	*bus.Bus
}

// Shutdown implements do.Shutdownable.
func (h *BusHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideBus provides the in-process domain event bus.
func ProvideBus(i do.Injector) (*BusHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return &BusHandle{Bus: bus.New(log.Logger)}, nil
}

// ProvidePublisher provides the publisher handed to the services: every event
// is logged and then fanned out on the bus.
func ProvidePublisher(i do.Injector) (service.Publisher, error) {
	log := do.MustInvoke[*logger.Logger](i)
	b := do.MustInvoke[*BusHandle](i)

	return service.Publishers{
		service.NewLogPublisher(log.Logger),
		b.Bus,
	}, nil
}
