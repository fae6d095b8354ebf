// Package service orchestrates the catalog: it loads records from the store,
// rebuilds entities through the domain factory, applies the operation and
// publishes whatever events the entities recorded.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aiknowledgehub/hub-server/internal/domain"
)

// Publisher delivers domain events to whoever is listening.
type Publisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}

// LogPublisher writes each event as JSON to the logger.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that logs events at info level.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs every event. It fails on the first event that cannot be encoded.
func (p *LogPublisher) Publish(ctx context.Context, events ...domain.Event) error {
	for _, e := range events {
		data, err := e.ToJSON()
		if err != nil {
			return fmt.Errorf("encode %s event: %w", e.EventName(), err)
		}
		p.logger.InfoContext(ctx, "domain event",
			"event", e.EventName(),
			"event_id", e.EventID(),
			"payload", string(data),
		)
	}
	return nil
}

// Publishers fans events out to several publishers, stopping at the first error.
type Publishers []Publisher

// Publish forwards events to each publisher in order.
func (ps Publishers) Publish(ctx context.Context, events ...domain.Event) error {
	for _, p := range ps {
		if err := p.Publish(ctx, events...); err != nil {
			return err
		}
	}
	return nil
}

// publish delivers events after a successful write. The write already
// happened, so a delivery failure is logged rather than returned.
func publish(ctx context.Context, pub Publisher, logger *slog.Logger, events ...domain.Event) {
	if pub == nil || len(events) == 0 {
		return
	}
	if err := pub.Publish(ctx, events...); err != nil {
		logger.Warn("failed to publish domain events",
			"count", len(events),
			"error", err,
		)
	}
}
