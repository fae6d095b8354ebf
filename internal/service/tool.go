package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/errors"
	"github.com/aiknowledgehub/hub-server/internal/store"
)

// ToolService manages the tool catalog.
type ToolService struct {
	store     store.Store
	factory   *domain.Factory
	publisher Publisher
	logger    *slog.Logger
}

// NewToolService creates a tool service.
func NewToolService(store store.Store, factory *domain.Factory, publisher Publisher, logger *slog.Logger) *ToolService {
	return &ToolService{
		store:     store,
		factory:   factory,
		publisher: publisher,
		logger:    logger,
	}
}

// SearchFilter narrows Search results. Zero fields match everything.
type SearchFilter struct {
	Query    string
	Category string
	Tag      string
	UserID   string // also include this user's private tools
}

// Create validates and stores a new tool and publishes ToolCreated.
// Website URLs are unique across the catalog.
func (s *ToolService) Create(ctx context.Context, in domain.NewToolInput) (*domain.Tool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := s.factory.NewTool(in)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetToolByWebsiteURL(ctx, t.WebsiteURL())
	switch {
	case err == nil:
		return nil, domain.DuplicateToolURL(t.WebsiteURL(), existing.ID)
	case !errors.Is(err, errors.ErrNotFound):
		return nil, fmt.Errorf("look up tool URL: %w", err)
	}

	if err := s.store.CreateTool(ctx, t.Record()); err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			return nil, domain.DuplicateToolURL(t.WebsiteURL(), "").WithCause(err)
		}
		return nil, fmt.Errorf("create tool: %w", err)
	}

	s.logger.Info("tool created",
		"tool_id", t.ID().String(),
		"title", t.Title(),
		"category", t.Category(),
	)

	publish(ctx, s.publisher, s.logger, s.factory.NewToolCreated(t))
	return t, nil
}

// Get returns a tool by id.
func (s *ToolService) Get(ctx context.Context, rawToolID string) (*domain.Tool, error) {
	toolID, err := domain.NewToolID(rawToolID)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.GetTool(ctx, toolID.String())
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, domain.ToolNotFound(toolID.String())
		}
		return nil, fmt.Errorf("get tool: %w", err)
	}
	return s.factory.RestoreTool(rec)
}

// RecordView increments a tool's view counter.
func (s *ToolService) RecordView(ctx context.Context, rawToolID string) (*domain.Tool, error) {
	return s.update(ctx, rawToolID, func(t *domain.Tool) error {
		t.IncrementViewCount()
		return nil
	})
}

// Favorite increments a tool's favorite counter.
func (s *ToolService) Favorite(ctx context.Context, rawToolID string) (*domain.Tool, error) {
	return s.update(ctx, rawToolID, func(t *domain.Tool) error {
		t.IncrementFavoriteCount()
		return nil
	})
}

// Unfavorite decrements a tool's favorite counter, stopping at zero.
func (s *ToolService) Unfavorite(ctx context.Context, rawToolID string) (*domain.Tool, error) {
	return s.update(ctx, rawToolID, func(t *domain.Tool) error {
		t.DecrementFavoriteCount()
		return nil
	})
}

// Classify attaches or replaces a tool's AI classification.
func (s *ToolService) Classify(ctx context.Context, rawToolID string, cls domain.AIClassification) (*domain.Tool, error) {
	return s.update(ctx, rawToolID, func(t *domain.Tool) error {
		return t.SetAIClassification(cls)
	})
}

// AddTag adds a tag to a tool.
func (s *ToolService) AddTag(ctx context.Context, rawToolID, tag string) (*domain.Tool, error) {
	return s.update(ctx, rawToolID, func(t *domain.Tool) error {
		return t.AddTag(tag)
	})
}

// RemoveTag removes a tag from a tool.
func (s *ToolService) RemoveTag(ctx context.Context, rawToolID, tag string) (*domain.Tool, error) {
	return s.update(ctx, rawToolID, func(t *domain.Tool) error {
		return t.RemoveTag(tag)
	})
}

// Search returns the visible tools matching every set filter field, in
// creation order.
func (s *ToolService) Search(ctx context.Context, filter SearchFilter) ([]*domain.Tool, error) {
	recs, err := s.store.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}

	var out []*domain.Tool
	for _, rec := range recs {
		t, err := s.factory.RestoreTool(rec)
		if err != nil {
			s.logger.Warn("skipping unreadable tool", "tool_id", rec.ID, "error", err)
			continue
		}
		if !t.IsPublic() && (filter.UserID == "" || t.UserID() != filter.UserID) {
			continue
		}
		if filter.Query != "" && !t.MatchesSearch(filter.Query) {
			continue
		}
		if filter.Category != "" && !t.IsInCategory(filter.Category) {
			continue
		}
		if filter.Tag != "" && !t.HasTag(filter.Tag) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Import stores an already restored tool, e.g. one read from a snapshot.
func (s *ToolService) Import(ctx context.Context, t *domain.Tool) error {
	if _, err := s.store.GetTool(ctx, t.ID().String()); err == nil {
		return domain.DuplicateRecordID("tool", t.ID().String())
	}
	if err := s.store.CreateTool(ctx, t.Record()); err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			return domain.DuplicateToolURL(t.WebsiteURL(), "").WithCause(err)
		}
		return fmt.Errorf("import tool: %w", err)
	}
	return nil
}

func (s *ToolService) update(ctx context.Context, rawToolID string, fn func(*domain.Tool) error) (*domain.Tool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := s.Get(ctx, rawToolID)
	if err != nil {
		return nil, err
	}

	if err := fn(t); err != nil {
		return nil, err
	}

	if err := s.store.UpdateTool(ctx, t.Record()); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, domain.ToolNotFound(t.ID().String())
		}
		return nil, fmt.Errorf("update tool: %w", err)
	}
	return t, nil
}
