package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/errors"
	"github.com/aiknowledgehub/hub-server/internal/store"
)

// PlaylistService manages playlists and their tool membership.
//
// Owned playlists may only be changed by their owner. Playlists without an
// owner are shared and may be changed by anyone.
type PlaylistService struct {
	store     store.Store
	factory   *domain.Factory
	publisher Publisher
	logger    *slog.Logger
	maxTools  int
}

// NewPlaylistService creates a playlist service. maxTools caps the number of
// tools per playlist; zero means unlimited.
func NewPlaylistService(store store.Store, factory *domain.Factory, publisher Publisher, logger *slog.Logger, maxTools int) *PlaylistService {
	return &PlaylistService{
		store:     store,
		factory:   factory,
		publisher: publisher,
		logger:    logger,
		maxTools:  maxTools,
	}
}

// Create validates and stores a new playlist. Names are unique per owner.
func (s *PlaylistService) Create(ctx context.Context, in domain.NewPlaylistInput) (*domain.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.factory.NewPlaylist(in)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNameFree(ctx, p.UserID(), p.Name()); err != nil {
		return nil, err
	}

	if err := s.store.CreatePlaylist(ctx, p.Record()); err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			return nil, domain.PlaylistNameAlreadyExists(p.Name(), p.UserID()).WithCause(err)
		}
		return nil, fmt.Errorf("create playlist: %w", err)
	}

	s.logger.Info("playlist created",
		"playlist_id", p.ID(),
		"name", p.Name(),
		"user_id", p.UserID(),
	)

	publish(ctx, s.publisher, s.logger, p.DomainEvents()...)
	p.ClearEvents()
	return p, nil
}

// Get returns a playlist by id.
func (s *PlaylistService) Get(ctx context.Context, playlistID string) (*domain.Playlist, error) {
	rec, err := s.store.GetPlaylist(ctx, playlistID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, domain.PlaylistNotFound(playlistID)
		}
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	return s.factory.RestorePlaylist(rec)
}

// ListVisible returns the playlists userID can see: public ones and their own.
func (s *PlaylistService) ListVisible(ctx context.Context, userID string) ([]*domain.Playlist, error) {
	recs, err := s.store.ListPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}

	out := make([]*domain.Playlist, 0, len(recs))
	for _, rec := range recs {
		p, err := s.factory.RestorePlaylist(rec)
		if err != nil {
			s.logger.Warn("skipping unreadable playlist", "playlist_id", rec.ID, "error", err)
			continue
		}
		if p.IsPublic() || p.IsOwnedBy(userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Rename changes a playlist's name, keeping names unique per owner.
func (s *PlaylistService) Rename(ctx context.Context, playlistID, userID, name string) (*domain.Playlist, error) {
	p, err := s.loadForChange(ctx, playlistID, userID, "modify")
	if err != nil {
		return nil, err
	}

	if err := p.UpdateName(name); err != nil {
		return nil, err
	}

	existing, err := s.store.GetPlaylistByName(ctx, p.UserID(), p.Name())
	switch {
	case err == nil && existing.ID != p.ID():
		return nil, domain.PlaylistNameAlreadyExists(p.Name(), p.UserID())
	case err != nil && !errors.Is(err, errors.ErrNotFound):
		return nil, fmt.Errorf("look up playlist name: %w", err)
	}

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddTool adds an existing tool to a playlist and publishes ToolAdded.
func (s *PlaylistService) AddTool(ctx context.Context, playlistID, userID, rawToolID string) (*domain.Playlist, error) {
	toolID, err := domain.NewToolID(rawToolID)
	if err != nil {
		return nil, err
	}

	p, err := s.loadForChange(ctx, playlistID, userID, "modify")
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetTool(ctx, toolID.String()); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, domain.ToolNotFound(toolID.String())
		}
		return nil, fmt.Errorf("get tool: %w", err)
	}

	if s.maxTools > 0 && p.ToolCount() >= s.maxTools && !p.HasTool(toolID) {
		return nil, domain.MaxToolsPerPlaylistExceeded(p.ID(), s.maxTools)
	}

	if err := p.AddTool(toolID); err != nil {
		return nil, err
	}

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("tool added to playlist",
		"playlist_id", p.ID(),
		"tool_id", toolID.String(),
		"user_id", userID,
	)

	publish(ctx, s.publisher, s.logger, p.DomainEvents()...)
	p.ClearEvents()
	return p, nil
}

// RemoveTool removes a tool from a playlist.
func (s *PlaylistService) RemoveTool(ctx context.Context, playlistID, userID, rawToolID string) (*domain.Playlist, error) {
	toolID, err := domain.NewToolID(rawToolID)
	if err != nil {
		return nil, err
	}

	p, err := s.loadForChange(ctx, playlistID, userID, "modify")
	if err != nil {
		return nil, err
	}

	if err := p.RemoveTool(toolID); err != nil {
		return nil, err
	}

	if err := s.save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("tool removed from playlist",
		"playlist_id", p.ID(),
		"tool_id", toolID.String(),
		"user_id", userID,
	)
	return p, nil
}

// Delete removes an empty playlist.
func (s *PlaylistService) Delete(ctx context.Context, playlistID, userID string) error {
	p, err := s.loadForChange(ctx, playlistID, userID, "delete")
	if err != nil {
		return err
	}

	if !p.CanBeDeleted() {
		return domain.PlaylistNotEmpty(p.ID(), p.ToolCount())
	}

	if err := s.store.DeletePlaylist(ctx, p.ID()); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return domain.PlaylistNotFound(p.ID())
		}
		return fmt.Errorf("delete playlist: %w", err)
	}

	s.logger.Info("playlist deleted", "playlist_id", p.ID(), "user_id", userID)
	return nil
}

// Import stores an already restored playlist, e.g. one read from a snapshot.
// Pending events are not published.
func (s *PlaylistService) Import(ctx context.Context, p *domain.Playlist) error {
	if _, err := s.store.GetPlaylist(ctx, p.ID()); err == nil {
		return domain.DuplicateRecordID("playlist", p.ID())
	}
	if err := s.store.CreatePlaylist(ctx, p.Record()); err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			return domain.PlaylistNameAlreadyExists(p.Name(), p.UserID()).WithCause(err)
		}
		return fmt.Errorf("import playlist: %w", err)
	}
	return nil
}

// loadForChange fetches a playlist and checks userID may perform action on it.
func (s *PlaylistService) loadForChange(ctx context.Context, playlistID, userID, action string) (*domain.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	if p.UserID() != "" && !p.IsOwnedBy(userID) {
		return nil, domain.PlaylistAccessDenied(p.ID(), userID, action)
	}
	return p, nil
}

func (s *PlaylistService) ensureNameFree(ctx context.Context, userID, name string) error {
	_, err := s.store.GetPlaylistByName(ctx, userID, name)
	switch {
	case err == nil:
		return domain.PlaylistNameAlreadyExists(name, userID)
	case errors.Is(err, errors.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("look up playlist name: %w", err)
	}
}

func (s *PlaylistService) save(ctx context.Context, p *domain.Playlist) error {
	if err := s.store.UpdatePlaylist(ctx, p.Record()); err != nil {
		switch {
		case errors.Is(err, errors.ErrNotFound):
			return domain.PlaylistNotFound(p.ID())
		case errors.Is(err, errors.ErrAlreadyExists):
			return domain.PlaylistNameAlreadyExists(p.Name(), p.UserID()).WithCause(err)
		}
		return fmt.Errorf("update playlist: %w", err)
	}
	return nil
}
