// Package store defines the persistence boundary for the knowledge hub and an
// in-memory implementation of it.
//
// The store deals only in domain records. Rebuilding entities from records is
// the caller's job (see domain.Factory), which keeps restore-time validation
// in one place.
package store

import (
	"context"

	"github.com/aiknowledgehub/hub-server/internal/domain"
)

// Store defines every persistence operation the services need.
// Lookups that miss return an error matching errors.ErrNotFound; uniqueness
// violations match errors.ErrAlreadyExists.
type Store interface {
	// Playlists
	CreatePlaylist(ctx context.Context, rec domain.PlaylistRecord) error
	GetPlaylist(ctx context.Context, id string) (domain.PlaylistRecord, error)
	GetPlaylistByName(ctx context.Context, userID, name string) (domain.PlaylistRecord, error)
	UpdatePlaylist(ctx context.Context, rec domain.PlaylistRecord) error
	DeletePlaylist(ctx context.Context, id string) error
	ListPlaylists(ctx context.Context) ([]domain.PlaylistRecord, error)

	// Tools
	CreateTool(ctx context.Context, rec domain.ToolRecord) error
	GetTool(ctx context.Context, id string) (domain.ToolRecord, error)
	GetToolByWebsiteURL(ctx context.Context, websiteURL string) (domain.ToolRecord, error)
	FindToolsByTitle(ctx context.Context, title string) ([]domain.ToolRecord, error)
	UpdateTool(ctx context.Context, rec domain.ToolRecord) error
	ListTools(ctx context.Context) ([]domain.ToolRecord, error)

	// Users
	CreateUser(ctx context.Context, rec domain.UserRecord) error
	GetUser(ctx context.Context, id string) (domain.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (domain.UserRecord, error)

	// YouTube content
	SaveYouTubeContent(ctx context.Context, rec domain.YouTubeContentRecord) error
	GetYouTubeContent(ctx context.Context, id string) (domain.YouTubeContentRecord, error)
	GetYouTubeContentByVideoID(ctx context.Context, videoID string) (domain.YouTubeContentRecord, error)
	ListYouTubeContent(ctx context.Context) ([]domain.YouTubeContentRecord, error)
}

// Counts summarizes store contents.
type Counts struct {
	Playlists      int `json:"playlists"`
	Tools          int `json:"tools"`
	Users          int `json:"users"`
	YouTubeContent int `json:"youtube_content"`
}
