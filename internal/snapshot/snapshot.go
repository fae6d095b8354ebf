// Package snapshot checks and loads JSON exports of persisted hub records.
//
// A snapshot holds plain records. Each record is restored through the domain
// factory (structural checks), re-validated against the business rules and
// checked for dangling references before it is imported through the services.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/service"
	"github.com/aiknowledgehub/hub-server/internal/store"
)

// Entity type names used in problems.
const (
	EntityUser           = "user"
	EntityTool           = "tool"
	EntityPlaylist       = "playlist"
	EntityYouTubeContent = "youtube_content"
)

// Snapshot is an export of every persisted record.
type Snapshot struct {
	Playlists      []domain.PlaylistRecord       `json:"playlists"`
	Tools          []domain.ToolRecord           `json:"tools"`
	Users          []domain.UserRecord           `json:"users"`
	YouTubeContent []domain.YouTubeContentRecord `json:"youtube_content"`
}

// Counts returns the number of records of each type.
func (s *Snapshot) Counts() store.Counts {
	return store.Counts{
		Playlists:      len(s.Playlists),
		Tools:          len(s.Tools),
		Users:          len(s.Users),
		YouTubeContent: len(s.YouTubeContent),
	}
}

// Read decodes a snapshot.
func Read(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// ReadFile decodes the snapshot stored at path.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path) //#nosec G304 -- snapshot path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// ReadPayloads decodes a JSON array of classification payloads.
func ReadPayloads(path string) ([]service.IngestPayload, error) {
	f, err := os.Open(path) //#nosec G304 -- payload path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("open payloads: %w", err)
	}
	defer f.Close()

	var payloads []service.IngestPayload
	if err := json.NewDecoder(f).Decode(&payloads); err != nil {
		return nil, fmt.Errorf("decode payloads: %w", err)
	}
	return payloads, nil
}
