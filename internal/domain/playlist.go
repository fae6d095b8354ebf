package domain

import (
	"slices"
	"strings"
	"time"
)

const (
	minPlaylistNameLength = 2
	maxPlaylistNameLength = 100
)

// Playlist is a named, iconed category that references tools by id.
// It does not own the referenced tools.
type Playlist struct {
	timestamps
	eventLog

	id          string
	name        string
	icon        string
	description string
	userID      string
	toolIDs     []ToolID
	isPublic    bool

	newEventID func() string
}

// NewPlaylistInput holds the fields accepted when creating a playlist.
type NewPlaylistInput struct {
	Name        string
	Icon        string
	UserID      string // optional owner; empty means a shared playlist
	Description string
}

// NewPlaylist validates in and creates a playlist with a generated id.
// The playlist starts public when it has no owner, and records PlaylistCreated.
func (f *Factory) NewPlaylist(in NewPlaylistInput) (*Playlist, error) {
	name := strings.TrimSpace(in.Name)
	icon := strings.TrimSpace(in.Icon)
	if err := validatePlaylistName(name); err != nil {
		return nil, err
	}
	if err := validatePlaylistIcon(icon); err != nil {
		return nil, err
	}

	p := &Playlist{
		timestamps:  newTimestamps(f.now),
		id:          f.ids.NewUUID(),
		name:        name,
		icon:        icon,
		description: strings.TrimSpace(in.Description),
		userID:      in.UserID,
		toolIDs:     []ToolID{},
		isPublic:    in.UserID == "",
		newEventID:  f.newEventID,
	}
	p.record(NewPlaylistCreated(f.newEventID(), p.createdAt, p.id, p.name, p.userID))
	return p, nil
}

// PlaylistRecord is the stored shape of a playlist.
type PlaylistRecord struct {
	CreatedAt   time.Time `json:"created_at" validate:"required"`
	UpdatedAt   time.Time `json:"updated_at" validate:"required"`
	ID          string    `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Icon        string    `json:"icon" validate:"required"`
	Description string    `json:"description,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	ToolIDs     []string  `json:"tool_ids"`
	IsPublic    bool      `json:"is_public"`
}

// RestorePlaylist rebuilds a playlist from storage. Structural checks always
// run; business rules (name length) do not. Restored playlists have no pending events.
func (f *Factory) RestorePlaylist(rec PlaylistRecord) (*Playlist, error) {
	if err := f.restore("playlist", rec); err != nil {
		return nil, err
	}
	toolIDs, err := toolIDsFromStrings(rec.ToolIDs)
	if err != nil {
		return nil, err
	}

	return &Playlist{
		timestamps:  timestamps{createdAt: rec.CreatedAt, updatedAt: rec.UpdatedAt, now: f.now},
		id:          rec.ID,
		name:        rec.Name,
		icon:        rec.Icon,
		description: rec.Description,
		userID:      rec.UserID,
		toolIDs:     uniqueToolIDs(toolIDs),
		isPublic:    rec.IsPublic,
		newEventID:  f.newEventID,
	}, nil
}

// Record returns the stored shape.
func (p *Playlist) Record() PlaylistRecord {
	return PlaylistRecord{
		CreatedAt:   p.createdAt,
		UpdatedAt:   p.updatedAt,
		ID:          p.id,
		Name:        p.name,
		Icon:        p.icon,
		Description: p.description,
		UserID:      p.userID,
		ToolIDs:     toolIDStrings(p.toolIDs),
		IsPublic:    p.isPublic,
	}
}

// Validate re-runs the business rules, e.g. after RestorePlaylist.
func (p *Playlist) Validate() error {
	if err := validatePlaylistName(p.name); err != nil {
		return err
	}
	return validatePlaylistIcon(p.icon)
}

// ID returns the playlist id.
func (p *Playlist) ID() string { return p.id }

// Name returns the playlist name.
func (p *Playlist) Name() string { return p.name }

// Icon returns the playlist icon.
func (p *Playlist) Icon() string { return p.icon }

// Description returns the optional description.
func (p *Playlist) Description() string { return p.description }

// UserID returns the owner id, empty when the playlist has no owner.
func (p *Playlist) UserID() string { return p.userID }

// IsPublic reports whether the playlist is visible to everyone.
func (p *Playlist) IsPublic() bool { return p.isPublic }

// ToolIDs returns a copy of the member tool ids.
func (p *Playlist) ToolIDs() []ToolID { return slices.Clone(p.toolIDs) }

// ToolCount returns the number of member tools.
func (p *Playlist) ToolCount() int { return len(p.toolIDs) }

// HasTool reports membership.
func (p *Playlist) HasTool(toolID ToolID) bool {
	return slices.ContainsFunc(p.toolIDs, toolID.Equal)
}

// IsOwnedBy reports whether userID owns the playlist.
func (p *Playlist) IsOwnedBy(userID string) bool {
	return p.userID != "" && p.userID == userID
}

// CanBeDeleted reports whether the playlist is empty. Only empty playlists may be deleted.
func (p *Playlist) CanBeDeleted() bool { return len(p.toolIDs) == 0 }

// UpdateName renames the playlist.
func (p *Playlist) UpdateName(name string) error {
	name = strings.TrimSpace(name)
	if err := validatePlaylistName(name); err != nil {
		return err
	}
	p.name = name
	p.touch()
	return nil
}

// UpdateIcon changes the icon.
func (p *Playlist) UpdateIcon(icon string) error {
	icon = strings.TrimSpace(icon)
	if err := validatePlaylistIcon(icon); err != nil {
		return err
	}
	p.icon = icon
	p.touch()
	return nil
}

// SetDescription replaces the description. An empty string clears it.
func (p *Playlist) SetDescription(description string) {
	p.description = strings.TrimSpace(description)
	p.touch()
}

// AddTool adds a tool reference and records ToolAdded.
// Adding a tool that is already a member is a conflict.
func (p *Playlist) AddTool(toolID ToolID) error {
	if toolID.IsZero() {
		return invalidField(KindPlaylistValidation, "tool_id", "", "cannot be empty")
	}
	if p.HasTool(toolID) {
		return conflict(KindToolAlreadyInPlaylist, "tool "+toolID.String()+" is already in playlist "+p.id).
			With("playlist_id", p.id).
			With("tool_id", toolID.String())
	}
	p.toolIDs = append(p.toolIDs, toolID)
	p.touch()
	p.record(NewToolAdded(p.newEventID(), p.updatedAt, p.id, toolID))
	return nil
}

// RemoveTool removes a tool reference. Removing a non-member fails.
func (p *Playlist) RemoveTool(toolID ToolID) error {
	i := slices.IndexFunc(p.toolIDs, toolID.Equal)
	if i < 0 {
		return missing(KindToolNotInPlaylist, "tool "+toolID.String()+" is not in playlist "+p.id).
			With("playlist_id", p.id).
			With("tool_id", toolID.String())
	}
	p.toolIDs = slices.Delete(p.toolIDs, i, i+1)
	p.touch()
	return nil
}

// MakePublic shows the playlist to everyone.
func (p *Playlist) MakePublic() {
	p.isPublic = true
	p.touch()
}

// MakePrivate restricts the playlist to its owner.
func (p *Playlist) MakePrivate() {
	p.isPublic = false
	p.touch()
}

func validatePlaylistName(name string) error {
	return checkLength(KindPlaylistValidation, "name", name, minPlaylistNameLength, maxPlaylistNameLength)
}

func validatePlaylistIcon(icon string) error {
	return checkRequired(KindPlaylistValidation, "icon", icon)
}
