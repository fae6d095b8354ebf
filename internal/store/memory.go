package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/errors"
	"github.com/aiknowledgehub/hub-server/internal/normalize"
)

// Memory is a Store kept entirely in process memory. Records are copied on
// the way in and out, so callers never share slices with the store.
type Memory struct {
	mu sync.RWMutex

	playlists map[string]domain.PlaylistRecord
	tools     map[string]domain.ToolRecord
	users     map[string]domain.UserRecord
	videos    map[string]domain.YouTubeContentRecord

	playlistsByName map[string]string // owner + folded name -> id
	toolsByURL      map[string]string // folded website URL -> id
	usersByEmail    map[string]string
	videosByVideoID map[string]string
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{
		playlists:       make(map[string]domain.PlaylistRecord),
		tools:           make(map[string]domain.ToolRecord),
		users:           make(map[string]domain.UserRecord),
		videos:          make(map[string]domain.YouTubeContentRecord),
		playlistsByName: make(map[string]string),
		toolsByURL:      make(map[string]string),
		usersByEmail:    make(map[string]string),
		videosByVideoID: make(map[string]string),
	}
}

// PlaylistNameKey is the uniqueness key for a playlist name within its owner's scope.
func PlaylistNameKey(userID, name string) string {
	return userID + "\x00" + normalize.Fold(strings.TrimSpace(name))
}

// ToolURLKey is the uniqueness key for a website URL: case folded, trailing slash dropped.
func ToolURLKey(websiteURL string) string {
	return strings.TrimSuffix(normalize.Fold(strings.TrimSpace(websiteURL)), "/")
}

// Playlists

// CreatePlaylist stores a new playlist. Names are unique per owner, ignoring case.
func (m *Memory) CreatePlaylist(ctx context.Context, rec domain.PlaylistRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.playlists[rec.ID]; ok {
		return errors.AlreadyExistsf("playlist %q already exists", rec.ID)
	}
	key := PlaylistNameKey(rec.UserID, rec.Name)
	if _, ok := m.playlistsByName[key]; ok {
		return errors.AlreadyExistsf("playlist named %q already exists", rec.Name)
	}
	m.playlists[rec.ID] = clonePlaylist(rec)
	m.playlistsByName[key] = rec.ID
	return nil
}

// GetPlaylist returns a playlist by id.
func (m *Memory) GetPlaylist(ctx context.Context, id string) (domain.PlaylistRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.PlaylistRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.playlists[id]
	if !ok {
		return domain.PlaylistRecord{}, errors.NotFoundf("playlist %q not found", id)
	}
	return clonePlaylist(rec), nil
}

// GetPlaylistByName finds an owner's playlist by name, ignoring case.
// An empty userID addresses shared playlists.
func (m *Memory) GetPlaylistByName(ctx context.Context, userID, name string) (domain.PlaylistRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.PlaylistRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.playlistsByName[PlaylistNameKey(userID, name)]
	if !ok {
		return domain.PlaylistRecord{}, errors.NotFoundf("playlist named %q not found", name)
	}
	return clonePlaylist(m.playlists[id]), nil
}

// UpdatePlaylist replaces a stored playlist, keeping the name index current.
func (m *Memory) UpdatePlaylist(ctx context.Context, rec domain.PlaylistRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.playlists[rec.ID]
	if !ok {
		return errors.NotFoundf("playlist %q not found", rec.ID)
	}
	oldKey, newKey := PlaylistNameKey(old.UserID, old.Name), PlaylistNameKey(rec.UserID, rec.Name)
	if oldKey != newKey {
		if _, taken := m.playlistsByName[newKey]; taken {
			return errors.AlreadyExistsf("playlist named %q already exists", rec.Name)
		}
		delete(m.playlistsByName, oldKey)
		m.playlistsByName[newKey] = rec.ID
	}
	m.playlists[rec.ID] = clonePlaylist(rec)
	return nil
}

// DeletePlaylist removes a playlist.
func (m *Memory) DeletePlaylist(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.playlists[id]
	if !ok {
		return errors.NotFoundf("playlist %q not found", id)
	}
	delete(m.playlistsByName, PlaylistNameKey(rec.UserID, rec.Name))
	delete(m.playlists, id)
	return nil
}

// ListPlaylists returns every playlist ordered by creation time.
func (m *Memory) ListPlaylists(ctx context.Context) ([]domain.PlaylistRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.PlaylistRecord, 0, len(m.playlists))
	for _, rec := range m.playlists {
		out = append(out, clonePlaylist(rec))
	}
	slices.SortFunc(out, func(a, b domain.PlaylistRecord) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.ID, b.ID))
	})
	return out, nil
}

// Tools

// CreateTool stores a new tool. Website URLs are unique, ignoring case and a
// trailing slash.
func (m *Memory) CreateTool(ctx context.Context, rec domain.ToolRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tools[rec.ID]; ok {
		return errors.AlreadyExistsf("tool %q already exists", rec.ID)
	}
	key := ToolURLKey(rec.WebsiteURL)
	if _, ok := m.toolsByURL[key]; ok {
		return errors.AlreadyExistsf("tool with URL %q already exists", rec.WebsiteURL)
	}
	m.tools[rec.ID] = cloneTool(rec)
	m.toolsByURL[key] = rec.ID
	return nil
}

// GetTool returns a tool by id.
func (m *Memory) GetTool(ctx context.Context, id string) (domain.ToolRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.ToolRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.tools[id]
	if !ok {
		return domain.ToolRecord{}, errors.NotFoundf("tool %q not found", id)
	}
	return cloneTool(rec), nil
}

// GetToolByWebsiteURL finds a tool by its website URL.
func (m *Memory) GetToolByWebsiteURL(ctx context.Context, websiteURL string) (domain.ToolRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.ToolRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.toolsByURL[ToolURLKey(websiteURL)]
	if !ok {
		return domain.ToolRecord{}, errors.NotFoundf("tool with URL %q not found", websiteURL)
	}
	return cloneTool(m.tools[id]), nil
}

// FindToolsByTitle returns tools whose title equals title, ignoring case.
func (m *Memory) FindToolsByTitle(ctx context.Context, title string) ([]domain.ToolRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := normalize.Fold(strings.TrimSpace(title))

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.ToolRecord
	for _, rec := range m.tools {
		if normalize.Fold(rec.Title) == want {
			out = append(out, cloneTool(rec))
		}
	}
	slices.SortFunc(out, func(a, b domain.ToolRecord) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// UpdateTool replaces a stored tool, keeping the URL index current.
func (m *Memory) UpdateTool(ctx context.Context, rec domain.ToolRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.tools[rec.ID]
	if !ok {
		return errors.NotFoundf("tool %q not found", rec.ID)
	}
	oldKey, newKey := ToolURLKey(old.WebsiteURL), ToolURLKey(rec.WebsiteURL)
	if oldKey != newKey {
		if _, taken := m.toolsByURL[newKey]; taken {
			return errors.AlreadyExistsf("tool with URL %q already exists", rec.WebsiteURL)
		}
		delete(m.toolsByURL, oldKey)
		m.toolsByURL[newKey] = rec.ID
	}
	m.tools[rec.ID] = cloneTool(rec)
	return nil
}

// ListTools returns every tool ordered by creation time.
func (m *Memory) ListTools(ctx context.Context) ([]domain.ToolRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.ToolRecord, 0, len(m.tools))
	for _, rec := range m.tools {
		out = append(out, cloneTool(rec))
	}
	slices.SortFunc(out, func(a, b domain.ToolRecord) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.ID, b.ID))
	})
	return out, nil
}

// Users

// CreateUser stores a new user. Emails are unique.
func (m *Memory) CreateUser(ctx context.Context, rec domain.UserRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[rec.ID]; ok {
		return errors.AlreadyExistsf("user %q already exists", rec.ID)
	}
	key := normalize.Fold(rec.Email)
	if _, ok := m.usersByEmail[key]; ok {
		return errors.AlreadyExistsf("user with email %q already exists", rec.Email)
	}
	m.users[rec.ID] = rec
	m.usersByEmail[key] = rec.ID
	return nil
}

// GetUser returns a user by id.
func (m *Memory) GetUser(ctx context.Context, id string) (domain.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.users[id]
	if !ok {
		return domain.UserRecord{}, errors.NotFoundf("user %q not found", id)
	}
	return rec, nil
}

// GetUserByEmail finds a user by email, ignoring case.
func (m *Memory) GetUserByEmail(ctx context.Context, email string) (domain.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usersByEmail[normalize.Fold(strings.TrimSpace(email))]
	if !ok {
		return domain.UserRecord{}, errors.NotFoundf("user with email %q not found", email)
	}
	return m.users[id], nil
}

// YouTube content

// SaveYouTubeContent inserts or replaces content. A video id may only belong
// to one content id.
func (m *Memory) SaveYouTubeContent(ctx context.Context, rec domain.YouTubeContentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if owner, ok := m.videosByVideoID[rec.VideoID]; ok && owner != rec.ID {
		return errors.AlreadyExistsf("video %q is already stored as %q", rec.VideoID, owner)
	}
	if old, ok := m.videos[rec.ID]; ok && old.VideoID != rec.VideoID {
		delete(m.videosByVideoID, old.VideoID)
	}
	m.videos[rec.ID] = cloneVideo(rec)
	m.videosByVideoID[rec.VideoID] = rec.ID
	return nil
}

// GetYouTubeContent returns content by id.
func (m *Memory) GetYouTubeContent(ctx context.Context, id string) (domain.YouTubeContentRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.YouTubeContentRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.videos[id]
	if !ok {
		return domain.YouTubeContentRecord{}, errors.NotFoundf("content %q not found", id)
	}
	return cloneVideo(rec), nil
}

// GetYouTubeContentByVideoID finds content by its YouTube video id.
func (m *Memory) GetYouTubeContentByVideoID(ctx context.Context, videoID string) (domain.YouTubeContentRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.YouTubeContentRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.videosByVideoID[videoID]
	if !ok {
		return domain.YouTubeContentRecord{}, errors.NotFoundf("video %q not found", videoID)
	}
	return cloneVideo(m.videos[id]), nil
}

// ListYouTubeContent returns all content ordered by creation time.
func (m *Memory) ListYouTubeContent(ctx context.Context) ([]domain.YouTubeContentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.YouTubeContentRecord, 0, len(m.videos))
	for _, rec := range m.videos {
		out = append(out, cloneVideo(rec))
	}
	slices.SortFunc(out, func(a, b domain.YouTubeContentRecord) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.ID, b.ID))
	})
	return out, nil
}

// Counts reports how many records of each kind are stored.
func (m *Memory) Counts() Counts {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Counts{
		Playlists:      len(m.playlists),
		Tools:          len(m.tools),
		Users:          len(m.users),
		YouTubeContent: len(m.videos),
	}
}

// Reset removes every record.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.playlists)
	clear(m.tools)
	clear(m.users)
	clear(m.videos)
	clear(m.playlistsByName)
	clear(m.toolsByURL)
	clear(m.usersByEmail)
	clear(m.videosByVideoID)
}

func clonePlaylist(rec domain.PlaylistRecord) domain.PlaylistRecord {
	rec.ToolIDs = slices.Clone(rec.ToolIDs)
	return rec
}

func cloneTool(rec domain.ToolRecord) domain.ToolRecord {
	rec.Tags = slices.Clone(rec.Tags)
	if rec.AIClassification != nil {
		cls := *rec.AIClassification
		cls.ToolsDetected = slices.Clone(cls.ToolsDetected)
		rec.AIClassification = &cls
	}
	return rec
}

func cloneVideo(rec domain.YouTubeContentRecord) domain.YouTubeContentRecord {
	rec.RelatedTools = slices.Clone(rec.RelatedTools)
	rec.Tags = slices.Clone(rec.Tags)
	rec.AIKeyPoints = slices.Clone(rec.AIKeyPoints)
	rec.AIClassification.ToolsDetected = slices.Clone(rec.AIClassification.ToolsDetected)
	return rec
}
