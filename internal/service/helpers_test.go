package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/id"
	"github.com/aiknowledgehub/hub-server/internal/logger"
	"github.com/aiknowledgehub/hub-server/internal/store"
)

var testEpoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventName()
	}
	return out
}

type testEnv struct {
	store     *store.Memory
	factory   *domain.Factory
	publisher *recordingPublisher
	playlists *PlaylistService
	tools     *ToolService
	users     *UserService
}

func newTestEnv(t *testing.T, maxTools int) *testEnv {
	t.Helper()

	now := testEpoch
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}

	s := store.NewMemory()
	f := domain.NewFactory(id.NewSequence(), clock)
	pub := &recordingPublisher{}
	log := logger.Discard().Logger

	return &testEnv{
		store:     s,
		factory:   f,
		publisher: pub,
		playlists: NewPlaylistService(s, f, pub, log, maxTools),
		tools:     NewToolService(s, f, pub, log),
		users:     NewUserService(s, f, log),
	}
}

func (e *testEnv) createTool(t *testing.T, title, websiteURL string) *domain.Tool {
	t.Helper()
	tool, err := e.tools.Create(context.Background(), domain.NewToolInput{
		Title:      title,
		Summary:    "A tool used throughout these tests.",
		Category:   "AI/ML",
		WebsiteURL: websiteURL,
		Tags:       []string{"LLM", "chat"},
	})
	require.NoError(t, err)
	return tool
}

func (e *testEnv) createPlaylist(t *testing.T, name, userID string) *domain.Playlist {
	t.Helper()
	p, err := e.playlists.Create(context.Background(), domain.NewPlaylistInput{
		Name:   name,
		Icon:   "🤖",
		UserID: userID,
	})
	require.NoError(t, err)
	return p
}
