package snapshot

import (
	"context"
	"log/slog"
	"time"

	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/errors"
	"github.com/aiknowledgehub/hub-server/internal/normalize"
	"github.com/aiknowledgehub/hub-server/internal/service"
	"github.com/aiknowledgehub/hub-server/internal/store"
)

// Options controls a load.
type Options struct {
	// DryRun checks every record without importing anything.
	DryRun bool
}

// Problem describes one record that failed a check.
type Problem struct {
	EntityType string      `json:"entity_type"`
	EntityID   string      `json:"entity_id,omitempty"`
	Index      int         `json:"index"`
	Kind       errors.Kind `json:"kind,omitempty"`
	Error      string      `json:"error"`
}

// Result is the outcome of a load.
type Result struct {
	Checked  store.Counts  `json:"checked"`
	Imported store.Counts  `json:"imported"`
	Problems []Problem     `json:"problems,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Valid reports whether every record passed.
func (r *Result) Valid() bool { return len(r.Problems) == 0 }

func (r *Result) add(entityType, id string, index int, err error) {
	r.Problems = append(r.Problems, Problem{
		EntityType: entityType,
		EntityID:   id,
		Index:      index,
		Kind:       errors.KindOf(err),
		Error:      err.Error(),
	})
}

// Loader replaces the store contents with a snapshot.
type Loader struct {
	store     *store.Memory
	factory   *domain.Factory
	users     *service.UserService
	tools     *service.ToolService
	playlists *service.PlaylistService
	ingest    *service.IngestService
	logger    *slog.Logger
}

// NewLoader creates a loader.
func NewLoader(
	s *store.Memory,
	factory *domain.Factory,
	users *service.UserService,
	tools *service.ToolService,
	playlists *service.PlaylistService,
	ingest *service.IngestService,
	logger *slog.Logger,
) *Loader {
	return &Loader{
		store:     s,
		factory:   factory,
		users:     users,
		tools:     tools,
		playlists: playlists,
		ingest:    ingest,
		logger:    logger,
	}
}

// LoadFile reads the snapshot at path and loads it.
func (l *Loader) LoadFile(ctx context.Context, path string, opts Options) (*Result, error) {
	snap, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, snap, opts)
}

// Load checks every record and, unless DryRun is set, clears the store and
// imports the valid ones. Users load first, then tools, playlists and content,
// so references can be checked against what has already passed.
// Record problems are collected in the result; the returned error is reserved
// for cancellation.
func (l *Loader) Load(ctx context.Context, snap *Snapshot, opts Options) (*Result, error) {
	start := time.Now()
	l.logger.Info("loading snapshot",
		"playlists", len(snap.Playlists),
		"tools", len(snap.Tools),
		"users", len(snap.Users),
		"youtube_content", len(snap.YouTubeContent),
		"dry_run", opts.DryRun,
	)

	if !opts.DryRun {
		l.store.Reset()
	}

	run := &loadRun{
		Loader:      l,
		opts:        opts,
		result:      &Result{Checked: snap.Counts()},
		userIDs:     make(keySet),
		toolIDs:     make(keySet),
		playlistIDs: make(keySet),
		contentIDs:  make(keySet),
	}

	steps := []func(context.Context, *Snapshot) error{
		run.loadUsers,
		run.loadTools,
		run.loadPlaylists,
		run.loadYouTubeContent,
	}
	for _, step := range steps {
		if err := step(ctx, snap); err != nil {
			return nil, err
		}
	}

	res := run.result
	res.Duration = time.Since(start)

	l.logger.Info("snapshot loaded",
		"imported_playlists", res.Imported.Playlists,
		"imported_tools", res.Imported.Tools,
		"imported_users", res.Imported.Users,
		"imported_youtube_content", res.Imported.YouTubeContent,
		"problems", len(res.Problems),
		"duration", res.Duration,
	)
	return res, nil
}

// loadRun carries the state of one Load call. The key sets hold what has
// passed so far, so uniqueness and references are checked the same way with
// or without DryRun.
type loadRun struct {
	*Loader
	opts        Options
	result      *Result
	userIDs     keySet
	toolIDs     keySet
	playlistIDs keySet
	contentIDs  keySet
}

type keySet map[string]struct{}

func (s keySet) has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s keySet) add(key string) { s[key] = struct{}{} }

func (r *loadRun) problem(entityType, id string, index int, err error) {
	r.logger.Warn("invalid snapshot record",
		"entity_type", entityType,
		"entity_id", id,
		"index", index,
		"kind", errors.KindOf(err),
		"error", err,
	)
	r.result.add(entityType, id, index, err)
}

func (r *loadRun) loadUsers(ctx context.Context, snap *Snapshot) error {
	emails := make(keySet)
	for i, rec := range snap.Users {
		if err := ctx.Err(); err != nil {
			return err
		}
		u, err := r.factory.RestoreUser(rec)
		if err == nil {
			err = u.Validate()
		}
		if err == nil && r.userIDs.has(u.ID()) {
			err = domain.DuplicateRecordID(EntityUser, u.ID())
		}
		if err == nil && emails.has(normalize.Fold(u.Email())) {
			err = service.EmailAlreadyRegistered(u.Email())
		}
		if err == nil && !r.opts.DryRun {
			err = r.users.Import(ctx, u)
		}
		if err != nil {
			r.problem(EntityUser, rec.ID, i, err)
			continue
		}
		r.userIDs.add(u.ID())
		emails.add(normalize.Fold(u.Email()))
		r.result.Imported.Users++
	}
	return nil
}

func (r *loadRun) loadTools(ctx context.Context, snap *Snapshot) error {
	urls := make(map[string]string)
	for i, rec := range snap.Tools {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := r.factory.RestoreTool(rec)
		if err == nil {
			err = t.Validate()
		}
		if err == nil && r.toolIDs.has(t.ID().String()) {
			err = domain.DuplicateRecordID(EntityTool, t.ID().String())
		}
		if err == nil {
			if existing, dup := urls[store.ToolURLKey(t.WebsiteURL())]; dup {
				err = domain.DuplicateToolURL(t.WebsiteURL(), existing)
			}
		}
		if err == nil && !r.opts.DryRun {
			err = r.tools.Import(ctx, t)
		}
		if err != nil {
			r.problem(EntityTool, rec.ID, i, err)
			continue
		}
		r.toolIDs.add(t.ID().String())
		urls[store.ToolURLKey(t.WebsiteURL())] = t.ID().String()
		r.result.Imported.Tools++
	}
	return nil
}

func (r *loadRun) loadPlaylists(ctx context.Context, snap *Snapshot) error {
	names := make(keySet)
	for i, rec := range snap.Playlists {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := r.factory.RestorePlaylist(rec)
		if err == nil {
			err = p.Validate()
		}
		if err == nil {
			err = r.checkTools(p.ToolIDs())
		}
		if err == nil && r.playlistIDs.has(p.ID()) {
			err = domain.DuplicateRecordID(EntityPlaylist, p.ID())
		}
		if err == nil && names.has(store.PlaylistNameKey(p.UserID(), p.Name())) {
			err = domain.PlaylistNameAlreadyExists(p.Name(), p.UserID())
		}
		if err == nil && !r.opts.DryRun {
			err = r.playlists.Import(ctx, p)
		}
		if err != nil {
			r.problem(EntityPlaylist, rec.ID, i, err)
			continue
		}
		r.playlistIDs.add(p.ID())
		names.add(store.PlaylistNameKey(p.UserID(), p.Name()))
		r.result.Imported.Playlists++
	}
	return nil
}

func (r *loadRun) loadYouTubeContent(ctx context.Context, snap *Snapshot) error {
	videoIDs := make(keySet)
	for i, rec := range snap.YouTubeContent {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := r.factory.RestoreYouTubeContent(rec)
		if err == nil {
			err = c.Validate()
		}
		if err == nil {
			err = r.checkTools(c.RelatedTools())
		}
		if err == nil && c.IsAssignedToPlaylist() && !r.playlistIDs.has(c.PlaylistID()) {
			err = domain.PlaylistNotFound(c.PlaylistID())
		}
		if err == nil && r.contentIDs.has(c.ID()) {
			err = domain.DuplicateRecordID(EntityYouTubeContent, c.ID())
		}
		if err == nil && videoIDs.has(c.VideoID()) {
			err = errors.AlreadyExistsf("content for video %q already exists", c.VideoID()).
				With("video_id", c.VideoID())
		}
		if err == nil && !r.opts.DryRun {
			err = r.ingest.Import(ctx, c)
		}
		if err != nil {
			r.problem(EntityYouTubeContent, rec.ID, i, err)
			continue
		}
		r.contentIDs.add(c.ID())
		videoIDs.add(c.VideoID())
		r.result.Imported.YouTubeContent++
	}
	return nil
}

func (r *loadRun) checkTools(ids []domain.ToolID) error {
	for _, tid := range ids {
		if !r.toolIDs.has(tid.String()) {
			return domain.ToolNotFound(tid.String())
		}
	}
	return nil
}

// ReplayResult is the outcome of replaying classification payloads.
type ReplayResult struct {
	Created      int       `json:"created"`
	Reclassified int       `json:"reclassified"`
	Problems     []Problem `json:"problems,omitempty"`
}

// Replay feeds payloads through the ingest service in order.
func (l *Loader) Replay(ctx context.Context, payloads []service.IngestPayload) (*ReplayResult, error) {
	res := &ReplayResult{}
	for i, p := range payloads {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := l.ingest.Ingest(ctx, p)
		if err != nil {
			l.logger.Warn("payload rejected",
				"index", i,
				"video_id", p.VideoID,
				"kind", errors.KindOf(err),
				"error", err,
			)
			res.Problems = append(res.Problems, Problem{
				EntityType: "payload",
				EntityID:   p.VideoID,
				Index:      i,
				Kind:       errors.KindOf(err),
				Error:      err.Error(),
			})
			continue
		}
		if out.Created {
			res.Created++
		} else {
			res.Reclassified++
		}
	}
	l.logger.Info("payloads replayed",
		"created", res.Created,
		"reclassified", res.Reclassified,
		"rejected", len(res.Problems),
	)
	return res, nil
}
