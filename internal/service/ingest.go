package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/errors"
	"github.com/aiknowledgehub/hub-server/internal/normalize"
	"github.com/aiknowledgehub/hub-server/internal/ratelimit"
	"github.com/aiknowledgehub/hub-server/internal/store"
	"github.com/aiknowledgehub/hub-server/internal/validation"
)

// KindIngestThrottled marks a payload rejected because its channel is over
// the ingest rate.
const KindIngestThrottled errors.Kind = "INGEST_THROTTLED"

// IngestPayload is one classified video as produced by the n8n workflow.
type IngestPayload struct {
	PublishedAt     time.Time                   `json:"published_at"`
	Classification  domain.ClassificationRecord `json:"classification"`
	ConfidenceScore *float64                    `json:"confidence_score,omitempty" validate:"omitempty,gte=0,lte=1"`
	VideoID         string                      `json:"video_id" validate:"required,len=11"`
	Title           string                      `json:"title" validate:"required"`
	Description     string                      `json:"description,omitempty"`
	ChannelName     string                      `json:"channel_name" validate:"required"`
	ChannelURL      string                      `json:"channel_url,omitempty" validate:"omitempty,url"`
	VideoURL        string                      `json:"video_url" validate:"required,url"`
	ThumbnailURL    string                      `json:"thumbnail_url,omitempty" validate:"omitempty,url"`
	Duration        string                      `json:"duration,omitempty"`
	Summary         string                      `json:"summary,omitempty"`
	UserID          string                      `json:"user_id,omitempty"`
	PlaylistID      string                      `json:"playlist_id,omitempty"`
	KeyPoints       []string                    `json:"key_points,omitempty"`
	Tags            []string                    `json:"tags,omitempty"`
	ViewCount       int                         `json:"view_count" validate:"gte=0"`
	LikeCount       int                         `json:"like_count" validate:"gte=0"`
}

// IngestResult describes what an ingest did.
type IngestResult struct {
	Content *domain.YouTubeContent
	// Created is false when an existing video was re-classified.
	Created bool
}

// IngestService turns classification payloads into stored YouTube content.
type IngestService struct {
	store     store.Store
	factory   *domain.Factory
	publisher Publisher
	validator *validation.Validator
	limiter   *ratelimit.Keyed
	logger    *slog.Logger
}

// NewIngestService creates an ingest service. A nil limiter disables throttling.
func NewIngestService(store store.Store, factory *domain.Factory, publisher Publisher, limiter *ratelimit.Keyed, logger *slog.Logger) *IngestService {
	return &IngestService{
		store:     store,
		factory:   factory,
		publisher: publisher,
		validator: validation.New(),
		limiter:   limiter,
		logger:    logger,
	}
}

// Ingest validates the payload, creates or re-classifies the content for its
// video id, links detected tools by title and publishes YoutubeContentAnalyzed.
//
// Re-ingesting a known video replaces its classification and confidence
// together and refreshes the metadata; tags and related tools accumulate.
func (s *IngestService) Ingest(ctx context.Context, payload IngestPayload) (*IngestResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(payload); err != nil {
		return nil, err
	}

	cls, err := domain.AIClassificationFromRecord(payload.Classification)
	if err != nil {
		return nil, err
	}

	confidence := cls.Confidence()
	if payload.ConfidenceScore != nil {
		confidence = *payload.ConfidenceScore
	}
	score, err := domain.NewConfidenceScore(confidence)
	if err != nil {
		return nil, err
	}

	if err := s.throttle(payload.ChannelName); err != nil {
		return nil, err
	}

	content, created, err := s.findOrCreate(ctx, payload, cls, score)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, content, payload); err != nil {
		return nil, err
	}

	if err := s.linkTools(ctx, content, cls); err != nil {
		return nil, err
	}

	if err := s.store.SaveYouTubeContent(ctx, content.Record()); err != nil {
		return nil, fmt.Errorf("save youtube content: %w", err)
	}

	s.logger.Info("youtube content ingested",
		"content_id", content.ID(),
		"video_id", content.VideoID(),
		"category", cls.Category(),
		"confidence", score.Value(),
		"created", created,
		"related_tools", len(content.RelatedTools()),
	)

	publish(ctx, s.publisher, s.logger, s.factory.NewYouTubeContentAnalyzed(content))
	return &IngestResult{Content: content, Created: created}, nil
}

// GetByVideoID returns stored content for a YouTube video id.
func (s *IngestService) GetByVideoID(ctx context.Context, videoID string) (*domain.YouTubeContent, error) {
	rec, err := s.store.GetYouTubeContentByVideoID(ctx, videoID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, domain.ContentNotFound(videoID)
		}
		return nil, fmt.Errorf("get youtube content: %w", err)
	}
	return s.factory.RestoreYouTubeContent(rec)
}

// Import stores already restored content, e.g. from a snapshot.
func (s *IngestService) Import(ctx context.Context, c *domain.YouTubeContent) error {
	if _, err := s.store.GetYouTubeContent(ctx, c.ID()); err == nil {
		return domain.DuplicateRecordID("youtube_content", c.ID())
	}
	if _, err := s.store.GetYouTubeContentByVideoID(ctx, c.VideoID()); err == nil {
		return errors.AlreadyExistsf("content for video %q already exists", c.VideoID()).
			With("video_id", c.VideoID())
	}
	if err := s.store.SaveYouTubeContent(ctx, c.Record()); err != nil {
		return fmt.Errorf("import youtube content: %w", err)
	}
	return nil
}

func (s *IngestService) throttle(channel string) error {
	if s.limiter == nil {
		return nil
	}
	if !s.limiter.Allow(normalize.Fold(channel)) {
		return errors.QuotaExceededf("ingest rate exceeded for channel %q", channel).
			WithKind(KindIngestThrottled).
			With("channel_name", channel)
	}
	return nil
}

func (s *IngestService) findOrCreate(ctx context.Context, payload IngestPayload, cls domain.AIClassification, score domain.ConfidenceScore) (*domain.YouTubeContent, bool, error) {
	rec, err := s.store.GetYouTubeContentByVideoID(ctx, payload.VideoID)
	switch {
	case err == nil:
		content, err := s.factory.RestoreYouTubeContent(rec)
		if err != nil {
			return nil, false, err
		}
		if err := content.UpdateAIClassification(cls, score); err != nil {
			return nil, false, err
		}
		if err := content.UpdateTitle(payload.Title); err != nil {
			return nil, false, err
		}
		if err := content.UpdateVideoURL(payload.VideoURL); err != nil {
			return nil, false, err
		}
		return content, false, nil

	case errors.Is(err, errors.ErrNotFound):
		content, err := s.factory.NewYouTubeContent(domain.NewYouTubeContentInput{
			VideoID:          payload.VideoID,
			Title:            payload.Title,
			ChannelName:      payload.ChannelName,
			VideoURL:         payload.VideoURL,
			AIClassification: cls,
			ConfidenceScore:  score,
			UserID:           payload.UserID,
		})
		if err != nil {
			return nil, false, err
		}
		return content, true, nil

	default:
		return nil, false, fmt.Errorf("look up video: %w", err)
	}
}

// apply copies the optional payload fields onto content.
func (s *IngestService) apply(ctx context.Context, content *domain.YouTubeContent, payload IngestPayload) error {
	if err := content.UpdateChannel(payload.ChannelName, payload.ChannelURL); err != nil {
		return err
	}
	if err := content.UpdateStats(payload.ViewCount, payload.LikeCount); err != nil {
		return err
	}
	content.UpdateDescription(payload.Description)
	content.UpdateThumbnailURL(payload.ThumbnailURL)
	content.UpdateDuration(payload.Duration)
	if !payload.PublishedAt.IsZero() {
		content.UpdatePublishedAt(payload.PublishedAt)
	}

	content.SetAISummary(payload.Summary)
	content.ClearAIKeyPoints()
	for _, point := range payload.KeyPoints {
		if strings.TrimSpace(point) == "" {
			continue
		}
		if err := content.AddAIKeyPoint(point); err != nil {
			return err
		}
	}

	for _, tag := range normalize.Tags(payload.Tags) {
		if content.HasTag(tag) {
			continue
		}
		if err := content.AddTag(tag); err != nil {
			return err
		}
	}

	if payload.PlaylistID != "" {
		if _, err := s.store.GetPlaylist(ctx, payload.PlaylistID); err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return domain.PlaylistNotFound(payload.PlaylistID)
			}
			return fmt.Errorf("get playlist: %w", err)
		}
		if err := content.AssignToPlaylist(payload.PlaylistID); err != nil {
			return err
		}
	}
	return nil
}

// linkTools relates every catalog tool whose title matches a detected tool name.
func (s *IngestService) linkTools(ctx context.Context, content *domain.YouTubeContent, cls domain.AIClassification) error {
	for _, name := range cls.ToolsDetected() {
		recs, err := s.store.FindToolsByTitle(ctx, name)
		if err != nil {
			return fmt.Errorf("find tools by title: %w", err)
		}
		for _, rec := range recs {
			toolID, err := domain.NewToolID(rec.ID)
			if err != nil {
				s.logger.Warn("skipping tool with invalid id", "tool_id", rec.ID, "error", err)
				continue
			}
			if content.IsRelatedTo(toolID) {
				continue
			}
			if err := content.AddRelatedTool(toolID); err != nil {
				return err
			}
		}
	}
	return nil
}
