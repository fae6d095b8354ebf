package domain

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/aiknowledgehub/hub-server/internal/normalize"
)

const (
	// youTubeVideoIDLength is YouTube's fixed video id length.
	youTubeVideoIDLength = 11

	minVideoTitleLength = 2
	maxVideoTitleLength = 200
)

// youTubeHosts are the hostnames accepted for video URLs.
var youTubeHosts = []string{"youtube.com", "www.youtube.com", "youtu.be"}

// YouTubeContent is a video ingested from the classification pipeline. Unlike
// Tool, it always carries a classification and a confidence score.
type YouTubeContent struct {
	timestamps

	id               string
	videoID          string
	title            string
	description      string
	channelName      string
	channelURL       string
	videoURL         string
	thumbnailURL     string
	duration         string
	publishedAt      time.Time
	viewCount        int
	likeCount        int
	aiClassification AIClassification
	confidenceScore  ConfidenceScore
	relatedTools     []ToolID
	playlistID       string
	tags             tagSet
	aiSummary        string
	aiKeyPoints      []string
	userID           string
}

// NewYouTubeContentInput holds the fields accepted when creating content.
type NewYouTubeContentInput struct {
	VideoID          string
	Title            string
	ChannelName      string
	VideoURL         string
	AIClassification AIClassification
	ConfidenceScore  ConfidenceScore
	UserID           string // optional
}

// NewYouTubeContent validates in and creates content with a generated id.
func (f *Factory) NewYouTubeContent(in NewYouTubeContentInput) (*YouTubeContent, error) {
	c := &YouTubeContent{
		timestamps:       newTimestamps(f.now),
		id:               f.ids.NewUUID(),
		videoID:          strings.TrimSpace(in.VideoID),
		title:            strings.TrimSpace(in.Title),
		channelName:      strings.TrimSpace(in.ChannelName),
		videoURL:         strings.TrimSpace(in.VideoURL),
		aiClassification: in.AIClassification,
		confidenceScore:  in.ConfidenceScore,
		relatedTools:     []ToolID{},
		tags:             tagSet{},
		aiKeyPoints:      []string{},
		userID:           in.UserID,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// YouTubeContentRecord is the stored shape of YouTube content.
type YouTubeContentRecord struct {
	CreatedAt        time.Time            `json:"created_at" validate:"required"`
	UpdatedAt        time.Time            `json:"updated_at" validate:"required"`
	PublishedAt      time.Time            `json:"published_at,omitzero"`
	AIClassification ClassificationRecord `json:"ai_classification"`
	ID               string               `json:"id" validate:"required"`
	VideoID          string               `json:"video_id" validate:"required"`
	Title            string               `json:"title" validate:"required"`
	Description      string               `json:"description,omitempty"`
	ChannelName      string               `json:"channel_name" validate:"required"`
	ChannelURL       string               `json:"channel_url,omitempty"`
	VideoURL         string               `json:"video_url" validate:"required"`
	ThumbnailURL     string               `json:"thumbnail_url,omitempty"`
	Duration         string               `json:"duration,omitempty"`
	PlaylistID       string               `json:"playlist_id,omitempty"`
	AISummary        string               `json:"ai_summary,omitempty"`
	UserID           string               `json:"user_id,omitempty"`
	RelatedTools     []string             `json:"related_tools"`
	Tags             []string             `json:"tags"`
	AIKeyPoints      []string             `json:"ai_key_points"`
	ConfidenceScore  float64              `json:"confidence_score" validate:"gte=0,lte=1"`
	ViewCount        int                  `json:"view_count" validate:"gte=0"`
	LikeCount        int                  `json:"like_count" validate:"gte=0"`
}

// RestoreYouTubeContent rebuilds content from storage. Structural checks,
// including the classification and confidence ranges, always run; video id,
// title and URL rules do not.
func (f *Factory) RestoreYouTubeContent(rec YouTubeContentRecord) (*YouTubeContent, error) {
	if err := f.restore("youtube_content", rec); err != nil {
		return nil, err
	}
	cls, err := AIClassificationFromRecord(rec.AIClassification)
	if err != nil {
		return nil, err
	}
	score, err := NewConfidenceScore(rec.ConfidenceScore)
	if err != nil {
		return nil, err
	}
	related, err := toolIDsFromStrings(rec.RelatedTools)
	if err != nil {
		return nil, err
	}

	keyPoints := slices.DeleteFunc(slices.Clone(rec.AIKeyPoints), func(p string) bool {
		return strings.TrimSpace(p) == ""
	})
	if keyPoints == nil {
		keyPoints = []string{}
	}

	return &YouTubeContent{
		timestamps:       timestamps{createdAt: rec.CreatedAt, updatedAt: rec.UpdatedAt, now: f.now},
		id:               rec.ID,
		videoID:          rec.VideoID,
		title:            rec.Title,
		description:      rec.Description,
		channelName:      rec.ChannelName,
		channelURL:       rec.ChannelURL,
		videoURL:         rec.VideoURL,
		thumbnailURL:     rec.ThumbnailURL,
		duration:         rec.Duration,
		publishedAt:      rec.PublishedAt,
		viewCount:        rec.ViewCount,
		likeCount:        rec.LikeCount,
		aiClassification: cls,
		confidenceScore:  score,
		relatedTools:     uniqueToolIDs(related),
		playlistID:       rec.PlaylistID,
		tags:             normalize.Tags(rec.Tags),
		aiSummary:        rec.AISummary,
		aiKeyPoints:      keyPoints,
		userID:           rec.UserID,
	}, nil
}

// Record returns the stored shape.
func (c *YouTubeContent) Record() YouTubeContentRecord {
	return YouTubeContentRecord{
		CreatedAt:        c.createdAt,
		UpdatedAt:        c.updatedAt,
		PublishedAt:      c.publishedAt,
		AIClassification: c.aiClassification.Record(),
		ID:               c.id,
		VideoID:          c.videoID,
		Title:            c.title,
		Description:      c.description,
		ChannelName:      c.channelName,
		ChannelURL:       c.channelURL,
		VideoURL:         c.videoURL,
		ThumbnailURL:     c.thumbnailURL,
		Duration:         c.duration,
		PlaylistID:       c.playlistID,
		AISummary:        c.aiSummary,
		UserID:           c.userID,
		RelatedTools:     toolIDStrings(c.relatedTools),
		Tags:             c.Tags(),
		AIKeyPoints:      c.AIKeyPoints(),
		ConfidenceScore:  c.confidenceScore.Value(),
		ViewCount:        c.viewCount,
		LikeCount:        c.likeCount,
	}
}

// Validate re-runs the business rules.
func (c *YouTubeContent) Validate() error {
	if err := validateVideoID(c.videoID); err != nil {
		return err
	}
	if err := validateVideoTitle(c.title); err != nil {
		return err
	}
	if err := checkRequired(KindContentValidation, "channel_name", c.channelName); err != nil {
		return err
	}
	if err := validateVideoURL(c.videoURL); err != nil {
		return err
	}
	if c.aiClassification.IsZero() {
		return invalidField(KindContentValidation, "ai_classification", nil, "is required")
	}
	return nil
}

// ID returns the content id.
func (c *YouTubeContent) ID() string { return c.id }

// VideoID returns the 11 character YouTube video id.
func (c *YouTubeContent) VideoID() string { return c.videoID }

// Title returns the video title.
func (c *YouTubeContent) Title() string { return c.title }

// Description returns the video description.
func (c *YouTubeContent) Description() string { return c.description }

// ChannelName returns the channel name.
func (c *YouTubeContent) ChannelName() string { return c.channelName }

// ChannelURL returns the channel URL.
func (c *YouTubeContent) ChannelURL() string { return c.channelURL }

// VideoURL returns the video URL.
func (c *YouTubeContent) VideoURL() string { return c.videoURL }

// ThumbnailURL returns the thumbnail URL, possibly empty.
func (c *YouTubeContent) ThumbnailURL() string { return c.thumbnailURL }

// Duration returns the duration as reported by YouTube.
func (c *YouTubeContent) Duration() string { return c.duration }

// PublishedAt returns the publication time.
func (c *YouTubeContent) PublishedAt() time.Time { return c.publishedAt }

// ViewCount returns the YouTube view count.
func (c *YouTubeContent) ViewCount() int { return c.viewCount }

// LikeCount returns the like count.
func (c *YouTubeContent) LikeCount() int { return c.likeCount }

// AIClassification returns the current classification.
func (c *YouTubeContent) AIClassification() AIClassification { return c.aiClassification }

// ConfidenceScore returns the confidence of the current classification.
func (c *YouTubeContent) ConfidenceScore() ConfidenceScore { return c.confidenceScore }

// PlaylistID returns the assigned playlist id, empty when unassigned.
func (c *YouTubeContent) PlaylistID() string { return c.playlistID }

// AISummary returns the generated summary.
func (c *YouTubeContent) AISummary() string { return c.aiSummary }

// UserID returns the id of the user who added the content, possibly empty.
func (c *YouTubeContent) UserID() string { return c.userID }

// RelatedTools returns a copy of the related tool ids.
func (c *YouTubeContent) RelatedTools() []ToolID { return slices.Clone(c.relatedTools) }

// Tags returns a copy of the normalized tags.
func (c *YouTubeContent) Tags() []string { return slices.Clone([]string(c.tags)) }

// AIKeyPoints returns a copy of the key points in order.
func (c *YouTubeContent) AIKeyPoints() []string { return slices.Clone(c.aiKeyPoints) }

// UpdateTitle changes the title (2-200 characters).
func (c *YouTubeContent) UpdateTitle(title string) error {
	title = strings.TrimSpace(title)
	if err := validateVideoTitle(title); err != nil {
		return err
	}
	c.title = title
	c.touch()
	return nil
}

// UpdateDescription replaces the description. An empty string clears it.
func (c *YouTubeContent) UpdateDescription(description string) {
	c.description = strings.TrimSpace(description)
	c.touch()
}

// UpdateChannel changes the channel name and URL.
func (c *YouTubeContent) UpdateChannel(name, channelURL string) error {
	name = strings.TrimSpace(name)
	if err := checkRequired(KindContentValidation, "channel_name", name); err != nil {
		return err
	}
	c.channelName = name
	c.channelURL = strings.TrimSpace(channelURL)
	c.touch()
	return nil
}

// UpdateVideoURL changes the video URL, which must point at YouTube.
func (c *YouTubeContent) UpdateVideoURL(videoURL string) error {
	videoURL = strings.TrimSpace(videoURL)
	if err := validateVideoURL(videoURL); err != nil {
		return err
	}
	c.videoURL = videoURL
	c.touch()
	return nil
}

// UpdateThumbnailURL changes the thumbnail URL. An empty string clears it.
func (c *YouTubeContent) UpdateThumbnailURL(thumbnailURL string) {
	c.thumbnailURL = strings.TrimSpace(thumbnailURL)
	c.touch()
}

// UpdateDuration changes the duration label (e.g. "PT4M13S").
func (c *YouTubeContent) UpdateDuration(duration string) {
	c.duration = strings.TrimSpace(duration)
	c.touch()
}

// UpdatePublishedAt changes the publish time.
func (c *YouTubeContent) UpdatePublishedAt(publishedAt time.Time) {
	c.publishedAt = publishedAt
	c.touch()
}

// UpdateStats replaces the view and like counters.
func (c *YouTubeContent) UpdateStats(viewCount, likeCount int) error {
	if viewCount < 0 {
		return invalidField(KindContentValidation, "view_count", viewCount, "cannot be negative")
	}
	if likeCount < 0 {
		return invalidField(KindContentValidation, "like_count", likeCount, "cannot be negative")
	}
	c.viewCount = viewCount
	c.likeCount = likeCount
	c.touch()
	return nil
}

// UpdateAIClassification replaces the classification and confidence together.
func (c *YouTubeContent) UpdateAIClassification(cls AIClassification, score ConfidenceScore) error {
	if cls.IsZero() {
		return invalidField(KindContentValidation, "ai_classification", nil, "is required")
	}
	c.aiClassification = cls
	c.confidenceScore = score
	c.touch()
	return nil
}

// SetAISummary replaces the AI summary. An empty string clears it.
func (c *YouTubeContent) SetAISummary(summary string) {
	c.aiSummary = strings.TrimSpace(summary)
	c.touch()
}

// AddAIKeyPoint appends a key point. Duplicates are allowed.
func (c *YouTubeContent) AddAIKeyPoint(point string) error {
	point = strings.TrimSpace(point)
	if point == "" {
		return invalidField(KindContentValidation, "ai_key_point", point, "cannot be empty")
	}
	c.aiKeyPoints = append(c.aiKeyPoints, point)
	c.touch()
	return nil
}

// RemoveAIKeyPoint removes the key point at index.
func (c *YouTubeContent) RemoveAIKeyPoint(index int) error {
	if index < 0 || index >= len(c.aiKeyPoints) {
		return invalidField(KindContentValidation, "ai_key_point", index, "index out of range")
	}
	c.aiKeyPoints = slices.Delete(c.aiKeyPoints, index, index+1)
	c.touch()
	return nil
}

// ClearAIKeyPoints removes every key point.
func (c *YouTubeContent) ClearAIKeyPoints() {
	c.aiKeyPoints = []string{}
	c.touch()
}

// AddTag adds a normalized tag. Adding an existing tag is a conflict.
func (c *YouTubeContent) AddTag(tag string) error {
	n := normalize.Tag(tag)
	if n == "" {
		return invalidField(KindContentValidation, "tag", tag, "cannot be empty")
	}
	if c.tags.has(n) {
		return conflict(KindTagAlreadyExists, "tag "+n+" already exists").With("tag", n)
	}
	c.tags = append(c.tags, n)
	c.touch()
	return nil
}

// RemoveTag removes a normalized tag. Removing an absent tag fails.
func (c *YouTubeContent) RemoveTag(tag string) error {
	n := normalize.Tag(tag)
	if !c.tags.has(n) {
		return missing(KindTagNotFound, "tag "+n+" not found").With("tag", n)
	}
	c.tags = c.tags.without(n)
	c.touch()
	return nil
}

// HasTag reports whether the normalized tag is present.
func (c *YouTubeContent) HasTag(tag string) bool {
	return c.tags.has(normalize.Tag(tag))
}

// AddRelatedTool references a tool. Adding an existing reference is a conflict.
func (c *YouTubeContent) AddRelatedTool(toolID ToolID) error {
	if toolID.IsZero() {
		return invalidField(KindContentValidation, "related_tool", "", "cannot be empty")
	}
	if c.IsRelatedTo(toolID) {
		return conflict(KindRelatedToolAlreadyExists, "tool "+toolID.String()+" is already related").
			With("tool_id", toolID.String())
	}
	c.relatedTools = append(c.relatedTools, toolID)
	c.touch()
	return nil
}

// RemoveRelatedTool drops a tool reference. Removing an absent reference fails.
func (c *YouTubeContent) RemoveRelatedTool(toolID ToolID) error {
	i := slices.IndexFunc(c.relatedTools, toolID.Equal)
	if i < 0 {
		return missing(KindRelatedToolNotFound, "tool "+toolID.String()+" is not related").
			With("tool_id", toolID.String())
	}
	c.relatedTools = slices.Delete(c.relatedTools, i, i+1)
	c.touch()
	return nil
}

// IsRelatedTo reports whether toolID is referenced.
func (c *YouTubeContent) IsRelatedTo(toolID ToolID) bool {
	return slices.ContainsFunc(c.relatedTools, toolID.Equal)
}

// AssignToPlaylist sets the playlist reference. The playlist's existence is
// the caller's concern.
func (c *YouTubeContent) AssignToPlaylist(playlistID string) error {
	playlistID = strings.TrimSpace(playlistID)
	if playlistID == "" {
		return invalidField(KindContentValidation, "playlist_id", playlistID, "cannot be empty")
	}
	c.playlistID = playlistID
	c.touch()
	return nil
}

// RemoveFromPlaylist clears the playlist reference.
func (c *YouTubeContent) RemoveFromPlaylist() {
	c.playlistID = ""
	c.touch()
}

// IsAssignedToPlaylist reports whether a playlist is set.
func (c *YouTubeContent) IsAssignedToPlaylist() bool { return c.playlistID != "" }

// IsInCategory compares the classification category ignoring case.
func (c *YouTubeContent) IsInCategory(category string) bool {
	return normalize.Fold(strings.TrimSpace(category)) == normalize.Fold(c.aiClassification.Category())
}

// HasConfidenceAbove reports whether the confidence score is strictly above threshold.
func (c *YouTubeContent) HasConfidenceAbove(threshold float64) bool {
	return c.confidenceScore.Value() > threshold
}

// HasHighConfidence reports a confidence score of at least 0.8.
func (c *YouTubeContent) HasHighConfidence() bool {
	return c.confidenceScore.IsHigh()
}

// MatchesSearch reports whether query appears in the title, description,
// channel, classification category, AI summary, any key point or any tag,
// ignoring case.
func (c *YouTubeContent) MatchesSearch(query string) bool {
	fields := []string{c.title, c.description, c.channelName, c.aiClassification.Category(), c.aiSummary}
	fields = append(fields, c.aiKeyPoints...)
	fields = append(fields, c.tags...)
	return containsFold(query, fields...)
}

func validateVideoID(videoID string) error {
	if len(videoID) != youTubeVideoIDLength {
		return invalidField(KindContentValidation, "video_id", videoID, "must be exactly 11 characters")
	}
	return nil
}

func validateVideoTitle(title string) error {
	return checkLength(KindContentValidation, "title", title, minVideoTitleLength, maxVideoTitleLength)
}

func validateVideoURL(raw string) error {
	if raw == "" {
		return invalidField(KindContentValidation, "video_url", raw, "cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return invalidField(KindContentValidation, "video_url", raw, "must be a valid URL")
	}
	if !slices.Contains(youTubeHosts, strings.ToLower(u.Hostname())) {
		return invalidField(KindContentValidation, "video_url", raw, "must be a YouTube URL")
	}
	return nil
}
