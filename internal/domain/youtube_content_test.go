package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiknowledgehub/hub-server/internal/errors"
)

func videoInput(t *testing.T) NewYouTubeContentInput {
	t.Helper()
	return NewYouTubeContentInput{
		VideoID:          "dQw4w9WgXcQ",
		Title:            "Prompting ChatGPT like a pro",
		ChannelName:      "AI Explained",
		VideoURL:         "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		AIClassification: sampleClassification(t),
		ConfidenceScore:  MustConfidenceScore(0.92),
	}
}

func newTestVideo(t *testing.T, f *Factory) *YouTubeContent {
	t.Helper()
	c, err := f.NewYouTubeContent(videoInput(t))
	require.NoError(t, err)
	return c
}

func TestNewYouTubeContent(t *testing.T) {
	c := newTestVideo(t, newTestFactory())

	assert.Equal(t, "dQw4w9WgXcQ", c.VideoID())
	assert.Equal(t, "AI Explained", c.ChannelName())
	assert.True(t, c.HasHighConfidence())
	assert.True(t, c.IsInCategory("ai/ml"))
	assert.Empty(t, c.RelatedTools())
	assert.Empty(t, c.AIKeyPoints())
	assert.False(t, c.IsAssignedToPlaylist())
}

func TestNewYouTubeContent_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewYouTubeContentInput)
		field  string
	}{
		{"short video id", func(in *NewYouTubeContentInput) { in.VideoID = "short" }, "video_id"},
		{"long video id", func(in *NewYouTubeContentInput) { in.VideoID = "dQw4w9WgXcQx" }, "video_id"},
		{"short title", func(in *NewYouTubeContentInput) { in.Title = "P" }, "title"},
		{"long title", func(in *NewYouTubeContentInput) { in.Title = strings.Repeat("t", 201) }, "title"},
		{"missing channel", func(in *NewYouTubeContentInput) { in.ChannelName = "" }, "channel_name"},
		{"non youtube url", func(in *NewYouTubeContentInput) { in.VideoURL = "https://vimeo.com/123" }, "video_url"},
		{"relative url", func(in *NewYouTubeContentInput) { in.VideoURL = "watch?v=dQw4w9WgXcQ" }, "video_url"},
		{"missing classification", func(in *NewYouTubeContentInput) { in.AIClassification = AIClassification{} }, "ai_classification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := videoInput(t)
			tt.mutate(&in)

			_, err := newTestFactory().NewYouTubeContent(in)
			require.Error(t, err)
			assert.Equal(t, KindContentValidation, errors.KindOf(err))

			var domainErr *errors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.field, domainErr.Value("field"))
		})
	}
}

func TestNewYouTubeContent_AcceptsShortLinks(t *testing.T) {
	in := videoInput(t)
	in.VideoURL = "https://youtu.be/dQw4w9WgXcQ"

	_, err := newTestFactory().NewYouTubeContent(in)
	assert.NoError(t, err)
}

func TestYouTubeContent_UpdateAIClassification(t *testing.T) {
	c := newTestVideo(t, newTestFactory())
	design, err := NewDesignClassification(0.55, "Mostly about Figma plugins", "Figma")
	require.NoError(t, err)

	require.NoError(t, c.UpdateAIClassification(design, MustConfidenceScore(0.55)))
	assert.Equal(t, CategoryDesign, c.AIClassification().Category())
	assert.InDelta(t, 0.55, c.ConfidenceScore().Value(), 1e-9)
	assert.False(t, c.HasHighConfidence())

	err = c.UpdateAIClassification(AIClassification{}, MustConfidenceScore(0.1))
	require.Error(t, err)
	assert.Equal(t, CategoryDesign, c.AIClassification().Category())
	assert.InDelta(t, 0.55, c.ConfidenceScore().Value(), 1e-9, "score unchanged on failure")
}

func TestYouTubeContent_HasConfidenceAbove(t *testing.T) {
	c := newTestVideo(t, newTestFactory())

	assert.True(t, c.HasConfidenceAbove(0.9))
	assert.False(t, c.HasConfidenceAbove(0.92))
}

func TestYouTubeContent_KeyPoints(t *testing.T) {
	c := newTestVideo(t, newTestFactory())

	require.NoError(t, c.AddAIKeyPoint("Use system prompts"))
	require.NoError(t, c.AddAIKeyPoint("Give examples"))
	require.NoError(t, c.AddAIKeyPoint("Use system prompts"))
	assert.Error(t, c.AddAIKeyPoint("  "))
	assert.Len(t, c.AIKeyPoints(), 3)

	require.NoError(t, c.RemoveAIKeyPoint(0))
	assert.Equal(t, []string{"Give examples", "Use system prompts"}, c.AIKeyPoints())
	assert.Error(t, c.RemoveAIKeyPoint(5))
	assert.Error(t, c.RemoveAIKeyPoint(-1))

	c.ClearAIKeyPoints()
	assert.Empty(t, c.AIKeyPoints())
}

func TestYouTubeContent_RelatedTools(t *testing.T) {
	c := newTestVideo(t, newTestFactory())
	toolID := MustToolID(sampleToolID)

	require.NoError(t, c.AddRelatedTool(toolID))
	assert.True(t, c.IsRelatedTo(toolID))

	err := c.AddRelatedTool(toolID)
	assert.ErrorIs(t, err, errors.ErrConflict)
	assert.Equal(t, KindRelatedToolAlreadyExists, errors.KindOf(err))

	require.NoError(t, c.RemoveRelatedTool(toolID))
	err = c.RemoveRelatedTool(toolID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.Equal(t, KindRelatedToolNotFound, errors.KindOf(err))
}

func TestYouTubeContent_Playlist(t *testing.T) {
	c := newTestVideo(t, newTestFactory())

	assert.Error(t, c.AssignToPlaylist(" "))
	require.NoError(t, c.AssignToPlaylist("pl-1"))
	assert.True(t, c.IsAssignedToPlaylist())
	assert.Equal(t, "pl-1", c.PlaylistID())

	c.RemoveFromPlaylist()
	assert.False(t, c.IsAssignedToPlaylist())
}

func TestYouTubeContent_Tags(t *testing.T) {
	c := newTestVideo(t, newTestFactory())

	require.NoError(t, c.AddTag("Prompting"))
	assert.Equal(t, KindTagAlreadyExists, errors.KindOf(c.AddTag("prompting")))
	require.NoError(t, c.RemoveTag("PROMPTING"))
	assert.Equal(t, KindTagNotFound, errors.KindOf(c.RemoveTag("prompting")))
}

func TestYouTubeContent_UpdateStats(t *testing.T) {
	c := newTestVideo(t, newTestFactory())

	require.NoError(t, c.UpdateStats(1000, 50))
	assert.Equal(t, 1000, c.ViewCount())
	assert.Equal(t, 50, c.LikeCount())

	assert.Error(t, c.UpdateStats(-1, 0))
	assert.Error(t, c.UpdateStats(0, -1))
	assert.Equal(t, 1000, c.ViewCount())
}

func TestYouTubeContent_MatchesSearch(t *testing.T) {
	c := newTestVideo(t, newTestFactory())
	c.SetAISummary("Covers few-shot prompting")
	require.NoError(t, c.AddAIKeyPoint("Temperature tuning"))
	require.NoError(t, c.AddTag("llm"))

	assert.True(t, c.MatchesSearch("prompting"))
	assert.True(t, c.MatchesSearch("EXPLAINED"))
	assert.True(t, c.MatchesSearch("few-shot"))
	assert.True(t, c.MatchesSearch("temperature"))
	assert.True(t, c.MatchesSearch("LLM"))
	assert.True(t, c.MatchesSearch("ai/ml"))
	assert.False(t, c.MatchesSearch("stable diffusion"))
}

func TestYouTubeContent_RecordRoundTrip(t *testing.T) {
	f := newTestFactory()
	c := newTestVideo(t, f)
	require.NoError(t, c.AddRelatedTool(MustToolID(sampleToolID)))
	require.NoError(t, c.AddAIKeyPoint("Use system prompts"))
	require.NoError(t, c.AssignToPlaylist("pl-1"))

	restored, err := f.RestoreYouTubeContent(c.Record())
	require.NoError(t, err)
	assert.Equal(t, c.Record(), restored.Record())
	assert.NoError(t, restored.Validate())
}

func TestRestoreYouTubeContent_StructuralFailures(t *testing.T) {
	f := newTestFactory()
	valid := newTestVideo(t, f).Record()

	outOfRange := valid
	outOfRange.ConfidenceScore = 1.5
	_, err := f.RestoreYouTubeContent(outOfRange)
	assert.Equal(t, KindRecordInvalid, errors.KindOf(err))

	badRelated := valid
	badRelated.RelatedTools = []string{"nope"}
	_, err = f.RestoreYouTubeContent(badRelated)
	assert.Equal(t, KindToolIDInvalid, errors.KindOf(err))

	legacy := valid
	legacy.VideoID = "short"
	restored, err := f.RestoreYouTubeContent(legacy)
	require.NoError(t, err)
	assert.Equal(t, KindContentValidation, errors.KindOf(restored.Validate()))
}
