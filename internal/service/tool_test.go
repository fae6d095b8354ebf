package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/errors"
)

func TestToolService_Create(t *testing.T) {
	env := newTestEnv(t, 0)

	tool := env.createTool(t, "ChatGPT", "https://chat.openai.com")

	assert.True(t, tool.IsPublic())
	assert.Equal(t, []string{"llm", "chat"}, tool.Tags())
	require.Len(t, env.publisher.events, 1)

	created, ok := env.publisher.events[0].(domain.ToolCreated)
	require.True(t, ok)
	assert.Equal(t, tool.ID(), created.ToolID)
	assert.Equal(t, "ChatGPT", created.ToolTitle)
}

func TestToolService_Create_DuplicateURL(t *testing.T) {
	env := newTestEnv(t, 0)
	first := env.createTool(t, "ChatGPT", "https://chat.openai.com")

	_, err := env.tools.Create(context.Background(), domain.NewToolInput{
		Title:      "ChatGPT Again",
		Summary:    "Same site under another name.",
		Category:   "AI/ML",
		WebsiteURL: "https://CHAT.openai.com/",
	})

	require.Error(t, err)
	assert.Equal(t, domain.KindDuplicateToolURL, errors.KindOf(err))
	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, first.ID().String(), domainErr.Value("existing_tool_id"))
}

func TestToolService_Create_Invalid(t *testing.T) {
	env := newTestEnv(t, 0)

	_, err := env.tools.Create(context.Background(), domain.NewToolInput{
		Title:      "X",
		Summary:    "Too short a title for this tool.",
		Category:   "AI/ML",
		WebsiteURL: "https://example.com",
	})

	require.Error(t, err)
	assert.Equal(t, domain.KindToolValidation, errors.KindOf(err))
	assert.Empty(t, env.publisher.events)
}

func TestToolService_Get(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	tool := env.createTool(t, "ChatGPT", "https://chat.openai.com")

	got, err := env.tools.Get(ctx, tool.ID().String())
	require.NoError(t, err)
	assert.Equal(t, tool.Record(), got.Record())

	_, err = env.tools.Get(ctx, "123e4567-e89b-42d3-a456-426614174000")
	assert.Equal(t, domain.KindToolNotFound, errors.KindOf(err))

	_, err = env.tools.Get(ctx, "nope")
	assert.Equal(t, domain.KindToolIDInvalid, errors.KindOf(err))
}

func TestToolService_Counters(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	raw := env.createTool(t, "ChatGPT", "https://chat.openai.com").ID().String()

	_, err := env.tools.RecordView(ctx, raw)
	require.NoError(t, err)
	_, err = env.tools.RecordView(ctx, raw)
	require.NoError(t, err)
	_, err = env.tools.Favorite(ctx, raw)
	require.NoError(t, err)
	_, err = env.tools.Unfavorite(ctx, raw)
	require.NoError(t, err)
	_, err = env.tools.Unfavorite(ctx, raw)
	require.NoError(t, err)

	got, err := env.tools.Get(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ViewCount())
	assert.Zero(t, got.FavoriteCount())
}

func TestToolService_Tags(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	raw := env.createTool(t, "ChatGPT", "https://chat.openai.com").ID().String()

	tool, err := env.tools.AddTag(ctx, raw, "  Writing ")
	require.NoError(t, err)
	assert.True(t, tool.HasTag("writing"))

	_, err = env.tools.AddTag(ctx, raw, "WRITING")
	assert.Equal(t, domain.KindTagAlreadyExists, errors.KindOf(err))

	_, err = env.tools.RemoveTag(ctx, raw, "writing")
	require.NoError(t, err)

	_, err = env.tools.RemoveTag(ctx, raw, "writing")
	assert.Equal(t, domain.KindTagNotFound, errors.KindOf(err))
}

func TestToolService_Classify(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	raw := env.createTool(t, "Figma", "https://figma.com").ID().String()
	cls, err := domain.NewDesignClassification(0.85, "Collaborative interface design tool", "Figma")
	require.NoError(t, err)

	_, err = env.tools.Classify(ctx, raw, cls)
	require.NoError(t, err)

	got, err := env.tools.Get(ctx, raw)
	require.NoError(t, err)
	stored, ok := got.AIClassification()
	require.True(t, ok)
	assert.True(t, stored.Equal(cls))

	_, err = env.tools.Classify(ctx, raw, domain.AIClassification{})
	assert.Equal(t, domain.KindToolValidation, errors.KindOf(err))
}

func TestToolService_Search(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	chat := env.createTool(t, "ChatGPT", "https://chat.openai.com")
	figma, err := env.tools.Create(ctx, domain.NewToolInput{
		Title:      "Figma",
		Summary:    "Collaborative interface design.",
		Category:   "Design",
		WebsiteURL: "https://figma.com",
		Tags:       []string{"ui"},
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter SearchFilter
		want   []domain.ToolID
	}{
		{"everything", SearchFilter{}, []domain.ToolID{chat.ID(), figma.ID()}},
		{"query", SearchFilter{Query: "INTERFACE"}, []domain.ToolID{figma.ID()}},
		{"category", SearchFilter{Category: "ai/ml"}, []domain.ToolID{chat.ID()}},
		{"tag", SearchFilter{Tag: "UI"}, []domain.ToolID{figma.ID()}},
		{"no match", SearchFilter{Query: "spreadsheet"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.tools.Search(ctx, tt.filter)
			require.NoError(t, err)

			var ids []domain.ToolID
			for _, tool := range got {
				ids = append(ids, tool.ID())
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestToolService_Import_DuplicateID(t *testing.T) {
	env := newTestEnv(t, 0)
	tool := env.createTool(t, "ChatGPT", "https://chat.openai.com")

	rec := tool.Record()
	rec.WebsiteURL = "https://chatgpt.com"
	clash, err := env.factory.RestoreTool(rec)
	require.NoError(t, err)

	err = env.tools.Import(context.Background(), clash)

	assert.ErrorIs(t, err, errors.ErrAlreadyExists)
	assert.Equal(t, domain.KindDuplicateRecordID, errors.KindOf(err))
}
