package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiknowledgehub/hub-server/internal/errors"
)

func newTestPlaylist(t *testing.T, f *Factory, userID string) *Playlist {
	t.Helper()
	p, err := f.NewPlaylist(NewPlaylistInput{Name: "ML Tools", Icon: "brain", UserID: userID})
	require.NoError(t, err)
	return p
}

func TestNewPlaylist(t *testing.T) {
	f := newTestFactory()

	p, err := f.NewPlaylist(NewPlaylistInput{Name: "  ML Tools ", Icon: "brain"})
	require.NoError(t, err)

	assert.Equal(t, "00000000-0000-4000-8000-000000000001", p.ID())
	assert.Equal(t, "ML Tools", p.Name())
	assert.Equal(t, "brain", p.Icon())
	assert.Equal(t, 0, p.ToolCount())
	assert.True(t, p.IsPublic())
	assert.Equal(t, testEpoch, p.CreatedAt())
	assert.Equal(t, p.CreatedAt(), p.UpdatedAt())

	events := p.DomainEvents()
	require.Len(t, events, 1)
	created, ok := events[0].(PlaylistCreated)
	require.True(t, ok)
	assert.Equal(t, p.ID(), created.PlaylistID)
	assert.Equal(t, "ML Tools", created.PlaylistName)
	assert.Equal(t, "evt-2", created.EventID())
	assert.Equal(t, testEpoch, created.OccurredOn())
}

func TestNewPlaylist_OwnedStartsPrivate(t *testing.T) {
	p := newTestPlaylist(t, newTestFactory(), "user-1")

	assert.False(t, p.IsPublic())
	assert.True(t, p.IsOwnedBy("user-1"))
	assert.False(t, p.IsOwnedBy("user-2"))
}

func TestNewPlaylist_Validation(t *testing.T) {
	f := newTestFactory()

	tests := []struct {
		name  string
		input NewPlaylistInput
		field string
		ok    bool
	}{
		{"two characters", NewPlaylistInput{Name: "AB", Icon: "x"}, "", true},
		{"hundred characters", NewPlaylistInput{Name: strings.Repeat("n", 100), Icon: "x"}, "", true},
		{"one character", NewPlaylistInput{Name: "A", Icon: "x"}, "name", false},
		{"blank name", NewPlaylistInput{Name: "   ", Icon: "x"}, "name", false},
		{"too long", NewPlaylistInput{Name: strings.Repeat("n", 101), Icon: "x"}, "name", false},
		{"multibyte counted as characters", NewPlaylistInput{Name: "日本", Icon: "x"}, "", true},
		{"missing icon", NewPlaylistInput{Name: "Valid", Icon: " "}, "icon", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.NewPlaylist(tt.input)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrValidation)
			assert.Equal(t, KindPlaylistValidation, errors.KindOf(err))

			var domainErr *errors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.field, domainErr.Value("field"))
		})
	}
}

func TestPlaylist_AddTool(t *testing.T) {
	p := newTestPlaylist(t, newTestFactory(), "")
	toolID := MustToolID(sampleToolID)
	before := p.UpdatedAt()

	require.NoError(t, p.AddTool(toolID))

	assert.Equal(t, 1, p.ToolCount())
	assert.True(t, p.HasTool(toolID))
	assert.True(t, p.UpdatedAt().After(before))

	events := p.DomainEvents()
	require.Len(t, events, 2)
	added, ok := events[1].(ToolAdded)
	require.True(t, ok)
	assert.Equal(t, p.ID(), added.PlaylistID)
	assert.True(t, added.ToolID.Equal(toolID))
	assert.Equal(t, p.UpdatedAt(), added.OccurredOn())
}

func TestPlaylist_AddTool_Duplicate(t *testing.T) {
	p := newTestPlaylist(t, newTestFactory(), "")
	toolID := MustToolID(sampleToolID)
	require.NoError(t, p.AddTool(toolID))
	updated := p.UpdatedAt()

	err := p.AddTool(toolID)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConflict)
	assert.Equal(t, KindToolAlreadyInPlaylist, errors.KindOf(err))

	assert.Equal(t, 1, p.ToolCount())
	assert.Len(t, p.DomainEvents(), 2)
	assert.Equal(t, updated, p.UpdatedAt())
}

func TestPlaylist_AddTool_Zero(t *testing.T) {
	p := newTestPlaylist(t, newTestFactory(), "")

	err := p.AddTool(ToolID{})
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Equal(t, 0, p.ToolCount())
}

func TestPlaylist_RemoveTool(t *testing.T) {
	p := newTestPlaylist(t, newTestFactory(), "")
	toolID := MustToolID(sampleToolID)
	require.NoError(t, p.AddTool(toolID))

	require.NoError(t, p.RemoveTool(toolID))

	assert.Equal(t, 0, p.ToolCount())
	assert.True(t, p.CanBeDeleted())
	assert.Len(t, p.DomainEvents(), 2, "removal records no event")
}

func TestPlaylist_RemoveTool_NotMember(t *testing.T) {
	p := newTestPlaylist(t, newTestFactory(), "")

	err := p.RemoveTool(MustToolID(sampleToolID))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.Equal(t, KindToolNotInPlaylist, errors.KindOf(err))
}

func TestPlaylist_CanBeDeleted(t *testing.T) {
	p := newTestPlaylist(t, newTestFactory(), "")
	assert.True(t, p.CanBeDeleted())

	require.NoError(t, p.AddTool(MustToolID(sampleToolID)))
	assert.False(t, p.CanBeDeleted())
}

func TestPlaylist_ToolIDsIsCopy(t *testing.T) {
	p := newTestPlaylist(t, newTestFactory(), "")
	require.NoError(t, p.AddTool(MustToolID(sampleToolID)))

	ids := p.ToolIDs()
	ids[0] = ToolID{}

	assert.True(t, p.HasTool(MustToolID(sampleToolID)))
}

func TestPlaylist_Updates(t *testing.T) {
	p := newTestPlaylist(t, newTestFactory(), "user-1")

	require.NoError(t, p.UpdateName("Design Tools"))
	assert.Equal(t, "Design Tools", p.Name())

	err := p.UpdateName("D")
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Equal(t, "Design Tools", p.Name())

	require.NoError(t, p.UpdateIcon("palette"))
	assert.Equal(t, "palette", p.Icon())
	assert.Error(t, p.UpdateIcon(""))

	before := p.UpdatedAt()
	p.SetDescription("  Tools for designers ")
	assert.Equal(t, "Tools for designers", p.Description())
	assert.True(t, p.UpdatedAt().After(before))

	p.MakePublic()
	assert.True(t, p.IsPublic())
	p.MakePrivate()
	assert.False(t, p.IsPublic())
}

func TestPlaylist_ClearEvents(t *testing.T) {
	p := newTestPlaylist(t, newTestFactory(), "")
	require.NoError(t, p.AddTool(MustToolID(sampleToolID)))

	p.ClearEvents()
	assert.Empty(t, p.DomainEvents())
}

func TestPlaylist_RecordRoundTrip(t *testing.T) {
	f := newTestFactory()
	p := newTestPlaylist(t, f, "user-1")
	require.NoError(t, p.AddTool(MustToolID(sampleToolID)))

	restored, err := f.RestorePlaylist(p.Record())
	require.NoError(t, err)

	assert.Equal(t, p.Record(), restored.Record())
	assert.Empty(t, restored.DomainEvents())
	assert.NoError(t, restored.Validate())
}

func TestRestorePlaylist_SkipsBusinessRules(t *testing.T) {
	f := newTestFactory()
	rec := PlaylistRecord{
		CreatedAt: testEpoch,
		UpdatedAt: testEpoch,
		ID:        "legacy",
		Name:      "X",
		Icon:      "star",
		ToolIDs:   []string{sampleToolID, sampleToolID},
	}

	p, err := f.RestorePlaylist(rec)
	require.NoError(t, err)

	assert.Equal(t, 1, p.ToolCount(), "duplicate ids collapse")
	assert.ErrorIs(t, p.Validate(), errors.ErrValidation)
}

func TestRestorePlaylist_StructuralFailures(t *testing.T) {
	f := newTestFactory()
	valid := PlaylistRecord{CreatedAt: testEpoch, UpdatedAt: testEpoch, ID: "p", Name: "Name", Icon: "i"}

	missingID := valid
	missingID.ID = ""
	_, err := f.RestorePlaylist(missingID)
	require.Error(t, err)
	assert.Equal(t, KindRecordInvalid, errors.KindOf(err))

	missingCreated := valid
	missingCreated.CreatedAt = time.Time{}
	_, err = f.RestorePlaylist(missingCreated)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)

	badTool := valid
	badTool.ToolIDs = []string{"not-a-uuid"}
	_, err = f.RestorePlaylist(badTool)
	require.Error(t, err)
	assert.Equal(t, KindToolIDInvalid, errors.KindOf(err))
}
