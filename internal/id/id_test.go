package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		id, err := Generate("evt")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	id, err := Generate("evt")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "evt-"))
	// NanoID default is 21 characters
	assert.Len(t, strings.TrimPrefix(id, "evt-"), 21)
}

func TestRandom_NewUUIDIsVersion4(t *testing.T) {
	var g Generator = Random{}

	for i := 0; i < 50; i++ {
		parsed, err := uuid.Parse(g.NewUUID())
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())
		assert.Equal(t, uuid.RFC4122, parsed.Variant())
	}
}

func TestRandom_NewPrefixed(t *testing.T) {
	got := Random{}.NewPrefixed("evt")

	assert.True(t, strings.HasPrefix(got, "evt-"))
	assert.Equal(t, len("evt")+1+21, len(got))
}

func TestSequence_IsDeterministic(t *testing.T) {
	seq := NewSequence()

	assert.Equal(t, "00000000-0000-4000-8000-000000000001", seq.NewUUID())
	assert.Equal(t, "evt-2", seq.NewPrefixed("evt"))
	assert.Equal(t, "00000000-0000-4000-8000-000000000003", seq.NewUUID())
}

func TestSequence_UUIDsParseAsVersion4(t *testing.T) {
	seq := NewSequence()

	parsed, err := uuid.Parse(seq.NewUUID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.Equal(t, uuid.RFC4122, parsed.Variant())
}

func BenchmarkGenerate(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Generate("bench")
	}
}
