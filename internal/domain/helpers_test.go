package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aiknowledgehub/hub-server/internal/id"
)

// stepClock returns a clock starting at base that advances one second per call.
func stepClock(base time.Time) func() time.Time {
	var mu sync.Mutex
	current := base
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := current
		current = current.Add(time.Second)
		return t
	}
}

var testEpoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestFactory() *Factory {
	return NewFactory(id.NewSequence(), stepClock(testEpoch))
}

const sampleToolID = "123e4567-e89b-42d3-a456-426614174000"

func sampleClassification(t *testing.T) AIClassification {
	t.Helper()
	c, err := NewAIMLClassification(0.92, "Video demonstrates ChatGPT prompting techniques", "ChatGPT", "Claude")
	require.NoError(t, err)
	return c
}
