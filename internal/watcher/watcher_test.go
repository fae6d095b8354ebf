package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiknowledgehub/hub-server/internal/logger"
)

const testSettle = 50 * time.Millisecond

func startWatcher(t *testing.T, path string) *Watcher {
	t.Helper()

	w, err := New(logger.Discard().Logger, path, Options{SettleDelay: testSettle})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return w
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event: %s %s", ev.Type, ev.Path)
	case <-time.After(6 * testSettle):
	}
}

func TestWatcher_ReportsSettledWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	w := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte(`{"tools":[]}`), 0o600))

	ev := waitEvent(t, w)
	assert.Equal(t, EventChanged, ev.Type)
	assert.Equal(t, w.Path(), ev.Path)
	assert.Equal(t, int64(len(`{"tools":[]}`)), ev.Size)
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	w := startWatcher(t, path)

	for i := range 5 {
		require.NoError(t, os.WriteFile(path, []byte(string(rune('a'+i))), 0o600))
	}

	ev := waitEvent(t, w)
	assert.Equal(t, EventChanged, ev.Type)
	assertNoEvent(t, w)
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	w := startWatcher(t, path)

	require.NoError(t, os.Remove(path))

	ev := waitEvent(t, w)
	assert.Equal(t, EventRemoved, ev.Type)
}

func TestWatcher_ReportsReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	w := startWatcher(t, path)

	tmp := filepath.Join(dir, "snapshot.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"users":[]}`), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	ev := waitEvent(t, w)
	assert.Equal(t, EventChanged, ev.Type)
	assert.Equal(t, int64(len(`{"users":[]}`)), ev.Size)
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, filepath.Join(dir, "snapshot.json"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o600))

	assertNoEvent(t, w)
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(logger.Discard().Logger, filepath.Join(t.TempDir(), "missing", "snapshot.json"), Options{})
	require.Error(t, err)
}

func TestOptions_Defaults(t *testing.T) {
	var o Options
	o.setDefaults()
	assert.Equal(t, DefaultSettleDelay, o.SettleDelay)
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "changed", EventChanged.String())
	assert.Equal(t, "removed", EventRemoved.String())
	assert.Equal(t, "unknown", EventType(42).String())
}
