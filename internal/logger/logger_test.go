package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/errors"
)

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Level: slog.LevelInfo, Environment: tt.environment, Writer: &buf})
			l.Info("test")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"test"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.NotContains(t, buf.String(), `"msg"`)
			}
		})
	}
}

func TestNew_ExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Environment: "development", Writer: &buf})
	l.Info("hello", "count", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.EqualValues(t, 3, line["count"])
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Format: "pretty", Writer: &buf})

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"trace":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)

	r := slog.NewRecord(time.Date(2026, 3, 14, 9, 30, 15, 0, time.UTC), slog.LevelError, "ingest failed", 0)
	r.AddAttrs(slog.String("video_id", "dQw4w9WgXcQ"), slog.String("reason", "bad payload"))
	require.NoError(t, h.Handle(context.Background(), r))

	out := buf.String()
	assert.Contains(t, out, "09:30:15")
	assert.Contains(t, out, "ERR")
	assert.Contains(t, out, "ingest failed")
	assert.Contains(t, out, "video_id=dQw4w9WgXcQ")
	assert.Contains(t, out, `reason="bad payload"`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))

	h = NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})
	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestPrettyHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, nil))

	l.With("service", "ingest").WithGroup("payload").Info("received",
		"video_id", "abc",
		slog.Group("classification", "category", "AI/ML"),
	)

	out := buf.String()
	assert.Contains(t, out, "service=ingest")
	assert.Contains(t, out, "payload.video_id=abc")
	assert.Contains(t, out, "payload.classification.category=AI/ML")
}

func TestPrettyHandler_WithAttrsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewPrettyHandler(&buf, nil))
	child := base.With("component", "store")

	base.Info("from base")
	child.Info("from child")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[0], "component=store")
	assert.Contains(t, lines[1], "component=store")
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Writer: &buf})

	err := errors.NotFound("playlist missing").WithKind("PLAYLIST_NOT_FOUND")
	l.WithError(err).Error("lookup failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "playlist missing", line["error"])
	assert.Equal(t, "NOT_FOUND", line["error_code"])
	assert.Equal(t, "PLAYLIST_NOT_FOUND", line["error_kind"])
}

func TestLogger_WithErrorPlain(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Writer: &buf})

	l.WithError(errors.New("boom")).Error("failed")
	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.NotContains(t, buf.String(), "error_code")

	assert.Same(t, l, l.WithError(nil))
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Writer: &buf})

	l.WithField("entity", "tool").WithFields(map[string]any{"count": 2, "valid": true}).Info("restored")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "tool", line["entity"])
	assert.EqualValues(t, 2, line["count"])
	assert.Equal(t, true, line["valid"])
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.NotPanics(t, func() { l.Info("nothing") })
}

func TestLogger_SetDefault(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Environment: "production", Writer: &buf})
	l.SetDefault()

	_, err := domain.NewAIClassification("Weird", 0.5, "Unusual content outside the catalog")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "unknown AI classification category", line["msg"])
	assert.Equal(t, "Weird", line["category"])
}
