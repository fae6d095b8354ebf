package domain

import (
	"encoding/json"
	"time"
)

// Event names.
const (
	EventPlaylistCreated        = "PlaylistCreated"
	EventToolAdded              = "ToolAdded"
	EventToolCreated            = "ToolCreated"
	EventYouTubeContentAnalyzed = "YoutubeContentAnalyzed"
)

// Event is an immutable fact about an entity. The set of implementations is
// closed: PlaylistCreated, ToolAdded, ToolCreated and YouTubeContentAnalyzed.
// Consumers should type switch over these.
type Event interface {
	EventID() string
	EventName() string
	EventVersion() int
	OccurredOn() time.Time
	ToJSON() ([]byte, error)

	isEvent()
}

// eventMeta is embedded by every event.
type eventMeta struct {
	id         string
	name       string
	version    int
	occurredOn time.Time
}

func newEventMeta(eventID, name string, occurredOn time.Time) eventMeta {
	return eventMeta{id: eventID, name: name, version: 1, occurredOn: occurredOn.UTC()}
}

// EventID returns the unique event id.
func (m eventMeta) EventID() string { return m.id }

// EventName returns the event type name.
func (m eventMeta) EventName() string { return m.name }

// EventVersion returns the payload schema version.
func (m eventMeta) EventVersion() int { return m.version }

// OccurredOn returns when the event happened.
func (m eventMeta) OccurredOn() time.Time { return m.occurredOn }

func (eventMeta) isEvent() {}

// envelope returns the common JSON fields; OccurredOn is ISO-8601 in UTC.
func (m eventMeta) envelope() map[string]any {
	return map[string]any{
		"eventId":      m.id,
		"eventName":    m.name,
		"eventVersion": m.version,
		"occurredOn":   m.occurredOn.Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// PlaylistCreated is recorded when a playlist is created.
type PlaylistCreated struct {
	eventMeta
	PlaylistID   string
	PlaylistName string
	UserID       string
}

// NewPlaylistCreated builds the event.
func NewPlaylistCreated(eventID string, occurredOn time.Time, playlistID, playlistName, userID string) PlaylistCreated {
	return PlaylistCreated{
		eventMeta:    newEventMeta(eventID, EventPlaylistCreated, occurredOn),
		PlaylistID:   playlistID,
		PlaylistName: playlistName,
		UserID:       userID,
	}
}

// IsPublic reports whether the playlist was created without an owner.
func (e PlaylistCreated) IsPublic() bool { return e.UserID == "" }

// MarshalJSON flattens the event.
func (e PlaylistCreated) MarshalJSON() ([]byte, error) {
	m := e.envelope()
	m["playlistId"] = e.PlaylistID
	m["playlistName"] = e.PlaylistName
	if e.UserID != "" {
		m["userId"] = e.UserID
	}
	return json.Marshal(m)
}

// ToJSON returns the JSON encoding of the event.
func (e PlaylistCreated) ToJSON() ([]byte, error) { return json.Marshal(e) }

// ToolAdded is recorded when a tool joins a playlist.
type ToolAdded struct {
	eventMeta
	PlaylistID string
	ToolID     ToolID
}

// NewToolAdded builds the event.
func NewToolAdded(eventID string, occurredOn time.Time, playlistID string, toolID ToolID) ToolAdded {
	return ToolAdded{
		eventMeta:  newEventMeta(eventID, EventToolAdded, occurredOn),
		PlaylistID: playlistID,
		ToolID:     toolID,
	}
}

// MarshalJSON flattens the event.
func (e ToolAdded) MarshalJSON() ([]byte, error) {
	m := e.envelope()
	m["playlistId"] = e.PlaylistID
	m["toolId"] = e.ToolID.String()
	return json.Marshal(m)
}

// ToJSON returns the JSON encoding of the event.
func (e ToolAdded) ToJSON() ([]byte, error) { return json.Marshal(e) }

// ToolCreated is published by the tool service after a new tool is stored.
// Tool itself does not record it.
type ToolCreated struct {
	eventMeta
	ToolID    ToolID
	ToolTitle string
	Category  string
	UserID    string
}

// NewToolCreated builds the event.
func NewToolCreated(eventID string, occurredOn time.Time, toolID ToolID, title, category, userID string) ToolCreated {
	return ToolCreated{
		eventMeta: newEventMeta(eventID, EventToolCreated, occurredOn),
		ToolID:    toolID,
		ToolTitle: title,
		Category:  category,
		UserID:    userID,
	}
}

// MarshalJSON flattens the event.
func (e ToolCreated) MarshalJSON() ([]byte, error) {
	m := e.envelope()
	m["toolId"] = e.ToolID.String()
	m["toolTitle"] = e.ToolTitle
	m["category"] = e.Category
	if e.UserID != "" {
		m["userId"] = e.UserID
	}
	return json.Marshal(m)
}

// ToJSON returns the JSON encoding of the event.
func (e ToolCreated) ToJSON() ([]byte, error) { return json.Marshal(e) }

// YouTubeContentAnalyzed is published by the ingest service after a video has
// been classified. YouTubeContent itself does not record it.
type YouTubeContentAnalyzed struct {
	eventMeta
	ContentID       string
	VideoID         string
	AICategory      string
	ConfidenceScore float64
	ToolsDetected   []string
}

// NewYouTubeContentAnalyzed builds the event.
func NewYouTubeContentAnalyzed(eventID string, occurredOn time.Time, contentID, videoID, category string, confidence float64, tools []string) YouTubeContentAnalyzed {
	if tools == nil {
		tools = []string{}
	}
	return YouTubeContentAnalyzed{
		eventMeta:       newEventMeta(eventID, EventYouTubeContentAnalyzed, occurredOn),
		ContentID:       contentID,
		VideoID:         videoID,
		AICategory:      category,
		ConfidenceScore: confidence,
		ToolsDetected:   tools,
	}
}

// HasHighConfidence reports a confidence score of at least 0.8.
func (e YouTubeContentAnalyzed) HasHighConfidence() bool {
	return ConfidenceLevel(e.ConfidenceScore) == LevelHigh
}

// MarshalJSON flattens the event.
func (e YouTubeContentAnalyzed) MarshalJSON() ([]byte, error) {
	m := e.envelope()
	m["contentId"] = e.ContentID
	m["videoId"] = e.VideoID
	m["aiCategory"] = e.AICategory
	m["confidenceScore"] = e.ConfidenceScore
	m["toolsDetected"] = e.ToolsDetected
	return json.Marshal(m)
}

// ToJSON returns the JSON encoding of the event.
func (e YouTubeContentAnalyzed) ToJSON() ([]byte, error) { return json.Marshal(e) }

// eventLog accumulates pending events in call order.
type eventLog struct {
	events []Event
}

func (l *eventLog) record(e Event) {
	l.events = append(l.events, e)
}

// DomainEvents returns a copy of the pending events.
func (l *eventLog) DomainEvents() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// ClearEvents drops all pending events.
func (l *eventLog) ClearEvents() {
	l.events = nil
}
