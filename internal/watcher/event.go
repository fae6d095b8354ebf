package watcher

import "time"

// EventType represents the type of file change.
type EventType int

const (
	// EventChanged is emitted once the file exists and has stopped changing.
	EventChanged EventType = iota
	// EventRemoved is emitted when the file is gone after settling.
	EventRemoved
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventChanged:
		return "changed"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is a settled change to the watched file.
type Event struct {
	Type    EventType
	Path    string
	Size    int64
	ModTime time.Time
}
