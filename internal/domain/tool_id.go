package domain

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ToolID is a validated UUID v4 referencing a tool.
// Use NewToolID or GenerateToolID to construct one.
type ToolID struct {
	value string
}

// NewToolID validates raw as a canonical UUID v4 string (8-4-4-4-12 hex).
func NewToolID(raw string) (ToolID, error) {
	if strings.TrimSpace(raw) == "" {
		return ToolID{}, invalidField(KindToolIDInvalid, "tool_id", raw, "cannot be empty")
	}
	if !isUUIDv4(raw) {
		return ToolID{}, invalidField(KindToolIDInvalid, "tool_id", raw, "must be a valid UUID v4")
	}
	return ToolID{value: raw}, nil
}

// MustToolID creates a ToolID, panicking on invalid input. Use only in tests.
func MustToolID(raw string) ToolID {
	id, err := NewToolID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// GenerateToolID creates a new random ToolID.
func GenerateToolID() ToolID {
	return ToolID{value: uuid.NewString()}
}

func (id ToolID) String() string { return id.value }

// IsZero reports whether id was never assigned.
func (id ToolID) IsZero() bool { return id.value == "" }

// Equal reports value equality.
func (id ToolID) Equal(other ToolID) bool { return id.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (id ToolID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with validation.
func (id *ToolID) UnmarshalText(text []byte) error {
	parsed, err := NewToolID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// isUUIDv4 only accepts the 36 character hyphenated form; uuid.Parse alone
// also accepts urn: and braced variants.
func isUUIDv4(s string) bool {
	if len(s) != 36 {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122
}

func toolIDsFromStrings(raw []string) ([]ToolID, error) {
	out := make([]ToolID, 0, len(raw))
	for _, r := range raw {
		tid, err := NewToolID(r)
		if err != nil {
			return nil, err
		}
		out = append(out, tid)
	}
	return out, nil
}

func toolIDStrings(ids []ToolID) []string {
	out := make([]string, len(ids))
	for i, tid := range ids {
		out[i] = tid.value
	}
	return out
}

// uniqueToolIDs drops repeated ids, keeping first-seen order.
func uniqueToolIDs(ids []ToolID) []ToolID {
	out := make([]ToolID, 0, len(ids))
	for _, tid := range ids {
		if !slices.ContainsFunc(out, tid.Equal) {
			out = append(out, tid)
		}
	}
	return out
}
