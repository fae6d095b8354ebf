// Package domain holds the knowledge hub's entities, value objects, events and
// error kinds. It performs no I/O: callers supply field values and receive
// validated entities or typed errors.
package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aiknowledgehub/hub-server/internal/errors"
	"github.com/aiknowledgehub/hub-server/internal/id"
	"github.com/aiknowledgehub/hub-server/internal/normalize"
	"github.com/aiknowledgehub/hub-server/internal/validation"
)

// eventIDPrefix prefixes generated event ids.
const eventIDPrefix = "evt"

// Factory creates and restores entities. It owns the id generator and clock
// handed to every entity it builds.
type Factory struct {
	ids       id.Generator
	now       func() time.Time
	validator *validation.Validator
}

// NewFactory creates a factory. A nil generator or clock falls back to
// id.Random and time.Now.
func NewFactory(ids id.Generator, now func() time.Time) *Factory {
	if ids == nil {
		ids = id.Random{}
	}
	if now == nil {
		now = time.Now
	}
	return &Factory{ids: ids, now: now, validator: validation.New()}
}

// NewToolID returns a fresh ToolID from the factory's generator.
func (f *Factory) NewToolID() ToolID {
	return ToolID{value: f.ids.NewUUID()}
}

func (f *Factory) newEventID() string {
	return f.ids.NewPrefixed(eventIDPrefix)
}

// NewToolCreated builds a ToolCreated event for t.
func (f *Factory) NewToolCreated(t *Tool) ToolCreated {
	return NewToolCreated(f.newEventID(), f.now(), t.ID(), t.Title(), t.Category(), t.UserID())
}

// NewYouTubeContentAnalyzed builds a YouTubeContentAnalyzed event for c.
func (f *Factory) NewYouTubeContentAnalyzed(c *YouTubeContent) YouTubeContentAnalyzed {
	cls := c.AIClassification()
	return NewYouTubeContentAnalyzed(f.newEventID(), f.now(), c.ID(), c.VideoID(),
		cls.Category(), c.ConfidenceScore().Value(), cls.ToolsDetected())
}

// restore runs structural checks on a stored record.
func (f *Factory) restore(entity string, rec any) error {
	if err := f.validator.Validate(rec); err != nil {
		var e *errors.Error
		if errors.As(err, &e) {
			return e.WithKind(KindRecordInvalid).With("entity", entity)
		}
		return fmt.Errorf("restore %s: %w", entity, err)
	}
	return nil
}

// timestamps is embedded by every entity.
type timestamps struct {
	createdAt time.Time
	updatedAt time.Time
	now       func() time.Time
}

func newTimestamps(now func() time.Time) timestamps {
	t := now()
	return timestamps{createdAt: t, updatedAt: t, now: now}
}

// CreatedAt returns when the entity was created.
func (t *timestamps) CreatedAt() time.Time { return t.createdAt }

// UpdatedAt returns when the entity last changed.
func (t *timestamps) UpdatedAt() time.Time { return t.updatedAt }

// touch refreshes UpdatedAt. Call only after a mutation has been applied.
func (t *timestamps) touch() {
	t.updatedAt = t.now()
}

// checkLength validates the rune length of an already trimmed value.
func checkLength(kind errors.Kind, field, value string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(value)
	if n == 0 && minLen > 0 {
		return invalidField(kind, field, value, "cannot be empty")
	}
	if n < minLen {
		return invalidField(kind, field, value, fmt.Sprintf("must be at least %d characters", minLen))
	}
	if maxLen > 0 && n > maxLen {
		return invalidField(kind, field, value, fmt.Sprintf("must not exceed %d characters", maxLen))
	}
	return nil
}

func checkRequired(kind errors.Kind, field, value string) error {
	if value == "" {
		return invalidField(kind, field, value, "cannot be empty")
	}
	return nil
}

// tagSet is an insertion-ordered set of normalized tags.
type tagSet []string

func (s tagSet) has(tag string) bool {
	return slices.Contains(s, tag)
}

func (s tagSet) without(tag string) tagSet {
	return slices.DeleteFunc(slices.Clone(s), func(t string) bool { return t == tag })
}

// containsFold reports whether any of fields contains query, ignoring case.
func containsFold(query string, fields ...string) bool {
	q := normalize.Fold(strings.TrimSpace(query))
	for _, f := range fields {
		if strings.Contains(normalize.Fold(f), q) {
			return true
		}
	}
	return false
}
