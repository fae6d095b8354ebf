package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/aiknowledgehub/hub-server/internal/normalize"
)

const (
	minToolTitleLength   = 2
	maxToolTitleLength   = 100
	minToolSummaryLength = 10
	maxToolSummaryLength = 500
)

// Tool is an external AI or developer product listed in the catalog.
type Tool struct {
	timestamps

	id               ToolID
	title            string
	summary          string
	description      string
	category         string
	imageURL         string
	websiteURL       string
	tags             tagSet
	aiClassification *AIClassification
	userID           string
	isPublic         bool
	viewCount        int
	favoriteCount    int

	f *Factory
}

// NewToolInput holds the fields accepted when creating a tool.
type NewToolInput struct {
	Title       string
	Summary     string
	Category    string
	ImageURL    string
	WebsiteURL  string
	UserID      string   // optional
	Description string   // optional
	Tags        []string // optional; normalized and de-duplicated
}

// NewTool validates in and creates a public tool with a generated id.
func (f *Factory) NewTool(in NewToolInput) (*Tool, error) {
	t := &Tool{
		timestamps:  newTimestamps(f.now),
		id:          f.NewToolID(),
		title:       strings.TrimSpace(in.Title),
		summary:     strings.TrimSpace(in.Summary),
		description: strings.TrimSpace(in.Description),
		category:    strings.TrimSpace(in.Category),
		imageURL:    strings.TrimSpace(in.ImageURL),
		websiteURL:  strings.TrimSpace(in.WebsiteURL),
		tags:        normalize.Tags(in.Tags),
		userID:      in.UserID,
		isPublic:    true,
		f:           f,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ToolRecord is the stored shape of a tool.
type ToolRecord struct {
	CreatedAt        time.Time             `json:"created_at" validate:"required"`
	UpdatedAt        time.Time             `json:"updated_at" validate:"required"`
	AIClassification *ClassificationRecord `json:"ai_classification,omitempty"`
	ID               string                `json:"id" validate:"required"`
	Title            string                `json:"title" validate:"required"`
	Summary          string                `json:"summary" validate:"required"`
	Description      string                `json:"description,omitempty"`
	Category         string                `json:"category" validate:"required"`
	ImageURL         string                `json:"image_url"`
	WebsiteURL       string                `json:"website_url" validate:"required"`
	UserID           string                `json:"user_id,omitempty"`
	Tags             []string              `json:"tags"`
	ViewCount        int                   `json:"view_count" validate:"gte=0"`
	FavoriteCount    int                   `json:"favorite_count" validate:"gte=0"`
	IsPublic         bool                  `json:"is_public"`
}

// RestoreTool rebuilds a tool from storage. Structural checks always run;
// length and URL rules do not.
func (f *Factory) RestoreTool(rec ToolRecord) (*Tool, error) {
	if err := f.restore("tool", rec); err != nil {
		return nil, err
	}
	toolID, err := NewToolID(rec.ID)
	if err != nil {
		return nil, err
	}

	t := &Tool{
		timestamps:    timestamps{createdAt: rec.CreatedAt, updatedAt: rec.UpdatedAt, now: f.now},
		id:            toolID,
		title:         rec.Title,
		summary:       rec.Summary,
		description:   rec.Description,
		category:      rec.Category,
		imageURL:      rec.ImageURL,
		websiteURL:    rec.WebsiteURL,
		tags:          normalize.Tags(rec.Tags),
		userID:        rec.UserID,
		isPublic:      rec.IsPublic,
		viewCount:     rec.ViewCount,
		favoriteCount: rec.FavoriteCount,
		f:             f,
	}
	if rec.AIClassification != nil {
		cls, err := AIClassificationFromRecord(*rec.AIClassification)
		if err != nil {
			return nil, err
		}
		t.aiClassification = &cls
	}
	return t, nil
}

// Record returns the stored shape.
func (t *Tool) Record() ToolRecord {
	rec := ToolRecord{
		CreatedAt:     t.createdAt,
		UpdatedAt:     t.updatedAt,
		ID:            t.id.String(),
		Title:         t.title,
		Summary:       t.summary,
		Description:   t.description,
		Category:      t.category,
		ImageURL:      t.imageURL,
		WebsiteURL:    t.websiteURL,
		UserID:        t.userID,
		Tags:          t.Tags(),
		ViewCount:     t.viewCount,
		FavoriteCount: t.favoriteCount,
		IsPublic:      t.isPublic,
	}
	if t.aiClassification != nil {
		cls := t.aiClassification.Record()
		rec.AIClassification = &cls
	}
	return rec
}

// Validate re-runs the business rules on every field.
func (t *Tool) Validate() error {
	if err := checkLength(KindToolValidation, "title", t.title, minToolTitleLength, maxToolTitleLength); err != nil {
		return err
	}
	if err := checkLength(KindToolValidation, "summary", t.summary, minToolSummaryLength, maxToolSummaryLength); err != nil {
		return err
	}
	if err := checkRequired(KindToolValidation, "category", t.category); err != nil {
		return err
	}
	return t.f.validateWebsiteURL(t.websiteURL)
}

func (f *Factory) validateWebsiteURL(raw string) error {
	if raw == "" {
		return ToolValidation("website_url", raw, "cannot be empty")
	}
	if !f.validator.IsValid(raw, "url") {
		return ToolValidation("website_url", raw, "must be a valid URL")
	}
	return nil
}

// ID returns the tool id.
func (t *Tool) ID() ToolID { return t.id }

// Title returns the tool title.
func (t *Tool) Title() string { return t.title }

// Summary returns the short summary.
func (t *Tool) Summary() string { return t.summary }

// Description returns the optional description.
func (t *Tool) Description() string { return t.description }

// Category returns the catalog category.
func (t *Tool) Category() string { return t.category }

// ImageURL returns the image URL, possibly empty.
func (t *Tool) ImageURL() string { return t.imageURL }

// WebsiteURL returns the website URL.
func (t *Tool) WebsiteURL() string { return t.websiteURL }

// UserID returns the owner id, empty when the tool has no owner.
func (t *Tool) UserID() string { return t.userID }

// IsPublic reports whether the tool is visible to everyone.
func (t *Tool) IsPublic() bool { return t.isPublic }

// ViewCount returns the number of recorded views.
func (t *Tool) ViewCount() int { return t.viewCount }

// FavoriteCount returns the number of favorites.
func (t *Tool) FavoriteCount() int { return t.favoriteCount }

// Tags returns a copy of the normalized tags.
func (t *Tool) Tags() []string { return slices.Clone([]string(t.tags)) }

// AIClassification returns the classification and whether one is attached.
func (t *Tool) AIClassification() (AIClassification, bool) {
	if t.aiClassification == nil {
		return AIClassification{}, false
	}
	return *t.aiClassification, true
}

// UpdateTitle changes the title (2-100 characters).
func (t *Tool) UpdateTitle(title string) error {
	title = strings.TrimSpace(title)
	if err := checkLength(KindToolValidation, "title", title, minToolTitleLength, maxToolTitleLength); err != nil {
		return err
	}
	t.title = title
	t.touch()
	return nil
}

// UpdateSummary changes the summary (10-500 characters).
func (t *Tool) UpdateSummary(summary string) error {
	summary = strings.TrimSpace(summary)
	if err := checkLength(KindToolValidation, "summary", summary, minToolSummaryLength, maxToolSummaryLength); err != nil {
		return err
	}
	t.summary = summary
	t.touch()
	return nil
}

// UpdateDescription replaces the description. An empty string clears it.
func (t *Tool) UpdateDescription(description string) {
	t.description = strings.TrimSpace(description)
	t.touch()
}

// UpdateCategory changes the category.
func (t *Tool) UpdateCategory(category string) error {
	category = strings.TrimSpace(category)
	if err := checkRequired(KindToolValidation, "category", category); err != nil {
		return err
	}
	t.category = category
	t.touch()
	return nil
}

// UpdateImageURL changes the image URL.
func (t *Tool) UpdateImageURL(imageURL string) {
	t.imageURL = strings.TrimSpace(imageURL)
	t.touch()
}

// UpdateWebsiteURL changes the website URL, which must be an absolute URL.
func (t *Tool) UpdateWebsiteURL(websiteURL string) error {
	websiteURL = strings.TrimSpace(websiteURL)
	if err := t.f.validateWebsiteURL(websiteURL); err != nil {
		return err
	}
	t.websiteURL = websiteURL
	t.touch()
	return nil
}

// SetAIClassification attaches or replaces the classification.
func (t *Tool) SetAIClassification(c AIClassification) error {
	if c.IsZero() {
		return ToolValidation("ai_classification", nil, "cannot be empty")
	}
	t.aiClassification = &c
	t.touch()
	return nil
}

// ClearAIClassification removes the classification.
func (t *Tool) ClearAIClassification() {
	t.aiClassification = nil
	t.touch()
}

// AddTag adds a normalized tag. Adding an existing tag is a conflict.
func (t *Tool) AddTag(tag string) error {
	n := normalize.Tag(tag)
	if n == "" {
		return ToolValidation("tag", tag, "cannot be empty")
	}
	if t.tags.has(n) {
		return conflict(KindTagAlreadyExists, "tag "+n+" already exists").With("tag", n)
	}
	t.tags = append(t.tags, n)
	t.touch()
	return nil
}

// RemoveTag removes a normalized tag. Removing an absent tag fails.
func (t *Tool) RemoveTag(tag string) error {
	n := normalize.Tag(tag)
	if !t.tags.has(n) {
		return missing(KindTagNotFound, "tag "+n+" not found").With("tag", n)
	}
	t.tags = t.tags.without(n)
	t.touch()
	return nil
}

// HasTag reports whether the normalized tag is present.
func (t *Tool) HasTag(tag string) bool {
	return t.tags.has(normalize.Tag(tag))
}

// IsInCategory compares categories ignoring case.
func (t *Tool) IsInCategory(category string) bool {
	return normalize.Fold(strings.TrimSpace(category)) == normalize.Fold(t.category)
}

// MatchesSearch reports whether query appears in the title, summary,
// description, category or any tag, ignoring case.
func (t *Tool) MatchesSearch(query string) bool {
	fields := append([]string{t.title, t.summary, t.description, t.category}, t.tags...)
	return containsFold(query, fields...)
}

// MakePublic shows the tool to everyone.
func (t *Tool) MakePublic() {
	t.isPublic = true
	t.touch()
}

// MakePrivate restricts the tool to its owner.
func (t *Tool) MakePrivate() {
	t.isPublic = false
	t.touch()
}

// IncrementViewCount records a view.
func (t *Tool) IncrementViewCount() {
	t.viewCount++
	t.touch()
}

// IncrementFavoriteCount records a favorite.
func (t *Tool) IncrementFavoriteCount() {
	t.favoriteCount++
	t.touch()
}

// DecrementFavoriteCount removes a favorite, never going below zero.
func (t *Tool) DecrementFavoriteCount() {
	if t.favoriteCount > 0 {
		t.favoriteCount--
	}
	t.touch()
}
