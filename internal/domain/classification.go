package domain

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/aiknowledgehub/hub-server/internal/errors"
	"github.com/aiknowledgehub/hub-server/internal/normalize"
)

// Known classification categories.
const (
	CategoryAIML            = "AI/ML"
	CategoryDesign          = "Design"
	CategoryDevelopment     = "Development"
	CategoryProductivity    = "Productivity"
	CategoryMarketing       = "Marketing"
	CategoryContentCreation = "Content Creation"
	CategoryDataAnalysis    = "Data Analysis"
	CategoryBusiness        = "Business"
	CategoryEducation       = "Education"
	CategoryOther           = "Other"
)

const (
	minReasoningLength = 5
	maxReasoningLength = 500
)

// KnownCategories lists the categories the classifier is expected to produce.
// The list is advisory: other categories are accepted with a warning.
func KnownCategories() []string {
	return []string{
		CategoryAIML, CategoryDesign, CategoryDevelopment, CategoryProductivity,
		CategoryMarketing, CategoryContentCreation, CategoryDataAnalysis,
		CategoryBusiness, CategoryEducation, CategoryOther,
	}
}

// IsKnownCategory reports whether category is in KnownCategories.
func IsKnownCategory(category string) bool {
	return slices.Contains(KnownCategories(), category)
}

// AIClassification is the immutable result of classifying a tool or video.
type AIClassification struct {
	category      string
	subcategory   string
	toolsDetected []string
	confidence    float64
	reasoning     string
}

// ClassificationOption sets an optional AIClassification field.
type ClassificationOption func(*AIClassification)

// WithSubcategory sets the subcategory.
func WithSubcategory(subcategory string) ClassificationOption {
	return func(c *AIClassification) {
		c.subcategory = strings.TrimSpace(subcategory)
	}
}

// WithToolsDetected sets the detected tool names. Duplicates are dropped.
func WithToolsDetected(tools ...string) ClassificationOption {
	return func(c *AIClassification) {
		c.toolsDetected = uniqueStrings(tools)
	}
}

// NewAIClassification validates and builds a classification.
func NewAIClassification(category string, confidence float64, reasoning string, opts ...ClassificationOption) (AIClassification, error) {
	c := AIClassification{
		category:   strings.TrimSpace(category),
		confidence: confidence,
		reasoning:  strings.TrimSpace(reasoning),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.toolsDetected == nil {
		c.toolsDetected = []string{}
	}

	if c.category == "" {
		return AIClassification{}, invalidField(KindClassificationInvalid, "category", category, "cannot be empty")
	}
	if !validConfidence(confidence) {
		return AIClassification{}, invalidField(KindClassificationInvalid, "confidence", confidence, "must be a number between 0 and 1")
	}
	n := utf8.RuneCountInString(c.reasoning)
	if n < minReasoningLength {
		return AIClassification{}, invalidField(KindClassificationInvalid, "reasoning", reasoning,
			fmt.Sprintf("must be at least %d characters", minReasoningLength))
	}
	if n > maxReasoningLength {
		return AIClassification{}, invalidField(KindClassificationInvalid, "reasoning", reasoning,
			fmt.Sprintf("must not exceed %d characters", maxReasoningLength))
	}

	if !IsKnownCategory(c.category) {
		slog.Warn("unknown AI classification category", "category", c.category, "known", KnownCategories())
	}

	return c, nil
}

// NewAIMLClassification builds an AI/ML classification.
func NewAIMLClassification(confidence float64, reasoning string, tools ...string) (AIClassification, error) {
	return NewAIClassification(CategoryAIML, confidence, reasoning, WithToolsDetected(tools...))
}

// NewDesignClassification builds a Design classification.
func NewDesignClassification(confidence float64, reasoning string, tools ...string) (AIClassification, error) {
	return NewAIClassification(CategoryDesign, confidence, reasoning, WithToolsDetected(tools...))
}

// NewDevelopmentClassification builds a Development classification.
func NewDevelopmentClassification(confidence float64, reasoning string, tools ...string) (AIClassification, error) {
	return NewAIClassification(CategoryDevelopment, confidence, reasoning, WithToolsDetected(tools...))
}

// NewProductivityClassification builds a Productivity classification.
func NewProductivityClassification(confidence float64, reasoning string, tools ...string) (AIClassification, error) {
	return NewAIClassification(CategoryProductivity, confidence, reasoning, WithToolsDetected(tools...))
}

// Category returns the category.
func (c AIClassification) Category() string { return c.category }

// Subcategory returns the subcategory, or "" when unset.
func (c AIClassification) Subcategory() string { return c.subcategory }

// ToolsDetected returns a copy of the detected tool names.
func (c AIClassification) ToolsDetected() []string { return slices.Clone(c.toolsDetected) }

// Confidence returns the raw confidence.
func (c AIClassification) Confidence() float64 { return c.confidence }

// Reasoning returns the classifier's explanation.
func (c AIClassification) Reasoning() string { return c.reasoning }

// IsZero reports whether c was never constructed.
func (c AIClassification) IsZero() bool { return c.category == "" }

// IsKnownCategory reports whether the category is one of KnownCategories.
func (c AIClassification) IsKnownCategory() bool { return IsKnownCategory(c.category) }

// DetectsTool reports whether any detected tool name contains name, ignoring case.
func (c AIClassification) DetectsTool(name string) bool {
	needle := normalize.Fold(name)
	for _, t := range c.toolsDetected {
		if strings.Contains(normalize.Fold(t), needle) {
			return true
		}
	}
	return false
}

// HasHighConfidence reports confidence of at least 0.8.
func (c AIClassification) HasHighConfidence() bool {
	return ConfidenceLevel(c.confidence) == LevelHigh
}

// HasMediumConfidence reports confidence in [0.5, 0.8).
func (c AIClassification) HasMediumConfidence() bool {
	return ConfidenceLevel(c.confidence) == LevelMedium
}

// HasLowConfidence reports confidence below 0.5.
func (c AIClassification) HasLowConfidence() bool {
	return ConfidenceLevel(c.confidence) == LevelLow
}

// Equal compares classifications structurally. Confidence is compared within
// a 0.001 tolerance and detected tools as sets.
func (c AIClassification) Equal(other AIClassification) bool {
	if c.category != other.category || c.subcategory != other.subcategory || c.reasoning != other.reasoning {
		return false
	}
	if !confidenceEqual(c.confidence, other.confidence) {
		return false
	}
	if len(c.toolsDetected) != len(other.toolsDetected) {
		return false
	}
	for _, t := range c.toolsDetected {
		if !slices.Contains(other.toolsDetected, t) {
			return false
		}
	}
	return true
}

// ClassificationRecord is the stored shape of a classification.
type ClassificationRecord struct {
	Category      string   `json:"category" validate:"required"`
	Subcategory   string   `json:"subcategory,omitempty"`
	ToolsDetected []string `json:"tools_detected"`
	Confidence    float64  `json:"confidence" validate:"gte=0,lte=1"`
	Reasoning     string   `json:"reasoning" validate:"required"`
}

// Record returns the stored shape.
func (c AIClassification) Record() ClassificationRecord {
	return ClassificationRecord{
		Category:      c.category,
		Subcategory:   c.subcategory,
		ToolsDetected: c.ToolsDetected(),
		Confidence:    c.confidence,
		Reasoning:     c.reasoning,
	}
}

// MarshalJSON renders {category, subcategory, tools_detected, confidence, reasoning}.
func (c AIClassification) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Record())
}

// UnmarshalJSON parses and validates a classification.
func (c *AIClassification) UnmarshalJSON(data []byte) error {
	parsed, err := AIClassificationFromPersistence(data)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ToJSON returns the JSON encoding of c.
func (c AIClassification) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

// AIClassificationFromRecord validates a stored record.
func AIClassificationFromRecord(rec ClassificationRecord) (AIClassification, error) {
	return NewAIClassification(rec.Category, rec.Confidence, rec.Reasoning,
		WithSubcategory(rec.Subcategory),
		WithToolsDetected(rec.ToolsDetected...),
	)
}

// AIClassificationFromPersistence accepts a ClassificationRecord (or pointer),
// a decoded JSON object (map[string]any), or a JSON document as string,
// []byte or json.RawMessage.
func AIClassificationFromPersistence(data any) (AIClassification, error) {
	var rec ClassificationRecord
	switch v := data.(type) {
	case ClassificationRecord:
		rec = v
	case *ClassificationRecord:
		if v == nil {
			return AIClassification{}, errors.Validation("classification record is nil").WithKind(KindClassificationInvalid)
		}
		rec = *v
	case string:
		return AIClassificationFromPersistence([]byte(v))
	case json.RawMessage:
		return AIClassificationFromPersistence([]byte(v))
	case []byte:
		if err := json.Unmarshal(v, &rec); err != nil {
			return AIClassification{}, errors.Wrap(err, errors.CodeValidation, "decode classification").WithKind(KindClassificationInvalid)
		}
	case map[string]any:
		raw, err := json.Marshal(v)
		if err != nil {
			return AIClassification{}, errors.Wrap(err, errors.CodeValidation, "encode classification").WithKind(KindClassificationInvalid)
		}
		return AIClassificationFromPersistence(raw)
	default:
		return AIClassification{}, errors.Validationf("unsupported classification data %T", data).WithKind(KindClassificationInvalid)
	}
	return AIClassificationFromRecord(rec)
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
