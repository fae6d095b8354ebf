package domain

import (
	"fmt"
	"math"
)

// Level is the qualitative bucket of a confidence value.
type Level string

// Confidence levels.
const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Confidence thresholds shared by ConfidenceScore, AIClassification and events.
const (
	MediumConfidenceThreshold = 0.5
	HighConfidenceThreshold   = 0.8

	// confidenceTolerance absorbs floating point jitter in equality checks.
	confidenceTolerance = 0.001
)

// ConfidenceLevel buckets x: low below 0.5, medium below 0.8, high otherwise.
func ConfidenceLevel(x float64) Level {
	switch {
	case x >= HighConfidenceThreshold:
		return LevelHigh
	case x >= MediumConfidenceThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

func validConfidence(x float64) bool {
	return !math.IsNaN(x) && x >= 0 && x <= 1
}

func confidenceEqual(a, b float64) bool {
	return math.Abs(a-b) < confidenceTolerance
}

// ConfidenceScore is a confidence value in [0, 1].
// The zero value is a valid score of 0.
type ConfidenceScore struct {
	value float64
}

// NewConfidenceScore validates value and wraps it.
func NewConfidenceScore(value float64) (ConfidenceScore, error) {
	if !validConfidence(value) {
		return ConfidenceScore{}, invalidField(KindConfidenceInvalid, "confidence", value, "must be a number between 0 and 1")
	}
	return ConfidenceScore{value: value}, nil
}

// MustConfidenceScore is like NewConfidenceScore but panics on invalid input.
func MustConfidenceScore(value float64) ConfidenceScore {
	s, err := NewConfidenceScore(value)
	if err != nil {
		panic(err)
	}
	return s
}

// ConfidenceFromPercentage converts a percentage (0-100) into a score.
func ConfidenceFromPercentage(p float64) (ConfidenceScore, error) {
	return NewConfidenceScore(p / 100)
}

// LowConfidence returns the canonical low score (0.3).
func LowConfidence() ConfidenceScore { return ConfidenceScore{value: 0.3} }

// MediumConfidence returns the canonical medium score (0.65).
func MediumConfidence() ConfidenceScore { return ConfidenceScore{value: 0.65} }

// HighConfidence returns the canonical high score (0.9).
func HighConfidence() ConfidenceScore { return ConfidenceScore{value: 0.9} }

// Value returns the raw score.
func (s ConfidenceScore) Value() float64 { return s.value }

// Level returns the qualitative bucket.
func (s ConfidenceScore) Level() Level { return ConfidenceLevel(s.value) }

// IsHigh reports a score of at least 0.8.
func (s ConfidenceScore) IsHigh() bool { return s.Level() == LevelHigh }

// IsMedium reports a score in [0.5, 0.8).
func (s ConfidenceScore) IsMedium() bool { return s.Level() == LevelMedium }

// IsLow reports a score below 0.5.
func (s ConfidenceScore) IsLow() bool { return s.Level() == LevelLow }

// IsAbove reports whether the score is strictly greater than threshold.
func (s ConfidenceScore) IsAbove(threshold float64) bool { return s.value > threshold }

// Percentage returns the score scaled to 0-100.
func (s ConfidenceScore) Percentage() float64 { return s.value * 100 }

// Equal compares scores within a 0.001 tolerance.
func (s ConfidenceScore) Equal(other ConfidenceScore) bool {
	return confidenceEqual(s.value, other.value)
}

// String renders the score as a percentage with one decimal, e.g. "95.0%".
func (s ConfidenceScore) String() string {
	return fmt.Sprintf("%.1f%%", s.Percentage())
}
