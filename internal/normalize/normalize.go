// Package normalize provides utilities for normalizing user supplied values.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tag returns the canonical form of a tag: surrounding whitespace removed and
// lower-cased using Unicode default casing. "  Machine Learning " → "machine learning".
//
// Tag identity is the normalized value, so "AI" and "ai" are the same tag.
func Tag(raw string) string {
	// cases.Caser is stateful; one per call.
	return cases.Lower(language.Und).String(strings.TrimSpace(raw))
}

// Tags normalizes every entry and drops empties and duplicates, keeping first-seen order.
func Tags(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		t := Tag(r)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Fold lower-cases s for case-insensitive comparisons and substring matching.
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// LanguageCode converts a BCP 47 tag or ISO 639 code into its base language
// code. Returns empty string for unrecognized input.
//
// Examples: "en-US" → "en", "de_AT" → "de", "eng" → "en", "FR" → "fr".
func LanguageCode(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	tag, err := language.Parse(raw)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}
