// Package classify maps free-text issue reports onto the fixed set of
// municipal service categories.
package classify

import (
	"context"
	"strings"

	"github.com/civix/backend/internal/models"
)

// Service categories. The declaration order is also the tie-break
// priority order for keyword scoring: when two categories match the
// same number of keywords, the earlier one wins.
const (
	CategoryElectricity  = "electricity"
	CategoryWater        = "water"
	CategorySanitation   = "sanitation"
	CategoryRoads        = "roads"
	CategoryPublicSafety = "public_safety"
	CategoryParks        = "parks"

	// CategoryUnknown is the result when no keyword matches. It is not a
	// reportable category.
	CategoryUnknown = "unknown"

	// CategoryOther is the sentinel reporters pick when they cannot (or
	// do not want to) categorize the issue themselves.
	CategoryOther = "other"
)

// Confidence constants. Keyword hits are deliberately low-trust so the
// decider routes them to human approval; external-model results sit
// slightly above that but still well under the auto-assign threshold.
const (
	KeywordConfidence  = 0.5
	ExternalConfidence = 0.6
)

var categoryOrder = []string{
	CategoryElectricity,
	CategoryWater,
	CategorySanitation,
	CategoryRoads,
	CategoryPublicSafety,
	CategoryParks,
}

var categoryKeywords = map[string][]string{
	CategoryElectricity: {
		"electric", "electricity", "power", "light", "streetlight",
		"lamp", "wire", "transformer", "voltage", "outage", "shock",
	},
	CategoryWater: {
		"water", "pipe", "pipeline", "leak", "leakage", "tap",
		"drainage", "drain", "supply", "flood", "borewell",
	},
	CategorySanitation: {
		"waste", "garbage", "trash", "sewage", "hygiene", "litter",
		"dump", "smell", "toilet", "cleaning", "bin",
	},
	CategoryRoads: {
		"road", "pothole", "street", "pavement", "sidewalk",
		"footpath", "asphalt", "crack", "traffic", "bridge", "divider",
	},
	CategoryPublicSafety: {
		"unsafe", "danger", "dangerous", "crime", "accident", "fire",
		"hazard", "theft", "vandalism", "stray",
	},
	CategoryParks: {
		"park", "tree", "playground", "garden", "bench", "grass",
		"fountain",
	},
}

// Classifier decides a category for an issue report.
type Classifier interface {
	Classify(ctx context.Context, title, description string) (models.Classification, error)
}

// Categories returns the reportable categories in priority order.
func Categories() []string {
	out := make([]string, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// IsConcrete reports whether a category value names a real service
// category, as opposed to the "other"/unknown sentinels or empty input.
func IsConcrete(category string) bool {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" || c == CategoryOther || c == CategoryUnknown {
		return false
	}
	for _, known := range categoryOrder {
		if c == known {
			return true
		}
	}
	return false
}

// Normalize lowercases and trims a category value, mapping anything
// outside the enum to the "other" sentinel.
func Normalize(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if IsConcrete(c) {
		return c
	}
	return CategoryOther
}

// MatchesSpecialization reports whether a technician's free-text
// specialization covers a category. The category name itself and any of
// the category's keywords count as a match.
func MatchesSpecialization(specialization, category string) bool {
	spec := strings.ToLower(specialization)
	if spec == "" {
		return false
	}
	if strings.Contains(spec, strings.ReplaceAll(category, "_", " ")) || strings.Contains(spec, category) {
		return true
	}
	for _, kw := range categoryKeywords[category] {
		if strings.Contains(spec, kw) {
			return true
		}
	}
	return false
}

// KeywordClassifier scores title+description against per-category
// keyword sets. It never fails.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(_ context.Context, title, description string) (models.Classification, error) {
	text := strings.ToLower(title + " " + description)

	best := CategoryUnknown
	bestScore := 0
	for _, cat := range categoryOrder {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(text, kw) {
				score++
			}
		}
		// Strictly-greater keeps the priority order as the tie-break.
		if score > bestScore {
			best = cat
			bestScore = score
		}
	}

	if bestScore == 0 {
		return models.Classification{
			Category:   CategoryUnknown,
			Confidence: 0,
			Method:     models.MethodKeyword,
		}, nil
	}
	return models.Classification{
		Category:   best,
		Confidence: KeywordConfidence,
		Method:     models.MethodKeyword,
	}, nil
}
