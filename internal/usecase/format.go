package usecase

import (
	"regexp"

	"github.com/labelscan/backend/internal/domain"
)

// Detection patterns, tested in priority order. First match wins and
// there is no backtracking across categories: a label carrying both a
// composition table and an ingredients list is a composition label.
var (
	compositionPattern = regexp.MustCompile(`(?i)composition\s*:|each\b.*?\b(?:candy|tablet|capsule)\s+is\s+prepared\s+from\s*:`)
	ingredientsPattern = regexp.MustCompile(`(?i)ingredients\s*:|contains\s*:`)
	nutritionPattern   = regexp.MustCompile(`(?i)nutrition\s+facts|nutritional\s+information`)
)

// DetectFormat classifies label text into one of the four layout kinds.
// Total and deterministic: the same text always yields the same label.
func DetectFormat(text string) domain.LabelFormat {
	switch {
	case compositionPattern.MatchString(text):
		return domain.FormatComposition
	case ingredientsPattern.MatchString(text):
		return domain.FormatIngredientsList
	case nutritionPattern.MatchString(text):
		return domain.FormatNutritionFacts
	default:
		return domain.FormatUnknown
	}
}
