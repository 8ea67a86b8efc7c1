package usecase

import (
	"regexp"
	"strings"

	"github.com/labelscan/backend/internal/domain"
)

var (
	basicDelimiters = regexp.MustCompile(`[,()\n;•.]`)

	purePercent   = regexp.MustCompile(`^\d+(?:\.\d+)?\s*%$`)
	sectionHeader = regexp.MustCompile(`^[A-Za-z][A-Za-z ]*:$`)

	leadingQuantity = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?\s*(?:mg|mcg|g|kg|ml|l|oz|%)?)\s+(.+)$`)
)

// noiseMarkers disqualify a whole segment: packaging boilerplate that
// is not an ingredient.
var noiseMarkers = []string{"may contain", "manufactured in", "produced by"}

// wordScanStopWords filters the naive word scan of last resort.
var wordScanStopWords = map[string]bool{
	"the": true, "and": true, "with": true, "from": true, "this": true,
	"that": true, "contains": true, "ingredients": true, "nutrition": true,
	"facts": true, "may": true, "contain": true, "serving": true, "size": true,
	"information": true, "each": true, "product": true,
}

// parseNutritionFacts is reserved for structural parsing of tabular
// nutrition data. It returns nothing today; the basic parser is the de
// facto handler whenever this format is detected.
func parseNutritionFacts(string) []domain.ExtractedIngredient {
	return nil
}

// parseBasic is the generic fallback parser for unknown layouts. It
// narrows to an ingredients section when one exists, splits on every
// delimiter convention seen on labels, filters non-ingredient noise,
// and as a last resort degrades to a naive word scan.
func parseBasic(text string) []domain.ExtractedIngredient {
	working := text
	if loc := ingredientsMarker.FindStringIndex(text); loc != nil {
		working = text[loc[1]:]
	}

	set := newIngredientSet()
	for _, segment := range basicDelimiters.Split(working, -1) {
		segment = strings.TrimSpace(segment)
		if !keepBasicSegment(segment) {
			continue
		}
		segment = stripLeadingFiller(segment)
		if len(segment) <= 1 {
			continue
		}

		ing := domain.ExtractedIngredient{Name: segment}
		if m := leadingQuantity.FindStringSubmatch(segment); m != nil {
			ing.Quantity = strings.TrimSpace(m[1])
			ing.Name = m[2]
		}
		set.add(ing)
	}

	if len(set.items) > 0 {
		return set.items
	}
	return wordScan(working)
}

func keepBasicSegment(segment string) bool {
	if segment == "" || len(segment) <= 1 {
		return false
	}
	if purePercent.MatchString(segment) || sectionHeader.MatchString(segment) {
		return false
	}
	lower := strings.ToLower(segment)
	for _, marker := range noiseMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// wordScan keeps words longer than 3 characters that are not stop
// words, deduplicated case-insensitively. Crude, but it upholds the
// guarantee that non-empty text never extracts to nothing.
func wordScan(text string) []domain.ExtractedIngredient {
	set := newIngredientSet()
	for _, word := range strings.Fields(text) {
		word = strings.Trim(word, ".,;:()%")
		if len(word) <= 3 || wordScanStopWords[strings.ToLower(word)] {
			continue
		}
		set.add(domain.ExtractedIngredient{Name: word})
	}
	return set.items
}
