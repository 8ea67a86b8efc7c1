package usecase

import (
	"regexp"
	"strings"

	"github.com/labelscan/backend/internal/domain"
)

var (
	ingredientsMarker = regexp.MustCompile(`(?i)(?:ingredients|contains)\s*:`)

	// Terminators that end the ingredients section: a sentence period or
	// the start of another label block.
	listTerminator = regexp.MustCompile(`(?i)\.|nutrition\s+facts|nutritional\s+information|storage|directions|allergen|warnings`)

	percentSuffix = regexp.MustCompile(`(?i)^(.+?)\s*\((\d+(?:\.\d+)?\s*%)\)$`)

	leadingFiller = regexp.MustCompile(`(?i)^(?:and|contains|including|with|or)\s+`)
)

// parseIngredientsList handles the common "Ingredients: a, b, c." label
// convention. The section runs from the marker to the first terminator;
// segments split on commas and newlines, parenthesized percentages stay
// attached to their ingredient, and other parentheticals expand into
// their sub-ingredients.
func parseIngredientsList(text string) []domain.ExtractedIngredient {
	loc := ingredientsMarker.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	section := text[loc[1]:]
	if term := listTerminator.FindStringIndex(section); term != nil {
		section = section[:term[0]]
	}

	set := newIngredientSet()
	for _, segment := range splitListSegments(section) {
		segment = strings.TrimSpace(segment)
		if segment == "" || strings.Contains(strings.ToLower(segment), "may contain") {
			continue
		}
		segment = stripLeadingFiller(segment)
		if segment == "" {
			continue
		}

		if m := percentSuffix.FindStringSubmatch(segment); m != nil {
			set.add(domain.ExtractedIngredient{Name: m[1], Percentage: strings.TrimSpace(m[2])})
			continue
		}

		// Nested parentheticals ("Vegetable Oil (Palm, Sunflower)")
		// expand into their components.
		if strings.ContainsAny(segment, "()") {
			for _, group := range strings.FieldsFunc(segment, func(r rune) bool { return r == '(' || r == ')' }) {
				for _, sub := range strings.Split(group, ",") {
					if sub = strings.TrimSpace(sub); sub != "" {
						set.add(domain.ExtractedIngredient{Name: sub})
					}
				}
			}
			continue
		}

		set.add(domain.ExtractedIngredient{Name: segment})
	}
	return set.items
}

// splitListSegments splits an ingredients section on commas and
// newlines, keeping parenthesized groups intact so percentages and
// sub-ingredient lists survive to per-segment handling.
func splitListSegments(section string) []string {
	var segments []string
	depth := 0
	start := 0
	for i, r := range section {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',', '\n':
			if depth == 0 {
				segments = append(segments, section[start:i])
				start = i + 1
			}
		}
	}
	segments = append(segments, section[start:])
	return segments
}

func stripLeadingFiller(segment string) string {
	for {
		stripped := leadingFiller.ReplaceAllString(segment, "")
		if stripped == segment {
			return strings.TrimSpace(segment)
		}
		segment = stripped
	}
}
