package usecase

import (
	"regexp"
	"strings"

	"github.com/labelscan/backend/internal/domain"
	"go.uber.org/zap"
)

var (
	fallbackDelimiters = regexp.MustCompile(`[,.\n;]`)

	eachServingPattern  = regexp.MustCompile(`(?i)each\s*\(([^)]+)\)`)
	servingSizePattern  = regexp.MustCompile(`(?i)serving\s+size\s*:\s*([^\n.]+)`)
	preservativePattern = regexp.MustCompile(`(?i)no preservatives|no artificial|no colou?ring`)
)

// ExtractionService turns noisy label text into a normalized ingredient
// list: format detection, the matching section parser, and a layered
// fallback that guarantees non-empty output for non-empty input.
type ExtractionService struct {
	logger *zap.Logger
}

// NewExtractionService creates an extraction service.
func NewExtractionService(logger *zap.Logger) *ExtractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractionService{logger: logger}
}

// Extract runs the full extraction pipeline on label text. The returned
// ingredient list is empty only when the input text is empty.
func (s *ExtractionService) Extract(text string) *domain.ExtractionResult {
	result := &domain.ExtractionResult{
		Ingredients:    []domain.ExtractedIngredient{},
		AdditionalInfo: map[string]string{},
		Format:         domain.FormatUnknown,
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return result
	}

	format := DetectFormat(text)
	result.Format = format

	switch format {
	case domain.FormatComposition:
		result.Ingredients = parseComposition(text)
	case domain.FormatIngredientsList:
		result.Ingredients = parseIngredientsList(text)
	case domain.FormatNutritionFacts:
		if parsed := parseNutritionFacts(text); len(parsed) > 0 {
			result.Ingredients = parsed
		} else {
			result.Ingredients = parseBasic(text)
		}
	default:
		result.Ingredients = parseBasic(text)
	}

	result.Ingredients = normalizeIngredients(result.Ingredients)

	// Outer invariant: a chosen parser may still come up empty on
	// degenerate text. One more pass over the original text guarantees
	// at least a naive tokenization.
	if len(result.Ingredients) == 0 {
		result.Ingredients = fallbackTokenize(text)
		result.Format = domain.FormatFallback
	}

	s.extractSideInfo(text, result)

	s.logger.Debug("extraction complete",
		zap.String("format", string(result.Format)),
		zap.Int("ingredients", len(result.Ingredients)),
	)

	return result
}

// normalizeIngredients trims names, drops empties, and suppresses
// case-insensitive duplicate names unless disambiguated by type.
func normalizeIngredients(ingredients []domain.ExtractedIngredient) []domain.ExtractedIngredient {
	seen := make(map[string]bool, len(ingredients))
	normalized := make([]domain.ExtractedIngredient, 0, len(ingredients))
	for _, ing := range ingredients {
		ing.Name = strings.TrimSpace(ing.Name)
		if ing.Name == "" {
			continue
		}
		key := strings.ToLower(ing.Name) + "|" + strings.ToLower(ing.Type)
		if seen[key] {
			continue
		}
		seen[key] = true
		normalized = append(normalized, ing)
	}
	return normalized
}

// fallbackTokenize is the pipeline's last resort: split the original
// text on common delimiters and emit every fragment longer than three
// characters as a bare ingredient.
func fallbackTokenize(text string) []domain.ExtractedIngredient {
	set := newIngredientSet()
	for _, fragment := range fallbackDelimiters.Split(text, -1) {
		if fragment = strings.TrimSpace(fragment); len(fragment) > 3 {
			set.add(domain.ExtractedIngredient{Name: fragment})
		}
	}
	if len(set.items) == 0 {
		// Degenerate short text still honors the non-empty guarantee.
		set.add(domain.ExtractedIngredient{Name: text})
	}
	return set.items
}

// extractSideInfo pulls product name, serving size, and the
// preservative-free flag out of the raw text, independent of format.
func (s *ExtractionService) extractSideInfo(text string, result *domain.ExtractionResult) {
	firstLine := text
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}
	if idx := strings.IndexByte(firstLine, ':'); idx > 0 {
		result.ProductName = strings.TrimSpace(firstLine[:idx])
	}

	if m := eachServingPattern.FindStringSubmatch(text); m != nil {
		result.ServingSize = strings.TrimSpace(m[1])
	} else if m := servingSizePattern.FindStringSubmatch(text); m != nil {
		result.ServingSize = strings.TrimSpace(m[1])
	}

	if matches := preservativePattern.FindAllString(text, -1); len(matches) > 0 {
		result.AdditionalInfo["preservativeFree"] = strings.Join(matches, ", ")
	}
}
