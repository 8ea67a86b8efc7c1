package usecase

import (
	"fmt"
	"strings"

	"github.com/labelscan/backend/internal/domain"
)

// Per-ingredient weights for the overall score.
const (
	summaryWeightGood    = 100
	summaryWeightNeutral = 50
	summaryWeightBad     = 0
)

// Overall-rating thresholds on the weighted average.
const (
	summaryGoodThreshold = 70
	summaryBadThreshold  = 40
)

// BuildProductSummary derives the product-level verdict from a
// completed analysis sequence. Pure function of its input, recomputed
// on demand, never stored.
func BuildProductSummary(analyses []domain.IngredientAnalysis) *domain.ProductSummary {
	if len(analyses) == 0 {
		return &domain.ProductSummary{
			OverallRating: domain.RatingNeutral,
			HealthScore:   summaryWeightNeutral,
			Summary:       "No ingredients were analyzed.",
		}
	}

	var total, good, neutral, bad int
	var flagged []string
	for _, a := range analyses {
		switch a.HealthRating {
		case domain.RatingGood:
			total += summaryWeightGood
			good++
		case domain.RatingBad:
			total += summaryWeightBad
			bad++
			flagged = append(flagged, a.Ingredient)
		default:
			total += summaryWeightNeutral
			neutral++
		}
	}

	// Round-half-up integer average.
	score := (total + len(analyses)/2) / len(analyses)

	rating := domain.RatingNeutral
	switch {
	case score >= summaryGoodThreshold:
		rating = domain.RatingGood
	case score < summaryBadThreshold:
		rating = domain.RatingBad
	}

	summary := &domain.ProductSummary{
		OverallRating: rating,
		HealthScore:   score,
		Summary: fmt.Sprintf("%d of %d ingredients rated Good, %d Neutral, %d Bad.",
			good, len(analyses), neutral, bad),
	}

	if len(flagged) > 0 {
		summary.Recommendations = append(summary.Recommendations,
			"Consider products without: "+strings.Join(flagged, ", "))
	}
	for _, a := range analyses {
		if a.HealthRating == domain.RatingBad && len(a.Alternatives) > 0 {
			summary.Recommendations = append(summary.Recommendations,
				fmt.Sprintf("Instead of %s try: %s", a.Ingredient, strings.Join(a.Alternatives, ", ")))
		}
	}
	if rating == domain.RatingGood {
		summary.Recommendations = append(summary.Recommendations,
			"Overall a healthy ingredient profile.")
	}

	return summary
}
