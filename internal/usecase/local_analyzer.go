package usecase

import (
	"fmt"
	"strings"

	"github.com/labelscan/backend/internal/domain"
)

// harmfulIngredients match before anything else. Substring match,
// case-insensitive, first hit wins.
var harmfulIngredients = []string{
	"high-fructose corn syrup",
	"high fructose corn syrup",
	"partially hydrogenated",
	"trans fat",
	"bht",
	"bha",
	"sodium nitrite",
	"sodium nitrate",
	"potassium bromate",
	"aspartame",
	"monosodium glutamate",
	"artificial color",
	"artificial colour",
	"artificial sweetener",
	"red 40",
	"yellow 5",
	"yellow 6",
}

// beneficialIngredients are checked second.
var beneficialIngredients = []string{
	"omega-3",
	"omega 3",
	"whole grain",
	"quinoa",
	"spinach",
	"kale",
	"broccoli",
	"blueberr",
	"almond",
	"walnut",
	"chia",
	"flax",
	"lentil",
	"chickpea",
	"probiotic",
	"green tea",
	"olive oil",
	"avocado",
	"turmeric",
	"ginger",
	"garlic",
}

// ingredientCategory is one row of the ordered category table. Matching
// is first-match over table order, not best-match: an ingredient
// containing both "sugar" and "artificial" resolves to whichever row
// comes first. The order below is part of the contract; do not reorder.
type ingredientCategory struct {
	keywords    []string
	rating      domain.HealthRating
	score       int
	explanation string
	benefit     string
	risk        string
}

var ingredientCategories = []ingredientCategory{
	{
		keywords:    []string{"fruit", "vegetable", "berry", "whole grain", "oat", "bean", "legume", "nut", "seed"},
		rating:      domain.RatingGood,
		score:       70,
		explanation: "%s is a whole-food ingredient generally associated with positive health outcomes.",
		benefit:     "Source of fiber, vitamins and minerals",
	},
	{
		keywords:    []string{"protein", "milk", "dairy", "cheese", "yogurt", "egg", "oil", "butter", "rice", "wheat", "flour", "starch"},
		rating:      domain.RatingNeutral,
		score:       50,
		explanation: "%s is a common staple ingredient; health impact depends on quantity and overall diet.",
	},
	{
		keywords:    []string{"sugar", "syrup", "sweetener", "additive", "preservative", "artificial", "color", "colour", "flavor", "flavour", "emulsifier", "stabilizer"},
		rating:      domain.RatingBad,
		score:       30,
		explanation: "%s is an added sugar, additive or processing aid; frequent consumption is discouraged.",
		risk:        "Linked to excess calorie intake and metabolic stress when consumed often",
	},
}

// LocalAnalyzer is the deterministic, dictionary-driven alternative to
// the generative model. Pure: no I/O, no shared state, same input
// always produces the same output. It is used only when the caller
// explicitly opts in; a failed model call never falls back here
// silently.
type LocalAnalyzer struct{}

// NewLocalAnalyzer creates a local analyzer.
func NewLocalAnalyzer() *LocalAnalyzer {
	return &LocalAnalyzer{}
}

// Analyze produces one analysis per ingredient name, in input order.
func (a *LocalAnalyzer) Analyze(names []string) []domain.IngredientAnalysis {
	analyses := make([]domain.IngredientAnalysis, 0, len(names))
	for _, name := range names {
		analyses = append(analyses, a.analyzeOne(name))
	}
	return analyses
}

func (a *LocalAnalyzer) analyzeOne(name string) domain.IngredientAnalysis {
	lower := strings.ToLower(name)

	for _, harmful := range harmfulIngredients {
		if strings.Contains(lower, harmful) {
			return domain.IngredientAnalysis{
				Ingredient:   name,
				HealthRating: domain.RatingBad,
				HealthScore:  20,
				Explanation:  fmt.Sprintf("%s is a known harmful or heavily processed ingredient best avoided.", name),
				RiskFactors:  []string{"Associated with adverse health effects in regular consumption"},
			}
		}
	}

	for _, beneficial := range beneficialIngredients {
		if strings.Contains(lower, beneficial) {
			return domain.IngredientAnalysis{
				Ingredient:   name,
				HealthRating: domain.RatingGood,
				HealthScore:  80,
				Explanation:  fmt.Sprintf("%s is a nutrient-dense ingredient with documented health benefits.", name),
				Benefits:     []string{"Contributes beneficial nutrients to the diet"},
			}
		}
	}

	for _, category := range ingredientCategories {
		for _, keyword := range category.keywords {
			if strings.Contains(lower, keyword) {
				analysis := domain.IngredientAnalysis{
					Ingredient:   name,
					HealthRating: category.rating,
					HealthScore:  category.score,
					Explanation:  fmt.Sprintf(category.explanation, name),
				}
				if category.benefit != "" {
					analysis.Benefits = []string{category.benefit}
				}
				if category.risk != "" {
					analysis.RiskFactors = []string{category.risk}
				}
				return analysis
			}
		}
	}

	return domain.IngredientAnalysis{
		Ingredient:   name,
		HealthRating: domain.RatingNeutral,
		HealthScore:  50,
		Explanation:  fmt.Sprintf("Not enough information to assess %s; treated as neutral.", name),
	}
}
