package domain

// HealthRating is the three-level judgment assigned to an ingredient.
type HealthRating string

const (
	RatingGood    HealthRating = "Good"
	RatingNeutral HealthRating = "Neutral"
	RatingBad     HealthRating = "Bad"
)

// ProcessingLevel describes how processed an ingredient is.
type ProcessingLevel string

const (
	ProcessingMinimally  ProcessingLevel = "Minimally"
	ProcessingModerately ProcessingLevel = "Moderately"
	ProcessingHighly     ProcessingLevel = "Highly"
	ProcessingUltra      ProcessingLevel = "Ultra"
)

// AllergenRisk describes the allergen exposure risk of an ingredient.
type AllergenRisk string

const (
	AllergenHigh   AllergenRisk = "High"
	AllergenMedium AllergenRisk = "Medium"
	AllergenLow    AllergenRisk = "Low"
	AllergenNone   AllergenRisk = "None"
)

// NutritionalInfo carries optional per-ingredient nutrition detail.
type NutritionalInfo struct {
	Calories float64  `json:"calories,omitempty"`
	Protein  float64  `json:"protein,omitempty"`
	Carbs    float64  `json:"carbs,omitempty"`
	Fats     float64  `json:"fats,omitempty"`
	Vitamins []string `json:"vitamins,omitempty"`
	Minerals []string `json:"minerals,omitempty"`
}

// IngredientAnalysis is one ingredient's health assessment. Instances
// are request-scoped values; the core never persists them.
type IngredientAnalysis struct {
	Ingredient           string           `json:"ingredient"`
	HealthRating         HealthRating     `json:"healthRating"`
	Explanation          string           `json:"explanation"`
	HealthScore          int              `json:"healthScore,omitempty"` // 0-100
	DailyValuePercentage float64          `json:"dailyValuePercentage,omitempty"`
	Benefits             []string         `json:"benefits,omitempty"`
	RiskFactors          []string         `json:"riskFactors,omitempty"`
	NutritionalInfo      *NutritionalInfo `json:"nutritionalInfo,omitempty"`
	ProcessingLevel      ProcessingLevel  `json:"processingLevel,omitempty"`
	AllergenRisk         AllergenRisk     `json:"allergenRisk,omitempty"`
	Alternatives         []string         `json:"alternatives,omitempty"`
}

// ProductSummary is derived from a completed analysis sequence.
// It is recomputed on demand, never stored.
type ProductSummary struct {
	OverallRating   HealthRating `json:"overallRating"`
	HealthScore     int          `json:"healthScore"` // weighted average, 0-100
	Summary         string       `json:"summary"`
	Recommendations []string     `json:"recommendations,omitempty"`
}

// ProductInfo is optional label context supplied alongside an analysis
// request and interpolated into the synthesized prompt.
type ProductInfo struct {
	Name           string            `json:"name,omitempty"`
	ServingSize    string            `json:"servingSize,omitempty"`
	Format         string            `json:"format,omitempty"`
	AdditionalInfo map[string]string `json:"additionalInfo,omitempty"`
}

// AnalysisRequest is the payload of the analysis HTTP surface.
type AnalysisRequest struct {
	Text        string       `json:"text"`
	ProductInfo *ProductInfo `json:"productInfo,omitempty"`
	// UseLocal routes the request to the deterministic local analyzer
	// instead of the generative model. Falling back to the local path is
	// always the caller's explicit choice, never a silent substitution.
	UseLocal bool `json:"useLocal,omitempty"`
}

// AnalysisResponse pairs the per-ingredient analyses with the derived
// product summary.
type AnalysisResponse struct {
	Analyses []IngredientAnalysis `json:"analyses"`
	Summary  *ProductSummary      `json:"summary"`
	Source   string               `json:"source"` // "model", "local" or "cache"
}
